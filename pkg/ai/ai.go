package ai

import "context"

// ModelMetrics contains usage metrics accumulated by model clients.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// GenerateOptions holds configuration for model requests.
type GenerateOptions struct {
	Model         string
	SystemPrompts []string
	Temperature   float64
}

// GenerateOption is a functional option for configuring model requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model to use for a request.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system prompts prepended to a request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature sets the sampling temperature for a request.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// EmbeddingClient produces vector embeddings for text spans. The
// embedding model itself is an external service; implementations only
// transport requests.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
	ResetMetrics()
	GetMetrics() ModelMetrics
}

// ChatClient generates structured completions from a chat model.
type ChatClient interface {
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error
	ResetMetrics()
	GetMetrics() ModelMetrics
}

// SimilarityScorer scores the semantic similarity of two text spans in
// [0,1]. The paragraph segmenter consumes this as a black box.
type SimilarityScorer interface {
	Score(ctx context.Context, a, b string) (float64, error)
}
