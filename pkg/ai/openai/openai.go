package openai

import (
	"sync"

	"github.com/polderlab/actornet/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// ScorerOpenAIClient talks to OpenAI-compatible APIs for the similarity
// scorer: an embedding endpoint for the cosine scorer and a chat
// endpoint for the structured judge fallback.
//
// A ScorerOpenAIClient should be created using NewScorerOpenAIClient.
type ScorerOpenAIClient struct {
	embeddingModel string
	chatModel      string

	embeddingURL string
	chatURL      string

	timeoutMin int
	reqLock    *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	EmbeddingClient *openai.Client
	ChatClient      *openai.Client
}

// NewScorerOpenAIClientParams configures a ScorerOpenAIClient. Both
// endpoints are optional; an unset key leaves that client nil and the
// corresponding scorer unavailable.
type NewScorerOpenAIClientParams struct {
	EmbeddingModel string
	ChatModel      string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	TimeoutMinutes        int
	MaxConcurrentRequests int64
}

// NewScorerOpenAIClient creates a client configured with the provided
// parameters.
func NewScorerOpenAIClient(params NewScorerOpenAIClientParams) *ScorerOpenAIClient {
	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = 5
	}
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	return &ScorerOpenAIClient{
		embeddingModel: params.EmbeddingModel,
		chatModel:      params.ChatModel,

		embeddingURL: params.EmbeddingURL,
		chatURL:      params.ChatURL,

		timeoutMin: timeoutMin,
		reqLock:    semaphore.NewWeighted(maxConcurrent),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

func (c *ScorerOpenAIClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// ResetMetrics clears the accumulated usage metrics.
func (c *ScorerOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns the accumulated usage metrics.
func (c *ScorerOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}
