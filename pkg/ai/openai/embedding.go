package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/ai"

	"github.com/openai/openai-go/v3"
)

const defaultDimensions = 1024

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model. Empty input yields a zero
// vector of the configured dimension instead of a request.
func (c *ScorerOpenAIClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if c.EmbeddingClient == nil {
		return nil, fmt.Errorf("no embedding endpoint configured")
	}

	dim := util.GetEnvInt("AI_EMBED_DIM", defaultDimensions)
	if len(input) == 0 || len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(string(input))},
		Model: c.embeddingModel,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := c.EmbeddingClient.Embeddings.New(rCtx, body)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start).Milliseconds()

	metrics := ai.ModelMetrics{
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: 0,
		TotalTokens:  int(response.Usage.TotalTokens),
		DurationMs:   duration,
	}
	c.modifyMetrics(metrics)

	if len(response.Data) != 1 {
		return nil, fmt.Errorf("unexpected embedding result size: got %d want 1", len(response.Data))
	}

	vec := make([]float32, 0, dim)
	for _, v := range response.Data[0].Embedding {
		if len(vec) >= dim {
			break
		}
		vec = append(vec, float32(v))
	}
	if len(vec) < dim {
		padded := make([]float32, dim)
		copy(padded, vec)
		vec = padded
	}
	return vec, nil
}
