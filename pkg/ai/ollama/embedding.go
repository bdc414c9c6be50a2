package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/ai"

	"github.com/ollama/ollama/api"
)

const defaultDimensions = 1024

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama. Empty input yields a
// zero vector of the configured dimension instead of a request.
func (c *ScorerOllamaClient) GenerateEmbedding(
	ctx context.Context,
	input []byte,
) ([]float32, error) {
	dim := util.GetEnvInt("AI_EMBED_DIM", defaultDimensions)
	if len(input) == 0 || len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, dim), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	}

	err := c.reqLock.Acquire(rCtx, 1)
	if err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	metrics := ai.ModelMetrics{
		InputTokens:  res.PromptEvalCount,
		OutputTokens: 0,
		TotalTokens:  res.PromptEvalCount,
		DurationMs:   res.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	out := make([]float32, 0, dim)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= dim {
				break
			}
			out = append(out, float32(val))
		}
	}
	return out, nil
}
