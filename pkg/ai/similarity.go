package ai

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// EmbeddingScorer scores similarity as the cosine of the two spans'
// embedding vectors, with negative cosines clamped to 0.
//
// The segmenter compares every incoming sentence against the whole
// accumulated paragraph buffer, so the same buffer text is scored
// repeatedly; embeddings are cached per text to avoid re-requesting.
type EmbeddingScorer struct {
	client EmbeddingClient

	cacheMu sync.RWMutex
	cache   map[string][]float32
}

// NewEmbeddingScorer creates a scorer backed by the given embedding
// client.
func NewEmbeddingScorer(client EmbeddingClient) *EmbeddingScorer {
	return &EmbeddingScorer{
		client: client,
		cache:  make(map[string][]float32),
	}
}

// Score returns the embedding cosine similarity of a and b in [0,1].
func (s *EmbeddingScorer) Score(ctx context.Context, a, b string) (float64, error) {
	va, err := s.embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := s.embed(ctx, b)
	if err != nil {
		return 0, err
	}

	cos, err := Cosine(va, vb)
	if err != nil {
		return 0, err
	}
	return math.Max(0, cos), nil
}

func (s *EmbeddingScorer) embed(ctx context.Context, text string) ([]float32, error) {
	s.cacheMu.RLock()
	if vec, ok := s.cache[text]; ok {
		s.cacheMu.RUnlock()
		return vec, nil
	}
	s.cacheMu.RUnlock()

	vec, err := s.client.GenerateEmbedding(ctx, []byte(text))
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[text] = vec
	s.cacheMu.Unlock()
	return vec, nil
}

// Cosine computes cosine similarity between two equal-length vectors.
// Zero vectors score 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// judgedSimilarity is the structured output of the chat-model judge.
type judgedSimilarity struct {
	Score float64 `json:"score" jsonschema_description:"Semantic similarity between the two texts, from 0.0 (unrelated) to 1.0 (same topic)"`
}

// JudgeScorer scores similarity by asking a chat model for a structured
// judgment. Slower and costlier than the embedding scorer; used when no
// embedding model is available.
type JudgeScorer struct {
	client ChatClient
	opts   []GenerateOption
}

// NewJudgeScorer creates a chat-model-backed similarity scorer. Options
// are forwarded on every judgment and take precedence over the scorer's
// own defaults, so callers can pin a different model or temperature.
func NewJudgeScorer(client ChatClient, opts ...GenerateOption) *JudgeScorer {
	return &JudgeScorer{client: client, opts: opts}
}

const judgeSystemPrompt = "You rate how likely a sentence continues the topic of a passage. " +
	"Answer only with the requested JSON object."

// Score asks the chat model to judge topical similarity of a and b.
// Out-of-range model output is clamped to [0,1].
func (s *JudgeScorer) Score(ctx context.Context, a, b string) (float64, error) {
	prompt := fmt.Sprintf(
		"Passage:\n%s\n\nSentence:\n%s\n\nRate how likely the sentence continues the same topic as the passage.",
		b, a,
	)

	opts := append([]GenerateOption{
		WithSystemPrompts(judgeSystemPrompt),
		WithTemperature(0),
	}, s.opts...)

	var out judgedSimilarity
	err := s.client.GenerateCompletionWithFormat(
		ctx,
		"similarity",
		"Topical similarity judgment between a passage and a sentence",
		prompt,
		&out,
		opts...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to judge similarity: %w", err)
	}

	return math.Min(1, math.Max(0, out.Score)), nil
}
