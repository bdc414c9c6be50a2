// Package base provides an in-memory ResultStorage, used in tests and for
// single-shot pipeline runs that only need the CSV export.
package base

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/polderlab/actornet/pkg/ai"
	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

type runData struct {
	result     store.RunResult
	embeddings []store.ParagraphEmbedding
}

type MemoryStorage struct {
	mu   sync.RWMutex
	runs map[string]*runData
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{runs: make(map[string]*runData)}
}

func (s *MemoryStorage) SaveRun(ctx context.Context, runID string, result store.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.runs[runID]
	if !ok {
		data = &runData{}
		s.runs[runID] = data
	}
	data.result = result
	return nil
}

func (s *MemoryStorage) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

func (s *MemoryStorage) GetParagraphs(ctx context.Context, runID string) ([]tag.TaggedParagraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	return data.result.Paragraphs, nil
}

func (s *MemoryStorage) GetEdges(ctx context.Context, runID string, kind corpus.MentionKind) ([]network.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	switch kind {
	case corpus.MentionPerson:
		return data.result.ActorEdges, nil
	case corpus.MentionOrganization:
		return data.result.OrganizationEdges, nil
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

func (s *MemoryStorage) SaveParagraphEmbeddings(ctx context.Context, runID string, embeddings []store.ParagraphEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run %q not found", runID)
	}
	data.embeddings = append(data.embeddings, embeddings...)
	return nil
}

func (s *MemoryStorage) SearchParagraphs(ctx context.Context, runID string, embedding []float32, limit int) ([]tag.TaggedParagraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %q not found", runID)
	}

	type scored struct {
		title string
		num   int
		score float64
	}
	var ranked []scored
	for _, pe := range data.embeddings {
		score, err := ai.Cosine(embedding, pe.Embedding)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{title: pe.Title, num: pe.Num, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	byID := make(map[string]tag.TaggedParagraph, len(data.result.Paragraphs))
	for _, row := range data.result.Paragraphs {
		byID[fmt.Sprintf("%s#%d", row.Title, row.Num)] = row
	}

	var out []tag.TaggedParagraph
	for _, r := range ranked {
		if limit > 0 && len(out) >= limit {
			break
		}
		if row, ok := byID[fmt.Sprintf("%s#%d", r.title, r.num)]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}
