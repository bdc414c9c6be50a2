package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/polderlab/actornet/pkg/ai"
	"github.com/polderlab/actornet/pkg/tag"
)

func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// EmbedParagraphs generates one embedding per paragraph text, keeping the
// input order. Used to fill the paragraph search index after a run.
func EmbedParagraphs(
	ctx context.Context,
	client ai.EmbeddingClient,
	rows []tag.TaggedParagraph,
	parallel int,
) ([]ParagraphEmbedding, error) {
	if client == nil {
		return nil, fmt.Errorf("embedding client is nil")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if parallel <= 0 {
		parallel = 1
	}

	out := make([]ParagraphEmbedding, len(rows))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	for i, row := range rows {
		eg.Go(func() error {
			emb, err := client.GenerateEmbedding(ectx, []byte(row.Text))
			if err != nil {
				return err
			}
			out[i] = ParagraphEmbedding{
				Title:     row.Title,
				Num:       row.Num,
				Embedding: emb,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
