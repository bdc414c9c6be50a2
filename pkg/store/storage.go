package store

import (
	"context"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/tag"
)

// RunResult bundles everything one pipeline run produces: the tagged
// paragraph table and the weighted edge table per entity kind.
type RunResult struct {
	Paragraphs        []tag.TaggedParagraph
	ActorEdges        []network.Edge
	OrganizationEdges []network.Edge
}

// ParagraphEmbedding attaches an embedding vector to a paragraph identity.
type ParagraphEmbedding struct {
	Title     string
	Num       int
	Embedding []float32
}

// ResultStorage persists and serves pipeline run output.
type ResultStorage interface {
	SaveRun(ctx context.Context, runID string, result RunResult) error
	DeleteRun(ctx context.Context, runID string) error

	GetParagraphs(ctx context.Context, runID string) ([]tag.TaggedParagraph, error)
	GetEdges(ctx context.Context, runID string, kind corpus.MentionKind) ([]network.Edge, error)

	SaveParagraphEmbeddings(ctx context.Context, runID string, embeddings []ParagraphEmbedding) error
	SearchParagraphs(ctx context.Context, runID string, embedding []float32, limit int) ([]tag.TaggedParagraph, error)
}
