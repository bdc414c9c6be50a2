// Package pipeline runs the full corpus-to-network flow: per-document entity
// resolution and paragraph segmentation, paragraph tagging, bipartite
// projection, and persistence of the resulting tables.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/polderlab/actornet/pkg/ai"
	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/registry"
	"github.com/polderlab/actornet/pkg/resolve"
	"github.com/polderlab/actornet/pkg/segment"
	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

const (
	defaultParallelDocuments  = 4
	defaultParallelParagraphs = 16
)

type Client struct {
	parallelDocuments  int
	parallelParagraphs int
	maxRetries         int
	threshold          float64
	tokenEncoder       string
}

type NewClientParams struct {
	// ParallelDocuments bounds concurrent per-document work (resolution and
	// segmentation). Defaults to 4.
	ParallelDocuments int

	// ParallelParagraphs bounds concurrent paragraph tagging. Defaults to 16.
	ParallelParagraphs int

	// MaxRetries bounds scorer retries per similarity comparison.
	MaxRetries int

	// SimilarityThreshold below which a sentence opens a new paragraph.
	SimilarityThreshold float64

	// TokenEncoder names the tiktoken encoding used for embed-buffer caps.
	TokenEncoder string
}

func NewClient(params NewClientParams) *Client {
	if params.ParallelDocuments <= 0 {
		params.ParallelDocuments = defaultParallelDocuments
	}
	if params.ParallelParagraphs <= 0 {
		params.ParallelParagraphs = defaultParallelParagraphs
	}
	return &Client{
		parallelDocuments:  params.ParallelDocuments,
		parallelParagraphs: params.ParallelParagraphs,
		maxRetries:         params.MaxRetries,
		threshold:          params.SimilarityThreshold,
		tokenEncoder:       params.TokenEncoder,
	}
}

type RunParams struct {
	RunID     string
	Documents []corpus.Document
	Registry  *registry.Registry
	Surnames  *registry.Surnames
	Scorer    ai.SimilarityScorer
	Storage   store.ResultStorage

	// OrganizationBlocklist skips listed mention texts before resolution.
	OrganizationBlocklist []string
}

// Run executes the pipeline and persists the result under params.RunID.
// The produced RunResult is also returned for callers that export directly.
func (c *Client) Run(ctx context.Context, params RunParams) (*store.RunResult, error) {
	resolver := resolve.NewResolver(resolve.NewResolverParams{
		Registry:              params.Registry,
		Surnames:              params.Surnames,
		OrganizationBlocklist: params.OrganizationBlocklist,
	})

	segmenter, err := segment.NewSegmenter(segment.NewSegmenterParams{
		Scorer:       params.Scorer,
		Threshold:    c.threshold,
		MaxRetries:   c.maxRetries,
		TokenEncoder: c.tokenEncoder,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[Pipeline] Run started",
		"run", params.RunID,
		"documents", len(params.Documents),
	)

	// Resolution and segmentation are independent per document; both run in
	// the same group so one failure cancels the whole stage.
	var entities map[string]resolve.EntitySet
	var paragraphs []segment.Paragraph

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		entities, err = resolver.ResolveAll(groupCtx, params.Documents, c.parallelDocuments)
		return err
	})
	group.Go(func() error {
		var err error
		paragraphs, err = segmenter.SegmentAll(groupCtx, params.Documents, c.parallelDocuments)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("resolve/segment stage: %w", err)
	}

	logger.Debug("[Pipeline] Resolution and segmentation complete",
		"run", params.RunID,
		"paragraphs", len(paragraphs),
	)

	tagger := tag.NewTagger(tag.NewTaggerParams{
		Entities:  entities,
		Published: corpus.PublishedDates(params.Documents),
	})
	tagged, err := tagger.TagAll(ctx, paragraphs, c.parallelParagraphs)
	if err != nil {
		return nil, fmt.Errorf("tag stage: %w", err)
	}

	result := &store.RunResult{
		Paragraphs:        tagged,
		ActorEdges:        projectEdges(tagged, corpus.MentionPerson),
		OrganizationEdges: projectEdges(tagged, corpus.MentionOrganization),
	}

	if params.Storage != nil {
		if err := params.Storage.SaveRun(ctx, params.RunID, *result); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	logger.Info("[Pipeline] Run finished",
		"run", params.RunID,
		"paragraphs", len(result.Paragraphs),
		"actorEdges", len(result.ActorEdges),
		"organizationEdges", len(result.OrganizationEdges),
	)

	return result, nil
}

func projectEdges(rows []tag.TaggedParagraph, kind corpus.MentionKind) []network.Edge {
	bipartite := network.BuildBipartite(network.Explode(rows, kind))
	return network.Weight(bipartite.Project())
}
