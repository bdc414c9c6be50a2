package segment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/ai"
	"github.com/polderlab/actornet/pkg/corpus"
)

const (
	defaultThreshold      = 0.6
	defaultMaxRetries     = 3
	defaultTokenEncoder   = "o200k_base"
	defaultMaxEmbedTokens = 8192
)

// Paragraph is one topically coherent span of a document. Num is 1-based and
// (Title, Num) identifies the paragraph across the whole corpus.
type Paragraph struct {
	Title string `json:"document_title"`
	Num   int    `json:"paragraph_number"`
	Text  string `json:"paragraph_text"`
}

// Segmenter groups consecutive sentences into paragraphs by scoring each new
// sentence against the entire accumulated buffer.
type Segmenter struct {
	scorer         ai.SimilarityScorer
	threshold      float64
	maxRetries     int
	maxEmbedTokens int
	encoder        *tiktoken.Tiktoken
}

type NewSegmenterParams struct {
	Scorer ai.SimilarityScorer

	// Threshold below which a sentence starts a new paragraph. Defaults to 0.6.
	Threshold float64

	// MaxRetries bounds scorer retries per comparison. Defaults to 3.
	MaxRetries int

	// TokenEncoder names the tiktoken encoding used to cap buffer size before
	// scoring. Defaults to o200k_base.
	TokenEncoder string

	// MaxEmbedTokens caps the buffer sent to the scorer. The emitted paragraph
	// text is never truncated. Defaults to 8192.
	MaxEmbedTokens int
}

func NewSegmenter(params NewSegmenterParams) (*Segmenter, error) {
	if params.Scorer == nil {
		return nil, fmt.Errorf("segment: scorer is required")
	}
	if params.Threshold == 0 {
		params.Threshold = defaultThreshold
	}
	if params.MaxRetries == 0 {
		params.MaxRetries = defaultMaxRetries
	}
	if params.TokenEncoder == "" {
		params.TokenEncoder = defaultTokenEncoder
	}
	if params.MaxEmbedTokens == 0 {
		params.MaxEmbedTokens = defaultMaxEmbedTokens
	}

	enc, err := tiktoken.GetEncoding(params.TokenEncoder)
	if err != nil {
		return nil, fmt.Errorf("segment: get encoding %q: %w", params.TokenEncoder, err)
	}

	return &Segmenter{
		scorer:         params.Scorer,
		threshold:      params.Threshold,
		maxRetries:     params.MaxRetries,
		maxEmbedTokens: params.MaxEmbedTokens,
		encoder:        enc,
	}, nil
}

// SegmentDocument splits one document into paragraphs. A document without any
// sentence content yields a single empty paragraph so every title stays
// represented downstream.
func (s *Segmenter) SegmentDocument(ctx context.Context, doc corpus.Document) ([]Paragraph, error) {
	sentences := SplitSentences(doc.Content)
	if len(sentences) == 0 {
		return []Paragraph{{Title: doc.Title, Num: 1, Text: ""}}, nil
	}

	var paragraphs []Paragraph
	var buffer strings.Builder

	emit := func() {
		paragraphs = append(paragraphs, Paragraph{
			Title: doc.Title,
			Num:   len(paragraphs) + 1,
			Text:  buffer.String(),
		})
		buffer.Reset()
	}

	for _, sentence := range sentences {
		if buffer.Len() == 0 {
			buffer.WriteString(sentence)
			continue
		}

		score, err := util.RetryWithContext(ctx, s.maxRetries, func(ctx context.Context) (float64, error) {
			return s.scorer.Score(ctx, sentence, s.truncate(buffer.String()))
		})
		if err != nil {
			return nil, fmt.Errorf("segment: score sentence against buffer for %q: %w", doc.Title, err)
		}

		if score < s.threshold {
			emit()
			buffer.WriteString(sentence)
			continue
		}

		buffer.WriteString("\n")
		buffer.WriteString(sentence)
	}

	// The trailing buffer is never discarded.
	emit()

	return paragraphs, nil
}

// SegmentAll segments documents concurrently, keeping paragraph order stable
// per document and document order stable across the batch.
func (s *Segmenter) SegmentAll(ctx context.Context, docs []corpus.Document, parallel int) ([]Paragraph, error) {
	if parallel <= 0 {
		parallel = 1
	}

	perDoc := make([][]Paragraph, len(docs))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	for i, doc := range docs {
		group.Go(func() error {
			paragraphs, err := s.SegmentDocument(groupCtx, doc)
			if err != nil {
				return err
			}
			mu.Lock()
			perDoc[i] = paragraphs
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []Paragraph
	for _, paragraphs := range perDoc {
		all = append(all, paragraphs...)
	}
	return all, nil
}

func (s *Segmenter) truncate(text string) string {
	tokens := s.encoder.Encode(text, nil, nil)
	if len(tokens) <= s.maxEmbedTokens {
		return text
	}
	return s.encoder.Decode(tokens[:s.maxEmbedTokens])
}
