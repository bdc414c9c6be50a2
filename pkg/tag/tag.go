package tag

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/polderlab/actornet/pkg/resolve"
	"github.com/polderlab/actornet/pkg/segment"
)

// TaggedParagraph is a paragraph annotated with the resolved entities that
// actually occur in its text, plus the derived presence and count columns the
// projector and the export consumers read.
type TaggedParagraph struct {
	segment.Paragraph

	// DatePublished is the publication date of the source document, nil when
	// the document collection has no entry for the paragraph's title.
	DatePublished *string `json:"date_published"`

	// Topic is an optional externally assigned topic label for the paragraph.
	Topic *string `json:"topic_label,omitempty"`

	// Organizations and Actors keep every match occurrence, duplicates
	// included, in text order.
	Organizations []string `json:"organizations"`
	Actors        []string `json:"actors"`

	OneOrMoreOrganizations bool `json:"one_or_more_organizations"`
	OneOrMoreActors        bool `json:"one_or_more_actors"`
	BothOrgAct             bool `json:"both_org_act"`

	UniqueOrganizations int `json:"unique_organizations"`
	UniqueActors        int `json:"unique_actors"`
}

// Tagger re-attributes document-level entity sets to individual paragraphs.
type Tagger struct {
	entities  map[string]resolve.EntitySet
	published map[string]string

	patternMu sync.Mutex
	patterns  map[string]*regexp.Regexp
}

type NewTaggerParams struct {
	// Entities maps document title to its resolved entity set.
	Entities map[string]resolve.EntitySet

	// Published maps document title to its publication date.
	Published map[string]string
}

func NewTagger(params NewTaggerParams) *Tagger {
	return &Tagger{
		entities:  params.Entities,
		published: params.Published,
		patterns:  make(map[string]*regexp.Regexp),
	}
}

// TagParagraph annotates a single paragraph. Documents missing from the
// publication lookup keep a nil date rather than failing the run.
func (t *Tagger) TagParagraph(paragraph segment.Paragraph) TaggedParagraph {
	entities := t.entities[paragraph.Title]

	tagged := TaggedParagraph{
		Paragraph:     paragraph,
		Organizations: matchAll(paragraph.Text, entities.Organizations, t.pattern),
		Actors:        matchAll(paragraph.Text, entities.Persons, t.pattern),
	}

	if date, ok := t.published[paragraph.Title]; ok {
		tagged.DatePublished = &date
	}

	tagged.OneOrMoreOrganizations = len(tagged.Organizations) > 0
	tagged.OneOrMoreActors = len(tagged.Actors) > 0
	tagged.BothOrgAct = tagged.OneOrMoreOrganizations && tagged.OneOrMoreActors
	tagged.UniqueOrganizations = countUnique(tagged.Organizations)
	tagged.UniqueActors = countUnique(tagged.Actors)

	return tagged
}

// TagAll annotates paragraphs concurrently. Output order follows input order.
func (t *Tagger) TagAll(ctx context.Context, paragraphs []segment.Paragraph, parallel int) ([]TaggedParagraph, error) {
	if parallel <= 0 {
		parallel = 1
	}

	tagged := make([]TaggedParagraph, len(paragraphs))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	for i, paragraph := range paragraphs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			row := t.TagParagraph(paragraph)
			mu.Lock()
			tagged[i] = row
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return tagged, nil
}

// pattern compiles (and caches) the quoted-literal alternation for one
// document's entity list. Entity lists are small and shared by every
// paragraph of the document, so the cache key is the joined list itself.
func (t *Tagger) pattern(entities []string) *regexp.Regexp {
	key := strings.Join(entities, "\x00")

	t.patternMu.Lock()
	defer t.patternMu.Unlock()

	if re, ok := t.patterns[key]; ok {
		return re
	}

	sorted := make([]string, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	quoted := make([]string, len(sorted))
	for i, entity := range sorted {
		quoted[i] = regexp.QuoteMeta(entity)
	}

	re := regexp.MustCompile(strings.Join(quoted, "|"))
	t.patterns[key] = re
	return re
}

func matchAll(text string, entities []string, compile func([]string) *regexp.Regexp) []string {
	// An empty entity list never matches; an empty alternation would match
	// everywhere instead.
	if len(entities) == 0 {
		return nil
	}
	return compile(entities).FindAllString(text, -1)
}

func countUnique(matches []string) int {
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		seen[match] = struct{}{}
	}
	return len(seen)
}
