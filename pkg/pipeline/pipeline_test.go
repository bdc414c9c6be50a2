package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/registry"
	"github.com/polderlab/actornet/pkg/store/base"
)

type fixedScorer struct {
	score float64
}

func (s fixedScorer) Score(ctx context.Context, a, b string) (float64, error) {
	return s.score, nil
}

func testDocuments() []corpus.Document {
	return []corpus.Document{
		{
			Title:     "Handelingen 2024-01",
			Published: "2024-01-15",
			Content:   "Jansen vroeg de Tweede Kamer om uitstel. De Tweede Kamer weigerde.",
			Sentences: []corpus.Sentence{
				{
					Text: "Jansen vroeg de Tweede Kamer om uitstel.",
					Mentions: []corpus.Mention{
						{Kind: corpus.MentionPerson, Text: "Piet Jansen"},
						{Kind: corpus.MentionOrganization, Text: "Tweede Kamer"},
					},
				},
			},
		},
		{
			Title:     "Handelingen 2024-02",
			Published: "2024-02-01",
			Content:   "Samen spraken de Vries en Jansen.",
			Sentences: []corpus.Sentence{
				{
					Text: "Samen spraken de Vries en Jansen.",
					Mentions: []corpus.Mention{
						{Kind: corpus.MentionPerson, Text: "Anna de Vries"},
						{Kind: corpus.MentionPerson, Text: "Piet Jansen"},
					},
				},
			},
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	reg, err := registry.Build([]corpus.OrganizationRecord{
		{Name: "Tweede Kamer", Abbreviation: "TK"},
	})
	if err != nil {
		t.Fatalf("registry.Build() error = %v", err)
	}
	surnames := registry.NewSurnames([]string{"Jansen", "de Vries"})

	storage := base.NewMemoryStorage()
	client := NewClient(NewClientParams{ParallelDocuments: 2, ParallelParagraphs: 4})

	result, err := client.Run(context.Background(), RunParams{
		RunID:     "run-test",
		Documents: testDocuments(),
		Registry:  reg,
		Surnames:  surnames,
		Scorer:    fixedScorer{score: 0.9},
		Storage:   storage,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// One merged paragraph per document at constant high similarity.
	if len(result.Paragraphs) != 2 {
		t.Fatalf("Run() produced %d paragraphs, want 2: %#v", len(result.Paragraphs), result.Paragraphs)
	}

	first := result.Paragraphs[0]
	if first.Title != "Handelingen 2024-01" || first.Num != 1 {
		t.Errorf("first paragraph identity = (%q, %d), want (Handelingen 2024-01, 1)", first.Title, first.Num)
	}
	if !first.BothOrgAct {
		t.Errorf("first paragraph BothOrgAct = false, want true: %#v", first)
	}
	if first.DatePublished == nil || *first.DatePublished != "2024-01-15" {
		t.Errorf("first paragraph DatePublished = %v, want 2024-01-15", first.DatePublished)
	}

	second := result.Paragraphs[1]
	if !reflect.DeepEqual(second.Actors, []string{"de Vries", "Jansen"}) {
		t.Errorf("second paragraph Actors = %#v, want [de Vries Jansen]", second.Actors)
	}

	wantActorEdges := []network.Edge{
		{Source: "Jansen", Target: "de Vries", Weight: 1},
	}
	if !reflect.DeepEqual(result.ActorEdges, wantActorEdges) {
		t.Errorf("ActorEdges = %#v, want %#v", result.ActorEdges, wantActorEdges)
	}

	stored, err := storage.GetParagraphs(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("GetParagraphs() error = %v", err)
	}
	if !reflect.DeepEqual(stored, result.Paragraphs) {
		t.Errorf("stored paragraphs differ from returned result")
	}
}

func TestRunWithoutStorage(t *testing.T) {
	reg, err := registry.Build(nil)
	if err != nil {
		t.Fatalf("registry.Build() error = %v", err)
	}

	client := NewClient(NewClientParams{})
	result, err := client.Run(context.Background(), RunParams{
		RunID:     "ephemeral",
		Documents: nil,
		Registry:  reg,
		Surnames:  registry.NewSurnames(nil),
		Scorer:    fixedScorer{score: 1},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Paragraphs) != 0 {
		t.Errorf("Run() with no documents produced %d paragraphs", len(result.Paragraphs))
	}
}
