package base

import (
	"context"
	"reflect"
	"testing"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/segment"
	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	result := store.RunResult{
		Paragraphs: []tag.TaggedParagraph{
			{Paragraph: segment.Paragraph{Title: "doc", Num: 1, Text: "tekst"}},
		},
		ActorEdges: []network.Edge{
			{Source: "Jansen", Target: "de Vries", Weight: 1},
		},
		OrganizationEdges: []network.Edge{
			{Source: "Tweede Kamer", Target: "Eerste Kamer", Weight: 1},
		},
	}

	if err := s.SaveRun(ctx, "run-1", result); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	paragraphs, err := s.GetParagraphs(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetParagraphs() error = %v", err)
	}
	if !reflect.DeepEqual(paragraphs, result.Paragraphs) {
		t.Errorf("GetParagraphs() = %#v, want %#v", paragraphs, result.Paragraphs)
	}

	actorEdges, err := s.GetEdges(ctx, "run-1", corpus.MentionPerson)
	if err != nil {
		t.Fatalf("GetEdges(person) error = %v", err)
	}
	if !reflect.DeepEqual(actorEdges, result.ActorEdges) {
		t.Errorf("GetEdges(person) = %#v, want %#v", actorEdges, result.ActorEdges)
	}

	orgEdges, err := s.GetEdges(ctx, "run-1", corpus.MentionOrganization)
	if err != nil {
		t.Fatalf("GetEdges(organization) error = %v", err)
	}
	if !reflect.DeepEqual(orgEdges, result.OrganizationEdges) {
		t.Errorf("GetEdges(organization) = %#v, want %#v", orgEdges, result.OrganizationEdges)
	}
}

func TestGetUnknownRun(t *testing.T) {
	s := NewMemoryStorage()
	if _, err := s.GetParagraphs(context.Background(), "missing"); err == nil {
		t.Fatal("GetParagraphs() error = nil, want unknown run error")
	}
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	if err := s.SaveRun(ctx, "run-1", store.RunResult{}); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := s.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	if _, err := s.GetParagraphs(ctx, "run-1"); err == nil {
		t.Fatal("GetParagraphs() error = nil after delete, want unknown run error")
	}
}

func TestSearchParagraphsRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	result := store.RunResult{
		Paragraphs: []tag.TaggedParagraph{
			{Paragraph: segment.Paragraph{Title: "doc", Num: 1, Text: "over visserij"}},
			{Paragraph: segment.Paragraph{Title: "doc", Num: 2, Text: "over begroting"}},
		},
	}
	if err := s.SaveRun(ctx, "run-1", result); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	embeddings := []store.ParagraphEmbedding{
		{Title: "doc", Num: 1, Embedding: []float32{0, 1}},
		{Title: "doc", Num: 2, Embedding: []float32{1, 0}},
	}
	if err := s.SaveParagraphEmbeddings(ctx, "run-1", embeddings); err != nil {
		t.Fatalf("SaveParagraphEmbeddings() error = %v", err)
	}

	got, err := s.SearchParagraphs(ctx, "run-1", []float32{1, 0.1}, 1)
	if err != nil {
		t.Fatalf("SearchParagraphs() error = %v", err)
	}
	if len(got) != 1 || got[0].Num != 2 {
		t.Errorf("SearchParagraphs() = %#v, want paragraph 2 first", got)
	}
}
