package resolve

import (
	"context"
	"reflect"
	"testing"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/registry"
)

func testRegistry(t *testing.T, records ...corpus.OrganizationRecord) *registry.Registry {
	t.Helper()
	reg, err := registry.Build(records)
	if err != nil {
		t.Fatalf("registry.Build() error = %v", err)
	}
	return reg
}

func docWithMentions(mentions ...corpus.Mention) corpus.Document {
	return corpus.Document{
		Title:   "test",
		Content: "irrelevant",
		Sentences: []corpus.Sentence{
			{Text: "irrelevant", Mentions: mentions},
		},
	}
}

func TestExtractSurname(t *testing.T) {
	tests := []struct {
		name    string
		mention string
		want    string
	}{
		{
			name:    "single token is kept as is",
			mention: "Vries",
			want:    "Vries",
		},
		{
			name:    "surname particle stays attached",
			mention: "Jan de Vries",
			want:    "de Vries",
		},
		{
			name:    "two tokens",
			mention: "Piet Jansen",
			want:    "Jansen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSurname(tt.mention)
			if got != tt.want {
				t.Errorf("ExtractSurname(%q) = %q, want %q", tt.mention, got, tt.want)
			}
		})
	}
}

func TestResolveOrganizationNameMatchPrecedesAbbreviation(t *testing.T) {
	// "WHO" is both a canonical name and another record's abbreviation;
	// the name match must win.
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "WHO", Abbreviation: "W.H.O."},
		corpus.OrganizationRecord{Name: "World Harmonica Orchestra", Abbreviation: "WHO"},
	)
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "WHO"},
	))

	want := []string{"WHO"}
	if !reflect.DeepEqual(set.Organizations, want) {
		t.Errorf("Organizations = %#v, want %#v", set.Organizations, want)
	}
}

func TestResolveOrganizationAbbreviationMatch(t *testing.T) {
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "WHO", Abbreviation: "W.H.O."},
	)
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "W.H.O."},
	))

	want := []string{"WHO"}
	if !reflect.DeepEqual(set.Organizations, want) {
		t.Errorf("Organizations = %#v, want %#v", set.Organizations, want)
	}
}

func TestResolveOrganizationRegexMetacharactersAreLiterals(t *testing.T) {
	// The dotted abbreviation must not match "WAHBOC" via ".-as-wildcard".
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "World Health Organization", Abbreviation: "W.H.O."},
	)
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "WAHBOC"},
	))

	if len(set.Organizations) != 0 {
		t.Errorf("Organizations = %#v, want none", set.Organizations)
	}
}

func TestResolveOrganizationNoisySpanBoundary(t *testing.T) {
	// Span includes a trailing word the registry entry lacks; the
	// canonical name inside the mention still resolves.
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "Tweede Kamer"},
	)
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "Tweede Kamer fractie"},
	))

	want := []string{"Tweede Kamer"}
	if !reflect.DeepEqual(set.Organizations, want) {
		t.Errorf("Organizations = %#v, want %#v", set.Organizations, want)
	}
}

func TestResolveOrganizationLongestNameWins(t *testing.T) {
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "Kamer"},
		corpus.OrganizationRecord{Name: "Tweede Kamer"},
	)
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "Tweede Kamer"},
	))

	want := []string{"Tweede Kamer"}
	if !reflect.DeepEqual(set.Organizations, want) {
		t.Errorf("Organizations = %#v, want %#v", set.Organizations, want)
	}
}

func TestResolveOrganizationBlocklist(t *testing.T) {
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "Tweede Kamer"},
	)
	r := NewResolver(NewResolverParams{
		Registry:              reg,
		Surnames:              registry.NewSurnames(nil),
		OrganizationBlocklist: []string{"Tweede Kamer"},
	})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "Tweede Kamer"},
	))

	if len(set.Organizations) != 0 {
		t.Errorf("Organizations = %#v, want none", set.Organizations)
	}
}

func TestResolveOrganizationUnknownMentionDropped(t *testing.T) {
	reg := testRegistry(t,
		corpus.OrganizationRecord{Name: "Tweede Kamer"},
	)
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionOrganization, Text: "Onbekende Club"},
	))

	if len(set.Organizations) != 0 {
		t.Errorf("Organizations = %#v, want none", set.Organizations)
	}
}

func TestResolvePerson(t *testing.T) {
	reg := testRegistry(t)
	surnames := registry.NewSurnames([]string{"de Vries", "Jansen", "Minister"})
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: surnames})

	set := r.ResolveDocument(docWithMentions(
		corpus.Mention{Kind: corpus.MentionPerson, Text: "Jan de Vries"},
		corpus.Mention{Kind: corpus.MentionPerson, Text: "Piet Jansen"},
		corpus.Mention{Kind: corpus.MentionPerson, Text: "Jansen"},
		// In the reference list but excluded as a known false positive.
		corpus.Mention{Kind: corpus.MentionPerson, Text: "De Minister"},
		// Not in the reference list.
		corpus.Mention{Kind: corpus.MentionPerson, Text: "Karel Bakker"},
	))

	want := []string{"de Vries", "Jansen"}
	if !reflect.DeepEqual(set.Persons, want) {
		t.Errorf("Persons = %#v, want %#v", set.Persons, want)
	}
}

func TestResolveDocumentDeduplicates(t *testing.T) {
	reg := testRegistry(t, corpus.OrganizationRecord{Name: "Tweede Kamer"})
	surnames := registry.NewSurnames([]string{"Jansen"})
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: surnames})

	doc := corpus.Document{
		Title:   "dupes",
		Content: "irrelevant",
		Sentences: []corpus.Sentence{
			{Mentions: []corpus.Mention{
				{Kind: corpus.MentionOrganization, Text: "Tweede Kamer"},
				{Kind: corpus.MentionPerson, Text: "Piet Jansen"},
			}},
			{Mentions: []corpus.Mention{
				{Kind: corpus.MentionOrganization, Text: "Tweede Kamer"},
				{Kind: corpus.MentionPerson, Text: "Jansen"},
			}},
		},
	}

	set := r.ResolveDocument(doc)
	if !reflect.DeepEqual(set.Organizations, []string{"Tweede Kamer"}) {
		t.Errorf("Organizations = %#v", set.Organizations)
	}
	if !reflect.DeepEqual(set.Persons, []string{"Jansen"}) {
		t.Errorf("Persons = %#v", set.Persons)
	}
}

func TestResolveDocumentEmptyDocument(t *testing.T) {
	reg := testRegistry(t, corpus.OrganizationRecord{Name: "Tweede Kamer"})
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: registry.NewSurnames(nil)})

	set := r.ResolveDocument(corpus.Document{Title: "empty", Content: "x"})
	if len(set.Persons) != 0 || len(set.Organizations) != 0 {
		t.Errorf("ResolveDocument(empty) = %#v, want empty sets", set)
	}
}

func TestResolveAll(t *testing.T) {
	reg := testRegistry(t, corpus.OrganizationRecord{Name: "Tweede Kamer"})
	surnames := registry.NewSurnames([]string{"Jansen"})
	r := NewResolver(NewResolverParams{Registry: reg, Surnames: surnames})

	docs := []corpus.Document{
		{
			Title:   "a",
			Content: "x",
			Sentences: []corpus.Sentence{
				{Mentions: []corpus.Mention{{Kind: corpus.MentionOrganization, Text: "Tweede Kamer"}}},
			},
		},
		{
			Title:   "b",
			Content: "x",
			Sentences: []corpus.Sentence{
				{Mentions: []corpus.Mention{{Kind: corpus.MentionPerson, Text: "Piet Jansen"}}},
			},
		},
	}

	sets, err := r.ResolveAll(context.Background(), docs, 4)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}

	if len(sets) != 2 {
		t.Fatalf("ResolveAll() returned %d sets, want 2", len(sets))
	}
	if !reflect.DeepEqual(sets["a"].Organizations, []string{"Tweede Kamer"}) {
		t.Errorf("sets[a].Organizations = %#v", sets["a"].Organizations)
	}
	if !reflect.DeepEqual(sets["b"].Persons, []string{"Jansen"}) {
		t.Errorf("sets[b].Persons = %#v", sets["b"].Persons)
	}
}
