package tag

import (
	"context"
	"reflect"
	"testing"

	"github.com/polderlab/actornet/pkg/resolve"
	"github.com/polderlab/actornet/pkg/segment"
)

func TestTagParagraph(t *testing.T) {
	date := "2024-03-12"

	tests := []struct {
		name      string
		entities  map[string]resolve.EntitySet
		published map[string]string
		paragraph segment.Paragraph
		want      TaggedParagraph
	}{
		{
			name: "actor without organizations",
			entities: map[string]resolve.EntitySet{
				"doc": {Persons: []string{"Jansen"}},
			},
			published: map[string]string{"doc": date},
			paragraph: segment.Paragraph{Title: "doc", Num: 1, Text: "Jansen sprak met de minister"},
			want: TaggedParagraph{
				Paragraph:       segment.Paragraph{Title: "doc", Num: 1, Text: "Jansen sprak met de minister"},
				DatePublished:   &date,
				Actors:          []string{"Jansen"},
				OneOrMoreActors: true,
				UniqueActors:    1,
			},
		},
		{
			name: "duplicate mentions are retained",
			entities: map[string]resolve.EntitySet{
				"doc": {
					Persons:       []string{"Jansen"},
					Organizations: []string{"Tweede Kamer"},
				},
			},
			published: map[string]string{"doc": date},
			paragraph: segment.Paragraph{
				Title: "doc",
				Num:   2,
				Text:  "Jansen vroeg de Tweede Kamer om uitstel. Jansen kreeg het niet.",
			},
			want: TaggedParagraph{
				Paragraph: segment.Paragraph{
					Title: "doc",
					Num:   2,
					Text:  "Jansen vroeg de Tweede Kamer om uitstel. Jansen kreeg het niet.",
				},
				DatePublished:          &date,
				Organizations:          []string{"Tweede Kamer"},
				Actors:                 []string{"Jansen", "Jansen"},
				OneOrMoreOrganizations: true,
				OneOrMoreActors:        true,
				BothOrgAct:             true,
				UniqueOrganizations:    1,
				UniqueActors:           1,
			},
		},
		{
			name:      "empty entity sets never match",
			entities:  map[string]resolve.EntitySet{},
			published: map[string]string{"doc": date},
			paragraph: segment.Paragraph{Title: "doc", Num: 3, Text: "De vergadering is gesloten."},
			want: TaggedParagraph{
				Paragraph:     segment.Paragraph{Title: "doc", Num: 3, Text: "De vergadering is gesloten."},
				DatePublished: &date,
			},
		},
		{
			name: "missing publication date stays nil",
			entities: map[string]resolve.EntitySet{
				"doc": {Persons: []string{"Jansen"}},
			},
			published: map[string]string{},
			paragraph: segment.Paragraph{Title: "doc", Num: 1, Text: "Jansen was afwezig."},
			want: TaggedParagraph{
				Paragraph:       segment.Paragraph{Title: "doc", Num: 1, Text: "Jansen was afwezig."},
				Actors:          []string{"Jansen"},
				OneOrMoreActors: true,
				UniqueActors:    1,
			},
		},
		{
			name: "longest entity wins on overlap",
			entities: map[string]resolve.EntitySet{
				"doc": {Organizations: []string{"Kamer", "Tweede Kamer"}},
			},
			published: map[string]string{"doc": date},
			paragraph: segment.Paragraph{Title: "doc", Num: 1, Text: "De Tweede Kamer stemde in."},
			want: TaggedParagraph{
				Paragraph:              segment.Paragraph{Title: "doc", Num: 1, Text: "De Tweede Kamer stemde in."},
				DatePublished:          &date,
				Organizations:          []string{"Tweede Kamer"},
				OneOrMoreOrganizations: true,
				UniqueOrganizations:    1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagger := NewTagger(NewTaggerParams{
				Entities:  tt.entities,
				Published: tt.published,
			})
			got := tagger.TagParagraph(tt.paragraph)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagParagraph() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTagParagraphMetacharactersAreLiteral(t *testing.T) {
	tagger := NewTagger(NewTaggerParams{
		Entities: map[string]resolve.EntitySet{
			"doc": {Organizations: []string{"W.H.O."}},
		},
	})

	got := tagger.TagParagraph(segment.Paragraph{
		Title: "doc",
		Num:   1,
		Text:  "De WxHyOz deed niets, de W.H.O. wel.",
	})

	want := []string{"W.H.O."}
	if !reflect.DeepEqual(got.Organizations, want) {
		t.Errorf("Organizations = %#v, want %#v", got.Organizations, want)
	}
}

func TestTagAllKeepsParagraphOrder(t *testing.T) {
	tagger := NewTagger(NewTaggerParams{
		Entities: map[string]resolve.EntitySet{
			"doc": {Persons: []string{"Jansen"}},
		},
	})

	paragraphs := []segment.Paragraph{
		{Title: "doc", Num: 1, Text: "Jansen opent."},
		{Title: "doc", Num: 2, Text: "Niemand reageert."},
		{Title: "doc", Num: 3, Text: "Jansen sluit."},
	}

	got, err := tagger.TagAll(context.Background(), paragraphs, 4)
	if err != nil {
		t.Fatalf("TagAll() error = %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("TagAll() returned %d rows, want 3", len(got))
	}
	for i, row := range got {
		if row.Num != paragraphs[i].Num {
			t.Errorf("row %d has Num %d, want %d", i, row.Num, paragraphs[i].Num)
		}
	}
	if !got[0].OneOrMoreActors || got[1].OneOrMoreActors || !got[2].OneOrMoreActors {
		t.Errorf("presence flags = [%v %v %v], want [true false true]",
			got[0].OneOrMoreActors, got[1].OneOrMoreActors, got[2].OneOrMoreActors)
	}
}
