package corpus

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const documentsJSON = `[
	{
		"document_title": "Kamerdebat stikstof",
		"content": "De minister sprak. De Kamer luisterde.",
		"published": "2021-03-12",
		"sentences": [
			{
				"text": "De minister sprak.",
				"ner_tags": {
					"flair/ner-dutch-large": [
						{"ner_label": "PER", "text": "Jan Jansen"},
						{"ner_label": "ORG", "text": "RIVM"}
					]
				}
			},
			{
				"text": "De Kamer luisterde.",
				"ner_tags": {"flair/ner-dutch-large": []}
			}
		]
	}
]`

func TestLoadDocuments(t *testing.T) {
	docs, err := LoadDocuments(strings.NewReader(documentsJSON), "flair/ner-dutch-large")
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("LoadDocuments() returned %d documents, want 1", len(docs))
	}

	doc := docs[0]
	if doc.Title != "Kamerdebat stikstof" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Published != "2021-03-12" {
		t.Errorf("Published = %q", doc.Published)
	}
	if len(doc.Sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(doc.Sentences))
	}

	wantMentions := []Mention{
		{Kind: MentionPerson, Text: "Jan Jansen"},
		{Kind: MentionOrganization, Text: "RIVM"},
	}
	if !reflect.DeepEqual(doc.Sentences[0].Mentions, wantMentions) {
		t.Errorf("Sentences[0].Mentions = %#v, want %#v", doc.Sentences[0].Mentions, wantMentions)
	}
	if len(doc.Sentences[1].Mentions) != 0 {
		t.Errorf("Sentences[1].Mentions = %#v, want none", doc.Sentences[1].Mentions)
	}
}

func TestLoadDocumentsMergesTaggersDeterministically(t *testing.T) {
	input := `[
		{
			"document_title": "t",
			"content": "c",
			"sentences": [
				{
					"text": "s",
					"ner_tags": {
						"tagger-b": [{"ner_label": "ORG", "text": "B"}],
						"tagger-a": [{"ner_label": "ORG", "text": "A"}]
					}
				}
			]
		}
	]`

	docs, err := LoadDocuments(strings.NewReader(input), "")
	if err != nil {
		t.Fatalf("LoadDocuments() error = %v", err)
	}

	got := docs[0].Sentences[0].Mentions
	want := []Mention{
		{Kind: MentionOrganization, Text: "A"},
		{Kind: MentionOrganization, Text: "B"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merged mentions = %#v, want %#v", got, want)
	}
}

func TestLoadDocumentsMissingTitleIsFatal(t *testing.T) {
	input := `[{"content": "text without a title"}]`

	_, err := LoadDocuments(strings.NewReader(input), "")
	var malformedErr *MalformedInputError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("LoadDocuments() error = %v, want MalformedInputError", err)
	}
	if malformedErr.Stage != "documents" {
		t.Errorf("Stage = %q, want %q", malformedErr.Stage, "documents")
	}
	if malformedErr.Field != "title" {
		t.Errorf("Field = %q, want %q", malformedErr.Field, "title")
	}
}

func TestLoadOrganizations(t *testing.T) {
	input := `[
		{"attributes": {"general": {"name": "Rijksinstituut voor Volksgezondheid en Milieu", "abbreviation": "RIVM"}}},
		{"attributes": {"general": {"name": "Tweede Kamer"}}}
	]`

	orgs, err := LoadOrganizations(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadOrganizations() error = %v", err)
	}

	want := []OrganizationRecord{
		{Name: "Rijksinstituut voor Volksgezondheid en Milieu", Abbreviation: "RIVM"},
		{Name: "Tweede Kamer"},
	}
	if !reflect.DeepEqual(orgs, want) {
		t.Errorf("LoadOrganizations() = %#v, want %#v", orgs, want)
	}
}

func TestLoadOrganizationsMissingNameIsFatal(t *testing.T) {
	input := `[
		{"attributes": {"general": {"name": "Tweede Kamer"}}},
		{"attributes": {"general": {"abbreviation": "RIVM"}}}
	]`

	_, err := LoadOrganizations(strings.NewReader(input))
	var malformedErr *MalformedInputError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("LoadOrganizations() error = %v, want MalformedInputError", err)
	}
	if malformedErr.Stage != "registry" {
		t.Errorf("Stage = %q, want %q", malformedErr.Stage, "registry")
	}
	if malformedErr.Record != "#1" {
		t.Errorf("Record = %q, want %q", malformedErr.Record, "#1")
	}
}

func TestPublishedDates(t *testing.T) {
	docs := []Document{
		{Title: "a", Published: "2020-01-01"},
		{Title: "b", Published: "2020-02-01"},
	}

	dates := PublishedDates(docs)
	if dates["a"] != "2020-01-01" || dates["b"] != "2020-02-01" {
		t.Errorf("PublishedDates() = %#v", dates)
	}
}
