package corpus

import "fmt"

// MentionKind distinguishes the two span labels produced by the external
// NER tagger. Resolution is dispatched on this tag.
type MentionKind string

const (
	MentionPerson       MentionKind = "PER"
	MentionOrganization MentionKind = "ORG"
)

// Mention is a single NER span: the literal text the tagger marked and
// its label. Mentions are consumed as given; the tagger itself is an
// external collaborator.
type Mention struct {
	Kind MentionKind `json:"ner_label"`
	Text string      `json:"text"`
}

// Sentence is one tagged sentence of a document, carrying its text and
// the ordered NER spans found in it.
type Sentence struct {
	Text     string
	Mentions []Mention
}

// Document is one ingested document. Title is the unique key used for
// all joins downstream. Content is the raw text the segmenter splits;
// Sentences carry the tagger output the resolver scans.
type Document struct {
	Title     string `validate:"required"`
	Content   string `validate:"required"`
	Published string
	Sentences []Sentence
}

// OrganizationRecord is one entry of the canonical organization
// registry. Name is the canonical identity; Abbreviation is optional
// (empty means the record has none).
type OrganizationRecord struct {
	Name         string `json:"name" validate:"required"`
	Abbreviation string `json:"abbreviation"`
}

// MalformedInputError reports a required field absent from an input
// record. It is fatal for the whole batch: partial registries or corpora
// would silently corrupt every downstream join.
type MalformedInputError struct {
	Stage  string
	Record string
	Field  string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input in stage %s: record %q is missing field %q", e.Stage, e.Record, e.Field)
}
