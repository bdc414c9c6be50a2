package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator"
)

var validate = validator.New()

type documentRecord struct {
	Title     string           `json:"document_title"`
	Content   string           `json:"content"`
	Published string           `json:"published"`
	Sentences []sentenceRecord `json:"sentences"`
}

type sentenceRecord struct {
	Text string `json:"text"`
	// Spans are keyed by the tagger model that produced them, e.g.
	// "flair/ner-dutch-large". A document may carry output of several
	// taggers side by side.
	NERTags map[string][]Mention `json:"ner_tags"`
}

// LoadDocuments decodes a JSON array of tagged documents from r,
// streaming record by record. taggerModel selects which tagger's spans
// to attach; when empty, spans of all taggers are merged in sorted model
// order so the result is deterministic.
//
// A record without a document_title or content fails the whole load with
// a MalformedInputError.
func LoadDocuments(r io.Reader, taggerModel string) ([]Document, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}

	docs := make([]Document, 0)
	for dec.More() {
		var rec documentRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("documents: failed to decode record %d: %w", len(docs), err)
		}

		doc := Document{
			Title:     rec.Title,
			Content:   rec.Content,
			Published: rec.Published,
			Sentences: make([]Sentence, 0, len(rec.Sentences)),
		}
		for _, sent := range rec.Sentences {
			doc.Sentences = append(doc.Sentences, Sentence{
				Text:     sent.Text,
				Mentions: flattenSpans(sent.NERTags, taggerModel),
			})
		}

		if err := validate.Struct(doc); err != nil {
			return nil, malformed("documents", recordLabel(rec.Title, len(docs)), err)
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

type organizationRecord struct {
	Attributes struct {
		General OrganizationRecord `json:"general"`
	} `json:"attributes"`
}

// LoadOrganizations decodes the organization registry source: a JSON
// array of records with the name and abbreviation fields nested under
// attributes.general. A record without a name fails the whole load.
func LoadOrganizations(r io.Reader) ([]OrganizationRecord, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '['); err != nil {
		return nil, fmt.Errorf("organizations: %w", err)
	}

	orgs := make([]OrganizationRecord, 0)
	for dec.More() {
		var rec organizationRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("organizations: failed to decode record %d: %w", len(orgs), err)
		}

		org := rec.Attributes.General
		if err := validate.Struct(org); err != nil {
			return nil, malformed("registry", recordLabel(org.Name, len(orgs)), err)
		}

		orgs = append(orgs, org)
	}

	return orgs, nil
}

// PublishedDates builds the title to publication date lookup used when
// tagging paragraphs. Later duplicates of a title overwrite earlier ones.
func PublishedDates(docs []Document) map[string]string {
	dates := make(map[string]string, len(docs))
	for _, doc := range docs {
		dates[doc.Title] = doc.Published
	}
	return dates
}

func flattenSpans(tags map[string][]Mention, taggerModel string) []Mention {
	if taggerModel != "" {
		return tags[taggerModel]
	}

	models := make([]string, 0, len(tags))
	for model := range tags {
		models = append(models, model)
	}
	sort.Strings(models)

	var mentions []Mention
	for _, model := range models {
		mentions = append(mentions, tags[model]...)
	}
	return mentions
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func recordLabel(key string, index int) string {
	if key != "" {
		return key
	}
	return fmt.Sprintf("#%d", index)
}

func malformed(stage, record string, err error) error {
	field := ""
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field = strings.ToLower(verrs[0].Field())
	}
	return &MalformedInputError{Stage: stage, Record: record, Field: field}
}
