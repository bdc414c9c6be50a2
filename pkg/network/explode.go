package network

import (
	"fmt"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/tag"
)

// Explode turns tagged paragraphs into one assignment per entity occurrence
// of the given kind. Rows whose presence flag for the kind is false are
// skipped. The context label is the row's topic when one is set, otherwise
// "title#num".
func Explode(rows []tag.TaggedParagraph, kind corpus.MentionKind) []Assignment {
	var assignments []Assignment

	for _, row := range rows {
		var present bool
		var entities []string
		switch kind {
		case corpus.MentionPerson:
			present, entities = row.OneOrMoreActors, row.Actors
		case corpus.MentionOrganization:
			present, entities = row.OneOrMoreOrganizations, row.Organizations
		}
		if !present {
			continue
		}

		context := ContextLabel(row)
		for _, entity := range entities {
			assignments = append(assignments, Assignment{Entity: entity, Context: context})
		}
	}

	return assignments
}

// ContextLabel names the co-occurrence context of a tagged paragraph.
func ContextLabel(row tag.TaggedParagraph) string {
	if row.Topic != nil && *row.Topic != "" {
		return *row.Topic
	}
	return fmt.Sprintf("%s#%d", row.Title, row.Num)
}
