package registry

import (
	"strconv"

	"github.com/polderlab/actornet/pkg/corpus"
)

// Registry is the canonical organization index. It is built once per run
// and shared read-only across all resolution workers.
//
// Names and Abbreviations keep source order and are not deduplicated;
// the byName map keeps the last record seen for a repeated name, while
// order preserves first-seen insertion order for abbreviation lookups.
type Registry struct {
	Names         []string
	Abbreviations []string

	byName map[string]corpus.OrganizationRecord
	order  []string
}

// Build constructs a Registry from the loaded organization records.
// A record with an empty name is a malformed-input error for the whole
// build; no partial registry is returned.
func Build(records []corpus.OrganizationRecord) (*Registry, error) {
	reg := &Registry{
		Names:         make([]string, 0, len(records)),
		Abbreviations: make([]string, 0, len(records)),
		byName:        make(map[string]corpus.OrganizationRecord, len(records)),
		order:         make([]string, 0, len(records)),
	}

	for i, record := range records {
		if record.Name == "" {
			return nil, &corpus.MalformedInputError{
				Stage:  "registry",
				Record: recordLabel(record, i),
				Field:  "name",
			}
		}

		reg.Names = append(reg.Names, record.Name)
		if record.Abbreviation != "" {
			reg.Abbreviations = append(reg.Abbreviations, record.Abbreviation)
		}

		if _, seen := reg.byName[record.Name]; !seen {
			reg.order = append(reg.order, record.Name)
		}
		reg.byName[record.Name] = record
	}

	return reg, nil
}

// Lookup returns the full record for a canonical name.
func (r *Registry) Lookup(name string) (corpus.OrganizationRecord, bool) {
	record, ok := r.byName[name]
	return record, ok
}

// ResolveAbbreviation scans the registry in insertion order and returns
// the canonical name of the first record whose abbreviation equals
// abbrev. The ordering matters when abbreviations collide across
// records: the earliest record wins.
func (r *Registry) ResolveAbbreviation(abbrev string) (string, bool) {
	for _, name := range r.order {
		record := r.byName[name]
		if record.Abbreviation != "" && record.Abbreviation == abbrev {
			return record.Name, true
		}
	}
	return "", false
}

func recordLabel(record corpus.OrganizationRecord, index int) string {
	if record.Abbreviation != "" {
		return record.Abbreviation
	}
	return "#" + strconv.Itoa(index)
}
