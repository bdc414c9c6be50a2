package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// surnameColumn is the column of the reference CSV that carries the
// surname in its natural form ("de Vries", not "Vries, de").
const surnameColumn = "natural name"

// defaultExclusions are reference-list entries that in practice are
// titles or pronouns mistagged as names. A surname on this list is never
// accepted even when the reference list contains it.
var defaultExclusions = []string{"I", "Minister", "O", "Ve", "An", "Commissaris"}

// Surnames is the person reference list: the set of surnames accepted as
// resolved persons, minus a small exclusion list of known false
// positives. Read-only after construction.
type Surnames struct {
	accepted map[string]struct{}
	excluded map[string]struct{}
}

// LoadSurnames reads the surname reference CSV. The file must have a
// header row containing the "natural name" column; a missing column is a
// malformed-input error.
func LoadSurnames(r io.Reader) (*Surnames, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("surnames: failed to read header: %w", err)
	}

	column := -1
	for i, field := range header {
		if strings.TrimSpace(field) == surnameColumn {
			column = i
			break
		}
	}
	if column == -1 {
		return nil, fmt.Errorf("surnames: reference list has no %q column", surnameColumn)
	}

	s := NewSurnames(nil)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("surnames: failed to read row: %w", err)
		}
		if column >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[column])
		if name != "" {
			s.accepted[name] = struct{}{}
		}
	}

	return s, nil
}

// NewSurnames builds a reference list from an explicit slice, using the
// default exclusion list. Used by tests and callers that do not read the
// CSV reference file.
func NewSurnames(names []string) *Surnames {
	s := &Surnames{
		accepted: make(map[string]struct{}, len(names)),
		excluded: make(map[string]struct{}, len(defaultExclusions)),
	}
	for _, name := range names {
		s.accepted[name] = struct{}{}
	}
	for _, name := range defaultExclusions {
		s.excluded[name] = struct{}{}
	}
	return s
}

// Exclude adds additional false-positive entries for this run.
func (s *Surnames) Exclude(names ...string) {
	for _, name := range names {
		s.excluded[name] = struct{}{}
	}
}

// Accepts reports whether surname is in the reference list and not on
// the exclusion list.
func (s *Surnames) Accepts(surname string) bool {
	if _, excluded := s.excluded[surname]; excluded {
		return false
	}
	_, ok := s.accepted[surname]
	return ok
}
