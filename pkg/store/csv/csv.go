// Package csv exports run output as flat files for the dashboard consumer.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

const listSeparator = ";"

// WriteParagraphs writes the tagged paragraph table with a header row.
// Match lists are joined with ";" in the occurrence order of the source.
func WriteParagraphs(w io.Writer, rows []tag.TaggedParagraph) error {
	cw := csv.NewWriter(w)

	header := []string{
		"document_title", "paragraph_number", "paragraph_text",
		"date_published", "topic_label", "organizations", "actors",
		"one_or_more_organizations", "one_or_more_actors", "both_org_act",
		"unique_organizations", "unique_actors",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Title,
			strconv.Itoa(row.Num),
			row.Text,
			deref(row.DatePublished),
			deref(row.Topic),
			strings.Join(row.Organizations, listSeparator),
			strings.Join(row.Actors, listSeparator),
			strconv.FormatBool(row.OneOrMoreOrganizations),
			strconv.FormatBool(row.OneOrMoreActors),
			strconv.FormatBool(row.BothOrgAct),
			strconv.Itoa(row.UniqueOrganizations),
			strconv.Itoa(row.UniqueActors),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteEdges writes one weighted edge table.
func WriteEdges(w io.Writer, edges []network.Edge) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"source", "target", "weight"}); err != nil {
		return err
	}
	for _, edge := range edges {
		record := []string{edge.Source, edge.Target, strconv.Itoa(edge.Weight)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportRun writes paragraphs.csv, actor_edges.csv and organization_edges.csv
// into dir, creating it if needed.
func ExportRun(dir string, result store.RunResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"paragraphs.csv", func(w io.Writer) error { return WriteParagraphs(w, result.Paragraphs) }},
		{"actor_edges.csv", func(w io.Writer) error { return WriteEdges(w, result.ActorEdges) }},
		{"organization_edges.csv", func(w io.Writer) error { return WriteEdges(w, result.OrganizationEdges) }},
	}

	for _, file := range files {
		if err := writeFile(filepath.Join(dir, file.name), file.write); err != nil {
			return fmt.Errorf("export %s: %w", file.name, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
