package queue

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/polderlab/actornet/internal/storage"
	"github.com/polderlab/actornet/pkg/store"
	storecsv "github.com/polderlab/actornet/pkg/store/csv"
)

// putFileFunc uploads one object under the given key.
type putFileFunc func(ctx context.Context, key string, file io.ReadSeeker) error

// exportResults materializes the run tables as CSV and uploads them next
// to the run inputs, so the dashboard consumer can fetch them without a
// database connection.
func exportResults(ctx context.Context, put putFileFunc, runID string, result *store.RunResult) error {
	files := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{"paragraphs.csv", func(w io.Writer) error {
			return storecsv.WriteParagraphs(w, result.Paragraphs)
		}},
		{"actor_edges.csv", func(w io.Writer) error {
			return storecsv.WriteEdges(w, result.ActorEdges)
		}},
		{"organization_edges.csv", func(w io.Writer) error {
			return storecsv.WriteEdges(w, result.OrganizationEdges)
		}},
	}

	prefix := storage.ExportPrefix(runID)
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		if err := put(ctx, prefix+f.name, bytes.NewReader(buf.Bytes())); err != nil {
			return fmt.Errorf("upload %s%s: %w", prefix, f.name, err)
		}
	}

	return nil
}
