package queue

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/segment"
	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

type capturedUpload struct {
	key  string
	body string
}

func captureUploads(captured *[]capturedUpload) putFileFunc {
	return func(ctx context.Context, key string, file io.ReadSeeker) error {
		body, err := io.ReadAll(file)
		if err != nil {
			return err
		}
		*captured = append(*captured, capturedUpload{key: key, body: string(body)})
		return nil
	}
}

func TestExportResults(t *testing.T) {
	result := &store.RunResult{
		Paragraphs: []tag.TaggedParagraph{
			{
				Paragraph:       segment.Paragraph{Title: "Handelingen", Num: 1, Text: "Jansen sprak."},
				Actors:          []string{"Jansen"},
				OneOrMoreActors: true,
				UniqueActors:    1,
			},
		},
		ActorEdges: []network.Edge{
			{Source: "Jansen", Target: "de Vries", Weight: 1},
		},
	}

	var captured []capturedUpload
	if err := exportResults(context.Background(), captureUploads(&captured), "run42", result); err != nil {
		t.Fatalf("exportResults() error = %v", err)
	}

	wantKeys := []string{
		"exports/run42/paragraphs.csv",
		"exports/run42/actor_edges.csv",
		"exports/run42/organization_edges.csv",
	}
	var gotKeys []string
	for _, up := range captured {
		gotKeys = append(gotKeys, up.key)
	}
	if !reflect.DeepEqual(gotKeys, wantKeys) {
		t.Fatalf("uploaded keys = %v, want %v", gotKeys, wantKeys)
	}

	if !strings.HasPrefix(captured[0].body, "document_title,paragraph_number,paragraph_text") {
		t.Errorf("paragraphs.csv missing header, got %q", captured[0].body)
	}
	if !strings.Contains(captured[0].body, "Jansen sprak.") {
		t.Errorf("paragraphs.csv missing paragraph row, got %q", captured[0].body)
	}
	if !strings.Contains(captured[1].body, "Jansen,de Vries,1") {
		t.Errorf("actor_edges.csv missing edge row, got %q", captured[1].body)
	}
}

func TestExportResultsUploadFailureAborts(t *testing.T) {
	uploadErr := errors.New("bucket unavailable")
	calls := 0
	put := func(ctx context.Context, key string, file io.ReadSeeker) error {
		calls++
		return uploadErr
	}

	err := exportResults(context.Background(), put, "run42", &store.RunResult{})
	if !errors.Is(err, uploadErr) {
		t.Fatalf("exportResults() error = %v, want wrapped %v", err, uploadErr)
	}
	if calls != 1 {
		t.Fatalf("upload attempts = %d, want 1 (stop on first failure)", calls)
	}
}
