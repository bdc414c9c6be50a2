package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polderlab/actornet/internal/runlock"
	"github.com/polderlab/actornet/internal/storage"
	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/ai"
	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/pipeline"
	"github.com/polderlab/actornet/pkg/registry"
	"github.com/polderlab/actornet/pkg/store"
	pgxstore "github.com/polderlab/actornet/pkg/store/pgx"
)

// RunJobMsg describes one queued pipeline run. The keys point at corpus
// inputs in the S3 bucket.
type RunJobMsg struct {
	RunID                 string   `json:"run_id"`
	DocumentsKey          string   `json:"documents_key"`
	OrganizationsKey      string   `json:"organizations_key"`
	SurnamesKey           string   `json:"surnames_key"`
	TaggerModel           string   `json:"tagger_model,omitempty"`
	OrganizationBlocklist []string `json:"organization_blocklist,omitempty"`
}

// ProcessRun executes one queued run end to end: fetch inputs, run the
// pipeline, persist the tables, and index paragraph embeddings.
func ProcessRun(
	ctx context.Context,
	s3Client *s3.Client,
	scorer ai.SimilarityScorer,
	embedder ai.EmbeddingClient,
	pgConn *pgxpool.Pool,
	msgBody string,
) error {
	var msg RunJobMsg
	if err := json.Unmarshal([]byte(msgBody), &msg); err != nil {
		return fmt.Errorf("unmarshal run message: %w", err)
	}
	if msg.RunID == "" {
		return fmt.Errorf("run message without run_id")
	}

	locks := runlock.New(pgConn)
	return locks.WithLease(ctx, msg.RunID, func(ctx context.Context) error {
		return processRun(ctx, s3Client, scorer, embedder, pgConn, msg)
	})
}

func processRun(
	ctx context.Context,
	s3Client *s3.Client,
	scorer ai.SimilarityScorer,
	embedder ai.EmbeddingClient,
	pgConn *pgxpool.Pool,
	msg RunJobMsg,
) error {
	logger.Info("[Queue][Run] Starting run", "run", msg.RunID, "documents", msg.DocumentsKey)
	startTime := time.Now()
	setRunStatus(ctx, pgConn, msg.RunID, "running")

	documents, reg, surnames, err := loadInputs(ctx, s3Client, msg)
	if err != nil {
		setRunStatus(ctx, pgConn, msg.RunID, "failed")
		return err
	}

	resultStore, err := pgxstore.NewResultDBStorageWithConnection(ctx, pgConn)
	if err != nil {
		setRunStatus(ctx, pgConn, msg.RunID, "failed")
		return err
	}

	client := pipeline.NewClient(pipeline.NewClientParams{
		ParallelDocuments:   util.GetEnvInt("PIPELINE_PARALLEL_DOCS", 4),
		ParallelParagraphs:  util.GetEnvInt("PIPELINE_PARALLEL_PARAGRAPHS", 16),
		MaxRetries:          util.GetEnvInt("PIPELINE_MAX_RETRIES", 3),
		SimilarityThreshold: util.GetEnvFloat("PIPELINE_SIMILARITY_THRESHOLD", 0.6),
		TokenEncoder:        util.GetEnvString("PIPELINE_TOKEN_ENCODER", "o200k_base"),
	})

	result, err := client.Run(ctx, pipeline.RunParams{
		RunID:                 msg.RunID,
		Documents:             documents,
		Registry:              reg,
		Surnames:              surnames,
		Scorer:                scorer,
		Storage:               resultStore,
		OrganizationBlocklist: msg.OrganizationBlocklist,
	})
	if err != nil {
		setRunStatus(ctx, pgConn, msg.RunID, "failed")
		return err
	}

	if embedder != nil {
		if err := indexParagraphs(ctx, embedder, resultStore, msg.RunID, result); err != nil {
			logger.Error("[Queue][Run] Paragraph indexing failed", "run", msg.RunID, "err", err)
		}
	}

	put := func(ctx context.Context, key string, file io.ReadSeeker) error {
		return storage.PutFile(ctx, s3Client, key, file)
	}
	if err := exportResults(ctx, put, msg.RunID, result); err != nil {
		logger.Error("[Queue][Run] CSV export failed", "run", msg.RunID, "err", err)
	}

	durationMs := time.Since(startTime).Milliseconds()
	finishRun(ctx, pgConn, msg.RunID, durationMs)
	logger.Info("[Queue][Run] Run finished", "run", msg.RunID, "durationMs", durationMs)

	return nil
}

func loadInputs(
	ctx context.Context,
	s3Client *s3.Client,
	msg RunJobMsg,
) ([]corpus.Document, *registry.Registry, *registry.Surnames, error) {
	docBytes, err := storage.GetFile(ctx, s3Client, msg.DocumentsKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch documents: %w", err)
	}
	documents, err := corpus.LoadDocuments(bytes.NewReader(docBytes), msg.TaggerModel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse documents: %w", err)
	}

	orgBytes, err := storage.GetFile(ctx, s3Client, msg.OrganizationsKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch organizations: %w", err)
	}
	records, err := corpus.LoadOrganizations(bytes.NewReader(orgBytes))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse organizations: %w", err)
	}
	reg, err := registry.Build(records)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build registry: %w", err)
	}

	surnameBytes, err := storage.GetFile(ctx, s3Client, msg.SurnamesKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch surnames: %w", err)
	}
	surnames, err := registry.LoadSurnames(bytes.NewReader(surnameBytes))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse surnames: %w", err)
	}

	return documents, reg, surnames, nil
}

func indexParagraphs(
	ctx context.Context,
	embedder ai.EmbeddingClient,
	resultStore store.ResultStorage,
	runID string,
	result *store.RunResult,
) error {
	parallel := util.GetEnvInt("AI_PARALLEL_REQ", 8)
	embeddings, err := store.EmbedParagraphs(ctx, embedder, result.Paragraphs, parallel)
	if err != nil {
		return err
	}
	return resultStore.SaveParagraphEmbeddings(ctx, runID, embeddings)
}

func setRunStatus(ctx context.Context, conn *pgxpool.Pool, runID, status string) {
	_, err := conn.Exec(ctx, `
		INSERT INTO runs (id, status) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET status = $2, updated_at = now()
	`, runID, status)
	if err != nil {
		logger.Error("[Queue][Run] Failed to update run status", "run", runID, "status", status, "err", err)
	}
}

func finishRun(ctx context.Context, conn *pgxpool.Pool, runID string, durationMs int64) {
	_, err := conn.Exec(ctx, `
		UPDATE runs SET status = 'done', duration_ms = $2, updated_at = now()
		WHERE id = $1
	`, runID, durationMs)
	if err != nil {
		logger.Error("[Queue][Run] Failed to finish run", "run", runID, "err", err)
	}
}
