package pgx

import (
	"context"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/network"
	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

const insertChunkSize = 1000

// SaveRun replaces the stored output of a run inside a single transaction.
func (s *ResultDBStorage) SaveRun(ctx context.Context, runID string, result store.RunResult) error {
	logger.Debug("[Store][SaveRun] Persisting run output",
		"run", runID,
		"paragraphs", len(result.Paragraphs),
		"actorEdges", len(result.ActorEdges),
		"organizationEdges", len(result.OrganizationEdges),
	)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO runs (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET updated_at = now()
	`, runID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM paragraphs WHERE run_id = $1`, runID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM entity_edges WHERE run_id = $1`, runID); err != nil {
		return err
	}

	err = store.ChunkRange(len(result.Paragraphs), insertChunkSize, func(start, end int) error {
		for _, row := range result.Paragraphs[start:end] {
			if err := insertParagraph(ctx, tx, runID, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := insertEdges(ctx, tx, runID, corpus.MentionPerson, result.ActorEdges); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, runID, corpus.MentionOrganization, result.OrganizationEdges); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *ResultDBStorage) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM paragraphs WHERE run_id = $1`,
		`DELETE FROM entity_edges WHERE run_id = $1`,
		`DELETE FROM runs WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, runID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertParagraph(ctx context.Context, conn pgxIConn, runID string, row tag.TaggedParagraph) error {
	_, err := conn.Exec(ctx, `
		INSERT INTO paragraphs (
			run_id, document_title, paragraph_number, paragraph_text,
			date_published, topic_label, organizations, actors,
			one_or_more_organizations, one_or_more_actors, both_org_act,
			unique_organizations, unique_actors
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		runID,
		row.Title,
		row.Num,
		util.SanitizePostgresText(row.Text),
		row.DatePublished,
		row.Topic,
		row.Organizations,
		row.Actors,
		row.OneOrMoreOrganizations,
		row.OneOrMoreActors,
		row.BothOrgAct,
		row.UniqueOrganizations,
		row.UniqueActors,
	)
	return err
}

func insertEdges(ctx context.Context, conn pgxIConn, runID string, kind corpus.MentionKind, edges []network.Edge) error {
	return store.ChunkRange(len(edges), insertChunkSize, func(start, end int) error {
		for _, edge := range edges[start:end] {
			if _, err := conn.Exec(ctx, `
				INSERT INTO entity_edges (run_id, kind, source, target, weight)
				VALUES ($1, $2, $3, $4, $5)
			`, runID, string(kind), edge.Source, edge.Target, edge.Weight); err != nil {
				return err
			}
		}
		return nil
	})
}
