package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/polderlab/actornet/pkg/store"
	"github.com/polderlab/actornet/pkg/tag"
)

const paragraphColumns = `
	document_title, paragraph_number, paragraph_text,
	date_published, topic_label, organizations, actors,
	one_or_more_organizations, one_or_more_actors, both_org_act,
	unique_organizations, unique_actors
`

func (s *ResultDBStorage) GetParagraphs(ctx context.Context, runID string) ([]tag.TaggedParagraph, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT `+paragraphColumns+`
		FROM paragraphs
		WHERE run_id = $1
		ORDER BY document_title, paragraph_number
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanParagraphs(rows)
}

func (s *ResultDBStorage) SaveParagraphEmbeddings(ctx context.Context, runID string, embeddings []store.ParagraphEmbedding) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, pe := range embeddings {
		if _, err := tx.Exec(ctx, `
			UPDATE paragraphs
			SET embedding = $1
			WHERE run_id = $2 AND document_title = $3 AND paragraph_number = $4
		`, pgvector.NewVector(pe.Embedding), runID, pe.Title, pe.Num); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *ResultDBStorage) SearchParagraphs(ctx context.Context, runID string, embedding []float32, limit int) ([]tag.TaggedParagraph, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn.Query(ctx, `
		SELECT `+paragraphColumns+`
		FROM paragraphs
		WHERE run_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <=> $2
		LIMIT $3
	`, runID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanParagraphs(rows)
}

func scanParagraphs(rows pgxv5.Rows) ([]tag.TaggedParagraph, error) {
	var out []tag.TaggedParagraph
	for rows.Next() {
		var row tag.TaggedParagraph
		if err := rows.Scan(
			&row.Title,
			&row.Num,
			&row.Text,
			&row.DatePublished,
			&row.Topic,
			&row.Organizations,
			&row.Actors,
			&row.OneOrMoreOrganizations,
			&row.OneOrMoreActors,
			&row.BothOrgAct,
			&row.UniqueOrganizations,
			&row.UniqueActors,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
