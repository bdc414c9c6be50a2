package pgx

import (
	"context"

	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/network"
)

func (s *ResultDBStorage) GetEdges(ctx context.Context, runID string, kind corpus.MentionKind) ([]network.Edge, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT source, target, weight
		FROM entity_edges
		WHERE run_id = $1 AND kind = $2
		ORDER BY source, target
	`, runID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []network.Edge
	for rows.Next() {
		var edge network.Edge
		if err := rows.Scan(&edge.Source, &edge.Target, &edge.Weight); err != nil {
			return nil, err
		}
		out = append(out, edge)
	}
	return out, rows.Err()
}
