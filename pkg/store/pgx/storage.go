// Package pgx implements ResultStorage on PostgreSQL, with pgvector for
// paragraph similarity search.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

type ResultDBStorage struct {
	conn pgxIConn
}

// NewResultDBStorageWithConnection wraps an existing connection or pool.
func NewResultDBStorageWithConnection(ctx context.Context, conn pgxIConn) (*ResultDBStorage, error) {
	return &ResultDBStorage{conn: conn}, nil
}
