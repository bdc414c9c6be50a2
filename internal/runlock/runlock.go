// Package runlock serializes run processing across workers with a renewed
// Postgres lease. A run whose lock is held elsewhere is reported busy so the
// message can be requeued.
package runlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrBusy = errors.New("run lock busy")
	ErrLost = errors.New("run lock lost")
)

const (
	lockTTL    = 5 * time.Minute
	renewEvery = lockTTL / 2
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Client struct {
	db dbConn
}

// Lease guards one run. Its Context is canceled when the lease is lost.
type Lease struct {
	RunID   string
	Context context.Context

	client *Client
	token  string
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(pool *pgxpool.Pool) *Client {
	return &Client{db: pool}
}

// WithLease runs fn while holding the lock for runID, releasing it after.
// Returns ErrBusy without calling fn when another worker holds the run.
func (c *Client) WithLease(ctx context.Context, runID string, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, runID)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	return fn(lease.Context)
}

func (c *Client) Acquire(ctx context.Context, runID string) (*Lease, error) {
	if runID == "" {
		return nil, errors.New("run id is empty")
	}

	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	ttlMs := lockTTL.Milliseconds()

	var returnedID string
	err = c.db.QueryRow(ctx, tryAcquireSQL, runID, token, ttlMs).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &Lease{
		RunID:   runID,
		Context: leaseCtx,
		client:  c,
		token:   token,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}

	go l.renewLoop(ttlMs)

	return l, nil
}

func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})

	_, err := l.client.db.Exec(ctx, releaseSQL, l.RunID, l.token)
	return err
}

func (l *Lease) renewLoop(ttlMs int64) {
	t := time.NewTicker(renewEvery)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.Context.Done():
			return
		case <-t.C:
			if err := l.renewOnce(ttlMs); err != nil {
				l.cancel(err)
				return
			}
		}
	}
}

func (l *Lease) renewOnce(ttlMs int64) error {
	renewCtx, cancel := context.WithTimeout(l.Context, 15*time.Second)
	defer cancel()

	var returnedID string
	err := l.client.db.QueryRow(renewCtx, renewSQL, l.RunID, l.token, ttlMs).Scan(&returnedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLost
	}
	return err
}

const tryAcquireSQL = `
INSERT INTO run_locks (run_id, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (run_id) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE run_locks.expires_at < now()
   OR run_locks.locked_by = EXCLUDED.locked_by
RETURNING run_id;
`

const renewSQL = `
UPDATE run_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE run_id = $1 AND locked_by = $2
RETURNING run_id;
`

const releaseSQL = `
DELETE FROM run_locks
WHERE run_id = $1 AND locked_by = $2;
`
