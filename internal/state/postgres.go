package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zns/internal/events"
	"zns/pkg/platform/sentinel"
	txcontext "zns/pkg/platform/tx"
)

// OutboxWriter persists events inside the SQL transaction found in ctx.
type OutboxWriter interface {
	Append(ctx context.Context, evt events.Event) error
}

// PostgresStore keeps state entries in the state_entries table. Batches are
// applied in one SQL transaction together with their outbox rows.
type PostgresStore struct {
	db     *sql.DB
	outbox OutboxWriter
}

// PostgresOption configures the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithOutbox writes committed events to an outbox in the same transaction.
func WithOutbox(w OutboxWriter) PostgresOption {
	return func(s *PostgresStore) {
		s.outbox = w
	}
}

// NewPostgresStore creates a Postgres backend.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := txcontext.ExecutorFrom(ctx, s.db).
		QueryRowContext(ctx, `SELECT value FROM state_entries WHERE key = $1`, key).
		Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read state entry: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Commit(ctx context.Context, batch *Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	ctx = txcontext.WithTx(ctx, tx)

	for _, m := range batch.Mutations {
		if m.Delete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM state_entries WHERE key = $1`, m.Key); err != nil {
				return fmt.Errorf("delete state entry: %w", err)
			}
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO state_entries (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, m.Key, m.Value)
		if err != nil {
			return fmt.Errorf("upsert state entry: %w", err)
		}
	}

	if s.outbox != nil {
		for _, evt := range batch.Events {
			if err := s.outbox.Append(ctx, evt); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state transaction: %w", err)
	}
	return nil
}

// Health checks the database connection.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
