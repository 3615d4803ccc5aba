package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zns/internal/events"
	txcontext "zns/pkg/platform/tx"
)

// Outbox implements the transactional outbox. Events are written in the
// same SQL transaction as the state they describe and relayed to Kafka by
// the outbox worker.
type Outbox struct {
	db *sql.DB
}

// New creates an outbox over db.
func New(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

// Entry is an outbox row awaiting relay.
type Entry struct {
	Seq   int64
	Event events.Event
}

// Append writes an event to the outbox, inside the transaction in ctx when present.
func (o *Outbox) Append(ctx context.Context, evt events.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.ExecutorFrom(ctx, o.db).ExecContext(ctx, query,
		evt.ID,
		"domain",
		evt.Domain.Hex(),
		string(evt.Type),
		payload,
		evt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// Pending returns up to limit unpublished entries in commit order.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := o.db.QueryContext(ctx, `
		SELECT seq, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			payload []byte
		)
		if err := rows.Scan(&entry.Seq, &payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if err := json.Unmarshal(payload, &entry.Event); err != nil {
			return nil, fmt.Errorf("decode outbox entry %d: %w", entry.Seq, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps every entry up to and including seq as relayed.
func (o *Outbox) MarkPublished(ctx context.Context, upToSeq int64, at time.Time) error {
	_, err := o.db.ExecContext(ctx, `
		UPDATE outbox SET published_at = $1
		WHERE seq <= $2 AND published_at IS NULL
	`, at, upToSeq)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// CountPending returns the number of entries awaiting relay.
func (o *Outbox) CountPending(ctx context.Context) (int, error) {
	var n int
	err := o.db.QueryRowContext(ctx, `SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return n, nil
}

// Exists reports whether an event id is present in the outbox.
func (o *Outbox) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int
	err := o.db.QueryRowContext(ctx, `SELECT count(*) FROM outbox WHERE id = $1`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup outbox entry: %w", err)
	}
	return n > 0, nil
}
