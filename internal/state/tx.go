package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"zns/internal/events"
	"zns/pkg/platform/sentinel"
)

// Tx is the write-buffer overlay of one unit of work. Reads see the
// overlay first and fall through to the store; nothing reaches the store
// until the Runner commits.
type Tx struct {
	store    Store
	readOnly bool
	done     bool

	writes map[string]Mutation
	order  []string
	events []events.Event
	hooks  []func(context.Context)
}

func newTx(store Store, readOnly bool) *Tx {
	return &Tx{
		store:    store,
		readOnly: readOnly,
		writes:   make(map[string]Mutation),
	}
}

type txKey struct{}

func withTx(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// detach hides any unit of work in ctx from callees.
func detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, (*Tx)(nil))
}

func from(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	if !ok || tx == nil {
		return nil, false
	}
	return tx, true
}

// Active reports whether ctx carries an open unit of work.
func Active(ctx context.Context) bool {
	tx, ok := from(ctx)
	return ok && !tx.done
}

func open(ctx context.Context) (*Tx, error) {
	tx, ok := from(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no unit of work in context", sentinel.ErrInvalidState)
	}
	if tx.done {
		return nil, fmt.Errorf("%w: unit of work already finished", sentinel.ErrInvalidState)
	}
	return tx, nil
}

func writable(ctx context.Context) (*Tx, error) {
	tx, err := open(ctx)
	if err != nil {
		return nil, err
	}
	if tx.readOnly {
		return nil, sentinel.ErrReadOnly
	}
	return tx, nil
}

// Get reads key through the unit of work in ctx.
func Get(ctx context.Context, key []byte) ([]byte, error) {
	tx, err := open(ctx)
	if err != nil {
		return nil, err
	}
	if m, ok := tx.writes[string(key)]; ok {
		if m.Delete {
			return nil, sentinel.ErrNotFound
		}
		return bytes.Clone(m.Value), nil
	}
	return tx.store.Get(ctx, key)
}

// Has reports whether key exists.
func Has(ctx context.Context, key []byte) (bool, error) {
	_, err := Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put buffers a write.
func Put(ctx context.Context, key, value []byte) error {
	tx, err := writable(ctx)
	if err != nil {
		return err
	}
	tx.record(Mutation{Key: bytes.Clone(key), Value: bytes.Clone(value)})
	return nil
}

// Delete buffers a removal.
func Delete(ctx context.Context, key []byte) error {
	tx, err := writable(ctx)
	if err != nil {
		return err
	}
	tx.record(Mutation{Key: bytes.Clone(key), Delete: true})
	return nil
}

func (t *Tx) record(m Mutation) {
	k := string(m.Key)
	if _, seen := t.writes[k]; !seen {
		t.order = append(t.order, k)
	}
	t.writes[k] = m
}

// GetJSON reads and decodes key into v. Returns false when the key is absent.
func GetJSON(ctx context.Context, key []byte, v any) (bool, error) {
	raw, err := Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode state entry: %w", err)
	}
	return true, nil
}

// PutJSON encodes v and buffers it under key.
func PutJSON(ctx context.Context, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state entry: %w", err)
	}
	return Put(ctx, key, raw)
}

// Emit buffers an event. It is committed with the unit of work and dropped
// if the unit of work rolls back.
func Emit(ctx context.Context, evt events.Event) error {
	tx, err := writable(ctx)
	if err != nil {
		return err
	}
	tx.events = append(tx.events, evt)
	return nil
}

// AfterCommit queues fn to run once the unit of work has committed and the
// store lock is released. fn receives a context without the unit of work,
// so it may start new operations. Queued hooks are dropped on rollback.
func AfterCommit(ctx context.Context, fn func(context.Context)) error {
	tx, err := writable(ctx)
	if err != nil {
		return err
	}
	tx.hooks = append(tx.hooks, fn)
	return nil
}

func (t *Tx) batch() *Batch {
	b := &Batch{
		Mutations: make([]Mutation, 0, len(t.order)),
		Events:    t.events,
	}
	for _, k := range t.order {
		b.Mutations = append(b.Mutations, t.writes[k])
	}
	return b
}
