// Package state is the single shared store behind every component.
//
// Components never talk to a backend directly. They read and write through
// the unit of work carried in the context (see Runner), which buffers writes
// and events in an overlay and flushes them to the backend atomically on
// commit. Key prefixes below form the stable storage layout: logic packages
// may change freely as long as they keep reading and writing these keys.
package state

import (
	"context"

	"zns/internal/events"
)

// Key prefixes. Each prefix is owned by exactly one component.
const (
	PrefixRole byte = 0x01

	PrefixRecord       byte = 0x10
	PrefixOperator     byte = 0x11
	PrefixResolverType byte = 0x12

	PrefixAsset     byte = 0x20
	PrefixBalance   byte = 0x21
	PrefixAllowance byte = 0x22

	PrefixTokenOwner    byte = 0x30
	PrefixTokenApproval byte = 0x31
	PrefixTokenOperator byte = 0x32
	PrefixTokenBalance  byte = 0x33
	PrefixTokenURI      byte = 0x34
	PrefixTokenMeta     byte = 0x35

	PrefixResolvedAddress byte = 0x40

	PrefixCurveConfig byte = 0x50
	PrefixFixedConfig byte = 0x51

	PrefixStake         byte = 0x60
	PrefixPaymentConfig byte = 0x61

	PrefixDistribution       byte = 0x70
	PrefixMintlistGeneration byte = 0x71
	PrefixMintlist           byte = 0x72
	PrefixRegistrarFlags     byte = 0x73
)

// Key concatenates a prefix and key parts.
func Key(prefix byte, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 0, n)
	k = append(k, prefix)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

// Mutation is a single buffered write. Delete mutations carry no value.
type Mutation struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Batch is everything a unit of work commits.
type Batch struct {
	Mutations []Mutation
	Events    []events.Event
}

// Empty reports whether the batch has nothing to commit.
func (b *Batch) Empty() bool {
	return len(b.Mutations) == 0 && len(b.Events) == 0
}

// Store is a key/value backend. Get returns sentinel.ErrNotFound for absent
// keys. Commit applies the whole batch atomically or not at all; backends
// that can persist events durably (outbox table, stream) do so in the same
// atomic write.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Commit(ctx context.Context, batch *Batch) error
}
