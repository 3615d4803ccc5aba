package state

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"zns/pkg/platform/sentinel"
)

// MemoryStore is an in-process backend. Events in committed batches are
// not kept here; the Runner hands them to its publisher.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[string(key)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s *MemoryStore) Commit(_ context.Context, batch *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range batch.Mutations {
		if m.Delete {
			delete(s.data, string(m.Key))
			continue
		}
		s.data[string(m.Key)] = bytes.Clone(m.Value)
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns every stored key starting with prefix, sorted.
func (s *MemoryStore) Keys(prefix []byte) [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys [][]byte
	for k := range s.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, []byte(k))
		}
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	return keys
}
