package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps a sliding window of request times per key in process.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string][]time.Time), now: time.Now}
}

func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	hits := prune(s.windows[key], now.Add(-window))
	res := Result{Limit: limit}
	if len(hits) < limit {
		hits = append(hits, now)
		res.Allowed = true
	}
	s.windows[key] = hits
	res.Remaining = max(limit-len(hits), 0)
	if len(hits) > 0 {
		res.ResetAt = hits[0].Add(window)
	} else {
		res.ResetAt = now.Add(window)
	}
	return res, nil
}

// prune drops times at or before cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
