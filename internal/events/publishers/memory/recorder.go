// Package memory keeps published events in process. Tests use it to assert
// on what an operation emitted; single-node deployments use it as a bounded
// in-memory tail.
package memory

import (
	"context"
	"sync"

	"zns/internal/events"
)

// Recorder is a bounded, thread-safe event log. When full, the oldest
// events are dropped to make room for new ones.
type Recorder struct {
	mu       sync.Mutex
	events   []events.Event
	capacity int
	dropped  int64
}

// NewRecorder creates a recorder. A capacity <= 0 keeps every event.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{capacity: capacity}
}

// Publish appends events in order.
func (r *Recorder) Publish(_ context.Context, evts ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, evts...)
	if r.capacity > 0 && len(r.events) > r.capacity {
		over := len(r.events) - r.capacity
		r.events = append([]events.Event(nil), r.events[over:]...)
		r.dropped += int64(over)
	}
	return nil
}

// Events returns a copy of every recorded event.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// ByType returns recorded events of the given type, oldest first.
func (r *Recorder) ByType(typ events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent event of the given type.
func (r *Recorder) Last(typ events.Type) (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == typ {
			return r.events[i], true
		}
	}
	return events.Event{}, false
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Dropped returns how many events were evicted by the capacity bound.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.dropped = 0
}
