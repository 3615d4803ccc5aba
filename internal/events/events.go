// Package events carries the structured events every mutating operation emits.
//
// Components build payloads as plain structs (see each component's models)
// and wrap them with New. Events are buffered in the unit of work, committed
// with it, and handed to a Publisher only after the commit succeeded, so
// observers never see an event for state that was rolled back.
package events

//go:generate mockgen -source=events.go -destination=mocks/mocks.go -package=mocks Publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"zns/pkg/requestcontext"
)

// Type names an event, e.g. "DomainRegistered".
type Type string

// Event is the transport-agnostic envelope written to outboxes and topics.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      Type            `json:"type"`
	Source    string          `json:"source"`
	Domain    common.Hash     `json:"domain"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// New builds an event stamped with the call time and request ID from ctx.
func New(ctx context.Context, source string, typ Type, domain common.Hash, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:        uuid.New(),
		Type:      typ,
		Source:    source,
		Domain:    domain,
		Payload:   raw,
		Timestamp: requestcontext.Now(ctx).UTC(),
		RequestID: requestcontext.RequestID(ctx),
	}, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher delivers committed events to observers.
type Publisher interface {
	Publish(ctx context.Context, evts ...Event) error
}

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evts ...Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evts...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, ...Event) error { return nil }
