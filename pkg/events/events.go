package events

import (
	"context"
	"sync"
	"time"

	"onehotel/pkg/middleware"

	"github.com/google/uuid"
)

type Type string

const (
	RoomCreated        Type = "room.created"
	RoomUpdated        Type = "room.updated"
	RoomDeleted        Type = "room.deleted"
	ReservationCreated Type = "reservation.created"
	ReservationUpdated Type = "reservation.updated"
	ReservationDeleted Type = "reservation.deleted"
)

const SchemaVersion = "1"

// Event describes a committed change to a room or a reservation.
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	AggregateID   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
	Payload       any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the request id carried by ctx.
func New(ctx context.Context, eventType Type, aggregateID string, payload any) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		AggregateID:   aggregateID,
		CorrelationID: middleware.RequestIDFromContext(ctx),
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                          { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
