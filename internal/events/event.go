package events

import (
	"context"
	"log"
	"time"
)

// Event types published after a state change commits.
const (
	BookingCreated      = "booking.created"
	BookingCancelled    = "booking.cancelled"
	FlightStatusChanged = "flight.status_changed"
	FlightExpired       = "flight.expired"
	FlightDeleted       = "flight.deleted"
	AirlineDeleted      = "airline.deleted"
	AirlineRenamed      = "airline.renamed"
	UserDeleted         = "user.deleted"
	PaymentRequested    = "payment.requested"
)

// Event is a lifecycle notification.
type Event struct {
	Type       string                 `json:"type"`
	EntityID   uint                   `json:"entityId"`
	ActorID    uint                   `json:"actorId,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// New builds an event stamped with the current time.
func New(eventType string, entityID uint, attrs map[string]interface{}) Event {
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

// PublishSafe publishes and logs failures instead of returning them; events
// follow a committed change and must never fail the request.
func PublishSafe(ctx context.Context, p Publisher, events ...Event) {
	if p == nil || len(events) == 0 {
		return
	}
	if err := p.Publish(ctx, events...); err != nil {
		log.Printf("publish %d events (%s): %v", len(events), events[0].Type, err)
	}
}
