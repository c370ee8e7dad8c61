package events

import (
	"context"
	"encoding/json"
	"time"
)

type EventType string

const (
	ComplaintCreated     EventType = "complaint.created"
	ComplaintUpdated     EventType = "complaint.updated"
	// ComplaintSLABreached is raised by the SLA monitor, not by a write.
	ComplaintSLABreached EventType = "complaint.sla_breached"
)

// ComplaintEvent is emitted after a complaint write has been committed.
type ComplaintEvent struct {
	Type        EventType `json:"type"`
	ComplaintID uint      `json:"complaint_id"`
	CRN         string    `json:"crn"`
	Status      string    `json:"status,omitempty"`
	ActorID     uint      `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e ComplaintEvent) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, event ComplaintEvent) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ComplaintEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
