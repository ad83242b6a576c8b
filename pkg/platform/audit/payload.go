package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
)

// Payload is the JSON form of an event on the outbox and the audit topic.
// The message key carries the same ID so consumers can deduplicate.
type Payload struct {
	ID         string         `json:"id"`
	Category   string         `json:"category"`
	Timestamp  string         `json:"timestamp"`
	UserID     int64          `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// NewPayload snapshots an event under the given ID. The category is always
// derived from the action so producers cannot mislabel events.
func NewPayload(eventID uuid.UUID, e Event) Payload {
	return Payload{
		ID:         eventID.String(),
		Category:   string(AuditEvent(e.Action).Category()),
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		UserID:     int64(e.UserID),
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		IP:         e.IP,
		UserAgent:  e.UserAgent,
		RequestID:  e.RequestID,
		Details:    e.Details,
	}
}

// Decode returns the event ID and event carried by the payload.
func (p Payload) Decode() (uuid.UUID, Event, error) {
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, Event{}, fmt.Errorf("parse event id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return uuid.Nil, Event{}, fmt.Errorf("parse event timestamp: %w", err)
	}
	if p.Action == "" {
		return uuid.Nil, Event{}, fmt.Errorf("event %s has no action", eventID)
	}
	return eventID, Event{
		Category:   EventCategory(p.Category),
		Timestamp:  ts,
		UserID:     id.UserID(p.UserID),
		Action:     p.Action,
		TargetType: p.TargetType,
		TargetID:   p.TargetID,
		IP:         p.IP,
		UserAgent:  p.UserAgent,
		RequestID:  p.RequestID,
		Details:    p.Details,
	}, nil
}

// OutboxEntry is an unpublished outbox row awaiting relay.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
}
