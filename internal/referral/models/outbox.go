package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is one pending row of the transactional outbox. The event store
// fills the outbox in the same transaction as the event insert; the relay
// worker drains it to Kafka.
type OutboxEntry struct {
	ID          uuid.UUID
	Key         string // partition key; the referral ID
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// eventPayload is the JSON structure published to the stream.
type eventPayload struct {
	ID         string `json:"id"`
	ReferralID string `json:"referral_id"`
	EventType  string `json:"event_type"`
	Platform   string `json:"platform"`
	OccurredAt string `json:"occurred_at"`
}

// EncodeEventPayload serializes an event for the outbox. User agent and IP
// hash stay out of the stream: downstream consumers get aggregates inputs,
// not client fingerprints.
func EncodeEventPayload(e *Event) ([]byte, error) {
	return json.Marshal(eventPayload{
		ID:         e.ID.String(),
		ReferralID: e.ReferralID.String(),
		EventType:  string(e.Type),
		Platform:   string(e.Platform),
		OccurredAt: e.OccurredAt.Format(time.RFC3339Nano),
	})
}
