// Package ports defines the interfaces the referral services depend on.
// Stores return sentinel errors; services translate them to domain errors.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"xainik/internal/referral/models"
	id "xainik/pkg/domain"
)

// EventStore persists and queries referral events.
type EventStore interface {
	// Insert appends one event. Returns sentinel.ErrDuplicateEvent when an
	// equivalent event already occupies the same dedupe bucket.
	Insert(ctx context.Context, event *models.Event) error

	// FindRecent returns the newest event matching the debounce triple with
	// OccurredAt at or after since, or nil when none exists.
	FindRecent(ctx context.Context, referralID id.ReferralID, eventType id.EventType, debounceKey string, since time.Time) (*models.Event, error)

	// ListByReferrals returns all events for the given referrals with
	// OccurredAt at or after since. Empty input yields an empty slice.
	ListByReferrals(ctx context.Context, referralIDs []id.ReferralID, since time.Time) ([]models.Event, error)
}

// ReferralStore persists and queries the referral read model.
type ReferralStore interface {
	// Create registers a referral. Returns sentinel.ErrConflict when the
	// share slug is already taken.
	Create(ctx context.Context, ref *models.Referral) error

	// ListByUser returns the user's referrals created at or after since,
	// newest first.
	ListByUser(ctx context.Context, userID id.UserID, since time.Time) ([]models.Referral, error)
}

// OutboxStore drains the transactional outbox the event stores fill.
type OutboxStore interface {
	// ListUnpublished returns up to limit pending entries, oldest first.
	ListUnpublished(ctx context.Context, limit int) ([]models.OutboxEntry, error)

	// MarkPublished stamps the given entries as relayed.
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// EventPublisher mirrors recorded events to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}
