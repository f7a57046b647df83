package event

import (
	"context"
	"sync"
	"time"

	"xainik/internal/referral"
	"xainik/internal/referral/models"
	"xainik/internal/referral/store/outbox"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/sentinel"
)

// InMemoryEventStore mirrors the postgres store semantics, including the
// per-bucket uniqueness, for unit tests and store-less dev mode.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events []models.Event
	seen   map[bucketKey]struct{}
	outbox *outbox.InMemoryOutboxStore
}

type bucketKey struct {
	referralID  id.ReferralID
	eventType   id.EventType
	debounceKey string
	bucket      int64
}

// NewMemory creates an event store with no outbox attached.
func NewMemory() *InMemoryEventStore {
	return &InMemoryEventStore{seen: make(map[bucketKey]struct{})}
}

// NewMemoryWithOutbox creates an event store that enqueues an outbox entry
// for every inserted event, like the postgres store does transactionally.
func NewMemoryWithOutbox(ob *outbox.InMemoryOutboxStore) *InMemoryEventStore {
	s := NewMemory()
	s.outbox = ob
	return s
}

func (s *InMemoryEventStore) Insert(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bucketKey{
		referralID:  event.ReferralID,
		eventType:   event.Type,
		debounceKey: event.DebounceKey,
		bucket:      referral.DedupeBucket(event.OccurredAt),
	}
	if _, exists := s.seen[key]; exists {
		return sentinel.ErrDuplicateEvent
	}
	s.seen[key] = struct{}{}
	s.events = append(s.events, *event)

	if s.outbox != nil {
		payload, err := models.EncodeEventPayload(event)
		if err != nil {
			return err
		}
		s.outbox.Enqueue(models.OutboxEntry{
			ID:        event.ID,
			Key:       event.ReferralID.String(),
			Payload:   payload,
			CreatedAt: event.OccurredAt,
		})
	}
	return nil
}

func (s *InMemoryEventStore) FindRecent(_ context.Context, referralID id.ReferralID, eventType id.EventType, debounceKey string, since time.Time) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *models.Event
	for i := range s.events {
		e := &s.events[i]
		if e.ReferralID != referralID || e.Type != eventType || e.DebounceKey != debounceKey {
			continue
		}
		if e.OccurredAt.Before(since) {
			continue
		}
		if newest == nil || e.OccurredAt.After(newest.OccurredAt) {
			newest = e
		}
	}
	if newest == nil {
		return nil, nil
	}
	found := *newest
	return &found, nil
}

func (s *InMemoryEventStore) ListByReferrals(_ context.Context, referralIDs []id.ReferralID, since time.Time) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[id.ReferralID]struct{}, len(referralIDs))
	for _, rid := range referralIDs {
		wanted[rid] = struct{}{}
	}

	result := make([]models.Event, 0)
	for _, e := range s.events {
		if _, ok := wanted[e.ReferralID]; !ok {
			continue
		}
		if e.OccurredAt.Before(since) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}
