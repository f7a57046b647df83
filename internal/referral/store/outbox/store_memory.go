package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"xainik/internal/referral/models"
)

// InMemoryOutboxStore backs relay unit tests and store-less dev mode.
type InMemoryOutboxStore struct {
	mu      sync.Mutex
	entries []models.OutboxEntry
}

func NewMemory() *InMemoryOutboxStore {
	return &InMemoryOutboxStore{}
}

// Enqueue appends one pending entry. Called by the in-memory event store on
// insert, mirroring the postgres store's transactional write.
func (s *InMemoryOutboxStore) Enqueue(entry models.OutboxEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *InMemoryOutboxStore) ListUnpublished(_ context.Context, limit int) ([]models.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]models.OutboxEntry, 0, limit)
	for _, e := range s.entries {
		if e.PublishedAt != nil {
			continue
		}
		pending = append(pending, e)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *InMemoryOutboxStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	marked := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}
	for i := range s.entries {
		if _, ok := marked[s.entries[i].ID]; ok && s.entries[i].PublishedAt == nil {
			t := now
			s.entries[i].PublishedAt = &t
		}
	}
	return nil
}
