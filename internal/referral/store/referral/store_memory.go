package referral

import (
	"context"
	"sort"
	"sync"
	"time"

	"xainik/internal/referral/models"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/sentinel"
)

// InMemoryReferralStore backs unit tests and store-less dev mode.
type InMemoryReferralStore struct {
	mu        sync.RWMutex
	referrals map[id.ReferralID]models.Referral
	slugs     map[string]struct{}
}

func NewMemory() *InMemoryReferralStore {
	return &InMemoryReferralStore{
		referrals: make(map[id.ReferralID]models.Referral),
		slugs:     make(map[string]struct{}),
	}
}

func (s *InMemoryReferralStore) Create(_ context.Context, ref *models.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slugs[ref.ShareSlug]; taken {
		return sentinel.ErrConflict
	}
	s.slugs[ref.ShareSlug] = struct{}{}
	s.referrals[ref.ID] = *ref
	return nil
}

func (s *InMemoryReferralStore) ListByUser(_ context.Context, userID id.UserID, since time.Time) ([]models.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Referral, 0)
	for _, ref := range s.referrals {
		if ref.UserID != userID {
			continue
		}
		if ref.CreatedAt.Before(since) {
			continue
		}
		result = append(result, ref)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
