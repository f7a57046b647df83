package referral

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xainik/internal/referral/models"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/sentinel"
)

func TestInMemoryReferralStore_Create(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	ref := &models.Referral{
		ID:        id.NewReferralID(),
		UserID:    id.UserID(uuid.New()),
		ShareSlug: "abc123xy",
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Create(ctx, ref))

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		dupe := &models.Referral{
			ID:        id.NewReferralID(),
			UserID:    ref.UserID,
			ShareSlug: "abc123xy",
			CreatedAt: time.Now(),
		}
		assert.ErrorIs(t, store.Create(ctx, dupe), sentinel.ErrConflict)
	})
}

func TestInMemoryReferralStore_ListByUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	owner := id.UserID(uuid.New())
	other := id.UserID(uuid.New())

	seed := func(userID id.UserID, slug string, at time.Time) models.Referral {
		ref := models.Referral{
			ID:        id.NewReferralID(),
			UserID:    userID,
			ShareSlug: slug,
			CreatedAt: at,
		}
		require.NoError(t, store.Create(ctx, &ref))
		return ref
	}

	older := seed(owner, "older-ref", now.Add(-48*time.Hour))
	newer := seed(owner, "newer-ref", now.Add(-time.Hour))
	seed(other, "other-ref", now)
	seed(owner, "stale-ref", now.Add(-90*24*time.Hour))

	t.Run("returns owner referrals newest first", func(t *testing.T) {
		refs, err := store.ListByUser(ctx, owner, now.Add(-30*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, newer.ID, refs[0].ID)
		assert.Equal(t, older.ID, refs[1].ID)
	})

	t.Run("unknown user yields empty slice", func(t *testing.T) {
		refs, err := store.ListByUser(ctx, id.UserID(uuid.New()), now.Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, refs)
	})
}
