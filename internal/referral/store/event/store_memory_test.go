package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xainik/internal/referral"
	"xainik/internal/referral/models"
	"xainik/internal/referral/store/outbox"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/sentinel"
)

func newTestEvent(rid id.ReferralID, eventType id.EventType, at time.Time) *models.Event {
	ipHash := referral.HashIP("203.0.113.7", "test-salt")
	return &models.Event{
		ID:          uuid.New(),
		ReferralID:  rid,
		Type:        eventType,
		Platform:    id.PlatformWeb,
		IPHash:      ipHash,
		DebounceKey: referral.BuildDebounceKey(rid, eventType, ipHash),
		OccurredAt:  at,
	}
}

func TestInMemoryEventStore_Insert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("stores one row per dedupe bucket", func(t *testing.T) {
		store := NewMemory()
		rid := id.NewReferralID()

		first := newTestEvent(rid, id.EventPitchViewed, now)
		require.NoError(t, store.Insert(ctx, first))

		second := newTestEvent(rid, id.EventPitchViewed, now.Add(time.Minute))
		err := store.Insert(ctx, second)
		assert.ErrorIs(t, err, sentinel.ErrDuplicateEvent)

		events, err := store.ListByReferrals(ctx, []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("different types do not collide", func(t *testing.T) {
		store := NewMemory()
		rid := id.NewReferralID()

		require.NoError(t, store.Insert(ctx, newTestEvent(rid, id.EventPitchViewed, now)))
		require.NoError(t, store.Insert(ctx, newTestEvent(rid, id.EventCallClicked, now)))
	})

	t.Run("next bucket accepts again", func(t *testing.T) {
		store := NewMemory()
		rid := id.NewReferralID()

		require.NoError(t, store.Insert(ctx, newTestEvent(rid, id.EventPitchViewed, now)))
		require.NoError(t, store.Insert(ctx, newTestEvent(rid, id.EventPitchViewed, now.Add(11*time.Minute))))
	})
}

func TestInMemoryEventStore_FindRecent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	rid := id.NewReferralID()

	event := newTestEvent(rid, id.EventPitchViewed, now)
	require.NoError(t, store.Insert(ctx, event))

	t.Run("finds event inside window", func(t *testing.T) {
		found, err := store.FindRecent(ctx, rid, id.EventPitchViewed, event.DebounceKey, now.Add(-10*time.Minute))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, event.ID, found.ID)
	})

	t.Run("misses event outside window", func(t *testing.T) {
		found, err := store.FindRecent(ctx, rid, id.EventPitchViewed, event.DebounceKey, now.Add(time.Minute))
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("misses different debounce key", func(t *testing.T) {
		found, err := store.FindRecent(ctx, rid, id.EventPitchViewed, "other-key", now.Add(-10*time.Minute))
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestInMemoryEventStore_ListByReferrals(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	r1, r2, r3 := id.NewReferralID(), id.NewReferralID(), id.NewReferralID()

	require.NoError(t, store.Insert(ctx, newTestEvent(r1, id.EventPitchViewed, now)))
	require.NoError(t, store.Insert(ctx, newTestEvent(r2, id.EventCallClicked, now)))
	require.NoError(t, store.Insert(ctx, newTestEvent(r3, id.EventEmailClicked, now)))

	t.Run("filters to requested referrals", func(t *testing.T) {
		events, err := store.ListByReferrals(ctx, []id.ReferralID{r1, r2}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("empty input yields empty slice", func(t *testing.T) {
		events, err := store.ListByReferrals(ctx, nil, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

// TestInMemoryEventStore_ConcurrentInsert verifies that concurrent identical
// inserts collapse to exactly one stored row, matching the unique index the
// postgres store relies on.
func TestInMemoryEventStore_ConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemory()
	rid := id.NewReferralID()

	const goroutines = 50
	var wg sync.WaitGroup
	var successCount, duplicateCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Insert(ctx, newTestEvent(rid, id.EventPitchViewed, now))
			switch {
			case err == nil:
				successCount.Add(1)
			case assert.ErrorIs(t, err, sentinel.ErrDuplicateEvent):
				duplicateCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load(), "exactly one insert should succeed")
	assert.Equal(t, int32(goroutines-1), duplicateCount.Load())
}

func TestInMemoryEventStore_OutboxEnqueue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ob := outbox.NewMemory()
	store := NewMemoryWithOutbox(ob)
	rid := id.NewReferralID()

	require.NoError(t, store.Insert(ctx, newTestEvent(rid, id.EventPitchViewed, now)))

	entries, err := ob.ListUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rid.String(), entries[0].Key)
	assert.Contains(t, string(entries[0].Payload), "PITCH_VIEWED")
}
