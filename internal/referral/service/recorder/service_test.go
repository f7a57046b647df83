package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xainik/internal/referral/store/event"
	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
	"xainik/pkg/requestcontext"
)

const testSalt = "test-salt"

func newService(t *testing.T) (*Service, *event.InMemoryEventStore) {
	t.Helper()
	store := event.NewMemory()
	svc, err := New(store, testSalt)
	require.NoError(t, err)
	return svc, store
}

func ctxAt(at time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), at)
}

func TestNew(t *testing.T) {
	t.Run("requires event store", func(t *testing.T) {
		_, err := New(nil, testSalt)
		assert.Error(t, err)
	})

	t.Run("requires salt", func(t *testing.T) {
		_, err := New(event.NewMemory(), "")
		assert.Error(t, err)
	})
}

func TestService_RecordEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("records a valid event", func(t *testing.T) {
		svc, store := newService(t)
		rid := id.NewReferralID()

		err := svc.RecordEvent(ctxAt(now), Input{
			ReferralID: rid,
			Type:       id.EventPitchViewed,
			UserAgent:  "WhatsApp/2.23.20",
			IPAddress:  "203.0.113.7",
		})
		require.NoError(t, err)

		events, err := store.ListByReferrals(context.Background(), []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, id.PlatformWhatsApp, events[0].Platform)
		assert.Equal(t, now, events[0].OccurredAt)
	})

	t.Run("suppresses duplicate inside debounce window", func(t *testing.T) {
		svc, store := newService(t)
		rid := id.NewReferralID()
		in := Input{
			ReferralID: rid,
			Type:       id.EventCallClicked,
			IPAddress:  "203.0.113.7",
		}

		require.NoError(t, svc.RecordEvent(ctxAt(now), in))
		require.NoError(t, svc.RecordEvent(ctxAt(now.Add(5*time.Minute)), in))

		events, err := store.ListByReferrals(context.Background(), []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("records again after the window elapses", func(t *testing.T) {
		svc, store := newService(t)
		rid := id.NewReferralID()
		in := Input{
			ReferralID: rid,
			Type:       id.EventPitchViewed,
			IPAddress:  "203.0.113.7",
		}

		require.NoError(t, svc.RecordEvent(ctxAt(now), in))
		require.NoError(t, svc.RecordEvent(ctxAt(now.Add(11*time.Minute)), in))

		events, err := store.ListByReferrals(context.Background(), []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("different IPs are independent windows", func(t *testing.T) {
		svc, store := newService(t)
		rid := id.NewReferralID()

		require.NoError(t, svc.RecordEvent(ctxAt(now), Input{
			ReferralID: rid, Type: id.EventPitchViewed, IPAddress: "203.0.113.7",
		}))
		require.NoError(t, svc.RecordEvent(ctxAt(now), Input{
			ReferralID: rid, Type: id.EventPitchViewed, IPAddress: "198.51.100.9",
		}))

		events, err := store.ListByReferrals(context.Background(), []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("explicit platform wins over user agent", func(t *testing.T) {
		svc, store := newService(t)
		rid := id.NewReferralID()

		require.NoError(t, svc.RecordEvent(ctxAt(now), Input{
			ReferralID: rid,
			Type:       id.EventLinkOpened,
			Platform:   id.PlatformEmail,
			UserAgent:  "WhatsApp/2.23.20",
		}))

		events, err := store.ListByReferrals(context.Background(), []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, id.PlatformEmail, events[0].Platform)
	})

	t.Run("never stores the raw IP", func(t *testing.T) {
		svc, store := newService(t)
		rid := id.NewReferralID()
		const rawIP = "203.0.113.7"

		require.NoError(t, svc.RecordEvent(ctxAt(now), Input{
			ReferralID: rid,
			Type:       id.EventPitchViewed,
			IPAddress:  rawIP,
		}))

		events, err := store.ListByReferrals(context.Background(), []id.ReferralID{rid}, now.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.NotContains(t, events[0].IPHash, rawIP)
		assert.Len(t, events[0].IPHash, 64)
	})

	t.Run("rejects nil referral ID", func(t *testing.T) {
		svc, _ := newService(t)
		err := svc.RecordEvent(ctxAt(now), Input{Type: id.EventPitchViewed})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-recordable event type", func(t *testing.T) {
		svc, _ := newService(t)
		err := svc.RecordEvent(ctxAt(now), Input{
			ReferralID: id.NewReferralID(),
			Type:       id.EventScroll50,
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
