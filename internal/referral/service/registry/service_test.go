package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xainik/internal/referral/models"
	referralstore "xainik/internal/referral/store/referral"
	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
	"xainik/pkg/platform/sentinel"
	"xainik/pkg/requestcontext"
)

func TestService_CreateReferral(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("creates with a fresh slug", func(t *testing.T) {
		store := referralstore.NewMemory()
		svc, err := New(store)
		require.NoError(t, err)

		userID := id.UserID(uuid.New())
		pitchID := id.PitchID(uuid.New())

		ref, err := svc.CreateReferral(ctx, userID, pitchID)
		require.NoError(t, err)
		assert.False(t, ref.ID.IsNil())
		assert.Equal(t, userID, ref.UserID)
		assert.Equal(t, pitchID, ref.PitchID)
		assert.NotEmpty(t, ref.ShareSlug)
		assert.Equal(t, now, ref.CreatedAt)
	})

	t.Run("slugs are unique across creations", func(t *testing.T) {
		store := referralstore.NewMemory()
		svc, err := New(store)
		require.NoError(t, err)

		slugs := make(map[string]struct{})
		for i := 0; i < 20; i++ {
			ref, err := svc.CreateReferral(ctx, id.UserID(uuid.New()), id.PitchID(uuid.New()))
			require.NoError(t, err)
			slugs[ref.ShareSlug] = struct{}{}
		}
		assert.Len(t, slugs, 20)
	})

	t.Run("requires user and pitch", func(t *testing.T) {
		svc, err := New(referralstore.NewMemory())
		require.NoError(t, err)

		_, err = svc.CreateReferral(ctx, id.UserID{}, id.PitchID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = svc.CreateReferral(ctx, id.UserID(uuid.New()), id.PitchID{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("retries slug conflicts", func(t *testing.T) {
		store := &conflictOnceStore{}
		svc, err := New(store)
		require.NoError(t, err)

		ref, err := svc.CreateReferral(ctx, id.UserID(uuid.New()), id.PitchID(uuid.New()))
		require.NoError(t, err)
		assert.NotNil(t, ref)
		assert.Equal(t, 2, store.calls)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		store := &conflictOnceStore{alwaysConflict: true}
		svc, err := New(store)
		require.NoError(t, err)

		_, err = svc.CreateReferral(ctx, id.UserID(uuid.New()), id.PitchID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Equal(t, 3, store.calls)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		store := &conflictOnceStore{failWith: errors.New("connection reset")}
		svc, err := New(store)
		require.NoError(t, err)

		_, err = svc.CreateReferral(ctx, id.UserID(uuid.New()), id.PitchID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// conflictOnceStore conflicts on the first Create call unless configured to
// always conflict or fail outright.
type conflictOnceStore struct {
	calls          int
	alwaysConflict bool
	failWith       error
}

func (s *conflictOnceStore) Create(_ context.Context, _ *models.Referral) error {
	s.calls++
	if s.failWith != nil {
		return s.failWith
	}
	if s.alwaysConflict || s.calls == 1 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *conflictOnceStore) ListByUser(_ context.Context, _ id.UserID, _ time.Time) ([]models.Referral, error) {
	return nil, nil
}
