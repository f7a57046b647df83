// Package registry manages the referral read model: the shareable links
// supporters create for a pitch. Events and aggregators join against it.
package registry

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"xainik/internal/referral/models"
	"xainik/internal/referral/ports"
	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
	"xainik/pkg/platform/sentinel"
	"xainik/pkg/requestcontext"
)

// slugAttempts bounds retries on share slug collisions.
const slugAttempts = 3

type Service struct {
	referrals ports.ReferralStore
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(referrals ports.ReferralStore, opts ...Option) (*Service, error) {
	if referrals == nil {
		return nil, fmt.Errorf("referral store is required")
	}

	svc := &Service{
		referrals: referrals,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateReferral registers a shareable referral link for a supporter and pitch.
func (s *Service) CreateReferral(ctx context.Context, userID id.UserID, pitchID id.PitchID) (*models.Referral, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	if pitchID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "pitch_id is required")
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		ref := &models.Referral{
			ID:        id.NewReferralID(),
			UserID:    userID,
			PitchID:   pitchID,
			ShareSlug: newShareSlug(),
			CreatedAt: requestcontext.Now(ctx),
		}

		err := s.referrals.Create(ctx, ref)
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "referral create failed")
		}

		s.logger.InfoContext(ctx, "referral created",
			"referral_id", ref.ID,
			"user_id", userID,
			"pitch_id", pitchID,
		)
		return ref, nil
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique share slug")
}

// newShareSlug mints a short URL-safe slug.
func newShareSlug() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:]))
}
