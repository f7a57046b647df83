package handler

import (
	"time"

	"xainik/internal/referral/models"
)

// CreateReferralResponse is the HTTP response body for POST /referrals.
type CreateReferralResponse struct {
	ReferralID string    `json:"referral_id"`
	ShareSlug  string    `json:"share_slug"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromReferral builds the response from a created referral.
func FromReferral(ref *models.Referral) CreateReferralResponse {
	return CreateReferralResponse{
		ReferralID: ref.ID.String(),
		ShareSlug:  ref.ShareSlug,
		CreatedAt:  ref.CreatedAt,
	}
}

// PlatformBreakdownResponse wraps the per-platform stats list.
type PlatformBreakdownResponse struct {
	Platforms []models.PlatformStat `json:"platforms"`
}

// TopReferrersResponse wraps the ranked referral list.
type TopReferrersResponse struct {
	Referrers []models.ReferrerStat `json:"referrers"`
}
