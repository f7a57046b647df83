// Package models holds the referral feature's data shapes.
package models

import (
	"time"

	"github.com/google/uuid"

	id "xainik/pkg/domain"
)

// Event is one engagement signal recorded against a referral link.
// Append-only: rows are never updated or deleted by this service.
type Event struct {
	ID          uuid.UUID
	ReferralID  id.ReferralID
	Type        id.EventType
	Platform    id.Platform
	UserAgent   string // raw client string kept for audit/debug; empty when absent
	IPHash      string // salted digest; the raw IP is never persisted
	DebounceKey string
	OccurredAt  time.Time
}

// Referral associates a supporter with a pitch and carries a shareable slug.
// Events reference referrals; aggregators read both.
type Referral struct {
	ID        id.ReferralID
	UserID    id.UserID
	PitchID   id.PitchID
	ShareSlug string
	CreatedAt time.Time
}

// FunnelCounts are the global engagement stage totals for a set of referrals.
type FunnelCounts struct {
	Opens  int `json:"opens"`
	Views  int `json:"views"`
	Calls  int `json:"calls"`
	Emails int `json:"emails"`
}

// PlatformStat tallies engagement for one originating platform. Opens are not
// tracked per platform; only the global funnel carries them.
type PlatformStat struct {
	Platform string `json:"platform"`
	Views    int    `json:"views"`
	Calls    int    `json:"calls"`
	Emails   int    `json:"emails"`
}

// ReferrerStat ranks one referral by activity volume.
type ReferrerStat struct {
	ReferralID     id.ReferralID `json:"referral_id"`
	TotalEvents    int           `json:"total_events"`
	Conversions    int           `json:"conversions"`
	ConversionRate float64       `json:"conversion_rate"`
}
