// Package domain holds identifier types and enumerations shared across
// features. IDs are distinct UUID-backed types so the compiler rejects
// cross-assignment between, say, referral and user identifiers.
package domain

import (
	"github.com/google/uuid"

	dErrors "xainik/pkg/domain-errors"
)

// ReferralID identifies a shareable referral link.
type ReferralID uuid.UUID

// UserID identifies a supporter/veteran account. Accounts are owned by the
// surrounding platform; this service only consumes the identifier.
type UserID uuid.UUID

// PitchID identifies the pitch a referral points at.
type PitchID uuid.UUID

// NewReferralID mints a fresh referral ID.
func NewReferralID() ReferralID { return ReferralID(uuid.New()) }

// ParseReferralID parses and validates a referral ID string.
// IDs must be valid, non-nil UUIDs.
func ParseReferralID(s string) (ReferralID, error) {
	u, err := parseUUID(s, "referral_id")
	return ReferralID(u), err
}

// ParseUserID parses and validates a user ID string.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParsePitchID parses and validates a pitch ID string.
func ParsePitchID(s string) (PitchID, error) {
	u, err := parseUUID(s, "pitch_id")
	return PitchID(u), err
}

func (r ReferralID) String() string { return uuid.UUID(r).String() }
func (r ReferralID) IsNil() bool    { return uuid.UUID(r) == uuid.Nil }

func (u UserID) String() string { return uuid.UUID(u).String() }
func (u UserID) IsNil() bool    { return uuid.UUID(u) == uuid.Nil }

func (p PitchID) String() string { return uuid.UUID(p).String() }
func (p PitchID) IsNil() bool    { return uuid.UUID(p) == uuid.Nil }

// Text marshaling delegates to uuid.UUID so the IDs render as canonical
// UUID strings in JSON rather than as byte arrays.

func (r ReferralID) MarshalText() ([]byte, error)  { return uuid.UUID(r).MarshalText() }
func (r *ReferralID) UnmarshalText(b []byte) error { return (*uuid.UUID)(r).UnmarshalText(b) }

func (u UserID) MarshalText() ([]byte, error)  { return uuid.UUID(u).MarshalText() }
func (u *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(u).UnmarshalText(b) }

func (p PitchID) MarshalText() ([]byte, error)  { return uuid.UUID(p).MarshalText() }
func (p *PitchID) UnmarshalText(b []byte) error { return (*uuid.UUID)(p).UnmarshalText(b) }

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, field+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be the nil UUID")
	}
	return u, nil
}
