package handler

import (
	"net/url"
	"strconv"
	"strings"

	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
	platformstrings "xainik/pkg/platform/strings"
)

// RecordEventRequest is the HTTP request body for POST /events.
type RecordEventRequest struct {
	ReferralID string `json:"referral_id"`
	Type       string `json:"type"`
	Platform   string `json:"platform,omitempty"`

	// Parsed values (populated by Validate)
	parsedReferralID id.ReferralID
	parsedType       id.EventType
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RecordEventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	referralID, err := id.ParseReferralID(strings.TrimSpace(r.ReferralID))
	if err != nil {
		return err
	}
	r.parsedReferralID = referralID

	eventType, err := id.ParseEventType(strings.TrimSpace(r.Type))
	if err != nil {
		return err
	}
	r.parsedType = eventType

	if len(r.Platform) > 64 {
		return dErrors.New(dErrors.CodeValidation, "platform must be at most 64 characters")
	}
	return nil
}

// ParsedReferralID returns the validated referral ID.
func (r *RecordEventRequest) ParsedReferralID() id.ReferralID {
	return r.parsedReferralID
}

// ParsedType returns the validated event type.
func (r *RecordEventRequest) ParsedType() id.EventType {
	return r.parsedType
}

// CreateReferralRequest is the HTTP request body for POST /referrals.
type CreateReferralRequest struct {
	UserID  string `json:"user_id"`
	PitchID string `json:"pitch_id"`

	parsedUserID  id.UserID
	parsedPitchID id.PitchID
}

// Validate validates and parses the request.
func (r *CreateReferralRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.parsedUserID = userID

	pitchID, err := id.ParsePitchID(strings.TrimSpace(r.PitchID))
	if err != nil {
		return err
	}
	r.parsedPitchID = pitchID
	return nil
}

// ParsedUserID returns the validated user ID.
func (r *CreateReferralRequest) ParsedUserID() id.UserID {
	return r.parsedUserID
}

// ParsedPitchID returns the validated pitch ID.
func (r *CreateReferralRequest) ParsedPitchID() id.PitchID {
	return r.parsedPitchID
}

// parseReferralIDs reads the comma-separated referral_ids query parameter.
// A missing or empty parameter is an empty set, which aggregators answer
// with zeros rather than an error. Repeated IDs collapse to one entry.
func parseReferralIDs(query url.Values) ([]id.ReferralID, error) {
	raw := strings.TrimSpace(query.Get("referral_ids"))
	if raw == "" {
		return []id.ReferralID{}, nil
	}

	parts := platformstrings.DedupeAndTrim(strings.Split(raw, ","))
	ids := make([]id.ReferralID, 0, len(parts))
	for _, part := range parts {
		rid, err := id.ParseReferralID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, rid)
	}
	return ids, nil
}

// parseDays reads the days query parameter, defaulting to 0 so services
// apply their own default window.
func parseDays(query url.Values) (int, error) {
	raw := strings.TrimSpace(query.Get("days"))
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "days must be a non-negative integer")
	}
	return days, nil
}
