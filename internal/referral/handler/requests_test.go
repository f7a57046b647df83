package handler

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
)

func TestRecordEventRequest_Validate(t *testing.T) {
	validID := id.NewReferralID().String()

	t.Run("valid request parses", func(t *testing.T) {
		req := &RecordEventRequest{ReferralID: validID, Type: "PITCH_VIEWED"}
		require.NoError(t, req.Validate())
		assert.Equal(t, validID, req.ParsedReferralID().String())
		assert.Equal(t, id.EventPitchViewed, req.ParsedType())
	})

	t.Run("surrounding whitespace is tolerated", func(t *testing.T) {
		req := &RecordEventRequest{ReferralID: "  " + validID + "  ", Type: " CALL_CLICKED "}
		require.NoError(t, req.Validate())
		assert.Equal(t, id.EventCallClicked, req.ParsedType())
	})

	t.Run("missing referral ID rejected", func(t *testing.T) {
		req := &RecordEventRequest{Type: "PITCH_VIEWED"}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unknown event type rejected", func(t *testing.T) {
		req := &RecordEventRequest{ReferralID: validID, Type: "PAGE_LOADED"}
		assert.Error(t, req.Validate())
	})

	t.Run("oversized platform rejected", func(t *testing.T) {
		req := &RecordEventRequest{
			ReferralID: validID,
			Type:       "PITCH_VIEWED",
			Platform:   strings.Repeat("x", 65),
		}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestCreateReferralRequest_Validate(t *testing.T) {
	userID := id.NewReferralID().String()
	pitchID := id.NewReferralID().String()

	t.Run("valid request parses", func(t *testing.T) {
		req := &CreateReferralRequest{UserID: userID, PitchID: pitchID}
		require.NoError(t, req.Validate())
		assert.Equal(t, userID, req.ParsedUserID().String())
		assert.Equal(t, pitchID, req.ParsedPitchID().String())
	})

	t.Run("malformed user ID rejected", func(t *testing.T) {
		req := &CreateReferralRequest{UserID: "not-a-uuid", PitchID: pitchID}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("missing pitch ID rejected", func(t *testing.T) {
		req := &CreateReferralRequest{UserID: userID}
		err := req.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseReferralIDs(t *testing.T) {
	a, b := id.NewReferralID(), id.NewReferralID()

	t.Run("splits a comma separated list", func(t *testing.T) {
		ids, err := parseReferralIDs(url.Values{"referral_ids": {a.String() + "," + b.String()}})
		require.NoError(t, err)
		assert.Equal(t, []id.ReferralID{a, b}, ids)
	})

	t.Run("collapses repeated IDs", func(t *testing.T) {
		ids, err := parseReferralIDs(url.Values{"referral_ids": {a.String() + "," + a.String()}})
		require.NoError(t, err)
		assert.Equal(t, []id.ReferralID{a}, ids)
	})

	t.Run("skips empty segments", func(t *testing.T) {
		ids, err := parseReferralIDs(url.Values{"referral_ids": {a.String() + ", ,"}})
		require.NoError(t, err)
		assert.Equal(t, []id.ReferralID{a}, ids)
	})

	t.Run("missing parameter is an empty set", func(t *testing.T) {
		ids, err := parseReferralIDs(url.Values{})
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("invalid entry rejected", func(t *testing.T) {
		_, err := parseReferralIDs(url.Values{"referral_ids": {"nope"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseDays(t *testing.T) {
	t.Run("missing defaults to zero", func(t *testing.T) {
		days, err := parseDays(url.Values{})
		require.NoError(t, err)
		assert.Zero(t, days)
	})

	t.Run("parses positive values", func(t *testing.T) {
		days, err := parseDays(url.Values{"days": {"7"}})
		require.NoError(t, err)
		assert.Equal(t, 7, days)
	})

	t.Run("rejects negatives and garbage", func(t *testing.T) {
		for _, raw := range []string{"-1", "seven", "1.5"} {
			_, err := parseDays(url.Values{"days": {raw}})
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), raw)
		}
	})
}
