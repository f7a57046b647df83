// Package referral holds the pure domain helpers for referral event
// tracking: platform classification, IP hashing, and debounce keys.
package referral

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	id "xainik/pkg/domain"
)

// DebounceWindow is the interval within which duplicate submissions of the
// same logical event are suppressed.
const DebounceWindow = 10 * time.Minute

// HashIP produces a deterministic one-way digest of a raw IP address.
// The same ip+salt always yields the same hash; without the salt the hash
// cannot be reversed to the IP. Returns "" for an empty IP.
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildDebounceKey derives the stable key that collapses repeated submissions
// of the same logical event from the same source. When ipHash is empty, the
// key covers referral and type alone, deliberately widening the dedup scope
// for anonymous submissions.
func BuildDebounceKey(referralID id.ReferralID, eventType id.EventType, ipHash string) string {
	raw := referralID.String() + "|" + string(eventType)
	if ipHash != "" {
		raw += "|" + ipHash
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// DedupeBucket truncates t to a DebounceWindow-sized bucket number. The unique
// index on (referral, type, key, bucket) makes concurrent inserts within one
// bucket collapse to a single row; duplicates straddling a bucket edge remain
// possible and accepted, matching the best-effort contract.
func DedupeBucket(t time.Time) int64 {
	return t.Unix() / int64(DebounceWindow/time.Second)
}
