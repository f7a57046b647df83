// Package analytics serves the aggregate read paths consumed by dashboards:
// funnel counts, platform breakdown, and top-referrer ranking.
package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"xainik/internal/referral/metrics"
	"xainik/internal/referral/models"
	"xainik/internal/referral/ports"
	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
	"xainik/pkg/requestcontext"
)

var tracer = otel.Tracer("xainik/internal/referral/service/analytics")

// DefaultLookbackDays is used when callers pass a non-positive window.
const DefaultLookbackDays = 30

// topReferrerLimit caps the ranking length.
const topReferrerLimit = 10

// Cache is the optional response cache. All methods must be safe on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
}

// Service aggregates referral events. It is read-only and safe to run
// concurrently with the recorder.
type Service struct {
	events    ports.EventStore
	referrals ports.ReferralStore
	cache     Cache
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func New(events ports.EventStore, referrals ports.ReferralStore, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if referrals == nil {
		return nil, fmt.Errorf("referral store is required")
	}

	svc := &Service{
		events:    events,
		referrals: referrals,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ReferralFunnel counts engagement stages for the given referrals over the
// lookback window. Empty input yields all-zero counts, never an error.
func (s *Service) ReferralFunnel(ctx context.Context, referralIDs []id.ReferralID, days int) (models.FunnelCounts, error) {
	ctx, span := tracer.Start(ctx, "analytics.ReferralFunnel")
	defer span.End()

	days = normalizeDays(days)
	span.SetAttributes(attribute.Int("lookback.days", days))

	if len(referralIDs) == 0 {
		return models.FunnelCounts{}, nil
	}

	var counts models.FunnelCounts
	key := cacheKey("funnel", referralIDs, days)
	if hit := s.cacheLoad(ctx, "funnel", key, &counts); hit {
		return counts, nil
	}

	events, err := s.events.ListByReferrals(ctx, referralIDs, lookbackStart(ctx, days))
	if err != nil {
		return models.FunnelCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "funnel query failed")
	}

	for _, e := range events {
		switch e.Type {
		case id.EventLinkOpened:
			counts.Opens++
		case id.EventPitchViewed:
			counts.Views++
		case id.EventCallClicked:
			counts.Calls++
		case id.EventEmailClicked:
			counts.Emails++
		}
	}

	s.cacheStore(ctx, key, counts)
	return counts, nil
}

// PlatformBreakdown groups the same window by platform. Opens are not tracked
// per platform; only the global funnel carries them.
func (s *Service) PlatformBreakdown(ctx context.Context, referralIDs []id.ReferralID, days int) ([]models.PlatformStat, error) {
	ctx, span := tracer.Start(ctx, "analytics.PlatformBreakdown")
	defer span.End()

	days = normalizeDays(days)

	if len(referralIDs) == 0 {
		return []models.PlatformStat{}, nil
	}

	var stats []models.PlatformStat
	key := cacheKey("platforms", referralIDs, days)
	if hit := s.cacheLoad(ctx, "platforms", key, &stats); hit {
		return stats, nil
	}

	events, err := s.events.ListByReferrals(ctx, referralIDs, lookbackStart(ctx, days))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "platform breakdown query failed")
	}

	byPlatform := make(map[string]*models.PlatformStat)
	for _, e := range events {
		platform := string(e.Platform)
		if platform == "" {
			platform = "unknown"
		}
		stat, ok := byPlatform[platform]
		if !ok {
			stat = &models.PlatformStat{Platform: platform}
			byPlatform[platform] = stat
		}
		switch e.Type {
		case id.EventPitchViewed:
			stat.Views++
		case id.EventCallClicked:
			stat.Calls++
		case id.EventEmailClicked:
			stat.Emails++
		}
	}

	stats = make([]models.PlatformStat, 0, len(byPlatform))
	for _, stat := range byPlatform {
		stats = append(stats, *stat)
	}
	// Deterministic output order; clients treat this as a set.
	sort.Slice(stats, func(i, j int) bool { return stats[i].Platform < stats[j].Platform })

	s.cacheStore(ctx, key, stats)
	return stats, nil
}

// TopReferrers ranks the user's referrals by activity volume over the window,
// returning at most ten. A user with no referrals yields an empty list.
func (s *Service) TopReferrers(ctx context.Context, userID id.UserID, days int) ([]models.ReferrerStat, error) {
	ctx, span := tracer.Start(ctx, "analytics.TopReferrers")
	defer span.End()

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	days = normalizeDays(days)
	since := lookbackStart(ctx, days)

	referrals, err := s.referrals.ListByUser(ctx, userID, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "referral lookup failed")
	}
	if len(referrals) == 0 {
		return []models.ReferrerStat{}, nil
	}

	referralIDs := make([]id.ReferralID, len(referrals))
	for i, ref := range referrals {
		referralIDs[i] = ref.ID
	}

	events, err := s.events.ListByReferrals(ctx, referralIDs, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "top referrer query failed")
	}

	byReferral := make(map[id.ReferralID]*models.ReferrerStat, len(referrals))
	stats := make([]models.ReferrerStat, 0, len(referrals))
	for _, rid := range referralIDs {
		stats = append(stats, models.ReferrerStat{ReferralID: rid})
	}
	for i := range stats {
		byReferral[stats[i].ReferralID] = &stats[i]
	}

	for _, e := range events {
		stat, ok := byReferral[e.ReferralID]
		if !ok {
			continue
		}
		stat.TotalEvents++
		if e.Type.Conversion() {
			stat.Conversions++
		}
	}

	for i := range stats {
		if stats[i].TotalEvents > 0 {
			stats[i].ConversionRate = float64(stats[i].Conversions) / float64(stats[i].TotalEvents) * 100
		}
	}

	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalEvents > stats[j].TotalEvents })
	if len(stats) > topReferrerLimit {
		stats = stats[:topReferrerLimit]
	}

	s.metrics.IncrementAnalyticsQuery("top_referrers", "bypass")
	return stats, nil
}

func normalizeDays(days int) int {
	if days <= 0 {
		return DefaultLookbackDays
	}
	return days
}

func lookbackStart(ctx context.Context, days int) time.Time {
	return requestcontext.Now(ctx).AddDate(0, 0, -days)
}

// cacheKey digests the query shape so arbitrarily long referral lists still
// produce a bounded key.
func cacheKey(kind string, referralIDs []id.ReferralID, days int) string {
	ids := make([]string, len(referralIDs))
	for i, rid := range referralIDs {
		ids[i] = rid.String()
	}
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return fmt.Sprintf("xainik:analytics:%s:%d:%s", kind, days, hex.EncodeToString(sum[:8]))
}

func (s *Service) cacheLoad(ctx context.Context, query, key string, out any) bool {
	if s.cache == nil {
		s.metrics.IncrementAnalyticsQuery(query, "bypass")
		return false
	}
	payload, ok := s.cache.Get(ctx, key)
	if !ok {
		s.metrics.IncrementAnalyticsQuery(query, "miss")
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.WarnContext(ctx, "corrupt analytics cache entry", "key", key, "error", err)
		s.metrics.IncrementAnalyticsQuery(query, "miss")
		return false
	}
	s.metrics.IncrementAnalyticsQuery(query, "hit")
	return true
}

func (s *Service) cacheStore(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, payload)
}
