// Package recorder ingests referral engagement events with best-effort
// deduplication inside a 10-minute debounce window.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"xainik/internal/referral"
	"xainik/internal/referral/metrics"
	"xainik/internal/referral/models"
	"xainik/internal/referral/ports"
	id "xainik/pkg/domain"
	dErrors "xainik/pkg/domain-errors"
	"xainik/pkg/platform/sentinel"
	"xainik/pkg/requestcontext"
)

var tracer = otel.Tracer("xainik/internal/referral/service/recorder")

// Service records referral events. It is the only writer of the event table.
type Service struct {
	events  ports.EventStore
	salt    string
	logger  *slog.Logger
	metrics *metrics.Metrics
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

// New constructs a recorder. salt feeds the privacy-preserving IP hash and
// must be stable across restarts or dedup keys shift.
func New(events ports.EventStore, salt string, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if salt == "" {
		return nil, fmt.Errorf("ip hash salt is required")
	}

	svc := &Service{
		events: events,
		salt:   salt,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Input carries one tracking signal. Platform is optional; when empty the
// classifier derives it from UserAgent. IPAddress is hashed before any
// storage and never persisted raw.
type Input struct {
	ReferralID id.ReferralID
	Type       id.EventType
	Platform   id.Platform
	UserAgent  string
	IPAddress  string
}

// RecordEvent persists one event unless an equivalent event already exists
// within the debounce window. Suppression is a silent no-op: callers fire and
// forget, and a suppressed duplicate is expected, not exceptional.
func (s *Service) RecordEvent(ctx context.Context, in Input) error {
	ctx, span := tracer.Start(ctx, "recorder.RecordEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event.type", string(in.Type)))

	start := time.Now()
	defer func() { s.metrics.ObserveRecordLatency(time.Since(start)) }()

	if in.ReferralID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "referral_id is required")
	}
	if !in.Type.Recordable() {
		return dErrors.New(dErrors.CodeInvalidInput, "event type is not recordable: "+string(in.Type))
	}

	now := requestcontext.Now(ctx)
	ipHash := referral.HashIP(in.IPAddress, s.salt)
	debounceKey := referral.BuildDebounceKey(in.ReferralID, in.Type, ipHash)

	existing, err := s.events.FindRecent(ctx, in.ReferralID, in.Type, debounceKey, now.Add(-referral.DebounceWindow))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "debounce lookup failed")
	}
	if existing != nil {
		s.metrics.IncrementDeduplicated(string(in.Type))
		s.logger.DebugContext(ctx, "event suppressed by debounce window",
			"referral_id", in.ReferralID,
			"event_type", in.Type,
		)
		return nil
	}

	platform := in.Platform
	if platform == "" {
		platform = referral.ClassifyPlatform(in.UserAgent)
	}

	event := &models.Event{
		ID:          uuid.New(),
		ReferralID:  in.ReferralID,
		Type:        in.Type,
		Platform:    platform,
		UserAgent:   in.UserAgent,
		IPHash:      ipHash,
		DebounceKey: debounceKey,
		OccurredAt:  now,
	}

	err = s.events.Insert(ctx, event)
	if errors.Is(err, sentinel.ErrDuplicateEvent) {
		// A concurrent writer won the bucket between our lookup and insert.
		s.metrics.IncrementDeduplicated(string(in.Type))
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "event insert failed")
	}

	s.metrics.IncrementRecorded(string(in.Type), string(platform))
	s.logger.DebugContext(ctx, "event recorded",
		"referral_id", in.ReferralID,
		"event_type", in.Type,
		"platform", platform,
	)
	return nil
}
