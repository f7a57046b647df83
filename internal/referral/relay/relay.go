// Package relay drains the referral event outbox to the Kafka stream.
// Delivery is at-least-once: an entry is only stamped published after the
// producer acknowledges it, so a crash between publish and stamp replays it.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"xainik/internal/referral/metrics"
	"xainik/internal/referral/ports"
)

type Relay struct {
	store     ports.OutboxStore
	publisher ports.EventPublisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func New(store ports.OutboxStore, publisher ports.EventPublisher, interval time.Duration, batchSize int, opts ...Option) *Relay {
	r := &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls the outbox until ctx is cancelled. Publish failures stop the
// current batch and are retried on the next tick; they never crash the relay.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drainOnce(ctx); err != nil {
				r.logger.WarnContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// drainOnce relays at most one batch.
func (r *Relay) drainOnce(ctx context.Context) error {
	entries, err := r.store.ListUnpublished(ctx, r.batchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if err := r.publisher.Publish(ctx, entry.Key, entry.Payload); err != nil {
			r.logger.WarnContext(ctx, "event publish failed, retrying next tick",
				"entry_id", entry.ID,
				"error", err,
			)
			break
		}
		published = append(published, entry.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := r.store.MarkPublished(ctx, published); err != nil {
		// Stamp failure means these entries replay; consumers must tolerate
		// duplicates, which the at-least-once contract already demands.
		return err
	}
	r.metrics.AddOutboxRelayed(len(published))
	return nil
}
