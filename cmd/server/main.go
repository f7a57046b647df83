// Command server runs the Xainik referral analytics service: an ingest
// endpoint for referral engagement events and aggregate read paths for
// dashboards. Business logic lives in the internal service packages; main
// only wires dependencies and the process lifecycle.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"xainik/internal/platform/config"
	"xainik/internal/platform/httpserver"
	"xainik/internal/platform/logger"
	"xainik/internal/platform/postgres"
	platformredis "xainik/internal/platform/redis"
	"xainik/internal/platform/stream"
	"xainik/internal/referral/cache"
	"xainik/internal/referral/handler"
	"xainik/internal/referral/metrics"
	"xainik/internal/referral/ports"
	"xainik/internal/referral/relay"
	"xainik/internal/referral/service/analytics"
	"xainik/internal/referral/service/recorder"
	"xainik/internal/referral/service/registry"
	eventstore "xainik/internal/referral/store/event"
	outboxstore "xainik/internal/referral/store/outbox"
	refstore "xainik/internal/referral/store/referral"
	httptransport "xainik/internal/transport/http"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checks := map[string]httptransport.HealthCheck{}

	var (
		events    ports.EventStore
		referrals ports.ReferralStore
		outbox    ports.OutboxStore
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		events = eventstore.NewPostgres(db)
		referrals = refstore.NewPostgres(db)
		outbox = outboxstore.NewPostgres(db)
		checks["postgres"] = db.PingContext
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		memOutbox := outboxstore.NewMemory()
		events = eventstore.NewMemoryWithOutbox(memOutbox)
		referrals = refstore.NewMemory()
		outbox = memOutbox
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	rec, err := recorder.New(events, cfg.IPHashSalt,
		recorder.WithLogger(log),
		recorder.WithMetrics(m),
	)
	if err != nil {
		log.Error("recorder init failed", "error", err)
		os.Exit(1)
	}

	analyticsOpts := []analytics.Option{
		analytics.WithLogger(log),
		analytics.WithMetrics(m),
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
		analyticsOpts = append(analyticsOpts,
			analytics.WithCache(cache.New(redisClient, cfg.AnalyticsCacheTTL, log)))
	}
	agg, err := analytics.New(events, referrals, analyticsOpts...)
	if err != nil {
		log.Error("analytics init failed", "error", err)
		os.Exit(1)
	}

	reg, err := registry.New(referrals, registry.WithLogger(log))
	if err != nil {
		log.Error("registry init failed", "error", err)
		os.Exit(1)
	}

	h := handler.New(rec, agg, reg, log)
	router := httptransport.NewRouter(h, checks)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting referral analytics server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.StreamEnabled() {
		producer, err := stream.NewProducer(cfg.Stream)
		if err != nil {
			log.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		rel := relay.New(outbox, producer, cfg.Stream.PollInterval, cfg.Stream.BatchSize,
			relay.WithLogger(log),
			relay.WithMetrics(m),
		)
		g.Go(func() error {
			log.Info("starting outbox relay", "topic", cfg.Stream.Topic)
			if err := rel.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
