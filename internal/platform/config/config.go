// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// devFallbackSalt keeps IP hashing deterministic in environments without a
// configured salt. It is an explicit weakening for non-production use: anyone
// with this string can brute-force hashed IPs.
const devFallbackSalt = "xainik-dev-salt-do-not-use-in-production"

// Config captures everything the server needs at startup.
type Config struct {
	Addr            string        `env:"XAINIK_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// DatabaseURL is a postgres DSN. Empty selects the in-memory stores,
	// which is only useful for local development and tests.
	DatabaseURL string `env:"DATABASE_URL"`

	// IPHashSalt is the server-held salt for privacy-preserving IP hashing.
	IPHashSalt string `env:"IP_HASH_SALT"`

	Redis  RedisConfig
	Stream StreamConfig

	// AnalyticsCacheTTL bounds staleness of cached funnel and platform
	// breakdown responses.
	AnalyticsCacheTTL time.Duration `env:"ANALYTICS_CACHE_TTL" envDefault:"30s"`
}

// RedisConfig configures the optional analytics cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// StreamConfig configures the optional Kafka mirror of recorded events.
// No brokers disables the outbox relay entirely.
type StreamConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_EVENTS_TOPIC" envDefault:"xainik.referral-events"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

// FromEnv builds a Config from environment variables, loading a local .env
// file first when present.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.IPHashSalt == "" {
		// Should be overridden in production; see devFallbackSalt.
		cfg.IPHashSalt = devFallbackSalt
	}
	return cfg, nil
}

// StreamEnabled reports whether the Kafka relay should run.
func (c Config) StreamEnabled() bool {
	return len(c.Stream.Brokers) > 0
}
