package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/netric-solutions/quote-bridge/pkg/config"
)

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "quote-bridge"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // HTTP API port
	NotifyPort  int    // websocket notification feed port

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	// Relay
	ForwardURL     string        // downstream URL that received payloads are POSTed to
	ForwardTimeout time.Duration // HTTP client timeout for the forwarder

	// Quote processing
	QuotesDir string // directory CSV files are written to

	// Accounting System automation gateway
	AccountingBaseURL    string // automation bridge base URL
	AccountingUsername   string // fallback credentials when no secret is configured
	AccountingPassword   string
	AccountingSecretName string // AWS Secrets Manager secret holding gateway credentials
	AccountingTimeout    time.Duration
	MatchCutoff          float64 // fuzzy match similarity cutoff
	MatchCandidates      int     // max typo candidates reported

	// Messaging
	NATSURL string // e.g. nats://localhost:4222
	AMQPURL string // optional; legacy ERP confirmations disabled when empty

	// Storage
	RedisAddr   string // empty disables Redis (relay falls back to memory)
	RedisDB     int
	DatabaseURL string // empty disables the Postgres history store

	AWSRegion string // for AWS SDK client

	CacheTTL    time.Duration // TTL for credential / customer-list cache
	CleanupFreq time.Duration // frequency for cache cleanup goroutine

	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: pkgconfig.GetEnv("SERVICE_NAME", "quote-bridge"),
		Env:         pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:    pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:        pkgconfig.GetEnvInt("PORT", 3000),
		NotifyPort:  pkgconfig.GetEnvInt("NOTIFY_PORT", 3001),

		HTTPReadTimeout:  pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		ForwardURL:     pkgconfig.GetEnv("FORWARD_URL", "http://localhost:5001/receive-data"),
		ForwardTimeout: pkgconfig.GetEnvDuration("FORWARD_TIMEOUT", 15*time.Second),

		QuotesDir: pkgconfig.GetEnv("QUOTES_DIR", "quotes"),

		AccountingBaseURL:    pkgconfig.GetEnv("ACCOUNTING_BASE_URL", "http://localhost:8800"),
		AccountingUsername:   pkgconfig.GetEnv("ACCOUNTING_USERNAME", "ADMIN"),
		AccountingPassword:   pkgconfig.GetEnv("ACCOUNTING_PASSWORD", "ADMIN"),
		AccountingSecretName: pkgconfig.GetEnv("ACCOUNTING_SECRET_NAME", ""),
		AccountingTimeout:    pkgconfig.GetEnvDuration("ACCOUNTING_TIMEOUT", 30*time.Second),
		MatchCutoff:          0.8,
		MatchCandidates:      3,

		NATSURL: pkgconfig.GetEnv("NATS_URL", "nats://localhost:4222"),
		AMQPURL: pkgconfig.GetEnv("AMQP_URL", ""),

		RedisAddr:   pkgconfig.GetEnv("REDIS_ADDR", ""),
		RedisDB:     pkgconfig.GetEnvInt("REDIS_DB", 0),
		DatabaseURL: pkgconfig.GetEnv("DATABASE_URL", ""),

		AWSRegion: pkgconfig.GetEnv("AWS_REGION", "ap-southeast-1"),

		CacheTTL:    pkgconfig.GetEnvDuration("CACHE_TTL", 10*time.Minute),
		CleanupFreq: pkgconfig.GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),

		PGMaxConns:          pkgconfig.GetEnvInt("PG_MAX_CONNS", 10),
		PGMinConns:          pkgconfig.GetEnvInt("PG_MIN_CONNS", 2),
		PGMaxConnLifetime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: pkgconfig.GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),
	}

	return cfg
}
