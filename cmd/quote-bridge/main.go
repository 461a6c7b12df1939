package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/netric-solutions/quote-bridge/internal/accounting"
	"github.com/netric-solutions/quote-bridge/internal/api"
	"github.com/netric-solutions/quote-bridge/internal/config"
	"github.com/netric-solutions/quote-bridge/internal/notifier"
	"github.com/netric-solutions/quote-bridge/internal/publisher"
	"github.com/netric-solutions/quote-bridge/internal/quote"
	"github.com/netric-solutions/quote-bridge/internal/rabbitmq"
	"github.com/netric-solutions/quote-bridge/internal/rate"
	"github.com/netric-solutions/quote-bridge/internal/relay"
	"github.com/netric-solutions/quote-bridge/internal/store"
	"github.com/netric-solutions/quote-bridge/pkg/logger"
	"github.com/netric-solutions/quote-bridge/pkg/secrets"
	"github.com/netric-solutions/quote-bridge/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logg := logger.S()
	logg.Info("starting [quote-bridge]...")
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
	}

	// --- Accounting gateway credentials ---
	var resolver accounting.CredentialResolver
	stopCleaner := make(chan struct{})
	if cfg.AccountingSecretName != "" {
		awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		credCache := secrets.NewCache[accounting.Credentials](cfg.CacheTTL)
		go credCache.StartCleaner(cfg.CleanupFreq, stopCleaner)
		resolver = accounting.NewAWSResolver(logg.Desugar(), cfg.AccountingSecretName, awsProvider, credCache)
	} else {
		logg.Warn("ACCOUNTING_SECRET_NAME not set; using static gateway credentials")
		resolver = accounting.NewStaticResolver(cfg.AccountingUsername, cfg.AccountingPassword)
	}

	// --- Connect to NATS (optional) ---
	var nc *nats.Conn
	var pub *publisher.Publisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Warnw("failed to connect to NATS; events disabled", "error", err)
		} else {
			nc = conn
			pub, err = publisher.New(nc, "evt.quote", cfg.ServiceName)
			if err != nil {
				logg.Fatalw("failed to init publisher", "error", err)
			}
		}
	}

	// --- RabbitMQ confirmations for the legacy ERP (optional) ---
	var legacyQueue *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		lq, err := rabbitmq.NewPublisher(cfg.AMQPURL, logg.Desugar())
		if err != nil {
			logg.Warnw("failed to connect to RabbitMQ; confirmations disabled", "error", err)
		} else {
			legacyQueue = lq
		}
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: 10,
		Burst:             20,
		Cooldown:          1 * time.Second,
	})

	// --- Relay store (Redis when configured, memory otherwise) ---
	var relayStore relay.Store
	if cfg.RedisAddr != "" {
		rs, err := relay.NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logg.Fatalw("failed to init relay store", "error", err)
		}
		relayStore = rs
	} else {
		logg.Warn("REDIS_ADDR not set; relay payloads are held in memory only")
		relayStore = relay.NewMemoryStore()
	}

	// --- History store (Redis + Postgres hybrid, optional) ---
	var historyStore store.Store
	if cfg.RedisAddr != "" {
		st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
			MaxConns:          int32(cfg.PGMaxConns),
			MinConns:          int32(cfg.PGMinConns),
			MaxConnLifetime:   cfg.PGMaxConnLifetime,
			MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
			HealthCheckPeriod: cfg.PGHealthCheckPeriod,
		}, logg.Desugar())
		if err != nil {
			logg.Fatalw("failed to init history store", "error", err)
		}
		historyStore = st
	} else {
		logg.Warn("REDIS_ADDR not set; quote history persistence disabled")
	}

	// --- Notification hub ---
	hub := notifier.NewHub(logg.Desugar())
	hub.Start(fmt.Sprintf(":%d", cfg.NotifyPort))
	logg.Infof("notification feed listening on :%d", cfg.NotifyPort)

	// --- Accounting gateway client ---
	gateway := accounting.NewClient(logg.Desugar(), rateMgr, cfg.AccountingBaseURL, cfg.AccountingTimeout, resolver)

	// --- Quote pipeline ---
	matcher := quote.NewMatcher(cfg.MatchCutoff, cfg.MatchCandidates)
	quoteSvc := quote.NewService(
		logg.Desugar(),
		gateway,
		matcher,
		historyStore,
		pub,
		legacyQueue,
		hub,
		cfg.QuotesDir,
		cfg.CacheTTL,
	)

	// --- Relay forwarder ---
	forwarder := relay.NewForwarder(logg.Desugar(), rateMgr, cfg.ForwardURL, cfg.ForwardTimeout)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	relayHandler := api.NewRelayHandler(logg.Desugar(), relayStore, forwarder, pub)
	quoteHandler := api.NewQuoteHandler(logg.Desugar(), quoteSvc)
	api.RegisterRoutes(app, nc, relayStore, historyStore, relayHandler, quoteHandler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[quote-bridge] running",
		"env", cfg.Env,
		"forward_url", cfg.ForwardURL,
		"accounting_url", cfg.AccountingBaseURL,
		"nats", cfg.NATSURL)

	<-ctx.Done()
	logg.Info("shutting down [quote-bridge]...")

	close(stopCleaner)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logg.Warnw("notifier.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if legacyQueue != nil {
		if err := legacyQueue.Close(); err != nil {
			logg.Warnw("rabbitmq.close_failed", "error", err)
		}
	}
	if err := relayStore.Close(); err != nil {
		logg.Warnw("relay_store.close_failed", "error", err)
	}
	if historyStore != nil {
		if err := historyStore.Close(); err != nil {
			logg.Warnw("store.close_failed", "error", err)
		}
	}
	_ = logger.Sync()
}
