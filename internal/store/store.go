package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

const customerCacheKey = "accounting:customers"

// Store defines the contract for caching customer lists and persisting
// quotation history.
type Store interface {
	RecordQuoteEvent(ctx context.Context, rec model.QuotationRecord) error
	UpsertQuotation(ctx context.Context, rec model.QuotationRecord) error
	CacheCustomers(ctx context.Context, records []model.CompanyRecord, ttl time.Duration) error
	CachedCustomers(ctx context.Context) ([]model.CompanyRecord, error)
	InvalidateCustomers(ctx context.Context) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store. Postgres is
// optional; history writes become no-ops without it.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

// RecordQuoteEvent inserts an immutable event into quotes.quote_event.
func (s *HybridStore) RecordQuoteEvent(ctx context.Context, rec model.QuotationRecord) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO quotes.quote_event (
			company_code, company_name, product_code,
			quantity, agent, doc_date, source_file, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, rec.CompanyCode, rec.CompanyName, rec.ProductCode,
		rec.Quantity, rec.Agent, rec.DocDate, rec.SourceFile)
	if err != nil {
		s.logger.Error("store.pg.insert_event_failed", zap.Error(err))
	}
	return err
}

// UpsertQuotation updates the quotation projection table.
func (s *HybridStore) UpsertQuotation(ctx context.Context, rec model.QuotationRecord) error {
	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO quotes.quotation (
			company_code, company_name, product_code,
			quantity, agent, doc_date, source_file, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_code, product_code, doc_date)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			agent = EXCLUDED.agent,
			source_file = EXCLUDED.source_file,
			processed_at = EXCLUDED.processed_at;
	`, rec.CompanyCode, rec.CompanyName, rec.ProductCode,
		rec.Quantity, rec.Agent, rec.DocDate, rec.SourceFile, rec.ProcessedAt)
	if err != nil {
		s.logger.Error("store.pg.quotation_upsert_failed", zap.Error(err))
	}
	return err
}

// CacheCustomers stores the full customer list fetched from the
// accounting gateway so each CSV row does not trigger a full re-fetch.
func (s *HybridStore) CacheCustomers(ctx context.Context, records []model.CompanyRecord, ttl time.Duration) error {
	return s.SetJSON(ctx, customerCacheKey, records, ttl)
}

// CachedCustomers returns the cached customer list, or nil on a miss.
func (s *HybridStore) CachedCustomers(ctx context.Context) ([]model.CompanyRecord, error) {
	data, err := s.redis.Get(ctx, customerCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var records []model.CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// InvalidateCustomers drops the cached customer list (after a create).
func (s *HybridStore) InvalidateCustomers(ctx context.Context) error {
	return s.redis.Del(ctx, customerCacheKey).Err()
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
