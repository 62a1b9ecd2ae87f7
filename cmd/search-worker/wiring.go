// cmd/search-worker/wiring.go
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sustainatrend-search/internal/common/config"
	"sustainatrend-search/internal/common/database"
	apperrors "sustainatrend-search/internal/common/errors"
	"sustainatrend-search/internal/common/logger"
	"sustainatrend-search/internal/search"
	"sustainatrend-search/internal/sources/catalog"
	"sustainatrend-search/internal/sources/websearch"
)

// backends holds the store clients opened for the configured sources.
type backends struct {
	postgres *database.PostgresClient
	es       *database.ElasticsearchClient
	redis    *database.RedisClient
}

// pingers lists the opened stores for the readiness probe.
func (b *backends) pingers() []database.Pinger {
	var deps []database.Pinger
	if b.postgres != nil {
		deps = append(deps, b.postgres)
	}
	if b.es != nil {
		deps = append(deps, b.es)
	}
	if b.redis != nil {
		deps = append(deps, b.redis)
	}
	return deps
}

func (b *backends) Close(log logger.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Error("error closing redis", map[string]interface{}{"error": err.Error()})
		}
	}
	if b.postgres != nil {
		if err := b.postgres.Close(); err != nil {
			log.Error("error closing postgres", map[string]interface{}{"error": err.Error()})
		}
	}
}

// retryWithBackoff runs operation until it succeeds, maxRetries is reached or ctx ends,
// doubling the delay after each failure.
func retryWithBackoff(ctx context.Context, operation func(context.Context) error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(ctx); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying", operationName), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryMs": delay.Milliseconds(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// connectRetries and connectDelay bound the startup wait for each store.
var (
	connectRetries = 10
	connectDelay   = 2 * time.Second
)

// newInternalSource opens the catalog backend named by search.internal_backend.
func newInternalSource(ctx context.Context, cfg *config.Config, b *backends, log logger.Logger) (search.Fetcher, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Search.InternalBackend))

	switch backend {
	case "", config.BackendGenerator:
		return catalog.NewGenerator(), nil

	case config.BackendElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, apperrors.NewElasticsearchConnectionFailedError(err)
		}
		if err := retryWithBackoff(ctx, es.Ping, connectRetries, connectDelay, log, "elasticsearch connection"); err != nil {
			return nil, apperrors.NewElasticsearchConnectionFailedError(err)
		}
		b.es = es
		return catalog.NewElasticsearchCatalog(es.Client, cfg.Search.ElasticsearchIndex), nil

	case config.BackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		if err := retryWithBackoff(ctx, pg.Ping, connectRetries, connectDelay, log, "postgres connection"); err != nil {
			_ = pg.Close()
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		b.postgres = pg
		src, err := catalog.NewPostgresCatalog(pg.DB, cfg.Search.PostgresTable)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, fmt.Errorf("unknown internal backend %q", cfg.Search.InternalBackend)
}

// newWebSearch builds the external fetcher and its daily quota store.
func newWebSearch(ctx context.Context, cfg *config.Config, b *backends, log logger.Logger) (*websearch.Fetcher, error) {
	wsCfg := cfg.APIs.WebSearch

	var quota websearch.QuotaStore
	switch {
	case wsCfg.DailyQuota <= 0:
		log.Info("web search quota disabled", nil)
	case strings.EqualFold(wsCfg.QuotaStore, config.QuotaStoreRedis):
		rc := database.NewRedis(cfg.Database.Redis)
		if err := retryWithBackoff(ctx, rc.Ping, connectRetries, connectDelay, log, "redis connection"); err != nil {
			_ = rc.Close()
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		b.redis = rc
		quota = websearch.NewRedisQuota(rc.Client, wsCfg.DailyQuota, time.Now)
	default:
		quota = websearch.NewMemoryQuota(wsCfg.DailyQuota, time.Now)
	}

	return websearch.NewFetcher(websearch.NewConfig(wsCfg), quota, log), nil
}
