package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/cyclecare/internal/bootstrap"
	"github.com/yanqian/cyclecare/internal/domain/analytics"
	"github.com/yanqian/cyclecare/internal/domain/locator"
	"github.com/yanqian/cyclecare/internal/infra/config"
	"github.com/yanqian/cyclecare/internal/infra/payloadrepo"
	"github.com/yanqian/cyclecare/internal/infra/placecache"
	"github.com/yanqian/cyclecare/internal/infra/places/google"
)

func provideAnalyticsConfig(cfg *config.Config) analytics.Config {
	return analytics.Config{
		MoodSource:  analytics.MoodSource(cfg.Analytics.MoodSource),
		ReflowDelay: cfg.Analytics.ReflowDelay,
		BoardTTL:    cfg.Analytics.BoardTTL,
	}
}

func provideLocatorConfig(cfg *config.Config) locator.Config {
	lc := cfg.Locator
	out := locator.Config{
		DefaultType:       locator.FacilityType(lc.DefaultType),
		DefaultRadius:     lc.DefaultRadius,
		MaxRadius:         lc.MaxRadius,
		DisableFallback:   lc.DisableFallback,
		LocatingTimeout:   lc.LocatingTimeout,
		HighlightDuration: lc.HighlightDuration,
		SearchTimeout:     lc.SearchTimeout,
		SessionTTL:        lc.SessionTTL,
		CacheTTL:          cfg.Places.CacheTTL,
		AsyncSearch:       lc.AsyncSearch,
	}
	if !lc.DisableFallback {
		out.Fallback = &locator.LatLng{Lat: lc.FallbackLat, Lng: lc.FallbackLng}
	}
	return out
}

func providePlacesClient(cfg *config.Config, logger *slog.Logger) *google.Client {
	if strings.TrimSpace(cfg.Places.APIKey) == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, nearby search will fail")
	}
	return google.NewClient(cfg.Places.APIKey, google.Options{
		BaseURL:        cfg.Places.BaseURL,
		Timeout:        cfg.Places.Timeout,
		RequestsPerSec: cfg.Places.RequestsPerSecond,
		Burst:          cfg.Places.Burst,
	}, logger)
}

func providePayloadRepository(cfg *config.Config, logger *slog.Logger, closers *bootstrap.Closers) analytics.PayloadRepository {
	fallback := payloadrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory payload repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory payload repository", "error", err)
		return fallback
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory payload repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory payload repository", "error", err)
		pool.Close()
		return fallback
	}
	closers.Add("postgres", func() error { pool.Close(); return nil })
	logger.Info("postgres payload repository enabled")
	return payloadrepo.NewPostgresRepository(pool)
}

func providePlaceCache(cfg *config.Config, logger *slog.Logger, closers *bootstrap.Closers) locator.Cache {
	if !cfg.Places.Valkey.Enabled {
		return placecache.NewMemoryCache()
	}
	opt, err := buildValkeyOptions(cfg.Places.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return placecache.NewMemoryCache()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return placecache.NewMemoryCache()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return placecache.NewMemoryCache()
	}
	closers.Add("valkey", func() error { client.Close(); return nil })
	logger.Info("valkey place cache enabled", "addr", cfg.Places.Valkey.Addr)
	return placecache.NewValkeyCache(client, cfg.Places.Valkey.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
