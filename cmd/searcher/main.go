// Command searcher serves fuzzy search queries over the latest shard
// snapshots. On startup it loads every shard's snapshot from PostgreSQL; at
// runtime it reloads them whenever the indexer announces a completed
// rebuild cycle on Kafka, invalidating the Redis query cache in the same
// breath.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/searcher/cache"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/searcher/executor"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/searcher/handler"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/snapshot"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/health"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/kafka"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/logger"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/metrics"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/middleware"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/postgres"
	pkgredis "github.com/rohith-raj-v/fuzzy-search-platform/pkg/redis"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting searcher service",
		"port", cfg.Server.Port,
		"num_shards", cfg.Index.NumShards,
	)

	m := metrics.New()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	store := snapshot.NewStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var indexes []*index.Index
	err = resilience.Retry(ctx, "snapshot_load", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		loaded, err := loadShards(ctx, store, cfg.Index.NumShards)
		if err != nil {
			return err
		}
		indexes = loaded
		return nil
	})
	if err != nil {
		slog.Error("failed to load shard snapshots", "error", err)
		os.Exit(1)
	}
	holder := executor.NewHolder(indexes)
	slog.Info("shard indexes loaded", "shards", len(indexes), "docs", holder.Docs())

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	// Reload snapshots whenever the indexer finishes a cycle. Stale cache
	// entries are dropped in the same handler so clients never see scores
	// from a mix of generations.
	reloadConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.IndexComplete,
		func(ctx context.Context, key []byte, value []byte) error {
			event, err := kafka.DecodeJSON[ingestion.IndexCompleteEvent](value)
			if err != nil {
				slog.Error("failed to decode index-complete event", "error", err)
				return nil
			}
			loaded, err := loadShards(ctx, store, cfg.Index.NumShards)
			if err != nil {
				slog.Error("snapshot reload failed", "error", err)
				return nil
			}
			holder.Replace(loaded)
			if queryCache != nil {
				if err := queryCache.Invalidate(ctx); err != nil {
					slog.Error("cache invalidation after reload failed", "error", err)
				}
			}
			slog.Info("shard indexes reloaded",
				"shards", event.Shards,
				"docs", event.DocCount,
			)
			return nil
		},
	)
	go func() {
		if err := reloadConsumer.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("index-complete consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if holder.Docs() == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d docs across %d shards", holder.Docs(), len(holder.Indexes())),
		}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	exec := executor.NewSharded(holder, cfg.Search.MaxGramDF)
	h := handler.New(exec, queryCache, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("searcher service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("searcher service stopped")
}

// loadShards fetches the latest snapshot for every shard and deserializes
// each one into an immutable index.
func loadShards(ctx context.Context, store *snapshot.Store, numShards int) ([]*index.Index, error) {
	records, err := store.LoadAll(ctx, numShards)
	if err != nil {
		return nil, err
	}
	indexes := make([]*index.Index, len(records))
	for i, rec := range records {
		ix, err := index.Deserialize(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("deserializing shard %d snapshot: %w", rec.ShardID, err)
		}
		indexes[i] = ix
	}
	return indexes, nil
}
