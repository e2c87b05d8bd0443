// Command indexer runs the accumulation side of the platform. It consumes
// term events from Kafka, routes them into per-shard engines, periodically
// freezes each shard into an immutable index, persists the serialized
// snapshots to PostgreSQL, and announces each completed cycle on Kafka.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/indexer/consumer"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/indexer/shard"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/snapshot"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/kafka"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/logger"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/metrics"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/postgres"
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
	slog.Info("starting indexer service",
		"num_shards", cfg.Index.NumShards,
		"gram_length", cfg.Index.GramLength,
		"rebuild_interval", cfg.Index.RebuildInterval,
	)

	m := metrics.New()

	router, err := shard.NewRouter(cfg.Index, cfg.Index.NumShards)
	if err != nil {
		slog.Error("failed to create shard router", "error", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := snapshot.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to prepare snapshot schema", "error", err)
		os.Exit(1)
	}
	slog.Info("snapshot store ready")

	completeProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer completeProducer.Close()

	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	termConsumer := consumer.New(kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.TermIngest,
		consumer.HandleMessage(router),
	))
	go func() {
		if err := termConsumer.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Error("term consumer error", "error", err)
		}
	}()
	slog.Info("indexer service ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.TermIngest,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ticker := time.NewTicker(cfg.Index.RebuildInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// One final cycle so terms consumed since the last tick are
			// not lost.
			if router.Pending() > 0 {
				rebuildCycle(context.Background(), router, store, completeProducer, m)
			}
			if metricsShutdown != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				if err := metricsShutdown(shutdownCtx); err != nil {
					slog.Error("metrics server shutdown error", "error", err)
				}
				cancel()
			}
			slog.Info("indexer service stopped")
			return
		case <-ticker.C:
			if router.Pending() == 0 {
				continue
			}
			rebuildCycle(ctx, router, store, completeProducer, m)
		}
	}
}

// rebuildCycle freezes every shard, persists the snapshots, and announces
// completion. Failures leave the previous snapshot generation in place.
func rebuildCycle(
	ctx context.Context,
	router *shard.Router,
	store *snapshot.Store,
	producer *kafka.Producer,
	m *metrics.Metrics,
) {
	start := time.Now()
	snapshots, err := router.RebuildAll()
	if err != nil {
		slog.Error("rebuild failed", "error", err)
		m.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return
	}

	records := make([]snapshot.Record, 0, len(snapshots))
	docCount := 0
	for _, snap := range snapshots {
		records = append(records, snapshot.Record{
			ShardID:  snap.ShardID,
			DocCount: snap.DocCount,
			BuiltAt:  snap.BuiltAt,
			Data:     snap.Data,
		})
		docCount += snap.DocCount

		shardLabel := strconv.Itoa(snap.ShardID)
		m.ShardDocCount.WithLabelValues(shardLabel).Set(float64(snap.DocCount))
		m.ShardVocabularySize.WithLabelValues(shardLabel).Set(float64(snap.Index.Terms()))
		m.SnapshotBytes.WithLabelValues(shardLabel).Set(float64(len(snap.Data)))
	}

	err = resilience.Retry(ctx, "snapshot_save", resilience.RetryConfig{}, func() error {
		return store.Save(ctx, records)
	})
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		m.IndexRebuildsTotal.WithLabelValues("error").Inc()
		return
	}

	elapsed := time.Since(start)
	m.IndexRebuildsTotal.WithLabelValues("success").Inc()
	m.IndexRebuildDuration.Observe(elapsed.Seconds())

	event := ingestion.IndexCompleteEvent{
		Shards:    len(snapshots),
		DocCount:  docCount,
		BuiltAt:   time.Now().UTC(),
		DurationS: elapsed.Seconds(),
	}
	if err := producer.Publish(ctx, kafka.Event{Key: "index-complete", Value: event}); err != nil {
		slog.Error("failed to publish index-complete event", "error", err)
	}

	slog.Info("rebuild cycle complete",
		"shards", len(snapshots),
		"docs", docCount,
		"duration_ms", elapsed.Milliseconds(),
	)
}
