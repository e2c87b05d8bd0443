// Package consumer reads term events from Kafka and feeds them into the
// shard router's accumulation engines.
package consumer

import (
	"context"
	"log/slog"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/indexer/shard"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/kafka"
)

// TermConsumer wraps a Kafka consumer to drive the accumulation pipeline.
type TermConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates a TermConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *TermConsumer {
	return &TermConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "term-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (tc *TermConsumer) Start(ctx context.Context) error {
	tc.logger.Info("term consumer starting")
	return tc.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that routes each term event
// to its shard engine. Malformed events are logged and skipped rather than
// retried; they would fail identically forever.
func HandleMessage(router *shard.Router) kafka.MessageHandler {
	logger := slog.Default().With("component", "term-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.TermEvent](value)
		if err != nil {
			logger.Error("failed to decode term event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		router.Insert(event.Term, event.ID)
		logger.Debug("term accepted",
			"id", event.ID,
			"shard_id", router.ShardFor(event.ID),
		)
		return nil
	}
}
