// Package publisher forwards validated term entries to Kafka for downstream
// indexing. Events are keyed by document id so that all inserts for an id
// land on the same partition and reach its shard in order.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/ingestion"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/kafka"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/metrics"
)

// Publisher turns accepted term batches into Kafka term events.
type Publisher struct {
	producer *kafka.Producer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Publisher with the given Kafka producer. m may be nil.
func New(producer *kafka.Producer, m *metrics.Metrics) *Publisher {
	return &Publisher{
		producer: producer,
		metrics:  m,
		logger:   slog.Default().With("component", "term-publisher"),
	}
}

// Ingest publishes every entry of the request as a TermEvent.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	entries := req.Entries()
	events := make([]kafka.Event, 0, len(entries))
	now := time.Now().UTC()
	for _, entry := range entries {
		events = append(events, kafka.Event{
			Key: strconv.FormatUint(uint64(entry.ID), 10),
			Value: ingestion.TermEvent{
				Term:       entry.Term,
				ID:         entry.ID,
				IngestedAt: now,
			},
		})
	}
	if err := p.producer.PublishBatch(ctx, events); err != nil {
		return nil, fmt.Errorf("publishing %d term events: %w", len(events), err)
	}
	if p.metrics != nil {
		p.metrics.TermsIngestedTotal.Add(float64(len(events)))
	}
	p.logger.Info("terms published", "count", len(events))
	return &ingestion.IngestResponse{
		Accepted: len(entries),
		Status:   "ACCEPTED",
	}, nil
}
