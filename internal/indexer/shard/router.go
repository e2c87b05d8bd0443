// Package shard provides hash-based shard routing for index engines. Each
// shard owns an independent indexer.Engine, and the Router dispatches term
// inserts by document id so one id always lands in the same shard.
package shard

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/indexer"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
)

// Snapshot is one shard's freshly rebuilt index and its serialized form.
type Snapshot struct {
	ShardID  int
	Index    *index.Index
	Data     []byte
	DocCount int
	BuiltAt  time.Time
}

// Router maps shard IDs to dedicated indexer.Engine instances.
type Router struct {
	engines   []*indexer.Engine
	numShards int
	logger    *slog.Logger
}

// NewRouter creates numShards engines sharing the same index config.
func NewRouter(cfg config.IndexConfig, numShards int) (*Router, error) {
	if numShards < 1 {
		return nil, fmt.Errorf("shard count must be at least 1, got %d", numShards)
	}
	r := &Router{
		engines:   make([]*indexer.Engine, numShards),
		numShards: numShards,
		logger:    slog.Default().With("component", "shard-router"),
	}
	for i := 0; i < numShards; i++ {
		engine, err := indexer.NewEngine(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating engine for shard %d: %w", i, err)
		}
		r.engines[i] = engine
	}
	r.logger.Info("shard router ready", "num_shards", numShards, "gram_length", cfg.GramLength)
	return r, nil
}

// ShardFor returns the shard id owning the given document id.
func (r *Router) ShardFor(id uint32) int {
	return int(id % uint32(r.numShards))
}

// Insert routes a term insert to its owning shard engine.
func (r *Router) Insert(term string, id uint32) {
	r.engines[r.ShardFor(id)].Insert(term, id)
}

// Engines returns the shard engines in shard-id order.
func (r *Router) Engines() []*indexer.Engine {
	return r.engines
}

// NumShards returns the number of shards managed by this router.
func (r *Router) NumShards() int {
	return r.numShards
}

// Pending returns the total number of inserts accepted since the last
// rebuild across all shards.
func (r *Router) Pending() int {
	total := 0
	for _, engine := range r.engines {
		total += engine.Pending()
	}
	return total
}

// RebuildAll rebuilds every shard engine and returns one serialized
// Snapshot per shard.
func (r *Router) RebuildAll() ([]Snapshot, error) {
	snapshots := make([]Snapshot, 0, r.numShards)
	for shardID, engine := range r.engines {
		ix, err := engine.Rebuild()
		if err != nil {
			return nil, fmt.Errorf("rebuilding shard %d: %w", shardID, err)
		}
		snapshots = append(snapshots, Snapshot{
			ShardID:  shardID,
			Index:    ix,
			Data:     index.Serialize(ix),
			DocCount: ix.Len(),
			BuiltAt:  time.Now().UTC(),
		})
	}
	return snapshots, nil
}
