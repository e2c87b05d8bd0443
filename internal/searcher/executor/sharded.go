package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
)

// Holder carries the current generation of shard indexes and supports
// atomic replacement when fresh snapshots arrive. Readers always see a
// complete, consistent generation.
type Holder struct {
	indexes atomic.Pointer[[]*index.Index]
}

// NewHolder creates a Holder seeded with the given shard indexes.
func NewHolder(indexes []*index.Index) *Holder {
	h := &Holder{}
	h.Replace(indexes)
	return h
}

// Replace swaps in a new generation of shard indexes.
func (h *Holder) Replace(indexes []*index.Index) {
	h.indexes.Store(&indexes)
}

// Indexes returns the current generation.
func (h *Holder) Indexes() []*index.Index {
	p := h.indexes.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Docs returns the total document count across all shards.
func (h *Holder) Docs() int {
	total := 0
	for _, ix := range h.Indexes() {
		total += ix.Len()
	}
	return total
}

// ShardedExecutor fans a query out over every shard index concurrently and
// merges the per-shard rankings. Document ids are disjoint across shards,
// so merging never deduplicates.
type ShardedExecutor struct {
	holder    *Holder
	maxGramDF int
	logger    *slog.Logger
}

// NewSharded creates a ShardedExecutor over the holder's shard indexes.
func NewSharded(holder *Holder, maxGramDF int) *ShardedExecutor {
	return &ShardedExecutor{
		holder:    holder,
		maxGramDF: maxGramDF,
		logger:    slog.Default().With("component", "sharded-executor"),
	}
}

// Execute queries every shard in parallel. Each shard weighs the query
// against its own corpus statistics; a shard with no overlap contributes no
// hits. The query only fails with index.ErrEmptyQuery when no shard can
// score it.
func (se *ShardedExecutor) Execute(ctx context.Context, query string, limit int) (*SearchResult, error) {
	indexes := se.holder.Indexes()
	if len(indexes) == 0 {
		return nil, errors.New("no shard indexes loaded")
	}

	shardHits := make([][]ScoredDoc, len(indexes))
	g, ctx := errgroup.WithContext(ctx)
	for shardID, ix := range indexes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vec, err := ix.MakeQueryVec(query)
			if err != nil {
				if errors.Is(err, index.ErrEmptyQuery) {
					return nil
				}
				return fmt.Errorf("shard %d: %w", shardID, err)
			}
			shardHits[shardID] = rank(ix, vec, se.maxGramDF)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("shard fan-out: %w", err)
	}

	total := 0
	scorable := false
	for _, hits := range shardHits {
		total += len(hits)
		if hits != nil {
			scorable = true
		}
	}
	if !scorable {
		return nil, fmt.Errorf("across %d shards: %w", len(indexes), index.ErrEmptyQuery)
	}

	merged := Merge(shardHits, limit)
	se.logger.Debug("sharded query executed",
		"query", query,
		"shards", len(indexes),
		"hits", total,
		"returned", len(merged),
	)
	return &SearchResult{
		Query:     query,
		TotalHits: total,
		Results:   merged,
	}, nil
}
