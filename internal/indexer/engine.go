// Package indexer owns the accumulation side of the platform: it collects
// term inserts and periodically freezes them into immutable n-gram indexes.
package indexer

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
)

type termInsert struct {
	term string
	id   uint32
}

// Engine accumulates term inserts for one shard and rebuilds its index on
// demand. The vocabulary is closed but rebuildable: every rebuild replays
// the full insert log into a fresh Builder, so weights and norms always
// reflect the complete corpus and never depend on insert order.
type Engine struct {
	cfg    config.IndexConfig
	logger *slog.Logger

	mu      sync.Mutex
	inserts []termInsert
	pending int // inserts since the last rebuild

	current atomic.Pointer[index.Index]
}

// NewEngine creates an Engine and verifies the configured gram length by
// constructing a probe Builder.
func NewEngine(cfg config.IndexConfig) (*Engine, error) {
	if _, err := index.NewBuilder(cfg.GramLength); err != nil {
		return nil, fmt.Errorf("validating gram length %d: %w", cfg.GramLength, err)
	}
	return &Engine{
		cfg:    cfg,
		logger: slog.Default().With("component", "index-engine"),
	}, nil
}

// Insert records a term for the next rebuild. Never fails; empty terms are
// recorded so their ids still count as documents.
func (e *Engine) Insert(term string, id uint32) {
	e.mu.Lock()
	e.inserts = append(e.inserts, termInsert{term: term, id: id})
	e.pending++
	e.mu.Unlock()
}

// Rebuild replays the insert log into a fresh Builder, swaps the frozen
// result in as the current index, and returns it. Queries against the
// previous index keep working throughout; the swap is atomic.
func (e *Engine) Rebuild() (*index.Index, error) {
	e.mu.Lock()
	log := make([]termInsert, len(e.inserts))
	copy(log, e.inserts)
	e.pending = 0
	e.mu.Unlock()

	b, err := index.NewBuilder(e.cfg.GramLength)
	if err != nil {
		return nil, fmt.Errorf("creating builder: %w", err)
	}
	for _, ins := range log {
		b.Insert(ins.term, ins.id)
	}
	ix := b.Build()
	e.current.Store(ix)
	e.logger.Debug("index rebuilt",
		"inserts", len(log),
		"docs", ix.Len(),
		"vocabulary", ix.Terms(),
	)
	return ix, nil
}

// Current returns the most recently built index, or nil if Rebuild has not
// run yet.
func (e *Engine) Current() *index.Index {
	return e.current.Load()
}

// Pending returns the number of inserts accepted since the last rebuild.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// InsertCount returns the total size of the insert log.
func (e *Engine) InsertCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inserts)
}
