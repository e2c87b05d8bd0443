// Package executor turns raw query strings into ranked search results
// against one or more frozen n-gram indexes.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
)

// ScoredDoc is one ranked hit.
type ScoredDoc struct {
	ID    uint32  `json:"id"`
	Score float64 `json:"score"`
}

// SearchResult is the executor's answer for one query.
type SearchResult struct {
	Query     string      `json:"query"`
	TotalHits int         `json:"total_hits"`
	Results   []ScoredDoc `json:"results"`
}

// Executor ranks queries against a single index.
type Executor struct {
	ix        *index.Index
	maxGramDF int
	logger    *slog.Logger
}

// New creates an Executor over ix. maxGramDF > 0 prunes query grams whose
// document frequency is at or above the threshold.
func New(ix *index.Index, maxGramDF int) *Executor {
	return &Executor{
		ix:        ix,
		maxGramDF: maxGramDF,
		logger:    slog.Default().With("component", "query-executor"),
	}
}

// Execute scores the query and returns up to limit hits ordered by
// descending score, ties broken by ascending id. Returns
// index.ErrEmptyQuery (wrapped) when the query has nothing to score.
func (e *Executor) Execute(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec, err := e.ix.MakeQueryVec(query)
	if err != nil {
		return nil, fmt.Errorf("building query vector: %w", err)
	}
	hits := rank(e.ix, vec, e.maxGramDF)
	total := len(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	e.logger.Debug("query executed",
		"query", query,
		"hits", total,
		"returned", len(hits),
	)
	return &SearchResult{
		Query:     query,
		TotalHits: total,
		Results:   hits,
	}, nil
}

// rank materializes and sorts the scored sequence for one index.
func rank(ix *index.Index, vec *index.QueryVector, maxGramDF int) []ScoredDoc {
	hits := make([]ScoredDoc, 0, 32)
	for id, score := range ix.FindRare(vec, maxGramDF) {
		hits = append(hits, ScoredDoc{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}
