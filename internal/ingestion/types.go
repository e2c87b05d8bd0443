// Package ingestion defines the request/response types and Kafka event
// schemas used by the term ingestion pipeline.
package ingestion

import "time"

// TermEntry is a single term/id pair submitted for indexing.
type TermEntry struct {
	Term string `json:"term"`
	ID   uint32 `json:"id"`
}

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
// Either a single term or a batch may be supplied.
type IngestRequest struct {
	Term  *TermEntry  `json:"term,omitempty"`
	Terms []TermEntry `json:"terms,omitempty"`
}

// Entries flattens the request into a single batch.
func (r *IngestRequest) Entries() []TermEntry {
	if r.Term != nil {
		return append([]TermEntry{*r.Term}, r.Terms...)
	}
	return r.Terms
}

// IngestResponse is returned to the caller after terms are accepted.
type IngestResponse struct {
	Accepted int    `json:"accepted"`
	Status   string `json:"status"`
}

// TermEvent is the Kafka message payload carrying one term to the indexer.
type TermEvent struct {
	Term       string    `json:"term"`
	ID         uint32    `json:"id"`
	IngestedAt time.Time `json:"ingested_at"`
}

// IndexCompleteEvent is published after a rebuild cycle persists fresh
// snapshots; searchers reload and drop their caches on receipt.
type IndexCompleteEvent struct {
	Shards    int       `json:"shards"`
	DocCount  int       `json:"doc_count"`
	BuiltAt   time.Time `json:"built_at"`
	DurationS float64   `json:"duration_s"`
}
