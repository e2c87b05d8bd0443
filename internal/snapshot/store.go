// Package snapshot persists serialized shard indexes in PostgreSQL. The
// indexer writes one row per shard per rebuild cycle; searchers load the
// latest row per shard on startup and on index-complete events.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/rohith-raj-v/fuzzy-search-platform/pkg/errors"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/postgres"
)

// Record is one persisted shard snapshot.
type Record struct {
	ShardID  int
	DocCount int
	BuiltAt  time.Time
	Data     []byte
}

// Store reads and writes snapshot rows.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a Store over the given postgres client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "snapshot-store"),
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS index_snapshots (
			id        BIGSERIAL PRIMARY KEY,
			shard_id  INT NOT NULL,
			doc_count INT NOT NULL,
			built_at  TIMESTAMPTZ NOT NULL,
			data      BYTEA NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating index_snapshots table: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS index_snapshots_shard_built
		ON index_snapshots (shard_id, built_at DESC)`)
	if err != nil {
		return fmt.Errorf("creating index_snapshots index: %w", err)
	}
	return nil
}

// Save writes one snapshot row per record inside a single transaction and
// prunes superseded rows, keeping only the newest row per shard.
func (s *Store) Save(ctx context.Context, records []Record) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO index_snapshots (shard_id, doc_count, built_at, data)
				 VALUES ($1, $2, $3, $4)`,
				rec.ShardID, rec.DocCount, rec.BuiltAt, rec.Data,
			); err != nil {
				return fmt.Errorf("inserting snapshot for shard %d: %w", rec.ShardID, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM index_snapshots s
			WHERE s.id NOT IN (
				SELECT DISTINCT ON (shard_id) id
				FROM index_snapshots
				ORDER BY shard_id, built_at DESC, id DESC
			)`); err != nil {
			return fmt.Errorf("pruning superseded snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("snapshots saved", "shards", len(records))
	return nil
}

// LoadLatest returns the newest snapshot for one shard.
func (s *Store) LoadLatest(ctx context.Context, shardID int) (*Record, error) {
	row := s.db.DB.QueryRowContext(ctx, `
		SELECT shard_id, doc_count, built_at, data
		FROM index_snapshots
		WHERE shard_id = $1
		ORDER BY built_at DESC, id DESC
		LIMIT 1`, shardID)
	var rec Record
	if err := row.Scan(&rec.ShardID, &rec.DocCount, &rec.BuiltAt, &rec.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, 404, "no snapshot for shard %d", shardID)
		}
		return nil, fmt.Errorf("loading snapshot for shard %d: %w", shardID, err)
	}
	return &rec, nil
}

// LoadAll returns the newest snapshot for every shard in [0, numShards).
func (s *Store) LoadAll(ctx context.Context, numShards int) ([]Record, error) {
	records := make([]Record, 0, numShards)
	for shardID := 0; shardID < numShards; shardID++ {
		rec, err := s.LoadLatest(ctx, shardID)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}
