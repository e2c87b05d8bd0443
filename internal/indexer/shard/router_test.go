package shard

import (
	"bytes"
	"testing"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
)

func testRouter(t *testing.T, numShards int) *Router {
	t.Helper()
	r, err := NewRouter(config.IndexConfig{GramLength: 3}, numShards)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRouterRejectsZeroShards(t *testing.T) {
	if _, err := NewRouter(config.IndexConfig{GramLength: 3}, 0); err == nil {
		t.Fatal("expected error for 0 shards")
	}
}

func TestShardForIsStable(t *testing.T) {
	r := testRouter(t, 4)
	for id := uint32(0); id < 100; id++ {
		want := int(id % 4)
		if got := r.ShardFor(id); got != want {
			t.Fatalf("id %d: expected shard %d, got %d", id, want, got)
		}
	}
}

func TestInsertRoutesByID(t *testing.T) {
	r := testRouter(t, 2)
	r.Insert("school", 0)
	r.Insert("preschool", 1)
	r.Insert("highschool", 2)
	if r.Pending() != 3 {
		t.Fatalf("expected 3 pending, got %d", r.Pending())
	}

	snapshots, err := r.RebuildAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].DocCount != 2 || snapshots[1].DocCount != 1 {
		t.Fatalf("unexpected shard doc counts: %d, %d", snapshots[0].DocCount, snapshots[1].DocCount)
	}
}

func TestSnapshotsRoundTrip(t *testing.T) {
	r := testRouter(t, 2)
	r.Insert("school", 0)
	r.Insert("preschool", 1)

	snapshots, err := r.RebuildAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, snap := range snapshots {
		ix, err := index.Deserialize(snap.Data)
		if err != nil {
			t.Fatalf("shard %d: %v", snap.ShardID, err)
		}
		if ix.Len() != snap.Index.Len() {
			t.Fatalf("shard %d: doc count mismatch", snap.ShardID)
		}
		if !bytes.Equal(index.Serialize(ix), snap.Data) {
			t.Fatalf("shard %d: serialized form not stable", snap.ShardID)
		}
	}
}
