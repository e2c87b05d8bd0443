package executor

import "testing"

func TestMergeOrdersByScoreThenID(t *testing.T) {
	shard0 := []ScoredDoc{
		{ID: 4, Score: 0.9},
		{ID: 6, Score: 0.3},
	}
	shard1 := []ScoredDoc{
		{ID: 3, Score: 0.5},
		{ID: 5, Score: 0.3},
		{ID: 1, Score: 0.1},
	}

	merged := Merge([][]ScoredDoc{shard0, shard1}, 10)
	want := []uint32{4, 3, 5, 6, 1}
	if len(merged) != len(want) {
		t.Fatalf("expected %d docs, got %d", len(want), len(merged))
	}
	for i, doc := range merged {
		if doc.ID != want[i] {
			t.Errorf("rank %d: expected id %d, got %d", i, want[i], doc.ID)
		}
	}
	// 5 and 6 tie on score, lower id wins.
	if merged[2].ID != 5 || merged[3].ID != 6 {
		t.Errorf("tie not broken by ascending id: %+v", merged[2:4])
	}
}

func TestMergeRespectsLimit(t *testing.T) {
	shard := []ScoredDoc{
		{ID: 1, Score: 0.1},
		{ID: 2, Score: 0.9},
		{ID: 3, Score: 0.5},
	}
	merged := Merge([][]ScoredDoc{shard}, 2)
	if len(merged) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(merged))
	}
	if merged[0].ID != 2 || merged[1].ID != 3 {
		t.Errorf("expected top-2 [2 3], got %+v", merged)
	}
}

func TestMergeDefaultLimit(t *testing.T) {
	shard := make([]ScoredDoc, 25)
	for i := range shard {
		shard[i] = ScoredDoc{ID: uint32(i), Score: float64(i)}
	}
	merged := Merge([][]ScoredDoc{shard}, 0)
	if len(merged) != 10 {
		t.Fatalf("expected default limit of 10, got %d", len(merged))
	}
	if merged[0].ID != 24 {
		t.Errorf("expected highest score first, got id %d", merged[0].ID)
	}
}

func TestMergeEmptyShards(t *testing.T) {
	merged := Merge([][]ScoredDoc{nil, {}, nil}, 10)
	if len(merged) != 0 {
		t.Fatalf("expected no docs, got %d", len(merged))
	}
}
