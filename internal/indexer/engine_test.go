package indexer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
)

func testConfig() config.IndexConfig {
	return config.IndexConfig{GramLength: 3, MaxTermLength: 1024}
}

func TestNewEngineRejectsZeroGramLength(t *testing.T) {
	_, err := NewEngine(config.IndexConfig{GramLength: 0})
	if err == nil {
		t.Fatal("expected error for gram length 0")
	}
}

func TestRebuildFreezesInsertLog(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if engine.Current() != nil {
		t.Fatal("expected no index before first rebuild")
	}

	engine.Insert("school", 1)
	engine.Insert("preschool", 2)
	if engine.Pending() != 2 {
		t.Fatalf("expected 2 pending inserts, got %d", engine.Pending())
	}

	ix, err := engine.Rebuild()
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 2 {
		t.Fatalf("expected 2 docs, got %d", ix.Len())
	}
	if engine.Current() != ix {
		t.Fatal("Current should return the freshly built index")
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected pending reset after rebuild, got %d", engine.Pending())
	}
}

func TestRebuildReplaysFullLog(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	engine.Insert("school", 1)
	if _, err := engine.Rebuild(); err != nil {
		t.Fatal(err)
	}

	// Later inserts must not lose the earlier corpus.
	engine.Insert("highschool", 2)
	ix, err := engine.Rebuild()
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 2 {
		t.Fatalf("expected both docs after second rebuild, got %d", ix.Len())
	}
	if engine.InsertCount() != 2 {
		t.Fatalf("expected insert log of 2, got %d", engine.InsertCount())
	}
}

func TestRebuildMergesRepeatedIDs(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	engine.Insert("foo", 7)
	engine.Insert("bar", 7)
	ix, err := engine.Rebuild()
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 1 {
		t.Fatalf("repeated id should merge into one document, got %d", ix.Len())
	}
}

func TestConcurrentInsertsSurviveRebuild(t *testing.T) {
	engine, err := NewEngine(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := uint32(w*perWorker + i)
				engine.Insert(fmt.Sprintf("term-%d", id), id)
			}
		}(w)
	}
	wg.Wait()

	ix, err := engine.Rebuild()
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != workers*perWorker {
		t.Fatalf("expected %d docs, got %d", workers*perWorker, ix.Len())
	}
}
