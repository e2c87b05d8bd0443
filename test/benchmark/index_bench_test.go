// Package benchmark contains Go benchmarks for the n-gram builder, query
// execution, and the binary codec, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/rohith-raj-v/fuzzy-search-platform/internal/index"
	"github.com/rohith-raj-v/fuzzy-search-platform/internal/indexer"
	"github.com/rohith-raj-v/fuzzy-search-platform/pkg/config"
)

var words = []string{
	"school", "preschool", "highschool", "kindergarten", "music",
	"muskel", "scholar", "schooner", "shoulder", "household",
}

func syntheticTerm(i int) string {
	return fmt.Sprintf("%s %s %d", words[i%len(words)], words[(i+3)%len(words)], i)
}

func builtIndex(b *testing.B, docs int) *index.Index {
	b.Helper()
	builder, err := index.NewBuilder(3)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < docs; i++ {
		builder.Insert(syntheticTerm(i), uint32(i))
	}
	return builder.Build()
}

// BenchmarkBuilderInsert measures per-term insert throughput during the
// accumulation phase.
func BenchmarkBuilderInsert(b *testing.B) {
	builder, err := index.NewBuilder(3)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.Insert(syntheticTerm(i), uint32(i))
	}
}

// BenchmarkBuild measures the freeze step at various corpus sizes.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{100, 1000, 10000}
	for _, docs := range sizes {
		b.Run(fmt.Sprintf("docs_%d", docs), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				builder, err := index.NewBuilder(3)
				if err != nil {
					b.Fatal(err)
				}
				for d := 0; d < docs; d++ {
					builder.Insert(syntheticTerm(d), uint32(d))
				}
				b.StartTimer()
				ix := builder.Build()
				_ = ix
			}
		})
	}
}

// BenchmarkFind measures single-query scoring latency over 10 000
// documents.
func BenchmarkFind(b *testing.B) {
	ix := builtIndex(b, 10000)
	vec, err := ix.MakeQueryVec("school")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count := 0
		for range ix.Find(vec) {
			count++
		}
		_ = count
	}
}

// BenchmarkFindParallel measures concurrent read throughput; the frozen
// index takes no locks.
func BenchmarkFindParallel(b *testing.B) {
	ix := builtIndex(b, 10000)
	vec, err := ix.MakeQueryVec("school")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			count := 0
			for range ix.Find(vec) {
				count++
			}
			_ = count
		}
	})
}

// BenchmarkSerialize measures snapshot encoding cost.
func BenchmarkSerialize(b *testing.B) {
	ix := builtIndex(b, 5000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := index.Serialize(ix)
		_ = data
	}
}

// BenchmarkDeserialize measures snapshot decoding cost, the dominant term
// in searcher startup.
func BenchmarkDeserialize(b *testing.B) {
	data := index.Serialize(builtIndex(b, 5000))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix, err := index.Deserialize(data)
		if err != nil {
			b.Fatal(err)
		}
		_ = ix
	}
}

// BenchmarkEngineRebuild measures a full engine rebuild at various insert
// log sizes.
func BenchmarkEngineRebuild(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	for _, preload := range sizes {
		b.Run(fmt.Sprintf("inserts_%d", preload), func(b *testing.B) {
			engine, err := indexer.NewEngine(config.IndexConfig{GramLength: 3})
			if err != nil {
				b.Fatal(err)
			}
			for i := 0; i < preload; i++ {
				engine.Insert(syntheticTerm(i), uint32(i))
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Rebuild(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
