package index

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceTerms = []string{
	"music",          // 0
	"muskel",         // 1
	"kindergarten",   // 2
	"preschool",      // 3
	"school",         // 4
	"highschool",     // 5
	"to skip school", // 6
	"kind",           // 7
}

func referenceIndex(t *testing.T) *Index {
	t.Helper()
	b, err := NewBuilder(3)
	require.NoError(t, err)
	for id, term := range referenceTerms {
		b.Insert(term, uint32(id))
	}
	return b.Build()
}

func rankedIDs(scores map[uint32]float64) []uint32 {
	ids := make([]uint32, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return scores[ids[i]] > scores[ids[j]] })
	return ids
}

func TestFindRanksBySimilarity(t *testing.T) {
	ix := referenceIndex(t)
	scores := collect(t, ix, "shol")

	assert.Equal(t, []uint32{4, 3, 5, 6, 1}, rankedIDs(scores))
	for _, absent := range []uint32{0, 2, 7} {
		assert.NotContains(t, scores, absent)
	}
	for id, score := range scores {
		assert.Greater(t, score, 0.0, "id %d", id)
		assert.LessOrEqual(t, score, 1.0, "id %d", id)
	}
}

func TestQueryingExactTermRanksItselfFirst(t *testing.T) {
	ix := referenceIndex(t)
	for id, term := range referenceTerms {
		scores := collect(t, ix, term)
		own := scores[uint32(id)]
		assert.InDelta(t, 1.0, own, 1e-9, "term %q", term)
		for other, score := range scores {
			if other != uint32(id) {
				assert.GreaterOrEqual(t, own, score, "term %q vs id %d", term, other)
			}
		}
	}
}

func TestFindExcludesDisjointDocuments(t *testing.T) {
	ix := referenceIndex(t)
	scores := collect(t, ix, "music")
	// "kindergarten" and "kind" share no gram with "music".
	assert.NotContains(t, scores, uint32(2))
	assert.NotContains(t, scores, uint32(7))
	assert.Contains(t, scores, uint32(0))
}

func TestMakeQueryVecRejectsEmptyInput(t *testing.T) {
	ix := referenceIndex(t)
	for _, query := range []string{"", "§§"} {
		vec, err := ix.MakeQueryVec(query)
		assert.ErrorIs(t, err, ErrEmptyQuery, "query %q", query)
		assert.Nil(t, vec)
	}
}

func TestMakeQueryVecRejectsUnknownVocabulary(t *testing.T) {
	ix := referenceIndex(t)
	// Every gram of "xyzw" is outside the vocabulary, leaving a zero-norm
	// vector that could never participate in a cosine.
	vec, err := ix.MakeQueryVec("xyzw")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Nil(t, vec)
}

func TestFindScoresBitwiseStable(t *testing.T) {
	ix := referenceIndex(t)
	baseline := collect(t, ix, "shol")
	baseNorm := func() float64 {
		vec, err := ix.MakeQueryVec("shol")
		require.NoError(t, err)
		return vec.Norm()
	}()

	// Float sums depend on accumulation order; the scoring path must fix
	// that order so every run reproduces the first bit for bit.
	for run := 0; run < 200; run++ {
		vec, err := ix.MakeQueryVec("shol")
		require.NoError(t, err)
		if vec.Norm() != baseNorm {
			t.Fatalf("run %d: query norm %v differs from first run %v", run, vec.Norm(), baseNorm)
		}
		for id, score := range ix.Find(vec) {
			if score != baseline[id] {
				t.Fatalf("run %d: id %d scored %v, first run scored %v", run, id, score, baseline[id])
			}
		}
	}
}

func TestFindIsRepeatable(t *testing.T) {
	ix := referenceIndex(t)
	vec, err := ix.MakeQueryVec("shol")
	require.NoError(t, err)

	first := make(map[uint32]float64)
	for id, score := range ix.Find(vec) {
		first[id] = score
	}
	second := make(map[uint32]float64)
	for id, score := range ix.Find(vec) {
		second[id] = score
	}
	assert.Equal(t, first, second)
}

func TestFindStopsWhenConsumerBreaks(t *testing.T) {
	ix := referenceIndex(t)
	vec, err := ix.MakeQueryVec("school")
	require.NoError(t, err)

	seen := 0
	for range ix.Find(vec) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestFindRareSkipsCommonGrams(t *testing.T) {
	ix := referenceIndex(t)
	vec, err := ix.MakeQueryVec("school")
	require.NoError(t, err)

	// With maxDF 2 only grams unique to "school" survive ("§§s" and
	// "§sc", both df 1), so only id 4 can score.
	scores := make(map[uint32]float64)
	for id, score := range ix.FindRare(vec, 2) {
		scores[id] = score
	}
	assert.Len(t, scores, 1)
	assert.Contains(t, scores, uint32(4))

	unfiltered := make(map[uint32]float64)
	for id, score := range ix.FindRare(vec, 0) {
		unfiltered[id] = score
	}
	assert.Equal(t, collect(t, ix, "school"), unfiltered)
}

func TestIndexAccessors(t *testing.T) {
	ix := referenceIndex(t)
	assert.Equal(t, 3, ix.N())
	assert.Equal(t, len(referenceTerms), ix.Len())
	assert.False(t, ix.IsEmpty())
	assert.Greater(t, ix.Terms(), 0)
}
