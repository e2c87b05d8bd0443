package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ix *Index, query string) map[uint32]float64 {
	t.Helper()
	vec, err := ix.MakeQueryVec(query)
	require.NoError(t, err)
	scores := make(map[uint32]float64)
	for id, score := range ix.Find(vec) {
		_, dup := scores[id]
		require.False(t, dup, "duplicate id %d in results", id)
		scores[id] = score
	}
	return scores
}

func TestNewBuilderRejectsZeroGramLength(t *testing.T) {
	b, err := NewBuilder(0)
	assert.ErrorIs(t, err, ErrZeroGramLength)
	assert.Nil(t, b)
}

func TestBuildIsDeterministic(t *testing.T) {
	build := func() *Index {
		b, err := NewBuilder(3)
		require.NoError(t, err)
		b.Insert("school", 0)
		b.Insert("preschool", 1)
		b.Insert("scholar", 2)
		return b.Build()
	}
	first := collect(t, build(), "school")
	second := collect(t, build(), "school")
	assert.Equal(t, first, second)
}

func TestInsertMergesRepeatIDs(t *testing.T) {
	// Splitting a document across inserts, in any order, must produce the
	// same vector as any other splitting of the same gram multiset.
	split, err := NewBuilder(2)
	require.NoError(t, err)
	split.Insert("ab", 7)
	split.Insert("cd", 7)
	split.Insert("abcd", 9)

	reversed, err := NewBuilder(2)
	require.NoError(t, err)
	reversed.Insert("abcd", 9)
	reversed.Insert("cd", 7)
	reversed.Insert("ab", 7)

	left, right := split.Build(), reversed.Build()
	for _, query := range []string{"ab", "cd", "abcd", "bc"} {
		assert.Equal(t, collect(t, left, query), collect(t, right, query), "query %q", query)
	}
}

func TestInsertEmptyTermCreatesUnfindableDocument(t *testing.T) {
	b, err := NewBuilder(3)
	require.NoError(t, err)
	b.Insert("school", 1)
	b.Insert("", 2)
	ix := b.Build()

	assert.Equal(t, 2, ix.Len())
	scores := collect(t, ix, "school")
	assert.Contains(t, scores, uint32(1))
	assert.NotContains(t, scores, uint32(2))
}

func TestBuildEmptyCorpus(t *testing.T) {
	b, err := NewBuilder(3)
	require.NoError(t, err)
	ix := b.Build()
	assert.True(t, ix.IsEmpty())
	assert.Zero(t, ix.Terms())

	_, err = ix.MakeQueryVec("anything")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestWeightsDecreaseWithDocumentFrequency(t *testing.T) {
	b, err := NewBuilder(3)
	require.NoError(t, err)
	b.Insert("school", 0)
	b.Insert("preschool", 1)
	b.Insert("highschool", 2)
	ix := b.Build()

	// "§§s" occurs only in "school"; "sch" occurs in all three.
	rare, common := ix.terms["§§s"], ix.terms["sch"]
	require.NotNil(t, rare)
	require.NotNil(t, common)
	assert.Equal(t, 1, rare.DF())
	assert.Equal(t, 3, common.DF())
	assert.Greater(t, rare.Weight, common.Weight)
	assert.Positive(t, common.Weight)
}
