package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPadsBoundaries(t *testing.T) {
	grams := Extract("music", 3)
	assert.Len(t, grams, 7) // L + n - 1
	assert.Equal(t, []string{"§§m", "§mu", "mus", "usi", "sic", "ic§", "c§§"}, grams)
}

func TestExtractEmptyString(t *testing.T) {
	assert.Nil(t, Extract("", 3))
	assert.Nil(t, Extract("", 1))
}

func TestExtractSingleGramLength(t *testing.T) {
	// n = 1 means no padding at all.
	assert.Equal(t, []string{"a", "b"}, Extract("ab", 1))
}

func TestExtractCountsRunesNotBytes(t *testing.T) {
	grams := Extract("füße", 2)
	assert.Len(t, grams, 5)
	assert.Equal(t, []string{"§f", "fü", "üß", "ße", "e§"}, grams)
}

func TestExtractKeepsDuplicates(t *testing.T) {
	grams := Extract("aaaa", 2)
	assert.Equal(t, []string{"§a", "aa", "aa", "aa", "a§"}, grams)
}

func TestExtractStripsSentinels(t *testing.T) {
	assert.Equal(t, Extract("ab", 2), Extract("a§b", 2))
	// A term of nothing but sentinels degenerates to the empty string.
	assert.Nil(t, Extract("§§§", 3))
}

func TestExtractShorterThanGramLength(t *testing.T) {
	// Padding guarantees grams even for terms shorter than n.
	grams := Extract("a", 3)
	assert.Equal(t, []string{"§§a", "§a§", "a§§"}, grams)
}
