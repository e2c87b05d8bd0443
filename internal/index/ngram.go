// Package index implements an in-memory character n-gram search engine.
// Terms are indexed by their padded n-grams into an inverted index with
// frequency-weighted postings; queries are ranked against indexed terms by
// idf-weighted cosine similarity. A built Index is immutable and can be
// serialized to a single binary blob.
package index

import "strings"

// Sentinel pads term boundaries so prefixes and suffixes produce their own
// n-grams. It is stripped from input before extraction, so it can never
// collide with a real character.
const Sentinel = '§'

// Extract returns the ordered n-gram multiset of s: every length-n rune
// window of s after padding with n-1 sentinels on each side. A non-empty
// string of L runes yields exactly L+n-1 grams, duplicates included. The
// empty string yields nil.
func Extract(s string, n int) []string {
	s = stripSentinels(s)
	if s == "" {
		return nil
	}
	padded := make([]rune, 0, len(s)+2*(n-1))
	for i := 0; i < n-1; i++ {
		padded = append(padded, Sentinel)
	}
	padded = append(padded, []rune(s)...)
	for i := 0; i < n-1; i++ {
		padded = append(padded, Sentinel)
	}
	grams := make([]string, 0, len(padded)-n+1)
	for i := 0; i+n <= len(padded); i++ {
		grams = append(grams, string(padded[i:i+n]))
	}
	return grams
}

func stripSentinels(s string) string {
	if !strings.ContainsRune(s, Sentinel) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == Sentinel {
			return -1
		}
		return r
	}, s)
}

// gramCounts folds an extracted gram sequence into a multiset.
func gramCounts(grams []string) map[string]int {
	counts := make(map[string]int, len(grams))
	for _, g := range grams {
		counts[g]++
	}
	return counts
}
