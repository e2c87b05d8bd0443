package index

import (
	"errors"
	"iter"
	"math"
	"sort"
)

// ErrEmptyQuery is returned by MakeQueryVec when the query yields no
// scorable n-grams, either because the string is empty or because none of
// its grams exist in the vocabulary. It must be treated as "no query
// possible", not as a zero-result match.
var ErrEmptyQuery = errors.New("query yields no scorable n-grams")

// Index is the immutable, queryable result of Builder.Build or
// Deserialize. It is safe for unsynchronized concurrent reads: queries only
// read the frozen vocabulary, postings, and norm tables.
type Index struct {
	n        int
	docCount uint32
	terms    map[string]*TermEntry
	norms    map[uint32]float64
}

// N returns the gram length the index was built with.
func (ix *Index) N() int { return ix.n }

// Len returns the number of distinct document ids indexed.
func (ix *Index) Len() int { return int(ix.docCount) }

// IsEmpty reports whether no documents were indexed.
func (ix *Index) IsEmpty() bool { return ix.docCount == 0 }

// Terms returns the vocabulary size (number of distinct n-grams).
func (ix *Index) Terms() int { return len(ix.terms) }

// QueryVector is the weighted n-gram vector of one query string, valid only
// against the Index that produced it. grams holds the vector's keys in
// sorted order; scoring folds floats in that order so repeated invocations
// sum identically.
type QueryVector struct {
	grams   []string
	weights map[string]float64
	norm    float64
}

// Norm returns the query vector's magnitude. Always positive.
func (q *QueryVector) Norm() float64 { return q.norm }

// MakeQueryVec extracts query's n-grams and weighs them with the index's
// frozen per-gram weights. Grams absent from the vocabulary carry zero
// weight and are dropped. Returns ErrEmptyQuery if nothing remains to
// score, so a valid QueryVector always has a non-zero norm.
func (ix *Index) MakeQueryVec(query string) (*QueryVector, error) {
	extracted := Extract(query, ix.n)
	if len(extracted) == 0 {
		return nil, ErrEmptyQuery
	}
	counts := gramCounts(extracted)
	grams := make([]string, 0, len(counts))
	for gram := range counts {
		if _, ok := ix.terms[gram]; ok {
			grams = append(grams, gram)
		}
	}
	sort.Strings(grams)
	weights := make(map[string]float64, len(grams))
	var normSq float64
	for _, gram := range grams {
		v := ix.terms[gram].Weight * float64(counts[gram])
		weights[gram] = v
		normSq += v * v
	}
	if normSq == 0 {
		return nil, ErrEmptyQuery
	}
	return &QueryVector{grams: grams, weights: weights, norm: math.Sqrt(normSq)}, nil
}

// Find scores every document sharing at least one n-gram with the query
// and yields (id, cosine similarity) pairs in unspecified order, each id at
// most once. Documents with no overlap are never visited, so cost scales
// with the query's postings, not corpus size. The sequence is
// side-effect-free; ranging over it again re-runs the computation.
func (ix *Index) Find(q *QueryVector) iter.Seq2[uint32, float64] {
	return ix.find(q, 0)
}

// FindRare is Find restricted to query grams with document frequency below
// maxDF. Common grams contribute little to the score but dominate the
// postings traversal; skipping them trades a small amount of recall for
// speed on large corpora. maxDF <= 0 disables the filter.
func (ix *Index) FindRare(q *QueryVector, maxDF int) iter.Seq2[uint32, float64] {
	return ix.find(q, maxDF)
}

func (ix *Index) find(q *QueryVector, maxDF int) iter.Seq2[uint32, float64] {
	return func(yield func(uint32, float64) bool) {
		acc := make(map[uint32]float64)
		// Iterating q.grams (not the weights map) keeps the per-document
		// accumulation order fixed, so every invocation yields the exact
		// same scores.
		for _, gram := range q.grams {
			qw := q.weights[gram]
			entry, ok := ix.terms[gram]
			if !ok {
				continue
			}
			if maxDF > 0 && entry.DF() >= maxDF {
				continue
			}
			for _, p := range entry.Postings {
				acc[p.DocID] += qw * entry.Weight * float64(p.TF)
			}
		}
		for id, dot := range acc {
			if !yield(id, dot/(q.norm*ix.norms[id])) {
				return
			}
		}
	}
}
