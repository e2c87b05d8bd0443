package index

import (
	"errors"
	"math"
	"sort"
)

// ErrZeroGramLength is returned by NewBuilder when the gram length is not
// positive.
var ErrZeroGramLength = errors.New("gram length must be at least 1")

// Builder accumulates terms for one Index. It is a single-writer structure:
// callers must serialize Insert calls themselves. Build consumes the
// Builder; it must not be used afterwards.
type Builder struct {
	n        int
	postings map[string]map[uint32]uint32
	seen     map[uint32]struct{}
}

// NewBuilder creates an empty Builder for grams of length n.
func NewBuilder(n int) (*Builder, error) {
	if n < 1 {
		return nil, ErrZeroGramLength
	}
	return &Builder{
		n:        n,
		postings: make(map[string]map[uint32]uint32),
		seen:     make(map[uint32]struct{}),
	}, nil
}

// Insert adds term's n-grams to the document identified by id. Inserting
// the same id again merges into the existing document: gram counts add, so
// splitting a document across inserts never changes its final vector.
// Inserting an empty term records the id as a document with no grams; such
// a document can never be returned by Find.
func (b *Builder) Insert(term string, id uint32) {
	b.seen[id] = struct{}{}
	for gram, tf := range gramCounts(Extract(term, b.n)) {
		docs, ok := b.postings[gram]
		if !ok {
			docs = make(map[uint32]uint32, 4)
			b.postings[gram] = docs
		}
		docs[id] += uint32(tf)
	}
}

// Build freezes the accumulated corpus into an immutable Index.
//
// The computation is ordered: document frequencies are final once Build
// runs, each gram's weight ln(1 + N/df) is derived from its final df, and
// every document norm is derived from the final weights. Weights must never
// be maintained incrementally during Insert, or they would depend on
// insertion order.
func (b *Builder) Build() *Index {
	docCount := len(b.seen)
	terms := make(map[string]*TermEntry, len(b.postings))
	normSq := make(map[uint32]float64, docCount)
	for id := range b.seen {
		normSq[id] = 0
	}
	// Norms are sums of floats, and float addition is not associative, so
	// grams are folded in sorted order to make every build of the same
	// corpus bit-identical.
	grams := make([]string, 0, len(b.postings))
	for gram := range b.postings {
		grams = append(grams, gram)
	}
	sort.Strings(grams)
	for _, gram := range grams {
		docs := b.postings[gram]
		weight := math.Log(1 + float64(docCount)/float64(len(docs)))
		postings := make(PostingList, 0, len(docs))
		for id, tf := range docs {
			postings = append(postings, Posting{DocID: id, TF: tf})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		terms[gram] = &TermEntry{Weight: weight, Postings: postings}
		for _, p := range postings {
			v := weight * float64(p.TF)
			normSq[p.DocID] += v * v
		}
	}
	norms := make(map[uint32]float64, len(normSq))
	for id, sq := range normSq {
		norms[id] = math.Sqrt(sq)
	}
	b.postings = nil
	b.seen = nil
	return &Index{
		n:        b.n,
		docCount: uint32(docCount),
		terms:    terms,
		norms:    norms,
	}
}
