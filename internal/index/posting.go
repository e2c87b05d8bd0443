package index

// Posting records that a document contains an n-gram TF times.
type Posting struct {
	DocID uint32
	TF    uint32
}

// PostingList is every posting for one n-gram, sorted by DocID. Its length
// is the n-gram's document frequency, since repeat inserts of an id merge
// into a single posting.
type PostingList []Posting

// TermEntry is one vocabulary row of a built index: the n-gram's corpus
// weight and its postings.
type TermEntry struct {
	Weight   float64
	Postings PostingList
}

// DF returns the term's document frequency.
func (e *TermEntry) DF() int { return len(e.Postings) }
