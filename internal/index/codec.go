package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"sort"
)

// Serialized layout, all little-endian:
//
//	magic u32 | version u16 | gram length u16 | doc count u32 |
//	term count u32 | norm count u32 |
//	term records sorted by gram:
//	  gram len u16 | gram bytes | weight f64 bits | df u32 |
//	  df postings of (doc id u32 | tf u32)
//	norm records: doc id u32 | norm f64 bits
//	crc32 (IEEE) u32 over everything above
//
// Weights and norms travel in the payload, so a reloaded index scores
// bit-identically to the original; nothing is recomputed on load.
const (
	magicBytes    uint32 = 0x4E475258 // "NGRX"
	formatVersion uint16 = 1
	headerSize           = 20
)

// Deserialize failure modes. Never returns a partially constructed Index.
var (
	ErrUnsupportedVersion = errors.New("unsupported index format")
	ErrTruncated          = errors.New("truncated index payload")
	ErrInconsistent       = errors.New("inconsistent index payload")
)

// Serialize encodes the index as a self-describing byte sequence.
func Serialize(ix *Index) []byte {
	grams := make([]string, 0, len(ix.terms))
	size := headerSize + 4
	for gram, entry := range ix.terms {
		grams = append(grams, gram)
		size += 2 + len(gram) + 8 + 4 + 8*len(entry.Postings)
	}
	sort.Strings(grams)
	size += 12 * len(ix.norms)

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, magicBytes)
	buf = binary.LittleEndian.AppendUint16(buf, formatVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(ix.n))
	buf = binary.LittleEndian.AppendUint32(buf, ix.docCount)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.terms)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.norms)))

	for _, gram := range grams {
		entry := ix.terms[gram]
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(gram)))
		buf = append(buf, gram...)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(entry.Weight))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(entry.Postings)))
		for _, p := range entry.Postings {
			buf = binary.LittleEndian.AppendUint32(buf, p.DocID)
			buf = binary.LittleEndian.AppendUint32(buf, p.TF)
		}
	}

	ids := make([]uint32, 0, len(ix.norms))
	for id := range ix.norms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		buf = binary.LittleEndian.AppendUint32(buf, id)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(ix.norms[id]))
	}

	buf = binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf))
	return buf
}

// Deserialize reconstructs an Index from a Serialize payload. It rejects
// unrecognized versions outright rather than attempt a best-effort parse.
func Deserialize(data []byte) (*Index, error) {
	r := &payloadReader{data: data}
	magic, err := r.u32()
	if err != nil {
		return nil, err
	}
	if magic != magicBytes {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrUnsupportedVersion, magic)
	}
	version, err := r.u16()
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, version)
	}
	gramLen, err := r.u16()
	if err != nil {
		return nil, err
	}
	if gramLen == 0 {
		return nil, fmt.Errorf("%w: zero gram length", ErrInconsistent)
	}
	docCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	termCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	normCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	if normCount != docCount {
		return nil, fmt.Errorf("%w: %d norms for %d documents", ErrInconsistent, normCount, docCount)
	}

	terms := make(map[string]*TermEntry, termCount)
	for i := uint32(0); i < termCount; i++ {
		gram, err := r.str()
		if err != nil {
			return nil, err
		}
		if _, dup := terms[gram]; dup {
			return nil, fmt.Errorf("%w: duplicate gram %q", ErrInconsistent, gram)
		}
		weightBits, err := r.u64()
		if err != nil {
			return nil, err
		}
		df, err := r.u32()
		if err != nil {
			return nil, err
		}
		if df == 0 {
			return nil, fmt.Errorf("%w: gram %q with zero document frequency", ErrInconsistent, gram)
		}
		postings := make(PostingList, df)
		for j := range postings {
			if postings[j].DocID, err = r.u32(); err != nil {
				return nil, err
			}
			if postings[j].TF, err = r.u32(); err != nil {
				return nil, err
			}
		}
		terms[gram] = &TermEntry{Weight: math.Float64frombits(weightBits), Postings: postings}
	}

	norms := make(map[uint32]float64, normCount)
	for i := uint32(0); i < normCount; i++ {
		id, err := r.u32()
		if err != nil {
			return nil, err
		}
		bits, err := r.u64()
		if err != nil {
			return nil, err
		}
		if _, dup := norms[id]; dup {
			return nil, fmt.Errorf("%w: duplicate norm for document %d", ErrInconsistent, id)
		}
		norms[id] = math.Float64frombits(bits)
	}
	for gram, entry := range terms {
		for _, p := range entry.Postings {
			if _, ok := norms[p.DocID]; !ok {
				return nil, fmt.Errorf("%w: gram %q references unknown document %d", ErrInconsistent, gram, p.DocID)
			}
		}
	}

	if r.remaining() < 4 {
		return nil, fmt.Errorf("%w: missing checksum", ErrTruncated)
	}
	if r.remaining() > 4 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInconsistent, r.remaining()-4)
	}
	want := crc32.ChecksumIEEE(data[:r.off])
	got, err := r.u32()
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInconsistent)
	}

	return &Index{
		n:        int(gramLen),
		docCount: docCount,
		terms:    terms,
		norms:    norms,
	}, nil
}

type payloadReader struct {
	data []byte
	off  int
}

func (r *payloadReader) remaining() int { return len(r.data) - r.off }

func (r *payloadReader) take(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, r.remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *payloadReader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *payloadReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *payloadReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *payloadReader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
