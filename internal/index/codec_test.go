package index

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	original := referenceIndex(t)
	reloaded, err := Deserialize(Serialize(original))
	require.NoError(t, err)

	assert.Equal(t, original.N(), reloaded.N())
	assert.Equal(t, original.Len(), reloaded.Len())
	assert.Equal(t, original.Terms(), reloaded.Terms())

	// Weights and norms are stored, not recomputed, so reloaded scores are
	// bitwise equal to the original's.
	for _, query := range []string{"shol", "school", "music", "kind", "garten"} {
		assert.Equal(t, collect(t, original, query), collect(t, reloaded, query), "query %q", query)
	}
}

func TestSerializeRoundTripEmptyDocuments(t *testing.T) {
	b, err := NewBuilder(2)
	require.NoError(t, err)
	b.Insert("ab", 1)
	b.Insert("", 2)
	reloaded, err := Deserialize(Serialize(b.Build()))
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
}

func TestSerializeIsStable(t *testing.T) {
	ix := referenceIndex(t)
	assert.Equal(t, Serialize(ix), Serialize(ix))
}

func TestSerializeIdenticalAcrossBuilds(t *testing.T) {
	// Two builds of the same corpus must encode byte for byte the same:
	// stored norms are float sums, so Build has to fold them in a fixed
	// order.
	for run := 0; run < 20; run++ {
		assert.Equal(t, Serialize(referenceIndex(t)), Serialize(referenceIndex(t)), "run %d", run)
	}
}

func TestDeserializeRejectsTruncation(t *testing.T) {
	data := Serialize(referenceIndex(t))
	for _, cut := range []int{0, 3, 10, headerSize, len(data) / 2, len(data) - 1} {
		ix, err := Deserialize(data[:cut])
		assert.Error(t, err, "cut at %d", cut)
		assert.Nil(t, ix, "cut at %d", cut)
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	data := Serialize(referenceIndex(t))
	data[0] ^= 0xFF
	ix, err := Deserialize(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Nil(t, ix)
}

func TestDeserializeRejectsUnknownVersion(t *testing.T) {
	data := Serialize(referenceIndex(t))
	binary.LittleEndian.PutUint16(data[4:6], formatVersion+1)
	ix, err := Deserialize(data)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Nil(t, ix)
}

func TestDeserializeRejectsCorruptPayload(t *testing.T) {
	data := Serialize(referenceIndex(t))
	// Flip a posting byte past the header; the checksum catches it.
	data[headerSize+8] ^= 0x01
	ix, err := Deserialize(data)
	assert.Error(t, err)
	assert.Nil(t, ix)
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	data := Serialize(referenceIndex(t))
	data = append(data, 0x00, 0x00)
	ix, err := Deserialize(data)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.Nil(t, ix)
}

func TestDeserializeRejectsNormCountMismatch(t *testing.T) {
	data := Serialize(referenceIndex(t))
	normCount := binary.LittleEndian.Uint32(data[16:20])
	binary.LittleEndian.PutUint32(data[16:20], normCount+1)
	binary.LittleEndian.PutUint32(data[len(data)-4:], crc32.ChecksumIEEE(data[:len(data)-4]))
	ix, err := Deserialize(data)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.Nil(t, ix)
}
