package hpack

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeHex(t *testing.T, dec *Decoder, s string) []HeaderField {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	var sink HeaderListSink
	_, err = dec.Decode(raw, &sink)
	require.NoError(t, err)
	return sink.Headers
}

func TestDecodeIndexedHeaderField(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	got := decodeHex(t, dec, "82")
	require.Len(t, got, 1)
	assert.Equal(t, HeaderField{Name: ":method", Value: "GET"}, got[0])
}

func TestDecodeLiteralWithIncrementalIndexing(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	got := decodeHex(t, dec, "400a637573746f6d2d6b65790c637573746f6d2d76616c7565")
	require.Len(t, got, 1)
	assert.Equal(t, "custom-key", got[0].Name)
	assert.Equal(t, "custom-value", got[0].Value)

	// A second, indexed reference to the same field must resolve via
	// the dynamic table now populated by the first: combined index 62
	// (staticTableLen=61, plus 1 for the sole, newest dynamic entry).
	got2 := decodeHex(t, dec, "be")
	require.Len(t, got2, 1)
	assert.Equal(t, "custom-key", got2[0].Name)
	assert.Equal(t, "custom-value", got2[0].Value)
}

func TestDecodeLiteralWithoutIndexing(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	got := decodeHex(t, dec, "040c2f73616d706c652f70617468")
	require.Len(t, got, 1)
	assert.Equal(t, ":path", got[0].Name)
	assert.Equal(t, "/sample/path", got[0].Value)
	assert.Equal(t, 0, dec.dyn.length())
}

func TestDecodeNeverIndexedMarksSensitive(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	got := decodeHex(t, dec, "100870617373776f726406736563726574")
	require.Len(t, got, 1)
	assert.Equal(t, "password", got[0].Name)
	assert.Equal(t, "secret", got[0].Value)
	assert.True(t, got[0].Sensitive)
	assert.Equal(t, 0, dec.dyn.length())
}

func TestDecodeIndexZeroIsIllegal(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	raw, _ := hex.DecodeString("80")
	var sink HeaderListSink
	_, err := dec.Decode(raw, &sink)
	require.Error(t, err)
	var derr *DecodingError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrCodeIllegalIndex, derr.Code)
}

func TestDecodeOutOfRangeIndexIsIllegal(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	// Index 62 is one past the 61-entry static table with an empty
	// dynamic table.
	raw := encodeInteger(62, 7)
	raw[0] |= reprIndexed
	var sink HeaderListSink
	_, err := dec.Decode(raw, &sink)
	require.Error(t, err)
	var derr *DecodingError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrCodeIllegalIndex, derr.Code)
}

func TestDecodeDynamicSizeUpdate(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	raw := encodeInteger(100, 5)
	raw[0] |= reprDynamicSizeUpdate
	var sink HeaderListSink
	_, err := dec.Decode(raw, &sink)
	require.NoError(t, err)
	assert.Equal(t, 100, dec.dyn.currentCapacity())
	assert.Len(t, sink.Headers, 0)
}

func TestDecodeDynamicSizeUpdateExceedingAdvertisedMaxFails(t *testing.T) {
	dec := NewDecoder(1<<20, 100)
	raw := encodeInteger(4096, 5)
	raw[0] |= reprDynamicSizeUpdate
	var sink HeaderListSink
	_, err := dec.Decode(raw, &sink)
	require.Error(t, err)
	var derr *DecodingError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrCodeInvalidMaxTableSize, derr.Code)
}

// Feeding a complete header block one byte at a time exercises the
// suspend/resume path: nothing is emitted until the final byte arrives.
func TestDecodeSuspendsAcrossPartialFeeds(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	raw, err := hex.DecodeString("400a637573746f6d2d6b65790c637573746f6d2d76616c7565")
	require.NoError(t, err)

	var sink HeaderListSink
	for i := 0; i < len(raw)-1; i++ {
		_, err := dec.Decode(raw[i:i+1], &sink)
		require.NoError(t, err)
		assert.Empty(t, sink.Headers, "no header should be emitted before the representation is complete")
	}
	_, err = dec.Decode(raw[len(raw)-1:], &sink)
	require.NoError(t, err)
	require.Len(t, sink.Headers, 1)
	assert.Equal(t, "custom-key", sink.Headers[0].Name)
	assert.Equal(t, "custom-value", sink.Headers[0].Value)
}

func TestDecodeReducedTableSizeRequiresUpdateFirst(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	dec.SetMaxHeaderTableSize(100)

	// Any non-size-update representation as the first in a block after
	// the local maximum shrank is a protocol error.
	raw, _ := hex.DecodeString("82")
	var sink HeaderListSink
	_, err := dec.Decode(raw, &sink)
	require.Error(t, err)
	var derr *DecodingError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrCodeMaxTableSizeChangeRequired, derr.Code)
}

func TestDecodeReducedTableSizeSatisfiedByUpdate(t *testing.T) {
	dec := NewDecoder(1<<20, 4096)
	dec.SetMaxHeaderTableSize(100)

	raw := encodeInteger(100, 5)
	raw[0] |= reprDynamicSizeUpdate
	raw = append(raw, 0x82) // :method: GET follows in the same block
	var sink HeaderListSink
	_, err := dec.Decode(raw, &sink)
	require.NoError(t, err)
	require.Len(t, sink.Headers, 1)
	assert.Equal(t, ":method", sink.Headers[0].Name)
}

func TestEndHeaderBlockReportsTruncation(t *testing.T) {
	dec := NewDecoder(10, 4096) // tiny cap: the first header exactly reaches it
	raw, err := hex.DecodeString("82")
	require.NoError(t, err)
	var sink HeaderListSink
	_, err = dec.Decode(raw, &sink)
	require.NoError(t, err)
	// ":method"+"GET" = 10 bytes, exactly at the cap: not yet truncated.
	assert.False(t, dec.EndHeaderBlock())

	dec2 := NewDecoder(5, 4096)
	_, err = dec2.Decode(raw, &sink)
	require.NoError(t, err)
	assert.True(t, dec2.EndHeaderBlock())
}

// Encoder/Decoder round trip across a small session of several header
// blocks sharing one dynamic table on each side, mirroring RFC 7541
// appendix C.3's first-request/second-request sequencing.
func TestEncodeDecodeRoundTripSession(t *testing.T) {
	enc := NewEncoder(4096)
	dec := NewDecoder(1<<20, 4096)

	blocks := [][]HeaderField{
		{
			{Name: ":method", Value: "GET"},
			{Name: ":scheme", Value: "http"},
			{Name: ":path", Value: "/"},
			{Name: ":authority", Value: "www.example.com"},
		},
		{
			{Name: ":method", Value: "GET"},
			{Name: ":scheme", Value: "http"},
			{Name: ":path", Value: "/"},
			{Name: ":authority", Value: "www.example.com"},
			{Name: "cache-control", Value: "no-cache"},
		},
		{
			{Name: ":method", Value: "GET"},
			{Name: ":scheme", Value: "https"},
			{Name: ":path", Value: "/index.html"},
			{Name: ":authority", Value: "www.example.com"},
			{Name: "custom-key", Value: "custom-value", Sensitive: true},
		},
	}

	for _, block := range blocks {
		wire, err := enc.Encode(block)
		require.NoError(t, err)

		var sink HeaderListSink
		_, err = dec.Decode(wire, &sink)
		require.NoError(t, err)
		require.False(t, dec.EndHeaderBlock())
		assert.Equal(t, block, sink.Headers)
	}
}
