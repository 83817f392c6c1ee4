package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuffmanRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"www.example.com",
		"no-cache",
		"custom-key",
		"custom-value",
		"Mon, 21 Oct 2013 20:13:21 GMT",
		"https://www.example.com",
		"gzip",
		string([]byte{0, 1, 2, 255, 254, 128, 127}),
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			encoded := huffmanEncode(nil, []byte(s))
			decoded, err := huffmanDecode(encoded)
			require.NoError(t, err)
			assert.Equal(t, s, decoded)
		})
	}
}

func TestHuffmanEncodedLenMatchesEncode(t *testing.T) {
	for _, s := range []string{"", "a", "www.example.com", "custom-value"} {
		assert.Equal(t, huffmanEncodedLen([]byte(s)), len(huffmanEncode(nil, []byte(s))))
	}
}

// RFC 7541 appendix C.4.1 / C.6.1-ish values: "www.example.com" Huffman
// encodes to this 12-byte sequence.
func TestHuffmanKnownVector(t *testing.T) {
	encoded := huffmanEncode(nil, []byte("www.example.com"))
	assert.Equal(t, []byte{
		0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a, 0x6b, 0xa0, 0xab, 0x90, 0xf4, 0xff,
	}, encoded)

	decoded, err := huffmanDecode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", decoded)
}

func TestHuffmanDecodeRejectsBadPadding(t *testing.T) {
	// "a" codes to fewer than 8 bits (RFC 7541 appendix B), so the
	// single encoded byte ends in EOS-prefix padding; clearing its low
	// bit violates the all-ones padding requirement.
	encoded := huffmanEncode(nil, []byte("a"))
	require.Len(t, encoded, 1)
	bad := append([]byte(nil), encoded...)
	bad[len(bad)-1] &^= 0x01
	_, err := huffmanDecode(bad)
	require.Error(t, err)
}
