package hpack

import (
	"errors"
	"fmt"
)

// ErrNegativeCapacity is a caller contract violation: the caller passed
// a value the API explicitly disallows. It panics rather than returns
// an error, since there is no sane way for a decoder loop to recover
// from its own caller misusing it.
var ErrNegativeCapacity = errors.New("hpack: table capacity must not be negative")

// ErrCode classifies a protocol error reported by the Decoder. A
// connection-level consumer (the HTTP/2 layer, out of scope here) uses
// this to decide whether to tear down the stream or the whole
// connection, without string-matching error text.
type ErrCode int

const (
	// ErrCodeCompression covers integer overflow, truncated input after
	// a length has been committed to, empty header names, Huffman
	// padding violations, and the EOS symbol appearing in a Huffman
	// stream.
	ErrCodeCompression ErrCode = iota + 1
	// ErrCodeIllegalIndex covers index 0 in an Indexed Header Field, and
	// any index beyond the combined dynamic+static table length.
	ErrCodeIllegalIndex
	// ErrCodeIllegalContextUpdate covers a malformed Dynamic Table Size
	// Update instruction.
	ErrCodeIllegalContextUpdate
	// ErrCodeInvalidMaxTableSize covers a Dynamic Table Size Update that
	// exceeds the decoder-advertised maximum.
	ErrCodeInvalidMaxTableSize
	// ErrCodeMaxTableSizeChangeRequired covers a missing Dynamic Table
	// Size Update that a prior local capacity reduction required to
	// open the next header block.
	ErrCodeMaxTableSizeChangeRequired
)

func (c ErrCode) String() string {
	switch c {
	case ErrCodeCompression:
		return "COMPRESSION_ERROR"
	case ErrCodeIllegalIndex:
		return "ILLEGAL_INDEX_VALUE"
	case ErrCodeIllegalContextUpdate:
		return "ILLEGAL_ENCODING_CONTEXT_UPDATE"
	case ErrCodeInvalidMaxTableSize:
		return "INVALID_MAX_HEADER_TABLE_SIZE"
	case ErrCodeMaxTableSizeChangeRequired:
		return "MAX_HEADER_TABLE_SIZE_CHANGE_REQUIRED"
	default:
		return "UNKNOWN_HPACK_ERROR"
	}
}

// DecodingError is a fatal, peer-bytes-originated protocol error. It
// always ends the current header block; the Decoder never attempts to
// resynchronize within a block after one is returned.
type DecodingError struct {
	Code ErrCode
	Msg  string
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("hpack: %s: %s", e.Code, e.Msg)
}

func decodingError(code ErrCode, format string, args ...interface{}) *DecodingError {
	return &DecodingError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
