// Package hpack implements the HPACK header compression format used by
// HTTP/2, as specified in RFC 7541.
//
// An Encoder and a Decoder each own one dynamic table. Per RFC 7541 a
// single HTTP/2 connection must use exactly one Decoder instance on the
// receiving side and one Encoder instance on the sending side for its
// lifetime, since the tables evolve in lock-step with the bytes on the
// wire. Neither Encoder nor Decoder is safe for concurrent use from
// multiple goroutines.
package hpack
