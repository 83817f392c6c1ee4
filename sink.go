package hpack

// HeaderSink receives header fields as the Decoder parses a header
// block, in exactly the order their representations appear on the wire.
// Implementations must tolerate receiving the same logical header
// multiple times across reuses of the same Decoder.
type HeaderSink interface {
	AddHeader(name, value string, sensitive bool)
}

// HeaderListSink is a HeaderSink that collects every header it receives
// into a slice, in arrival order. It is a convenience for callers (and
// tests) that want the whole decoded list rather than a streaming
// callback.
type HeaderListSink struct {
	Headers []HeaderField
}

func (s *HeaderListSink) AddHeader(name, value string, sensitive bool) {
	s.Headers = append(s.Headers, HeaderField{Name: name, Value: value, Sensitive: sensitive})
}
