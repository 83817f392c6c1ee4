package hpack

import "crypto/subtle"

// constantTimeEqual reports whether a and b hold the same bytes, taking
// time independent of their contents when they are the same length (the
// length itself is not hidden, matching the HPACK table lookups this
// guards: index structure is already observable on the wire). This
// prevents a timing oracle on header values carried in Authorization or
// Cookie fields, which pass through the encoder's table-match lookups.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

func constantTimeEqualString(a, b string) bool {
	return constantTimeEqual([]byte(a), []byte(b))
}
