package hpack

// staticTableEntries is the immutable, 1-indexed static table of RFC
// 7541 Appendix A's 61 predefined header fields.
var staticTableEntries = [...][2]string{
	{":authority", ""},
	{":method", "GET"},
	{":method", "POST"},
	{":path", "/"},
	{":path", "/index.html"},
	{":scheme", "http"},
	{":scheme", "https"},
	{":status", "200"},
	{":status", "204"},
	{":status", "206"},
	{":status", "304"},
	{":status", "400"},
	{":status", "404"},
	{":status", "500"},
	{"accept-charset", ""},
	{"accept-encoding", "gzip, deflate"},
	{"accept-language", ""},
	{"accept-ranges", ""},
	{"accept", ""},
	{"access-control-allow-origin", ""},
	{"age", ""},
	{"allow", ""},
	{"authorization", ""},
	{"cache-control", ""},
	{"content-disposition", ""},
	{"content-encoding", ""},
	{"content-language", ""},
	{"content-length", ""},
	{"content-location", ""},
	{"content-range", ""},
	{"content-type", ""},
	{"cookie", ""},
	{"date", ""},
	{"etag", ""},
	{"expect", ""},
	{"expires", ""},
	{"from", ""},
	{"host", ""},
	{"if-match", ""},
	{"if-modified-since", ""},
	{"if-none-match", ""},
	{"if-range", ""},
	{"if-unmodified-since", ""},
	{"last-modified", ""},
	{"link", ""},
	{"location", ""},
	{"max-forwards", ""},
	{"proxy-authenticate", ""},
	{"proxy-authorization", ""},
	{"range", ""},
	{"referer", ""},
	{"refresh", ""},
	{"retry-after", ""},
	{"server", ""},
	{"set-cookie", ""},
	{"strict-transport-security", ""},
	{"transfer-encoding", ""},
	{"user-agent", ""},
	{"vary", ""},
	{"via", ""},
	{"www-authenticate", ""},
}

const staticTableLen = len(staticTableEntries)

// staticIndexByName returns the smallest 1-based index whose name
// matches, or -1. Comparison runs through constantTimeEqualString, the
// same as dynamicTable's lookups, since the value side of this
// comparison runs against attacker-controlled header names before
// falling through to the dynamic table.
func staticIndexByName(name string) int {
	for i, e := range staticTableEntries {
		if constantTimeEqualString(e[0], name) {
			return i + 1
		}
	}
	return -1
}

// staticIndexByNameValue returns the 1-based index of an exact (name,
// value) match, or -1.
func staticIndexByNameValue(name, value string) int {
	for i, e := range staticTableEntries {
		if constantTimeEqualString(e[0], name) && constantTimeEqualString(e[1], value) {
			return i + 1
		}
	}
	return -1
}

// staticGet returns the HeaderField at the given 1-based index. The
// caller must have already range-checked index against staticTableLen;
// an out-of-range index is a programming error.
func staticGet(index int) HeaderField {
	e := staticTableEntries[index-1]
	return HeaderField{Name: e[0], Value: e[1]}
}
