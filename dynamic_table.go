package hpack

// dynamicTable is the bounded, FIFO-evicting, size-accounted table of
// recently used header fields shared by Encoder and Decoder. Index 1 is
// always the newest entry; index length() is the oldest.
type dynamicTable struct {
	// entries[0] is the newest entry; entries are prepended on add and
	// truncated from the tail on eviction.
	entries  []HeaderField
	size     int
	capacity int
}

func newDynamicTable(capacity int) *dynamicTable {
	if capacity < 0 {
		panic(ErrNegativeCapacity)
	}
	return &dynamicTable{capacity: capacity}
}

func (t *dynamicTable) length() int {
	return len(t.entries)
}

func (t *dynamicTable) currentSize() int {
	return t.size
}

func (t *dynamicTable) currentCapacity() int {
	return t.capacity
}

// get returns the entry at the given 1-based index (newest=1,
// oldest=length()). An out-of-range index is a programming error: the
// caller is expected to have already validated index against length()
// (callers here always do, via the combined index-space resolution in
// Encoder/Decoder).
func (t *dynamicTable) get(index int) HeaderField {
	return t.entries[index-1]
}

// add inserts a copy of (name, value) as the newest entry, evicting the
// oldest entries first as needed. If the entry's own size exceeds
// capacity, the table is cleared and nothing is inserted, per RFC 7541
// section 4.4.
func (t *dynamicTable) add(name, value string) {
	s := headerSize(name, value)
	if s > t.capacity {
		t.clear()
		return
	}
	t.evictTo(t.capacity - s)

	// Copy into fresh strings so the dynamic table never aliases a
	// caller-owned buffer passed through EncodeHeader or read off the
	// wire into a temporary.
	entry := HeaderField{
		Name:  string(append([]byte(nil), name...)),
		Value: string(append([]byte(nil), value...)),
	}
	t.entries = append([]HeaderField{entry}, t.entries...)
	t.size += s
}

// remove evicts and returns the oldest entry.
func (t *dynamicTable) remove() HeaderField {
	last := len(t.entries) - 1
	e := t.entries[last]
	t.entries = t.entries[:last]
	t.size -= e.size()
	return e
}

// evictTo evicts oldest entries until size <= target.
func (t *dynamicTable) evictTo(target int) {
	for t.size > target && len(t.entries) > 0 {
		t.remove()
	}
}

// setCapacity updates the table's capacity, evicting oldest entries if
// the new capacity is smaller than the current size.
func (t *dynamicTable) setCapacity(newCapacity int) {
	if newCapacity < 0 {
		panic(ErrNegativeCapacity)
	}
	t.capacity = newCapacity
	t.evictTo(newCapacity)
}

// clear removes all entries.
func (t *dynamicTable) clear() {
	t.entries = nil
	t.size = 0
}

// indexByNameValue returns the smallest 1-based dynamic index (newest
// first) whose (name, value) match exactly, or -1.
func (t *dynamicTable) indexByNameValue(name, value string) int {
	for i, e := range t.entries {
		if constantTimeEqualString(e.Name, name) && constantTimeEqualString(e.Value, value) {
			return i + 1
		}
	}
	return -1
}

// indexByName returns the smallest 1-based dynamic index (newest first)
// whose name matches, or -1.
func (t *dynamicTable) indexByName(name string) int {
	for i, e := range t.entries {
		if constantTimeEqualString(e.Name, name) {
			return i + 1
		}
	}
	return -1
}
