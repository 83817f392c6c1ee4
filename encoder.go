package hpack

import (
	"bytes"
	"io"
)

// Representation byte patterns, first byte high bits (RFC 7541 section 6).
const (
	reprIndexed             = 0x80 // 1xxxxxxx
	reprLiteralIncremental  = 0x40 // 01xxxxxx
	reprDynamicSizeUpdate   = 0x20 // 001xxxxx
	reprLiteralNeverIndexed = 0x10 // 0001xxxx
	reprLiteralNotIndexed   = 0x00 // 0000xxxx

	huffmanFlag = 0x80 // high bit of a string literal's length byte
)

// Encoder selects wire representations for header fields and maintains
// the sender-side dynamic table, per RFC 7541 section 6.
type Encoder struct {
	dyn *dynamicTable

	// pendingSizeUpdate, when set, causes the next EncodeHeader call to
	// emit a Dynamic Table Size Update ahead of its representation, per
	// the requirement that the update precede the next header of any
	// block.
	pendingSizeUpdate bool

	// ForceHuffman, if true, always Huffman-encodes string literals.
	// ForceNoHuffman, if true, never does. Both are test-only escape
	// hatches; when neither is set the encoder picks whichever is
	// shorter.
	ForceHuffman   bool
	ForceNoHuffman bool

	// UseIndexing controls whether new header fields are added to the
	// dynamic table via Literal with Incremental Indexing (true,
	// default) or sent as Literal without Indexing (false).
	UseIndexing bool
}

// NewEncoder creates an Encoder whose dynamic table has the given
// maximum size in bytes.
func NewEncoder(maxHeaderTableSize int) *Encoder {
	return &Encoder{
		dyn:         newDynamicTable(maxHeaderTableSize),
		UseIndexing: true,
	}
}

// MaxHeaderTableSize returns the encoder's current dynamic table capacity.
func (e *Encoder) MaxHeaderTableSize() int {
	return e.dyn.currentCapacity()
}

// SetMaxHeaderTableSize updates the encoder's dynamic table capacity,
// evicting entries as needed, and arranges for the next EncodeHeader
// call to emit a Dynamic Table Size Update so the peer's decoder stays
// in sync. A call that does not change the capacity is a no-op (see the
// Open Question decision in DESIGN.md).
func (e *Encoder) SetMaxHeaderTableSize(newCap int) {
	if newCap < 0 {
		panic(ErrNegativeCapacity)
	}
	if newCap == e.dyn.currentCapacity() {
		return
	}
	e.dyn.setCapacity(newCap)
	e.pendingSizeUpdate = true
}

// findInTable reports the combined-index-space table match for (name,
// value): if exact=true, index is an exact (name,value) match usable as
// an Indexed Header Field; otherwise index (if >=0) is a name-only match
// usable as a literal's name-index, or -1 if there is no match at all.
// The combined index space is static-first: the static table occupies
// 1..staticTableLen, and the dynamic table occupies
// staticTableLen+1..staticTableLen+dyn.length() (newest entry lowest).
func (e *Encoder) findInTable(name, value string) (index int, exact bool) {
	if i := staticIndexByNameValue(name, value); i != -1 {
		return i, true
	}
	if i := e.dyn.indexByNameValue(name, value); i != -1 {
		return staticTableLen + i, true
	}
	if i := staticIndexByName(name); i != -1 {
		return i, false
	}
	if i := e.dyn.indexByName(name); i != -1 {
		return staticTableLen + i, false
	}
	return -1, false
}

// combinedStaticIndex returns the combined-index-space index for a
// static-only name match (used by the sensitive and zero-capacity
// fast paths, which never consult the dynamic table for a name index).
func (e *Encoder) combinedStaticIndex(name string) int {
	return staticIndexByName(name)
}

func writeInt(w io.Writer, mask byte, prefixLen int, value int) error {
	b := encodeInteger(value, prefixLen)
	b[0] |= mask
	_, err := w.Write(b)
	return err
}

func (e *Encoder) writeString(w io.Writer, s string) error {
	useHuffman := !e.ForceNoHuffman && (e.ForceHuffman || huffmanEncodedLen([]byte(s)) < len(s))

	var payload []byte
	if useHuffman {
		payload = huffmanEncode(nil, []byte(s))
	} else {
		payload = []byte(s)
	}

	lenBytes := encodeInteger(len(payload), 7)
	if useHuffman {
		lenBytes[0] |= huffmanFlag
	}
	if _, err := w.Write(lenBytes); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func (e *Encoder) flushPendingSizeUpdate(sink io.Writer) error {
	if !e.pendingSizeUpdate {
		return nil
	}
	e.pendingSizeUpdate = false
	return writeInt(sink, reprDynamicSizeUpdate, 5, e.dyn.currentCapacity())
}

// EncodeHeader writes the wire representation for one header field to
// sink and, where the representation implies it, updates the dynamic
// table.
func (e *Encoder) EncodeHeader(sink io.Writer, name, value string, sensitive bool) error {
	if err := e.flushPendingSizeUpdate(sink); err != nil {
		return err
	}

	// Sensitive header fields are always Literal Never Indexed and
	// never enter the dynamic table, regardless of table state.
	if sensitive {
		nameIndex := e.combinedStaticIndex(name)
		if nameIndex == -1 {
			if err := writeInt(sink, reprLiteralNeverIndexed, 4, 0); err != nil {
				return err
			}
			if err := e.writeString(sink, name); err != nil {
				return err
			}
		} else {
			if err := writeInt(sink, reprLiteralNeverIndexed, 4, nameIndex); err != nil {
				return err
			}
		}
		return e.writeString(sink, value)
	}

	// Capacity 0 means the dynamic table can never hold anything, so
	// only the static table is worth consulting.
	if e.dyn.currentCapacity() == 0 {
		if idx := staticIndexByNameValue(name, value); idx != -1 {
			return writeInt(sink, reprIndexed, 7, idx)
		}
		return e.encodeLiteralWithoutIndexing(sink, name, value)
	}

	// An entry that could never fit isn't worth indexing.
	if headerSize(name, value) > e.dyn.currentCapacity() {
		return e.encodeLiteralWithoutIndexing(sink, name, value)
	}

	// An exact match anywhere is sent as Indexed.
	if idx, exact := e.findInTable(name, value); exact {
		return writeInt(sink, reprIndexed, 7, idx)
	}

	// No exact match. Emit a literal, indexed by name if we have a
	// name-only match, and optionally insert into the dynamic table.
	nameIndex, _ := e.findInTable(name, value)
	if !e.UseIndexing {
		return e.encodeLiteralGivenNameIndex(sink, nameIndex, name, value, reprLiteralNotIndexed, 4)
	}
	if err := e.encodeLiteralGivenNameIndex(sink, nameIndex, name, value, reprLiteralIncremental, 6); err != nil {
		return err
	}
	e.dyn.add(name, value)
	return nil
}

func (e *Encoder) encodeLiteralWithoutIndexing(sink io.Writer, name, value string) error {
	nameIndex := e.combinedStaticIndex(name)
	return e.encodeLiteralGivenNameIndex(sink, nameIndex, name, value, reprLiteralNotIndexed, 4)
}

func (e *Encoder) encodeLiteralGivenNameIndex(sink io.Writer, nameIndex int, name, value string, mask byte, prefixLen int) error {
	if nameIndex == -1 {
		if err := writeInt(sink, mask, prefixLen, 0); err != nil {
			return err
		}
		if err := e.writeString(sink, name); err != nil {
			return err
		}
	} else {
		if err := writeInt(sink, mask, prefixLen, nameIndex); err != nil {
			return err
		}
	}
	return e.writeString(sink, value)
}

// Encode is a convenience wrapper that encodes a list of header fields
// through EncodeHeader (honouring each field's Sensitive flag and the
// encoder's UseIndexing setting) and returns the produced bytes, mirroring
// the single-shot shape callers that don't want to manage a sink
// usually want.
func (e *Encoder) Encode(headers []HeaderField) ([]byte, error) {
	var buf bytes.Buffer
	for _, h := range headers {
		if err := e.EncodeHeader(&buf, h.Name, h.Value, h.Sensitive); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
