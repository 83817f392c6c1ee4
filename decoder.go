package hpack

import "go.uber.org/zap"

// Decoder is a streaming, suspend/resume HPACK parser. It consumes as
// much of a header block as the bytes fed to it allow and emits decoded
// header fields to a HeaderSink as soon as their representation is
// complete.
//
// A single Decoder instance must be used for the lifetime of one
// HTTP/2 connection's receive side (RFC 7540 section 4.3): the dynamic
// table it owns evolves with every header block it decodes.
type Decoder struct {
	dyn *dynamicTable
	src decodeSource

	// advertisedMax is the local ceiling on dynamic table capacity that
	// the peer's Dynamic Table Size Update instructions may not exceed.
	// It changes only via SetMaxHeaderTableSize, never via the wire.
	advertisedMax int

	maxHeaderSize int
	headerSize    int // accumulated name+value bytes seen this block
	truncated     bool

	// blockStart is true at the first representation of a header block;
	// used to enforce sizeUpdateRequired below.
	blockStart bool

	// sizeUpdateRequired is set when a local SetMaxHeaderTableSize call
	// reduces the advertised maximum; the next header block's first
	// instruction must then be a Dynamic Table Size Update confirming
	// the reduction, or decoding fails.
	sizeUpdateRequired bool

	log *zap.Logger
}

// NewDecoder creates a Decoder. maxHeaderSize bounds the aggregate
// decoded name+value size of a single header block (RFC 7541's
// recommended defense against decompression bombs); maxHeaderTableSize
// is the local limit on dynamic table capacity that the peer's encoder
// must honor.
func NewDecoder(maxHeaderSize, maxHeaderTableSize int) *Decoder {
	return &Decoder{
		dyn:           newDynamicTable(maxHeaderTableSize),
		advertisedMax: maxHeaderTableSize,
		maxHeaderSize: maxHeaderSize,
		blockStart:    true,
		log:           zap.NewNop(),
	}
}

// WithLogger attaches a zap logger used to trace dynamic-table-size
// churn and truncation in development builds. The Decoder is silent
// (zap.NewNop) until this is called.
func (d *Decoder) WithLogger(log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	d.log = log
	return d
}

// SetMaxHeaderTableSize updates the decoder-local limit on the dynamic
// table's capacity. If this reduces the limit, the next header block
// must open with a Dynamic Table Size Update confirming it.
func (d *Decoder) SetMaxHeaderTableSize(newCap int) {
	if newCap < 0 {
		panic(ErrNegativeCapacity)
	}
	if newCap < d.advertisedMax {
		d.sizeUpdateRequired = true
	}
	d.advertisedMax = newCap
	if newCap < d.dyn.currentCapacity() {
		d.dyn.setCapacity(newCap)
	}
	d.log.Debug("hpack: decoder max header table size changed", zap.Int("new_cap", newCap))
}

// Decode consumes as much of p as forms complete representations,
// emitting each through sink as soon as it is parsed, and returns the
// number of bytes consumed. The unconsumed remainder (if any) is
// buffered internally and combined with whatever is fed on the next
// call. Decode never returns a partial-representation byte count: an
// incomplete trailing representation is simply retained, and Decode
// returns len(p) (everything was accepted into the buffer) unless a
// protocol error terminates the block first.
func (d *Decoder) Decode(p []byte, sink HeaderSink) (consumed int, err error) {
	d.src.feed(p)

	for d.src.available() > 0 {
		start := d.src.mark()

		ok, derr := d.decodeOneRepresentation(sink)
		if derr != nil {
			return len(p), derr
		}
		if !ok {
			d.src.rewind(start)
			break
		}
	}
	return len(p), nil
}

// decodeOneRepresentation attempts to parse and emit exactly one header
// field representation (or apply one Dynamic Table Size Update) from
// d.src. It returns ok=false, err=nil if d.src starved partway through
// and has been rewound to its position on entry.
func (d *Decoder) decodeOneRepresentation(sink HeaderSink) (ok bool, err error) {
	start := d.src.mark()

	b0, got := d.src.readByte()
	if !got {
		return false, nil
	}
	d.src.rewind(start)

	isSizeUpdate := b0&0xe0 == reprDynamicSizeUpdate
	if d.blockStart {
		if d.sizeUpdateRequired && !isSizeUpdate {
			return false, decodingError(ErrCodeMaxTableSizeChangeRequired,
				"expected a dynamic table size update at the start of this block")
		}
		d.blockStart = false
	}

	switch {
	case b0&reprIndexed == reprIndexed:
		return d.readIndexedHeader(sink)
	case b0&0xc0 == reprLiteralIncremental:
		return d.readLiteralHeader(sink, reprLiteralIncremental, 6, true)
	case isSizeUpdate:
		return d.readDynamicSizeUpdate()
	case b0&0xf0 == reprLiteralNeverIndexed:
		return d.readLiteralHeader(sink, reprLiteralNeverIndexed, 4, false)
	default: // 0000xxxx
		return d.readLiteralHeader(sink, reprLiteralNotIndexed, 4, false)
	}
}

// readIndexedHeader implements the READ_INDEXED_HEADER state: a 7-bit
// prefixed integer naming an entry to emit verbatim, no table mutation.
func (d *Decoder) readIndexedHeader(sink HeaderSink) (bool, error) {
	_, index, ok, err := decodeInteger(&d.src, 7, maxTableIndex)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if index == 0 {
		return false, decodingError(ErrCodeIllegalIndex, "index 0 is not a valid Indexed Header Field")
	}
	field, derr := d.resolveIndex(index)
	if derr != nil {
		return false, derr
	}
	d.accumulateSize(len(field.Name), len(field.Value))
	if d.truncated {
		return true, nil
	}
	d.emit(sink, field.Name, field.Value, false)
	return true, nil
}

// readDynamicSizeUpdate implements READ_MAX_HEADER_TABLE_SIZE: a 5-bit
// prefixed integer giving the new dynamic table capacity.
func (d *Decoder) readDynamicSizeUpdate() (bool, error) {
	_, size, ok, err := decodeInteger(&d.src, 5, maxTableIndex)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if size > d.advertisedMax {
		return false, decodingError(ErrCodeInvalidMaxTableSize,
			"dynamic table size update %d exceeds advertised maximum %d", size, d.advertisedMax)
	}
	d.dyn.setCapacity(size)
	d.sizeUpdateRequired = false
	d.log.Debug("hpack: applied dynamic table size update", zap.Int("size", size))
	return true, nil
}

// readLiteralHeader implements READ_INDEXED_HEADER_NAME through
// READ_LITERAL_HEADER_VALUE for the three literal representations.
// insert selects whether a successfully parsed field is added to the
// dynamic table (Literal with Incremental Indexing only).
func (d *Decoder) readLiteralHeader(sink HeaderSink, mask byte, prefixLen int, insert bool) (bool, error) {
	start := d.src.mark()

	_, nameIndex, ok, err := decodeInteger(&d.src, prefixLen, maxTableIndex)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	var name string
	if nameIndex == 0 {
		s, ok, err := d.readString()
		if err != nil {
			return false, err
		}
		if !ok {
			d.src.rewind(start)
			return false, nil
		}
		name = s
	} else {
		field, derr := d.resolveIndex(nameIndex)
		if derr != nil {
			return false, derr
		}
		name = field.Name
	}

	value, ok, err := d.readString()
	if err != nil {
		return false, err
	}
	if !ok {
		d.src.rewind(start)
		return false, nil
	}

	if name == "" {
		return false, decodingError(ErrCodeCompression, "header name must not be empty")
	}

	sensitive := mask == reprLiteralNeverIndexed
	d.accumulateSize(len(name), len(value))

	if d.truncated {
		// Emission is suppressed, but an incrementally-indexed entry
		// still has to land in the table (or clear it if it can't fit)
		// to stay in lock-step with the peer's encoder.
		if insert {
			d.dyn.add(name, value)
		}
		return true, nil
	}

	d.emit(sink, name, value, sensitive)
	if insert {
		d.dyn.add(name, value)
	}
	return true, nil
}

// readString reads a Huffman-flagged, prefixed-length string literal. It
// returns ok=false if the source starves, having rewound to the call's
// starting position.
func (d *Decoder) readString() (string, bool, error) {
	start := d.src.mark()

	b0, got := d.src.readByte()
	if !got {
		return "", false, nil
	}
	d.src.rewind(start)

	huffman := b0&huffmanFlag != 0
	_, length, ok, err := decodeInteger(&d.src, 7, maxStringLiteralLength)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	raw, ok := d.src.readN(length)
	if !ok {
		d.src.rewind(start)
		return "", false, nil
	}

	if !huffman {
		return string(raw), true, nil
	}
	s, err := huffmanDecode(raw)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// resolveIndex resolves a combined-index-space index to the header
// field it names: 1..staticTableLen is the static table,
// staticTableLen+1..staticTableLen+dynLen is the dynamic table (newest
// first).
func (d *Decoder) resolveIndex(index int) (HeaderField, error) {
	dynLen := d.dyn.length()
	switch {
	case index >= 1 && index <= staticTableLen:
		return staticGet(index), nil
	case index > staticTableLen && index <= staticTableLen+dynLen:
		return d.dyn.get(index - staticTableLen), nil
	default:
		return HeaderField{}, decodingError(ErrCodeIllegalIndex,
			"index %d is outside the combined table of length %d", index, staticTableLen+dynLen)
	}
}

// accumulateSize tracks the aggregate decoded size cap. Once exceeded,
// truncation is sticky for the rest of the block.
func (d *Decoder) accumulateSize(nameLen, valueLen int) {
	d.headerSize += nameLen + valueLen
	if d.headerSize > d.maxHeaderSize {
		if !d.truncated {
			d.log.Debug("hpack: header block truncated",
				zap.Int("header_size", d.headerSize), zap.Int("max", d.maxHeaderSize))
		}
		d.truncated = true
	}
}

func (d *Decoder) emit(sink HeaderSink, name, value string, sensitive bool) {
	if sink != nil {
		sink.AddHeader(name, value, sensitive)
	}
}

// EndHeaderBlock signals that the caller has fed every byte of the
// current header block. It returns whether the block's aggregate
// decoded size ever exceeded maxHeaderSize (truncated=true means the
// sink may have received fewer headers than the wire actually
// described), and resets per-block state. It never touches the dynamic
// table.
func (d *Decoder) EndHeaderBlock() (truncated bool) {
	truncated = d.truncated
	d.headerSize = 0
	d.truncated = false
	d.blockStart = true
	return truncated
}

const (
	maxTableIndex          = (1 << 31) - 1
	maxStringLiteralLength = (1 << 31) - 1
)
