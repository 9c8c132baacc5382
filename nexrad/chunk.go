package nexrad

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
	"github.com/robert-malhotra/go-nexrad/internal/header"
	"github.com/robert-malhotra/go-nexrad/internal/packet"
)

// Kind identifies a level of the block → layer/page → packet hierarchy.
type Kind int

// Chunk kinds
const (
	KindNone Kind = iota
	KindSymbology
	KindGraphic
	KindTabular
	KindLayer
	KindPage
	KindPacket
)

// kindInfo describes how a chunk kind is framed.
type kindInfo struct {
	name       string
	headerSize int64
	child      Kind

	// divider is set when the header starts with the -1 sentinel.
	divider bool

	// blockID is the expected type id following the divider, 0 if none.
	blockID int16

	// inclusive is set when the declared length counts the header.
	inclusive bool

	// wideLength is set for 32-bit length fields.
	wideLength bool
}

var kinds = map[Kind]kindInfo{
	KindSymbology: {name: "symbology block", headerSize: 10, child: KindLayer, divider: true, blockID: 1, inclusive: true, wideLength: true},
	KindGraphic:   {name: "graphic block", headerSize: 10, child: KindPage, divider: true, blockID: 2, inclusive: true, wideLength: true},
	KindTabular:   {name: "tabular block", headerSize: 8, child: KindNone, divider: true, blockID: 3, inclusive: true, wideLength: true},
	KindLayer:     {name: "layer", headerSize: 6, child: KindPacket, divider: true, wideLength: true},
	KindPage:      {name: "page", headerSize: 4, child: KindPacket},
	KindPacket:    {name: "packet", headerSize: packet.HeaderSize, child: KindNone},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Chunk locates one framed region within its parent.
type Chunk struct {
	Kind Kind

	// Offset is the position of the chunk's header.
	Offset int64

	// Size is the total size, header included.
	Size int64

	// PayloadSize is the size following the header.
	PayloadSize int64
}

// decodeChunk reads and validates the header of a chunk of the given kind
// at the reader's position. The reader's limit bounds the chunk.
func decodeChunk(r *binary.Reader, kind Kind) (Chunk, error) {
	info, ok := kinds[kind]
	if !ok {
		return Chunk{}, fmt.Errorf("%w: chunk kind %d", errs.ErrUnsupportedEncoding, int(kind))
	}

	c := Chunk{Kind: kind, Offset: r.Pos()}

	if kind == KindPacket {
		size, err := packet.Size(r)
		if err != nil {
			return Chunk{}, err
		}
		c.Size = size
		c.PayloadSize = size - info.headerSize
		return c, nil
	}

	hr := r.At(r.Pos())
	if info.divider {
		div, err := hr.ReadInt16()
		if err != nil {
			return Chunk{}, fmt.Errorf("reading %s divider: %w", info.name, err)
		}
		if div != header.Divider {
			return Chunk{}, fmt.Errorf("%w: %s divider %d at %d", errs.ErrMalformedHeader, info.name, div, c.Offset)
		}
	}
	if info.blockID != 0 {
		id, err := hr.ReadInt16()
		if err != nil {
			return Chunk{}, fmt.Errorf("reading %s id: %w", info.name, err)
		}
		if id != info.blockID {
			return Chunk{}, fmt.Errorf("%w: %s id %d, expected %d", errs.ErrMalformedHeader, info.name, id, info.blockID)
		}
	}
	if kind == KindPage {
		// page number
		if err := hr.Skip(2); err != nil {
			return Chunk{}, fmt.Errorf("reading page number: %w", err)
		}
	}

	var declared int64
	if info.wideLength {
		n, err := hr.ReadUint32()
		if err != nil {
			return Chunk{}, fmt.Errorf("reading %s length: %w", info.name, err)
		}
		declared = int64(n)
	} else {
		n, err := hr.ReadUint16()
		if err != nil {
			return Chunk{}, fmt.Errorf("reading %s length: %w", info.name, err)
		}
		declared = int64(n)
	}

	if info.inclusive {
		if declared < info.headerSize {
			return Chunk{}, fmt.Errorf("%w: %s length %d shorter than header", errs.ErrSizeMismatch, info.name, declared)
		}
		c.Size = declared
	} else {
		c.Size = declared + info.headerSize
	}
	c.PayloadSize = c.Size - info.headerSize

	if c.Size > r.Remaining() {
		return Chunk{}, fmt.Errorf("%w: %s of %d bytes exceeds %d remaining", errs.ErrBounds, info.name, c.Size, r.Remaining())
	}
	return c, nil
}

// Cursor iterates the children of one framed chunk. It never owns the
// underlying buffer; closing it only drops the cursor state.
type Cursor struct {
	kind  Kind
	info  kindInfo
	chunk Chunk
	r     *binary.Reader

	// pos is the offset of the next child, remaining the bytes of payload
	// not yet consumed.
	pos       int64
	remaining int64

	// count is the layer or page count declared by a block header.
	count int
}

// OpenCursor validates the header of a chunk of the given kind at offset
// within the first size bytes of r and returns a cursor over its payload.
func OpenCursor(r io.ReaderAt, offset, size int64, kind Kind) (*Cursor, error) {
	return openCursor(binary.NewReader(r, size).At(offset), kind)
}

func openCursor(r *binary.Reader, kind Kind) (*Cursor, error) {
	chunk, err := decodeChunk(r, kind)
	if err != nil {
		return nil, err
	}

	window, err := r.Window(chunk.Offset, chunk.Size)
	if err != nil {
		return nil, err
	}

	info := kinds[kind]
	c := &Cursor{
		kind:      kind,
		info:      info,
		chunk:     chunk,
		r:         window,
		pos:       chunk.Offset + info.headerSize,
		remaining: chunk.PayloadSize,
	}

	if kind == KindSymbology || kind == KindGraphic {
		n, err := window.At(chunk.Offset + 8).ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("reading %s count: %w", info.name, err)
		}
		c.count = int(n)
	}
	return c, nil
}

// Kind returns the cursor's chunk kind.
func (c *Cursor) Kind() Kind {
	return c.kind
}

// Chunk returns the chunk the cursor was opened on.
func (c *Cursor) Chunk() Chunk {
	return c.chunk
}

// Count returns the number of layers or pages declared by a block header,
// zero for other kinds.
func (c *Cursor) Count() int {
	return c.count
}

// Remaining returns the payload bytes not yet consumed.
func (c *Cursor) Remaining() int64 {
	return c.remaining
}

// Peek returns the next child chunk without advancing. It returns false
// once the payload is exhausted or when the next child is malformed, in
// which case the rest of the payload is abandoned.
func (c *Cursor) Peek() (Chunk, bool) {
	if c.r == nil || c.remaining <= 0 || c.info.child == KindNone {
		return Chunk{}, false
	}

	window, err := c.r.Window(c.pos, c.remaining)
	if err != nil {
		c.remaining = 0
		return Chunk{}, false
	}

	chunk, err := decodeChunk(window, c.info.child)
	if err != nil {
		c.remaining = 0
		return Chunk{}, false
	}
	return chunk, true
}

// Next advances past size bytes of payload. It is a no-op once the payload
// is exhausted.
func (c *Cursor) Next(size int64) {
	if c.remaining <= 0 {
		return
	}
	if size > c.remaining {
		size = c.remaining
	}
	c.pos += size
	c.remaining -= size
}

// Read returns the next child chunk and advances past it.
func (c *Cursor) Read() (Chunk, bool) {
	chunk, ok := c.Peek()
	if ok {
		c.Next(chunk.Size)
	}
	return chunk, ok
}

// ReadChild reads the next child chunk and opens it as a cursor of the
// given kind.
func (c *Cursor) ReadChild(kind Kind) (*Cursor, bool) {
	chunk, ok := c.Read()
	if !ok {
		return nil, false
	}

	window, err := c.r.Window(chunk.Offset, chunk.Size)
	if err != nil {
		c.remaining = 0
		return nil, false
	}

	child, err := openCursor(window, kind)
	if err != nil {
		c.remaining = 0
		return nil, false
	}
	return child, true
}

// ReadPacket reads the next child of a layer or page as a packet.
func (c *Cursor) ReadPacket() (*Packet, bool) {
	if c.info.child != KindPacket {
		return nil, false
	}

	chunk, ok := c.Read()
	if !ok {
		return nil, false
	}

	window, err := c.r.Window(chunk.Offset, chunk.Size)
	if err != nil {
		c.remaining = 0
		return nil, false
	}

	code, err := packet.PeekCode(window)
	if err != nil {
		c.remaining = 0
		return nil, false
	}

	return &Packet{Code: code, Offset: chunk.Offset, Size: chunk.Size, r: window}, true
}

// payload returns a reader over the cursor's whole payload, independent of
// the iteration position.
func (c *Cursor) payload() (*binary.Reader, error) {
	if c.r == nil {
		return nil, fmt.Errorf("%w: cursor closed", errs.ErrResource)
	}
	return c.r.Window(c.chunk.Offset+c.info.headerSize, c.chunk.PayloadSize)
}

// Close releases the cursor state. The underlying buffer is not touched.
func (c *Cursor) Close() {
	c.r = nil
}
