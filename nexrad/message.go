package nexrad

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/exp/mmap"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/compress"
	"github.com/robert-malhotra/go-nexrad/internal/header"
)

// MessageHeader is the fixed header at the start of every product message.
type MessageHeader = header.MessageHeader

// ProductDescription describes the product carried by a message.
type ProductDescription = header.ProductDescription

// Framing describes the text framing surrounding the binary message.
type Framing = header.Framing

// Message is an open Level III product message.
type Message struct {
	framing *header.Framing
	header  *header.MessageHeader
	desc    *header.ProductDescription

	// body covers the message bytes following the product description,
	// decompressed when the product requires it.
	body     *binary.Reader
	bodySize int64
	owned    []byte

	blocks map[Kind]int64

	closer io.Closer
	logger *slog.Logger
	closed bool
}

// Open maps the product file at path read-only and parses its message.
func Open(path string, opts ...Option) (*Message, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: mapping %s: %w", ErrResource, path, err)
	}

	m, err := openMessage(ra, int64(ra.Len()), ra, opts)
	if err != nil {
		ra.Close()
		return nil, err
	}
	return m, nil
}

// OpenReader parses the product message held in the first size bytes of r.
// Closing the message does not close r.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Message, error) {
	return openMessage(r, size, nil, opts)
}

func openMessage(ra io.ReaderAt, size int64, closer io.Closer, opts []Option) (*Message, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	switch {
	case size < MinFileSize:
		return nil, fmt.Errorf("%w: file of %d bytes is smaller than %d", ErrSizeMismatch, size, MinFileSize)
	case size > MaxFileSize:
		return nil, fmt.Errorf("%w: file of %d bytes exceeds %d", ErrOutOfRange, size, MaxFileSize)
	}

	r := binary.NewReader(ra, size)

	framing, err := header.ReadFraming(r, size)
	if err != nil {
		return nil, err
	}

	mr := r.At(framing.Leading)
	mh, err := header.ReadMessageHeader(mr)
	if err != nil {
		return nil, err
	}
	desc, err := header.ReadProductDescription(mr)
	if err != nil {
		return nil, err
	}

	msgSize := size - framing.Leading - framing.Trailing
	if int64(mh.Length) != msgSize {
		return nil, fmt.Errorf("%w: message declares %d bytes, file holds %d", ErrSizeMismatch, mh.Length, msgSize)
	}

	m := &Message{
		framing: framing,
		header:  mh,
		desc:    desc,
		closer:  closer,
		logger:  o.logger,
	}

	bodyStart := framing.Leading + header.PrefixSize
	bodySize := msgSize - header.PrefixSize

	method := desc.CompressionMethod()
	if method == header.CompressionNone {
		m.body = binary.NewReader(io.NewSectionReader(ra, bodyStart, bodySize), bodySize)
		m.bodySize = bodySize
	} else {
		input, err := r.At(bodyStart).ReadBytes(int(bodySize))
		if err != nil {
			return nil, fmt.Errorf("reading compressed body: %w", err)
		}
		out, err := compress.Decompress(method, input, int(desc.UncompressedSize()), o.maxBodySize)
		if err != nil {
			return nil, fmt.Errorf("decompressing body: %w", err)
		}
		m.owned = out
		m.bodySize = int64(len(out))
		m.body = binary.NewReader(bytes.NewReader(out), m.bodySize)
	}

	if err := m.resolveBlocks(); err != nil {
		m.owned = nil
		return nil, err
	}

	m.logger.Debug("opened message",
		"product_code", desc.ProductCode,
		"awips", framing.AWIPS,
		"compression", compress.Name(method),
		"body_size", m.bodySize,
		"blocks", len(m.blocks),
	)

	return m, nil
}

// resolveBlocks converts the description's halfword offsets into body
// offsets and validates each present block's header.
func (m *Message) resolveBlocks() error {
	fields := []struct {
		kind      Kind
		halfwords uint32
	}{
		{KindSymbology, m.desc.SymbologyOffset},
		{KindGraphic, m.desc.GraphicOffset},
		{KindTabular, m.desc.TabularOffset},
	}

	m.blocks = make(map[Kind]int64, len(fields))
	for _, f := range fields {
		off, ok := header.BlockOffset(f.halfwords)
		if !ok {
			continue
		}
		if off < 0 || off >= m.bodySize {
			return fmt.Errorf("%w: %s at %d outside body of %d bytes", ErrBounds, f.kind, off, m.bodySize)
		}
		if _, err := decodeChunk(m.body.At(off), f.kind); err != nil {
			return fmt.Errorf("resolving %s: %w", f.kind, err)
		}
		m.blocks[f.kind] = off
	}
	return nil
}

// Close releases the decompressed body and the file mapping. It is safe to
// call more than once.
func (m *Message) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.owned = nil
	m.body = nil

	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

// Header returns the message header.
func (m *Message) Header() MessageHeader {
	return *m.header
}

// Description returns the product description.
func (m *Message) Description() ProductDescription {
	return *m.desc
}

// Framing returns the text framing found around the message.
func (m *Message) Framing() Framing {
	return *m.framing
}

// Station returns the radar site in degrees.
func (m *Message) Station() (lat, lon float64) {
	return m.desc.Station()
}

// Compressed reports whether the body was stored compressed.
func (m *Message) Compressed() bool {
	return m.owned != nil
}

// BodySize returns the size of the (decompressed) message body.
func (m *Message) BodySize() int64 {
	return m.bodySize
}

// HasSymbology reports whether the message carries a symbology block.
func (m *Message) HasSymbology() bool {
	_, ok := m.blocks[KindSymbology]
	return ok
}

// HasGraphic reports whether the message carries a graphic block.
func (m *Message) HasGraphic() bool {
	_, ok := m.blocks[KindGraphic]
	return ok
}

// HasTabular reports whether the message carries a tabular block.
func (m *Message) HasTabular() bool {
	_, ok := m.blocks[KindTabular]
	return ok
}

// Symbology opens a cursor over the symbology block's layers.
func (m *Message) Symbology() (*Cursor, error) {
	return m.block(KindSymbology)
}

// Graphic opens a cursor over the graphic block's pages.
func (m *Message) Graphic() (*Cursor, error) {
	return m.block(KindGraphic)
}

// Tabular opens a cursor over the tabular block.
func (m *Message) Tabular() (*Cursor, error) {
	return m.block(KindTabular)
}

func (m *Message) block(kind Kind) (*Cursor, error) {
	if m.closed {
		return nil, ErrClosed
	}
	off, ok := m.blocks[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoBlock, kind)
	}
	return openCursor(m.body.At(off), kind)
}
