package binary

import (
	"fmt"
	"io"
)

// Writer writes big-endian fields at an explicit position of an io.WriterAt.
type Writer struct {
	w   io.WriterAt
	pos int64
}

// NewWriter creates a writer positioned at offset zero.
func NewWriter(w io.WriterAt) *Writer {
	return &Writer{w: w}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, pos: offset}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint16 writes a big-endian unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) error {
	var buf [2]byte
	Order.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteInt16 writes a big-endian signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

// WriteUint32 writes a big-endian unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	Order.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteInt32 writes a big-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteUint64 writes a big-endian unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	Order.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// Skip advances the position by n bytes without writing.
func (w *Writer) Skip(n int64) {
	w.pos += n
}

// WritePadding writes zero bytes to align to the given alignment.
func (w *Writer) WritePadding(alignment int64) error {
	if alignment <= 1 {
		return nil
	}
	remainder := w.pos % alignment
	if remainder == 0 {
		return nil
	}
	return w.WriteZeros(int(alignment - remainder))
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// Buffer is a growable in-memory io.WriterAt. Writes past the end extend
// the buffer with zeros.
type Buffer struct {
	data []byte
}

// NewBuffer creates a buffer with the given initial length, zero filled.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// WriteAt implements io.WriterAt.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, end*2)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	return copy(b.data[off:], p), nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the buffer length.
func (b *Buffer) Len() int {
	return len(b.data)
}

// WriteFields writes each value in order using its natural big-endian
// width. Supported types are uint8, int8, uint16, int16, uint32, int32,
// uint64 and []byte.
func (w *Writer) WriteFields(fields ...any) error {
	for i, f := range fields {
		var err error
		switch v := f.(type) {
		case uint8:
			err = w.WriteUint8(v)
		case int8:
			err = w.WriteUint8(uint8(v))
		case uint16:
			err = w.WriteUint16(v)
		case int16:
			err = w.WriteInt16(v)
		case uint32:
			err = w.WriteUint32(v)
		case int32:
			err = w.WriteInt32(v)
		case uint64:
			err = w.WriteUint64(v)
		case []byte:
			err = w.WriteBytes(v)
		default:
			return fmt.Errorf("field %d: unsupported type %T", i, f)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
