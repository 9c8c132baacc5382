// Package binary provides bounded big-endian cursors for NEXRAD product
// parsing and a matching writer for building tables and fixtures.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

// Order is the byte order of every structure handled by this module.
var Order = binary.BigEndian

// Reader is a cursor over a window [pos, limit) of an io.ReaderAt. Every
// read is checked against limit before touching the underlying reader, so a
// corrupt length field can never walk a cursor off its owning region.
type Reader struct {
	r     io.ReaderAt
	pos   int64
	limit int64
}

// NewReader creates a reader over the first size bytes of r.
func NewReader(r io.ReaderAt, size int64) *Reader {
	return &Reader{r: r, limit: size}
}

// At returns a new reader positioned at the given offset, sharing the
// underlying io.ReaderAt and limit.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, pos: offset, limit: r.limit}
}

// Window returns a reader restricted to [offset, offset+n). The window must
// lie within the current reader's limit.
func (r *Reader) Window(offset, n int64) (*Reader, error) {
	if offset < 0 || n < 0 || offset+n > r.limit {
		return nil, fmt.Errorf("%w: window [%d,%d) exceeds limit %d", errs.ErrBounds, offset, offset+n, r.limit)
	}
	return &Reader{r: r.r, pos: offset, limit: offset + n}, nil
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Limit returns the exclusive upper bound of the window.
func (r *Reader) Limit() int64 {
	return r.limit
}

// Remaining returns the number of bytes between the position and the limit.
func (r *Reader) Remaining() int64 {
	if r.pos >= r.limit {
		return 0
	}
	return r.limit - r.pos
}

func (r *Reader) check(n int) error {
	if n < 0 || r.pos < 0 || r.pos+int64(n) > r.limit {
		return fmt.Errorf("%w: read of %d bytes at %d exceeds limit %d", errs.ErrBounds, n, r.pos, r.limit)
	}
	return nil
}

// ReadFull fills buf from the current position and advances past it.
// It does not allocate, so decoders can reuse scratch buffers.
func (r *Reader) ReadFull(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if err := r.check(len(buf)); err != nil {
		return err
	}
	n, err := r.r.ReadAt(buf, r.pos)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: short read at %d", errs.ErrBounds, r.pos)
		}
		return err
	}
	r.pos += int64(n)
	return nil
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := r.check(n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	var buf [1]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return Order.Uint16(buf[:]), nil
}

// ReadInt16 reads a big-endian signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return Order.Uint32(buf[:]), nil
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a big-endian unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	return Order.Uint64(buf[:]), nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) error {
	if err := r.check(int(n)); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// Align advances the position to the next multiple of alignment.
// If already aligned, the position is unchanged.
func (r *Reader) Align(alignment int64) {
	if alignment <= 1 {
		return
	}
	if remainder := r.pos % alignment; remainder != 0 {
		r.pos += alignment - remainder
	}
}

// Peek reads n bytes without advancing the position.
func (r *Reader) Peek(n int) ([]byte, error) {
	buf, err := r.At(r.pos).ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
