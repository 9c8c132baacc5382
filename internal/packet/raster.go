package packet

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

/*
Raster Packet Layout:
Offset  Size  Description
0       2     Packet code (0xBA0F or 0xBA07)
2       2     Op flags (0x8000)
4       2     Op flags (0x00C0)
6       2     I coordinate start
8       2     J coordinate start
10      2     X scale (integer)
12      2     X scale (fractional)
14      2     Y scale (integer)
16      2     Y scale (fractional)
18      2     Number of rows
20      2     Packing descriptor

Each row:
0       2     Number of bytes in row
2       var   Run bytes, padded to an even count
*/

const (
	RasterHeaderSize = 22
	LineHeaderSize   = 2

	RasterFlag1 uint16 = 0x8000
	RasterFlag2 uint16 = 0x00C0

	CoordMin = -2048
	CoordMax = 2047
	ScaleMin = 1
	ScaleMax = 67
)

// RasterMaxLines is the line ceiling of each raster variant.
var RasterMaxLines = map[Code]int{
	CodeRasterBA0F: 464,
	CodeRasterBA07: 232,
}

// RasterHeader is the fixed header of a raster packet.
type RasterHeader struct {
	Code      Code
	Flag1     uint16
	Flag2     uint16
	I         int16
	J         int16
	XScale    uint16
	XFrac     uint16
	YScale    uint16
	YFrac     uint16
	LineCount uint16
	Packing   uint16
}

// ReadRasterHeader parses and validates a raster packet header.
func ReadRasterHeader(r *binary.Reader) (*RasterHeader, error) {
	buf, err := r.ReadBytes(RasterHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading raster header: %w", err)
	}

	u16 := func(off int) uint16 { return binary.Order.Uint16(buf[off:]) }
	h := &RasterHeader{
		Code:      Code(u16(0)),
		Flag1:     u16(2),
		Flag2:     u16(4),
		I:         int16(u16(6)),
		J:         int16(u16(8)),
		XScale:    u16(10),
		XFrac:     u16(12),
		YScale:    u16(14),
		YFrac:     u16(16),
		LineCount: u16(18),
		Packing:   u16(20),
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the flag words and field bounds.
func (h *RasterHeader) Validate() error {
	maxLines, ok := RasterMaxLines[h.Code]
	if !ok {
		return fmt.Errorf("%w: %s is not a raster packet", errs.ErrUnsupportedEncoding, h.Code)
	}

	switch {
	case h.Flag1 != RasterFlag1 || h.Flag2 != RasterFlag2:
		return fmt.Errorf("%w: raster flags 0x%04X 0x%04X", errs.ErrMalformedHeader, h.Flag1, h.Flag2)
	case int(h.LineCount) > maxLines:
		return fmt.Errorf("%w: %s declares %d lines, max %d", errs.ErrMalformedHeader, h.Code, h.LineCount, maxLines)
	case h.I < CoordMin || h.I > CoordMax || h.J < CoordMin || h.J > CoordMax:
		return fmt.Errorf("%w: raster origin (%d, %d)", errs.ErrOutOfRange, h.I, h.J)
	case h.XScale < ScaleMin || h.XScale > ScaleMax || h.YScale < ScaleMin || h.YScale > ScaleMax:
		return fmt.Errorf("%w: raster scale (%d, %d)", errs.ErrOutOfRange, h.XScale, h.YScale)
	}
	return nil
}

// Write encodes the header at the writer's position.
func (h *RasterHeader) Write(w *binary.Writer) error {
	return w.WriteFields(uint16(h.Code), h.Flag1, h.Flag2, h.I, h.J,
		h.XScale, h.XFrac, h.YScale, h.YFrac, h.LineCount, h.Packing)
}

// LinePayloadSize returns the encoded size of a line's runs, padding
// included.
func LinePayloadSize(count uint16) int64 {
	return (int64(count) + 1) &^ 1
}

// RasterSize walks the lines of the raster packet at the reader's position
// and returns the packet's total encoded size.
func RasterSize(r *binary.Reader) (int64, error) {
	start := r.Pos()
	h, err := ReadRasterHeader(r)
	if err != nil {
		return 0, err
	}

	for i := 0; i < int(h.LineCount); i++ {
		count, err := r.ReadUint16()
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", i, err)
		}
		if err := r.Skip(LinePayloadSize(count)); err != nil {
			return 0, fmt.Errorf("line %d runs: %w", i, err)
		}
	}

	return r.Pos() - start, nil
}
