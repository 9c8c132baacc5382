package packet

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

/*
Radial Packet Layout:
Offset  Size  Description
0       2     Packet code (0xAF1F RLE, 16 digital)
2       2     Index of first range bin
4       2     Number of range bins
6       2     I center of sweep
8       2     J center of sweep
10      2     Range scale factor
12      2     Number of radials

Each radial:
0       2     Size (RLE: halfwords of runs; digital: bytes of data)
2       2     Radial start angle (0.1 degrees)
4       2     Radial angle delta (0.1 degrees)
6       var   Data
*/

const (
	RadialHeaderSize = 14
	RayHeaderSize    = 6
)

// RadialLimits bounds the header fields of one radial encoding.
type RadialLimits struct {
	FirstBin int
	BinCount int
	ScaleMin int
	ScaleMax int
	Rays     int
}

// RadialGates holds the validity gates for each radial encoding.
var RadialGates = map[Code]RadialLimits{
	CodeRLERadial:     {FirstBin: 460, BinCount: 460, ScaleMin: 1, ScaleMax: 8000, Rays: 400},
	CodeDigitalRadial: {FirstBin: 230, BinCount: 1840, ScaleMin: 1, ScaleMax: 1000, Rays: 720},
}

// RadialHeader is the fixed header of a radial packet.
type RadialHeader struct {
	Code     Code
	FirstBin int16
	BinCount uint16
	ICenter  int16
	JCenter  int16
	Scale    uint16
	RayCount uint16
}

// ReadRadialHeader parses a radial packet header and applies the gates for
// its encoding.
func ReadRadialHeader(r *binary.Reader) (*RadialHeader, error) {
	buf, err := r.ReadBytes(RadialHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading radial header: %w", err)
	}

	h := &RadialHeader{
		Code:     Code(binary.Order.Uint16(buf[0:])),
		FirstBin: int16(binary.Order.Uint16(buf[2:])),
		BinCount: binary.Order.Uint16(buf[4:]),
		ICenter:  int16(binary.Order.Uint16(buf[6:])),
		JCenter:  int16(binary.Order.Uint16(buf[8:])),
		Scale:    binary.Order.Uint16(buf[10:]),
		RayCount: binary.Order.Uint16(buf[12:]),
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the header against its encoding's gates.
func (h *RadialHeader) Validate() error {
	g, ok := RadialGates[h.Code]
	if !ok {
		return fmt.Errorf("%w: %s is not a radial packet", errs.ErrUnsupportedEncoding, h.Code)
	}

	switch {
	case h.FirstBin < 0 || int(h.FirstBin) > g.FirstBin:
		return fmt.Errorf("%w: %s first bin %d", errs.ErrOutOfRange, h.Code, h.FirstBin)
	case int(h.BinCount) > g.BinCount:
		return fmt.Errorf("%w: %s bin count %d", errs.ErrOutOfRange, h.Code, h.BinCount)
	case int(h.Scale) < g.ScaleMin || int(h.Scale) > g.ScaleMax:
		return fmt.Errorf("%w: %s scale %d", errs.ErrOutOfRange, h.Code, h.Scale)
	case int(h.RayCount) > g.Rays:
		return fmt.Errorf("%w: %s ray count %d", errs.ErrOutOfRange, h.Code, h.RayCount)
	}
	return nil
}

// Write encodes the header at the writer's position.
func (h *RadialHeader) Write(w *binary.Writer) error {
	return w.WriteFields(uint16(h.Code), h.FirstBin, h.BinCount, h.ICenter, h.JCenter, h.Scale, h.RayCount)
}

// RayHeader precedes each ray of a radial packet.
type RayHeader struct {
	Size       uint16
	AngleStart int16
	AngleDelta int16
}

// ReadRayHeader parses a ray header at the reader's position.
func ReadRayHeader(r *binary.Reader) (RayHeader, error) {
	buf, err := r.ReadBytes(RayHeaderSize)
	if err != nil {
		return RayHeader{}, fmt.Errorf("reading ray header: %w", err)
	}
	return RayHeader{
		Size:       binary.Order.Uint16(buf[0:]),
		AngleStart: int16(binary.Order.Uint16(buf[2:])),
		AngleDelta: int16(binary.Order.Uint16(buf[4:])),
	}, nil
}

// PayloadSize returns the encoded payload size of a ray, padding included.
func (h *RadialHeader) PayloadSize(ray RayHeader) int64 {
	if h.Code == CodeRLERadial {
		return int64(ray.Size) * 2
	}
	return (int64(ray.Size) + 1) &^ 1
}

// RadialSize walks the ray headers of the radial packet at the reader's
// position and returns the packet's total encoded size.
func RadialSize(r *binary.Reader) (int64, error) {
	start := r.Pos()
	h, err := ReadRadialHeader(r)
	if err != nil {
		return 0, err
	}

	for i := 0; i < int(h.RayCount); i++ {
		ray, err := ReadRayHeader(r)
		if err != nil {
			return 0, fmt.Errorf("ray %d: %w", i, err)
		}
		if err := r.Skip(h.PayloadSize(ray)); err != nil {
			return 0, fmt.Errorf("ray %d payload: %w", i, err)
		}
	}

	return r.Pos() - start, nil
}
