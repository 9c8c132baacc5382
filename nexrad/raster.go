package nexrad

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
	"github.com/robert-malhotra/go-nexrad/internal/packet"
)

// RasterHeader is the fixed header of a raster packet.
type RasterHeader = packet.RasterHeader

// Run is a horizontal span of equal value within a raster line.
type Run struct {
	X     int
	Width int
	Level byte
}

// Line is one decoded raster row. Runs aliases the decoder's scratch
// buffer and is only valid until the next ReadLine call.
type Line struct {
	Y    int
	Runs []Run
}

// RasterDecoder decodes the lines of a raster packet into runs.
type RasterDecoder struct {
	header *RasterHeader
	r      *binary.Reader

	width     int
	linesLeft int
	bytesRead int64

	buf  []byte
	runs []Run
}

// NewRasterDecoder validates a raster packet's header and returns a
// decoder positioned at its first line. The raster width is taken from
// the run total of the first line.
func NewRasterDecoder(p *Packet) (*RasterDecoder, error) {
	if !p.Code.IsRaster() {
		return nil, fmt.Errorf("%w: %s is not a raster packet", errs.ErrUnsupportedEncoding, p.Code)
	}

	r := p.r.At(p.Offset)
	h, err := packet.ReadRasterHeader(r)
	if err != nil {
		return nil, err
	}

	d := &RasterDecoder{
		header:    h,
		r:         r,
		linesLeft: int(h.LineCount),
		bytesRead: packet.RasterHeaderSize,
	}

	if h.LineCount > 0 {
		width, err := d.firstLineWidth()
		if err != nil {
			return nil, err
		}
		d.width = width
	}
	return d, nil
}

func (d *RasterDecoder) firstLineWidth() (int, error) {
	lr := d.r.At(d.r.Pos())
	count, err := lr.ReadUint16()
	if err != nil {
		return 0, fmt.Errorf("reading first raster line: %w", err)
	}
	runs, err := lr.ReadBytes(int(count))
	if err != nil {
		return 0, fmt.Errorf("reading first raster line: %w", err)
	}

	width := 0
	for _, b := range runs {
		n, _ := packet.Run(b)
		width += n
	}
	return width, nil
}

// Header returns the packet header.
func (d *RasterDecoder) Header() RasterHeader {
	return *d.header
}

// Info returns the raster dimensions in cells.
func (d *RasterDecoder) Info() (width, height int) {
	return d.width, int(d.header.LineCount)
}

// LinesLeft returns the number of lines not yet read.
func (d *RasterDecoder) LinesLeft() int {
	return d.linesLeft
}

// BytesRead returns the packet bytes consumed so far, header included.
func (d *RasterDecoder) BytesRead() int64 {
	return d.bytesRead
}

// ReadLine decodes the next line. Decoding of a line stops at the first
// run that would extend past the raster width. It returns io.EOF after the
// last line.
func (d *RasterDecoder) ReadLine() (*Line, error) {
	if d.linesLeft <= 0 {
		return nil, io.EOF
	}

	count, err := d.r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading raster line: %w", err)
	}
	size := packet.LinePayloadSize(count)
	if cap(d.buf) < int(size) {
		d.buf = make([]byte, size)
	}
	buf := d.buf[:size]
	if err := d.r.ReadFull(buf); err != nil {
		return nil, fmt.Errorf("reading raster runs: %w", err)
	}

	d.runs = d.runs[:0]
	x := 0
	for _, b := range buf[:count] {
		n, level := packet.Run(b)
		if n == 0 {
			continue
		}
		if x+n > d.width {
			break
		}
		d.runs = append(d.runs, Run{X: x, Width: n, Level: packet.Intensity(level)})
		x += n
	}

	y := int(d.header.LineCount) - d.linesLeft
	d.linesLeft--
	d.bytesRead += packet.LineHeaderSize + size

	return &Line{Y: y, Runs: d.runs}, nil
}
