package projection

import (
	"bytes"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/geodesy"
)

/*
Projection File Layout:
Offset  Size  Description
0       4     Magic "PROJ"
4       2     Version (1)
6       2     Kind (1 equirectangular, 2 Web Mercator)
8       4     Width in pixels
12      4     Height in pixels
16      2     Rangebins
18      2     Rangebin length (meters)
20      4     Station latitude (microdegrees)
24      4     Station longitude (microdegrees)
28      4     North extent (microdegrees)
32      4     East extent (microdegrees)
36      4     South extent (microdegrees)
40      4     West extent (microdegrees)
44      4     World X of pixel column 0
48      4     World Y of pixel row 0
52      8     Kind parameters:
                equirectangular: scale, float64 bits (degrees per pixel)
                Web Mercator:    zoom u16, tile size u16, 4 reserved
60      4     Reserved
64      var   Width*Height records, row-major:
                0  2  Azimuth (0.1 degrees, [0, 3600))
                2  2  Range (rangebins, saturating)
*/

const (
	HeaderSize = 64
	RecordSize = 4
	Version    = 1
)

var magic = []byte("PROJ")

// Kind identifies the pixel grid of a projection.
type Kind uint16

// Projection kinds
const (
	KindEquirect Kind = 1
	KindMercator Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindEquirect:
		return "equirect"
	case KindMercator:
		return "mercator"
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// Header describes a projection table.
type Header struct {
	Kind           Kind
	Width          int
	Height         int
	Rangebins      int
	RangebinMeters int

	// Station is the radar site.
	Station geodesy.Point

	// Extents is the radar's coverage box.
	Extents geodesy.Extents

	// WorldX and WorldY locate pixel (0, 0) within the world raster.
	WorldX int
	WorldY int

	// Scale is the equirectangular resolution in degrees per pixel.
	Scale float64

	// Zoom and TileSize define the Web Mercator world size.
	Zoom     int
	TileSize int
}

// FileSize returns the encoded size of a table with this header.
func (h Header) FileSize() int64 {
	return HeaderSize + int64(h.Width)*int64(h.Height)*RecordSize
}

func microdegrees(deg float64) int32 {
	return int32(math.Round(deg * 1e6))
}

func degrees(micro int32) float64 {
	return float64(micro) / 1e6
}

func (h *Header) write(w *binary.Writer) error {
	if err := w.WriteFields(magic, uint16(Version), uint16(h.Kind),
		uint32(h.Width), uint32(h.Height),
		uint16(h.Rangebins), uint16(h.RangebinMeters),
		microdegrees(h.Station.Lat), microdegrees(h.Station.Lon),
		microdegrees(h.Extents.North), microdegrees(h.Extents.East),
		microdegrees(h.Extents.South), microdegrees(h.Extents.West),
		int32(h.WorldX), int32(h.WorldY),
	); err != nil {
		return err
	}

	switch h.Kind {
	case KindEquirect:
		if err := w.WriteUint64(math.Float64bits(h.Scale)); err != nil {
			return err
		}
	case KindMercator:
		if err := w.WriteFields(uint16(h.Zoom), uint16(h.TileSize), uint32(0)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: projection %s", ErrUnsupportedEncoding, h.Kind)
	}
	return w.WriteZeros(4)
}

func readHeader(r *binary.Reader) (*Header, error) {
	buf, err := r.ReadBytes(HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("reading projection header: %w", err)
	}
	if !bytes.Equal(buf[:4], magic) {
		return nil, fmt.Errorf("%w: projection magic %q", ErrMalformedHeader, buf[:4])
	}

	u16 := func(off int) uint16 { return binary.Order.Uint16(buf[off:]) }
	u32 := func(off int) uint32 { return binary.Order.Uint32(buf[off:]) }
	deg := func(off int) float64 { return degrees(int32(u32(off))) }

	if v := u16(4); v != Version {
		return nil, fmt.Errorf("%w: projection version %d", ErrUnsupportedEncoding, v)
	}

	h := &Header{
		Kind:           Kind(u16(6)),
		Width:          int(u32(8)),
		Height:         int(u32(12)),
		Rangebins:      int(u16(16)),
		RangebinMeters: int(u16(18)),
		Station:        geodesy.Point{Lat: deg(20), Lon: deg(24)},
		Extents: geodesy.Extents{
			North: deg(28),
			East:  deg(32),
			South: deg(36),
			West:  deg(40),
		},
		WorldX: int(int32(u32(44))),
		WorldY: int(int32(u32(48))),
	}

	switch h.Kind {
	case KindEquirect:
		h.Scale = math.Float64frombits(binary.Order.Uint64(buf[52:]))
	case KindMercator:
		h.Zoom = int(u16(52))
		h.TileSize = int(u16(54))
	default:
		return nil, fmt.Errorf("%w: projection %s", ErrUnsupportedEncoding, h.Kind)
	}
	return h, nil
}
