package packet

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

// Code identifies a packet type.
type Code uint16

// Packet codes
const (
	CodeTextNoValue     Code = 1
	CodeSpecialSymbol   Code = 2
	CodeTextValue       Code = 8
	CodeUnlinkedVector  Code = 10
	CodeMesocyclone     Code = 11
	CodeTVS             Code = 12
	CodeHailPositive    Code = 13
	CodeHailProbable    Code = 14
	CodeStormID         Code = 15
	CodeDigitalRadial   Code = 16
	CodeHailIndex       Code = 19
	CodePointFeature    Code = 20
	CodeStormTrack      Code = 23
	CodeGenericProduct  Code = 28
	CodeGenericData     Code = 29
	CodeLinkedVector    Code = 0x0E03
	CodeUnlinkedVector2 Code = 0x3501
	CodeRasterBA0F      Code = 0xBA0F
	CodeRasterBA07      Code = 0xBA07
	CodeRLERadial       Code = 0xAF1F
)

var codeNames = map[Code]string{
	CodeTextNoValue:     "text (no value)",
	CodeSpecialSymbol:   "special symbol",
	CodeTextValue:       "text (value)",
	CodeUnlinkedVector:  "unlinked vector",
	CodeMesocyclone:     "mesocyclone",
	CodeTVS:             "tornado vortex signature",
	CodeHailPositive:    "hail positive",
	CodeHailProbable:    "hail probable",
	CodeStormID:         "storm id",
	CodeDigitalRadial:   "digital radial",
	CodeHailIndex:       "hail index",
	CodePointFeature:    "point feature",
	CodeStormTrack:      "storm track",
	CodeGenericProduct:  "generic product",
	CodeGenericData:     "generic data",
	CodeLinkedVector:    "linked vector",
	CodeUnlinkedVector2: "unlinked vector (color)",
	CodeRasterBA0F:      "raster",
	CodeRasterBA07:      "raster (old)",
	CodeRLERadial:       "RLE radial",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("packet 0x%04X", uint16(c))
}

// IsRadial reports whether c is a radial packet code.
func (c Code) IsRadial() bool {
	return c == CodeDigitalRadial || c == CodeRLERadial
}

// IsRaster reports whether c is a raster packet code.
func (c Code) IsRaster() bool {
	return c == CodeRasterBA0F || c == CodeRasterBA07
}

// HeaderSize is the size of the code and 16-bit length fields that start
// length-prefixed packets.
const HeaderSize = 4

// genericHeaderSize covers code, reserved halfword and 32-bit length.
const genericHeaderSize = 8

// PeekCode returns the packet code at the reader's position.
func PeekCode(r *binary.Reader) (Code, error) {
	v, err := r.At(r.Pos()).ReadUint16()
	if err != nil {
		return 0, fmt.Errorf("reading packet code: %w", err)
	}
	return Code(v), nil
}

// Size returns the total encoded size, header included, of the packet at
// the reader's position. The reader's limit bounds the packet.
func Size(r *binary.Reader) (int64, error) {
	code, err := PeekCode(r)
	if err != nil {
		return 0, err
	}

	var size int64
	switch {
	case code.IsRadial():
		size, err = RadialSize(r.At(r.Pos()))
	case code.IsRaster():
		size, err = RasterSize(r.At(r.Pos()))
	case code == CodeGenericProduct || code == CodeGenericData:
		pr := r.At(r.Pos() + 4)
		var n uint32
		n, err = pr.ReadUint32()
		size = genericHeaderSize + int64(n)
	default:
		pr := r.At(r.Pos() + 2)
		var n uint16
		n, err = pr.ReadUint16()
		size = HeaderSize + int64(n)
	}
	if err != nil {
		return 0, fmt.Errorf("sizing %s: %w", code, err)
	}

	if size > r.Remaining() {
		return 0, fmt.Errorf("%w: %s of %d bytes exceeds %d remaining", errs.ErrBounds, code, size, r.Remaining())
	}
	return size, nil
}

// Run splits a packed run byte into its length (high nibble) and color
// level (low nibble).
func Run(b byte) (length, level int) {
	return int(b >> 4), int(b & 0x0F)
}

// Intensity scales a 4-bit color level to an 8-bit value.
func Intensity(level int) byte {
	return byte(level * 16)
}

// UnpackRuns expands packed run bytes into dst, writing Intensity(level)
// for length consecutive bins. Expansion stops at len(dst). It returns the
// number of bins written; bins past that are left untouched.
func UnpackRuns(dst, src []byte) int {
	n := 0
	for _, b := range src {
		length, level := Run(b)
		v := Intensity(level)
		for ; length > 0 && n < len(dst); length-- {
			dst[n] = v
			n++
		}
		if n == len(dst) {
			break
		}
	}
	return n
}
