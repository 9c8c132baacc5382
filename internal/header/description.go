package header

import (
	"fmt"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
)

/*
Product Description Layout (102 bytes, halfwords 10-60 of the message):
Offset  Size  Description
0       2     Divider (-1)
2       4     Radar latitude (0.001 degrees)
6       4     Radar longitude (0.001 degrees)
10      2     Radar height (feet above MSL)
12      2     Product code
14      2     Operational mode
16      2     Volume coverage pattern
18      2     Sequence number
20      2     Volume scan number
22      2     Volume scan date
24      4     Volume scan start time
28      2     Generation date
30      4     Generation time
34      4     Product dependent P1, P2
38      2     Elevation number
40      2     Product dependent P3
42      32    Data level thresholds (16 halfwords)
74      14    Product dependent P4-P10
88      1     Version
89      1     Spot blank
90      4     Symbology block offset (halfwords)
94      4     Graphic block offset (halfwords)
98      4     Tabular block offset (halfwords)
*/

// ProductDescriptionSize is the encoded size of a ProductDescription.
const ProductDescriptionSize = 102

// PrefixSize is the number of message bytes preceding the body: the message
// header and the product description. Block offsets count from the start of
// the message header, so a block lies PrefixSize bytes earlier in the body.
const PrefixSize = MessageHeaderSize + ProductDescriptionSize

// Divider is the sentinel preceding structural blocks.
const Divider int16 = -1

// Compression methods carried in P8 of compressible products.
const (
	CompressionNone  uint16 = 0
	CompressionBzip2 uint16 = 1
)

// compressible lists the product codes whose P8-P10 describe body
// compression. Other products are never compressed.
var compressible = map[uint16]bool{
	32: true, 94: true, 99: true, 113: true, 134: true, 135: true,
	136: true, 138: true, 141: true, 149: true, 152: true, 153: true,
	154: true, 155: true, 159: true, 161: true, 163: true, 165: true,
	170: true, 172: true, 173: true, 174: true, 175: true, 176: true,
	177: true, 193: true, 195: true, 197: true,
}

// ProductDescription describes the product carried by a message.
type ProductDescription struct {
	Divider        int16
	Latitude       int32
	Longitude      int32
	Height         int16
	ProductCode    uint16
	Mode           uint16
	VCP            uint16
	Sequence       int16
	ScanNumber     uint16
	ScanDate       uint16
	ScanTime       uint32
	GenerationDate uint16
	GenerationTime uint32
	ElevationNum   uint16
	Thresholds     [16]uint16

	// Params holds the product dependent halfwords P1 through P10;
	// Params[0] is P1.
	Params [10]uint16

	Version   uint8
	SpotBlank uint8

	SymbologyOffset uint32
	GraphicOffset   uint32
	TabularOffset   uint32
}

// ReadProductDescription parses a product description at the reader's
// position and validates its divider.
func ReadProductDescription(r *binary.Reader) (*ProductDescription, error) {
	buf, err := r.ReadBytes(ProductDescriptionSize)
	if err != nil {
		return nil, fmt.Errorf("reading product description: %w", err)
	}

	u16 := func(off int) uint16 { return binary.Order.Uint16(buf[off:]) }
	u32 := func(off int) uint32 { return binary.Order.Uint32(buf[off:]) }

	d := &ProductDescription{
		Divider:         int16(u16(0)),
		Latitude:        int32(u32(2)),
		Longitude:       int32(u32(6)),
		Height:          int16(u16(10)),
		ProductCode:     u16(12),
		Mode:            u16(14),
		VCP:             u16(16),
		Sequence:        int16(u16(18)),
		ScanNumber:      u16(20),
		ScanDate:        u16(22),
		ScanTime:        u32(24),
		GenerationDate:  u16(28),
		GenerationTime:  u32(30),
		ElevationNum:    u16(38),
		Version:         buf[88],
		SpotBlank:       buf[89],
		SymbologyOffset: u32(90),
		GraphicOffset:   u32(94),
		TabularOffset:   u32(98),
	}

	d.Params[0] = u16(34)
	d.Params[1] = u16(36)
	d.Params[2] = u16(40)
	for i := 0; i < 7; i++ {
		d.Params[3+i] = u16(74 + 2*i)
	}
	for i := range d.Thresholds {
		d.Thresholds[i] = u16(42 + 2*i)
	}

	if d.Divider != Divider {
		return nil, fmt.Errorf("%w: product description divider %d", errs.ErrMalformedHeader, d.Divider)
	}

	return d, nil
}

// Write encodes the description at the writer's position.
func (d *ProductDescription) Write(w *binary.Writer) error {
	if err := w.WriteFields(
		d.Divider, d.Latitude, d.Longitude, d.Height, d.ProductCode,
		d.Mode, d.VCP, d.Sequence, d.ScanNumber, d.ScanDate, d.ScanTime,
		d.GenerationDate, d.GenerationTime, d.Params[0], d.Params[1],
		d.ElevationNum, d.Params[2],
	); err != nil {
		return err
	}
	for _, t := range d.Thresholds {
		if err := w.WriteUint16(t); err != nil {
			return err
		}
	}
	for _, p := range d.Params[3:] {
		if err := w.WriteUint16(p); err != nil {
			return err
		}
	}
	return w.WriteFields(d.Version, d.SpotBlank, d.SymbologyOffset, d.GraphicOffset, d.TabularOffset)
}

// Station returns the radar site in degrees.
func (d *ProductDescription) Station() (lat, lon float64) {
	return float64(d.Latitude) / 1000, float64(d.Longitude) / 1000
}

// Compressible reports whether the product code carries compression fields.
func (d *ProductDescription) Compressible() bool {
	return compressible[d.ProductCode]
}

// CompressionMethod returns the body compression method, CompressionNone
// for products that are never compressed.
func (d *ProductDescription) CompressionMethod() uint16 {
	if !d.Compressible() {
		return CompressionNone
	}
	return d.Params[7]
}

// UncompressedSize returns the declared size of the decompressed body.
func (d *ProductDescription) UncompressedSize() uint32 {
	return uint32(d.Params[8])<<16 | uint32(d.Params[9])
}

// BlockOffset converts a halfword offset field into a byte offset within
// the message body. A zero field means the block is absent.
func BlockOffset(halfwords uint32) (int64, bool) {
	if halfwords == 0 {
		return 0, false
	}
	return int64(halfwords)*2 - PrefixSize, true
}
