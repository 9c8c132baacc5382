package nexrad

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-nexrad/internal/binary"
	"github.com/robert-malhotra/go-nexrad/internal/errs"
	"github.com/robert-malhotra/go-nexrad/internal/packet"
)

// RadialHeader is the fixed header of a radial packet.
type RadialHeader = packet.RadialHeader

// Azimuths is the number of tenth-of-a-degree azimuth buckets in a
// DenseGrid.
const Azimuths = 3600

// Ray is one decoded ray. Values aliases the decoder's scratch buffer and
// is only valid until the next ReadRay call on the same decoder.
type Ray struct {
	// AngleStart and AngleDelta are in tenths of a degree.
	AngleStart int16
	AngleDelta int16

	// Values holds one byte per rangebin.
	Values []byte
}

// rayEntry indexes one ray for point lookups.
type rayEntry struct {
	offset int64
	header packet.RayHeader
}

// RadialDecoder decodes the rays of an RLE or digital radial packet into
// per-rangebin bytes.
type RadialDecoder struct {
	header *RadialHeader
	r      *binary.Reader
	first  int64

	raysLeft  int
	bytesRead int64

	scratch []byte
	runs    []byte

	index []rayEntry
}

// NewRadialDecoder validates a radial packet's header and returns a
// decoder positioned at its first ray.
func NewRadialDecoder(p *Packet) (*RadialDecoder, error) {
	if !p.Code.IsRadial() {
		return nil, fmt.Errorf("%w: %s is not a radial packet", errs.ErrUnsupportedEncoding, p.Code)
	}

	r := p.r.At(p.Offset)
	h, err := packet.ReadRadialHeader(r)
	if err != nil {
		return nil, err
	}

	return &RadialDecoder{
		header:    h,
		r:         r,
		first:     r.Pos(),
		raysLeft:  int(h.RayCount),
		bytesRead: packet.RadialHeaderSize,
		scratch:   make([]byte, h.BinCount),
	}, nil
}

// Header returns the packet header.
func (d *RadialDecoder) Header() RadialHeader {
	return *d.header
}

// Digital reports whether the packet uses one byte per rangebin.
func (d *RadialDecoder) Digital() bool {
	return d.header.Code == packet.CodeDigitalRadial
}

// RaysLeft returns the number of rays not yet read.
func (d *RadialDecoder) RaysLeft() int {
	return d.raysLeft
}

// BytesRead returns the packet bytes consumed so far, header included.
func (d *RadialDecoder) BytesRead() int64 {
	return d.bytesRead
}

// ReadRay decodes the next ray. It returns io.EOF after the last ray.
func (d *RadialDecoder) ReadRay() (*Ray, error) {
	if d.raysLeft <= 0 {
		return nil, io.EOF
	}

	ray, err := packet.ReadRayHeader(d.r)
	if err != nil {
		return nil, err
	}
	size := d.header.PayloadSize(ray)

	clear(d.scratch)
	if d.Digital() {
		n := min(int(ray.Size), len(d.scratch))
		if err := d.r.ReadFull(d.scratch[:n]); err != nil {
			return nil, fmt.Errorf("reading ray data: %w", err)
		}
		if err := d.r.Skip(size - int64(n)); err != nil {
			return nil, fmt.Errorf("skipping ray data: %w", err)
		}
	} else {
		if cap(d.runs) < int(size) {
			d.runs = make([]byte, size)
		}
		runs := d.runs[:size]
		if err := d.r.ReadFull(runs); err != nil {
			return nil, fmt.Errorf("reading ray runs: %w", err)
		}
		packet.UnpackRuns(d.scratch, runs)
	}

	d.raysLeft--
	d.bytesRead += packet.RayHeaderSize + size

	return &Ray{AngleStart: ray.AngleStart, AngleDelta: ray.AngleDelta, Values: d.scratch}, nil
}

// Rewind positions the decoder back at its first ray.
func (d *RadialDecoder) Rewind() {
	d.r = d.r.At(d.first)
	d.raysLeft = int(d.header.RayCount)
	d.bytesRead = packet.RadialHeaderSize
}

// DenseGrid holds a radial sweep unpacked to one row per tenth of a degree.
type DenseGrid struct {
	// Bins is the number of rangebins per row.
	Bins int

	// FirstBin is the rangebin index of column zero.
	FirstBin int

	// Data holds Azimuths rows of Bins bytes.
	Data []byte
}

// At returns the value at azimuth (tenths of a degree) and rangebin,
// zero when either is out of range.
func (g *DenseGrid) At(azimuth, bin int) byte {
	if azimuth < 0 || azimuth >= Azimuths || bin < 0 || bin >= g.Bins {
		return 0
	}
	return g.Data[azimuth*g.Bins+bin]
}

// Row returns the rangebins of one azimuth bucket.
func (g *DenseGrid) Row(azimuth int) []byte {
	if azimuth < 0 || azimuth >= Azimuths {
		return nil
	}
	return g.Data[azimuth*g.Bins : (azimuth+1)*g.Bins]
}

// UnpackDense replays every ray into a grid indexed by azimuth bucket and
// rangebin. Each ray fills the buckets [start, start+delta); uncovered
// buckets stay zero and later rays overwrite earlier ones. The decoder is
// rewound before and after.
func (d *RadialDecoder) UnpackDense() (*DenseGrid, error) {
	bins := int(d.header.BinCount)
	g := &DenseGrid{
		Bins:     bins,
		FirstBin: int(d.header.FirstBin),
		Data:     make([]byte, Azimuths*bins),
	}

	d.Rewind()
	defer d.Rewind()

	for {
		ray, err := d.ReadRay()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start := int(ray.AngleStart)
		for a := start; a < start+int(ray.AngleDelta); a++ {
			copy(g.Row(normalizeAzimuth(a)), ray.Values)
		}
	}

	return g, nil
}

// GetRangebin returns the value of a digital radial at azimuth (tenths of
// a degree) and rangebin. The ray expected to cover the azimuth is tried
// first, falling back to a scan of every ray.
func (d *RadialDecoder) GetRangebin(azimuth, bin int) (byte, error) {
	if !d.Digital() {
		return 0, ErrNotDigital
	}
	if azimuth < 0 || azimuth >= Azimuths || bin < 0 || bin >= int(d.header.BinCount) {
		return 0, fmt.Errorf("%w: azimuth %d bin %d", ErrNotFound, azimuth, bin)
	}

	if d.index == nil {
		if err := d.buildIndex(); err != nil {
			return 0, err
		}
	}
	if len(d.index) == 0 {
		return 0, fmt.Errorf("%w: packet has no rays", ErrNotFound)
	}

	entry, ok := d.findRay(azimuth)
	if !ok {
		return 0, fmt.Errorf("%w: no ray covers azimuth %d", ErrNotFound, azimuth)
	}
	if bin >= int(entry.header.Size) {
		return 0, fmt.Errorf("%w: ray holds %d bins", ErrNotFound, entry.header.Size)
	}

	return d.r.At(entry.offset + packet.RayHeaderSize + int64(bin)).ReadUint8()
}

func (d *RadialDecoder) findRay(azimuth int) (rayEntry, bool) {
	slot := azimuth * len(d.index) / Azimuths
	if covers(d.index[slot].header, azimuth) {
		return d.index[slot], true
	}
	for _, e := range d.index {
		if covers(e.header, azimuth) {
			return e, true
		}
	}
	return rayEntry{}, false
}

func (d *RadialDecoder) buildIndex() error {
	r := d.r.At(d.first)
	index := make([]rayEntry, 0, d.header.RayCount)
	for i := 0; i < int(d.header.RayCount); i++ {
		offset := r.Pos()
		ray, err := packet.ReadRayHeader(r)
		if err != nil {
			return fmt.Errorf("indexing ray %d: %w", i, err)
		}
		if err := r.Skip(d.header.PayloadSize(ray)); err != nil {
			return fmt.Errorf("indexing ray %d: %w", i, err)
		}
		index = append(index, rayEntry{offset: offset, header: ray})
	}
	d.index = index
	return nil
}

// covers reports whether a ray's span [start, start+delta) contains the
// azimuth, allowing the span to wrap through north.
func covers(ray packet.RayHeader, azimuth int) bool {
	delta := int(ray.AngleDelta)
	if delta <= 0 {
		return false
	}
	offset := normalizeAzimuth(azimuth - int(ray.AngleStart))
	return offset < delta
}

func normalizeAzimuth(a int) int {
	a %= Azimuths
	if a < 0 {
		a += Azimuths
	}
	return a
}
