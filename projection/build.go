package projection

import (
	"fmt"
	"math"

	"github.com/robert-malhotra/go-nexrad/internal/geodesy"
)

// Build limits
const (
	MinZoom = 2
	MaxZoom = 16

	// MaxPixels bounds the size of a single table.
	MaxPixels = 16 << 20

	// Azimuths is the number of tenth-of-a-degree azimuth steps.
	Azimuths = 3600
)

// Site describes a radar and the reach of its rangebins.
type Site struct {
	Lat            float64
	Lon            float64
	Rangebins      int
	RangebinMeters int
}

// MaxRange returns the site's coverage radius in meters.
func (s Site) MaxRange() float64 {
	return float64(s.Rangebins) * float64(s.RangebinMeters)
}

func (s Site) validate() error {
	switch {
	case s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180:
		return fmt.Errorf("%w: station (%v, %v)", ErrOutOfRange, s.Lat, s.Lon)
	case s.Rangebins <= 0 || s.Rangebins > math.MaxUint16:
		return fmt.Errorf("%w: %d rangebins", ErrOutOfRange, s.Rangebins)
	case s.RangebinMeters <= 0 || s.RangebinMeters > math.MaxUint16:
		return fmt.Errorf("%w: rangebin of %d meters", ErrOutOfRange, s.RangebinMeters)
	}
	return nil
}

// EquirectParams selects an equirectangular grid.
type EquirectParams struct {
	// Scale is the pixel size in degrees.
	Scale float64
}

// MercatorParams selects a Web Mercator grid.
type MercatorParams struct {
	// Zoom is the slippy map zoom level, clamped to [MinZoom, MaxZoom].
	Zoom int
}

// PolarPoint is the radar coordinate of one pixel.
type PolarPoint struct {
	// Azimuth is in tenths of a degree, [0, 3600).
	Azimuth uint16

	// Range is in rangebins, saturating at 65535.
	Range uint16
}

// Degrees returns the azimuth in degrees.
func (p PolarPoint) Degrees() float64 {
	return float64(p.Azimuth) / 10
}

// grid converts between pixel and geographic coordinates of a world
// raster.
type grid interface {
	// forward returns the world pixel position of a coordinate.
	forward(p geodesy.Point) (x, y float64)

	// inverse returns the coordinate at a world pixel position.
	inverse(x, y float64) geodesy.Point
}

type equirectGrid struct {
	width, height float64
}

func newEquirectGrid(scale float64) equirectGrid {
	h := math.Round(180 / scale)
	return equirectGrid{width: 2 * h, height: h}
}

func (g equirectGrid) forward(p geodesy.Point) (x, y float64) {
	return (p.Lon + 180) / 360 * g.width, (90 - p.Lat) / 180 * g.height
}

func (g equirectGrid) inverse(x, y float64) geodesy.Point {
	return geodesy.Point{Lat: 90 - y/g.height*180, Lon: x/g.width*360 - 180}
}

type mercatorGrid struct {
	size float64
}

func (g mercatorGrid) forward(p geodesy.Point) (x, y float64) {
	lat := p.Lat * math.Pi / 180
	x = (p.Lon + 180) / 360 * g.size
	y = (1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2 * g.size
	return x, y
}

func (g mercatorGrid) inverse(x, y float64) geodesy.Point {
	n := math.Pi * (1 - 2*y/g.size)
	return geodesy.Point{
		Lat: math.Atan(math.Sinh(n)) * 180 / math.Pi,
		Lon: x/g.size*360 - 180,
	}
}

// ClampZoom limits a zoom level to the supported range.
func ClampZoom(zoom int) int {
	return max(MinZoom, min(MaxZoom, zoom))
}

// BuildEquirect computes an equirectangular table covering the site.
func BuildEquirect(site Site, params EquirectParams, opts ...Option) (*Projection, error) {
	if !(params.Scale > 0 && params.Scale <= 1) {
		return nil, fmt.Errorf("%w: equirect scale %v", ErrOutOfRange, params.Scale)
	}
	h := &Header{Kind: KindEquirect, Scale: params.Scale}
	return build(site, h, newEquirectGrid(params.Scale), applyOptions(opts))
}

// BuildMercator computes a Web Mercator table covering the site.
func BuildMercator(site Site, params MercatorParams, opts ...Option) (*Projection, error) {
	o := applyOptions(opts)
	if o.tileSize > math.MaxUint16 {
		return nil, fmt.Errorf("%w: tile size %d", ErrOutOfRange, o.tileSize)
	}
	zoom := ClampZoom(params.Zoom)
	h := &Header{Kind: KindMercator, Zoom: zoom, TileSize: o.tileSize}
	return build(site, h, mercatorGrid{size: float64(o.tileSize) * math.Exp2(float64(zoom))}, o)
}

func build(site Site, h *Header, g grid, o *options) (*Projection, error) {
	if err := site.validate(); err != nil {
		return nil, err
	}
	start := o.clock.Now()

	station := geodesy.Point{Lat: site.Lat, Lon: site.Lon}
	ext := geodesy.WGS84.RadarExtents(station, site.MaxRange())
	if !ext.Contains(station) {
		return nil, fmt.Errorf("%w: coverage of (%v, %v) wraps the antimeridian or a pole", ErrOutOfRange, site.Lat, site.Lon)
	}

	left, top := g.forward(geodesy.Point{Lat: ext.North, Lon: ext.West})
	right, bottom := g.forward(geodesy.Point{Lat: ext.South, Lon: ext.East})
	x0, y0 := int(math.Floor(left)), int(math.Floor(top))
	width := int(math.Ceil(right)) - x0
	height := int(math.Ceil(bottom)) - y0
	if width <= 0 || height <= 0 || width*height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixel table", ErrOutOfRange, width, height)
	}

	h.Width, h.Height = width, height
	h.Rangebins, h.RangebinMeters = site.Rangebins, site.RangebinMeters
	h.Station = station
	h.Extents = ext
	h.WorldX, h.WorldY = x0, y0

	points := make([]PolarPoint, width*height)
	meters := float64(site.RangebinMeters)
	for py := 0; py < height; py++ {
		row := points[py*width : (py+1)*width]
		for px := range row {
			p := g.inverse(float64(x0+px)+0.5, float64(y0+py)+0.5)
			az, dist := geodesy.WGS84.Inverse(station, p)
			row[px] = PolarPoint{
				Azimuth: uint16(int(math.Round(az*10)) % Azimuths),
				Range:   uint16(min(dist/meters, math.MaxUint16)),
			}
		}
		if o.progress != nil {
			o.progress(py+1, height)
		}
	}

	o.logger.Info("built projection",
		"kind", h.Kind.String(),
		"width", width,
		"height", height,
		"elapsed", o.clock.Since(start),
	)
	return &Projection{header: *h, points: points}, nil
}

// Projection is an in-memory projection table.
type Projection struct {
	header Header
	points []PolarPoint
}

// Header returns the table header.
func (p *Projection) Header() Header {
	return p.header
}

// FindPolarPoint returns the radar coordinate of pixel (x, y).
func (p *Projection) FindPolarPoint(x, y int) (PolarPoint, error) {
	if x < 0 || y < 0 || x >= p.header.Width || y >= p.header.Height {
		return PolarPoint{}, fmt.Errorf("%w: (%d, %d)", ErrNotFound, x, y)
	}
	return p.points[y*p.header.Width+x], nil
}
