// Package geodesy wraps the WGS-84 geodesic primitives used to map radar
// polar coordinates onto the globe.
package geodesy

import (
	"math"

	"github.com/tidwall/geodesic"
)

// WGS-84 defining constants.
const (
	Radius     = 6378137.0
	Flattening = 1 / 298.257223563
)

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Spheroid computes geodesics on an ellipsoid of revolution.
type Spheroid struct {
	e *geodesic.Ellipsoid
}

// WGS84 is the spheroid shared by every projection.
var WGS84 = &Spheroid{e: geodesic.WGS84}

// NewSpheroid returns a spheroid with the given equatorial radius in meters
// and flattening.
func NewSpheroid(radius, flattening float64) *Spheroid {
	return &Spheroid{e: geodesic.NewEllipsoid(radius, flattening)}
}

// Direct returns the point reached by travelling distance meters from
// origin along the given initial azimuth in degrees.
func (s *Spheroid) Direct(origin Point, azimuth, distance float64) Point {
	var lat, lon float64
	s.e.Direct(origin.Lat, origin.Lon, azimuth, distance, &lat, &lon, nil)
	return Point{Lat: lat, Lon: lon}
}

// Inverse returns the initial azimuth from origin to dest, normalized to
// [0, 360), and the distance between them in meters.
func (s *Spheroid) Inverse(origin, dest Point) (azimuth, distance float64) {
	s.e.Inverse(origin.Lat, origin.Lon, dest.Lat, dest.Lon, &distance, &azimuth, nil)
	return NormalizeAzimuth(azimuth), distance
}

// NormalizeAzimuth folds an azimuth in degrees into [0, 360).
func NormalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Extents is the bounding box of a radar's coverage.
type Extents struct {
	North float64
	East  float64
	South float64
	West  float64
}

// RadarExtents returns the coverage box of a radar at site reaching
// maxRange meters, taken from the direct points due north, east, south
// and west.
func (s *Spheroid) RadarExtents(site Point, maxRange float64) Extents {
	return Extents{
		North: s.Direct(site, 0, maxRange).Lat,
		East:  s.Direct(site, 90, maxRange).Lon,
		South: s.Direct(site, 180, maxRange).Lat,
		West:  s.Direct(site, 270, maxRange).Lon,
	}
}

// Contains reports whether p lies within the box.
func (e Extents) Contains(p Point) bool {
	return p.Lat <= e.North && p.Lat >= e.South && p.Lon >= e.West && p.Lon <= e.East
}
