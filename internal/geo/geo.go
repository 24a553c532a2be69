// Package geo holds the flat-earth helpers used to pair ARUs with drone
// survey footprints.
//
// Distances use a fixed 111,320 m per degree of latitude and scale longitude
// by cos(latitude), clamped at 0.1 near the poles. Results are comparative,
// not geodesically exact, and calibration outputs depend on this exact
// approximation, so it must not be replaced by a geodesic computation.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// MetersPerDegree is the length of one degree of latitude.
const MetersPerDegree = 111_320.0

// minLonScale bounds cos(lat) away from zero.
const minLonScale = 0.1

const squareMetersPerHectare = 10_000.0

// Bounds is a latitude/longitude box. It is stored as an XY go-geom bounds
// with X = longitude and Y = latitude.
type Bounds struct {
	box *geom.Bounds
}

// NewBounds returns an empty box ready to be extended.
func NewBounds() *Bounds {
	return &Bounds{box: geom.NewBounds(geom.XY)}
}

// FromMinMax returns the box [minLat,maxLat] x [minLon,maxLon].
func FromMinMax(minLat, maxLat, minLon, maxLon float64) *Bounds {
	return &Bounds{box: geom.NewBounds(geom.XY).Set(minLon, minLat, maxLon, maxLat)}
}

// ExtendCorners grows b to include both corners of an asset footprint.
func (b *Bounds) ExtendCorners(latTL, lonTL, latBR, lonBR float64) *Bounds {
	corners := geom.NewMultiPointFlat(geom.XY, []float64{lonTL, latTL, lonBR, latBR})
	b.box.Extend(corners)
	return b
}

// IsEmpty reports whether nothing has been added to b.
func (b *Bounds) IsEmpty() bool {
	return b == nil || b.box.IsEmpty()
}

// MinLat is the southern edge of b.
func (b *Bounds) MinLat() float64 { return b.box.Min(1) }

// MaxLat is the northern edge of b.
func (b *Bounds) MaxLat() float64 { return b.box.Max(1) }

// MinLon is the western edge of b.
func (b *Bounds) MinLon() float64 { return b.box.Min(0) }

// MaxLon is the eastern edge of b.
func (b *Bounds) MaxLon() float64 { return b.box.Max(0) }

// MetersToLatDegrees converts a north-south distance to degrees.
func MetersToLatDegrees(meters float64) float64 {
	return meters / MetersPerDegree
}

// MetersToLonDegrees converts an east-west distance at latitude lat to degrees.
func MetersToLonDegrees(meters, lat float64) float64 {
	return meters / (MetersPerDegree * lonScale(lat))
}

func lonScale(lat float64) float64 {
	return math.Max(minLonScale, math.Cos(lat*math.Pi/180))
}

// PointInBoundsWithBuffer reports whether (lat, lon) lies inside b grown by
// bufferMeters on every side. Edges are inclusive. The longitude buffer is
// computed at the query latitude.
func PointInBoundsWithBuffer(lat, lon float64, b *Bounds, bufferMeters float64) bool {
	if b.IsEmpty() {
		return false
	}
	dLat := MetersToLatDegrees(bufferMeters)
	dLon := MetersToLonDegrees(bufferMeters, lat)

	buffered := geom.NewBounds(geom.XY).Set(
		b.MinLon()-dLon, b.MinLat()-dLat,
		b.MaxLon()+dLon, b.MaxLat()+dLat,
	)
	return buffered.OverlapsPoint(geom.XY, geom.Coord{lon, lat})
}

// AreaHectares is the planar area of b using the mean latitude for the
// longitude scale. Degenerate or empty boxes have zero area.
func AreaHectares(b *Bounds) float64 {
	if b.IsEmpty() {
		return 0
	}
	latSpan := math.Max(0, b.MaxLat()-b.MinLat())
	lonSpan := math.Max(0, b.MaxLon()-b.MinLon())
	if latSpan == 0 || lonSpan == 0 {
		return 0
	}
	meanLat := (b.MaxLat() + b.MinLat()) / 2

	areaM2 := (latSpan * MetersPerDegree) * (lonSpan * MetersPerDegree * lonScale(meanLat))
	return areaM2 / squareMetersPerHectare
}
