package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetersToDegrees(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, MetersToLatDegrees(MetersPerDegree), 1e-12)
	assert.InDelta(t, 1.0, MetersToLonDegrees(MetersPerDegree, 0), 1e-12)
	assert.InDelta(t, 2.0, MetersToLonDegrees(MetersPerDegree, 60), 1e-9)

	// cos(89.99°) is below the clamp
	assert.InDelta(t, 10.0, MetersToLonDegrees(MetersPerDegree, 89.99), 1e-9)
	assert.InDelta(t, 10.0, MetersToLonDegrees(MetersPerDegree, -90), 1e-9)
}

func TestExtendCornersUnion(t *testing.T) {
	t.Parallel()

	b := NewBounds()
	require.True(t, b.IsEmpty())

	b.ExtendCorners(10.001, 20.000, 10.000, 20.001)
	b.ExtendCorners(9.999, 20.002, 9.998, 19.999)

	require.False(t, b.IsEmpty())
	assert.Equal(t, 9.998, b.MinLat())
	assert.Equal(t, 10.001, b.MaxLat())
	assert.Equal(t, 19.999, b.MinLon())
	assert.Equal(t, 20.002, b.MaxLon())
}

func TestPointInBoundsWithBuffer(t *testing.T) {
	t.Parallel()

	b := FromMinMax(10.000, 10.001, 20.000, 20.001)

	tests := []struct {
		name     string
		lat, lon float64
		buffer   float64
		want     bool
	}{
		{"corner is inclusive with zero buffer", 10.000, 20.000, 0, true},
		{"far edge is inclusive", 10.001, 20.001, 0, true},
		{"inside", 10.0005, 20.0005, 0, true},
		{"just outside without buffer", 10.0011, 20.0005, 0, false},
		{"outside rescued by buffer", 10.0011, 20.0005, 150, true},
		{"beyond buffer", 10.01, 20.0005, 150, false},
		{"longitude buffer", 10.0005, 20.0022, 150, true},
		{"longitude beyond buffer", 10.0005, 20.003, 150, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PointInBoundsWithBuffer(tt.lat, tt.lon, b, tt.buffer))
		})
	}

	assert.False(t, PointInBoundsWithBuffer(0, 0, NewBounds(), 1e6), "empty bounds never match")
	assert.False(t, PointInBoundsWithBuffer(0, 0, nil, 1e6))
}

func TestAreaHectares(t *testing.T) {
	t.Parallel()

	b := FromMinMax(10.000, 10.001, 20.000, 20.001)
	want := (0.001 * MetersPerDegree) * (0.001 * MetersPerDegree * math.Cos(10.0005*math.Pi/180)) / 10_000
	assert.InDelta(t, want, AreaHectares(b), 1e-12)
	assert.InDelta(t, 1.2204, AreaHectares(b), 1e-4)

	assert.Zero(t, AreaHectares(FromMinMax(10, 10, 20, 20.001)), "zero latitude span")
	assert.Zero(t, AreaHectares(FromMinMax(10, 10.001, 20, 20)), "zero longitude span")
	assert.Zero(t, AreaHectares(NewBounds()))
}
