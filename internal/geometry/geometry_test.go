package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	assert "github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in       string
		expected Type
		known    bool
	}{
		{"Polygon", TypePolygon, true},
		{"point", TypePoint, true},
		{" POLYLINE ", TypePolyline, true},
		{"", TypeUnknown, true},
		{"unknown", TypeUnknown, true},
		{"MultiSurface", Type("MULTISURFACE"), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseType(tt.in)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.known, got.Known())
		})
	}
}

func TestPostGIS(t *testing.T) {
	assert.Equal(t, "Point", TypePoint.PostGIS())
	assert.Equal(t, "LineString", TypePolyline.PostGIS())
	assert.Equal(t, "Polygon", TypePolygon.PostGIS())
	assert.Empty(t, TypeUnknown.PostGIS())
	assert.False(t, TypeUnknown.Spatial())
}

func TestAccepts(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}

	assert.True(t, TypePoint.Accepts(orb.Point{1, 2}))
	assert.True(t, TypePolyline.Accepts(orb.LineString{{0, 0}, {1, 1}}))
	assert.True(t, TypePolygon.Accepts(square))
	assert.True(t, TypePolygon.Accepts(nil))

	assert.False(t, TypePoint.Accepts(square))
	assert.False(t, TypePolygon.Accepts(orb.MultiPoint{{1, 2}}))
}
