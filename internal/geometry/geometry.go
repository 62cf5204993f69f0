// Package geometry holds the closed vocabulary of geometry kinds a feature
// table may store, and the default spatial reference.
package geometry

import (
	"strings"

	"github.com/paulmach/orb"
)

// DefaultSRID is used when neither a feature table nor its collection names
// a spatial reference (EPSG:3857, web mercator).
const DefaultSRID = 3857

// Type is a geometry kind. Values outside the constants below are kept as
// parsed so that callers can report them.
type Type string

const (
	TypeUnknown  Type = "UNKNOWN"
	TypePoint    Type = "POINT"
	TypePolyline Type = "POLYLINE"
	TypePolygon  Type = "POLYGON"
)

var types = map[Type]bool{
	TypeUnknown:  true,
	TypePoint:    true,
	TypePolyline: true,
	TypePolygon:  true,
}

// ParseType converts a geometry type name ("Polygon", "point", ...) into a
// Type. An empty string yields TypeUnknown.
func ParseType(s string) Type {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TypeUnknown
	}

	return Type(s)
}

// Known reports whether t is a member of the closed set.
func (t Type) Known() bool {
	return types[t]
}

// Spatial reports whether t names a storable geometry kind.
func (t Type) Spatial() bool {
	return t == TypePoint || t == TypePolyline || t == TypePolygon
}

// PostGIS returns the PostGIS geometry subtype for t, or "" if t isn't spatial.
func (t Type) PostGIS() string {
	switch t {
	case TypePoint:
		return "Point"
	case TypePolyline:
		return "LineString"
	case TypePolygon:
		return "Polygon"
	}

	return ""
}

// Accepts reports whether the geometry value g has the kind t stores. A nil
// geometry is always accepted.
func (t Type) Accepts(g orb.Geometry) bool {
	if g == nil {
		return true
	}

	switch g.(type) {
	case orb.Point:
		return t == TypePoint
	case orb.LineString:
		return t == TypePolyline
	case orb.Polygon:
		return t == TypePolygon
	}

	return false
}

func (t Type) String() string {
	return string(t)
}
