package entity

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Entity is a row of a class: column values keyed by column name plus an
// optional geometry. Entities aren't safe for concurrent modification.
type Entity struct {
	class    *Class
	values   map[string]any
	geometry orb.Geometry
}

func (e *Entity) Class() *Class {
	return e.class
}

// Set stores value in the column of the named field. A nil value clears the
// column. Integers are stored as int64 and floats as float64.
func (e *Entity) Set(name string, value any) error {
	col, err := e.class.Column(name)
	if err != nil {
		return err
	}

	if col.Kind == KindGeometry {
		if value == nil {
			return e.SetGeometry(nil)
		}

		g, ok := value.(orb.Geometry)
		if !ok {
			return &ValueTypeError{Column: col.Name, Kind: col.Kind, Value: value}
		}

		return e.SetGeometry(g)
	}

	if value == nil {
		delete(e.values, col.Name)
		return nil
	}

	v, err := convert(col, value)
	if err != nil {
		return err
	}

	e.values[col.Name] = v
	return nil
}

// Get returns the value of the named field's column.
func (e *Entity) Get(name string) (any, bool) {
	col, err := e.class.Column(name)
	if err != nil {
		return nil, false
	}

	if col.Kind == KindGeometry {
		return e.geometry, e.geometry != nil
	}

	v, ok := e.values[col.Name]
	return v, ok
}

// SetGeometry sets the geometry of a feature table entity. The geometry kind
// must match the feature table's geometry type.
func (e *Entity) SetGeometry(g orb.Geometry) error {
	col, ok := e.class.Geometry()
	if !ok {
		return &NotFoundError{Kind: "column", Name: GeometryColumnName}
	}

	if !col.GeometryType.Accepts(g) {
		return &ValueTypeError{Column: col.Name, Kind: col.Kind, Value: g}
	}

	e.geometry = g
	return nil
}

func (e *Entity) Geometry() orb.Geometry {
	return e.geometry
}

// Identity returns the value of the primary key column.
func (e *Entity) Identity() (any, bool) {
	pk, ok := e.class.PrimaryKey()
	if !ok {
		return nil, false
	}

	v, ok := e.values[pk.Name]
	return v, ok
}

// Values returns the column values in column order, nil for unset columns.
func (e *Entity) Values() []any {
	values := make([]any, 0, len(e.class.columns))

	for _, col := range e.class.columns {
		if col.Kind == KindGeometry {
			if e.geometry == nil {
				values = append(values, nil)
			} else {
				values = append(values, e.geometry)
			}
			continue
		}

		values = append(values, e.values[col.Name])
	}

	return values
}

// Feature returns the entity as a GeoJSON feature. Properties are keyed by
// field name and the identity becomes the feature id.
func (e *Entity) Feature() *geojson.Feature {
	f := geojson.NewFeature(e.geometry)

	for _, col := range e.class.columns {
		if col.Field == nil {
			continue
		}

		if v, ok := e.values[col.Name]; ok {
			if t, isTime := v.(time.Time); isTime {
				v = t.Format(time.RFC3339Nano)
			}
			f.Properties[col.Field.Name] = v
		}
	}

	if id, ok := e.Identity(); ok {
		f.ID = id
	}

	return f
}

func convert(col Column, value any) (any, error) {
	switch col.Kind {
	case KindText:
		s, ok := value.(string)
		if !ok {
			break
		}

		if col.Field != nil && !col.Field.InDomain(s) {
			return nil, &DomainError{Column: col.Name, Value: s}
		}

		if limit, ok := col.Type.Length(); ok && len([]rune(s)) > limit {
			return nil, &LengthError{Column: col.Name, Length: len([]rune(s)), Max: limit}
		}

		return s, nil
	case KindInt:
		if i, ok := toInt64(value); ok {
			return i, nil
		}
	case KindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}

		if i, ok := toInt64(value); ok {
			return float64(i), nil
		}
	case KindDateTime:
		if t, ok := value.(time.Time); ok {
			return t, nil
		}
	}

	return nil, &ValueTypeError{Column: col.Name, Kind: col.Kind, Value: value}
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}

	return 0, false
}

// FromFeature builds an entity of class c from a GeoJSON feature. Property
// names are matched to fields case-insensitively. Whole JSON numbers are
// accepted for integer columns and RFC 3339 strings for datetime columns.
func FromFeature(c *Class, f *geojson.Feature) (*Entity, error) {
	e := c.New()

	for name, v := range f.Properties {
		col, err := c.Column(name)
		if err != nil {
			return nil, err
		}

		switch t := v.(type) {
		case float64:
			if col.Kind == KindInt && t == math.Trunc(t) && math.Abs(t) <= 1<<53 {
				v = int64(t)
			}
		case string:
			if col.Kind == KindDateTime {
				parsed, err := time.Parse(time.RFC3339Nano, t)
				if err != nil {
					return nil, &ValueTypeError{Column: col.Name, Kind: col.Kind, Value: v}
				}
				v = parsed
			}
		}

		if err := e.Set(name, v); err != nil {
			return nil, err
		}
	}

	if f.Geometry != nil {
		if err := e.SetGeometry(f.Geometry); err != nil {
			return nil, err
		}
	}

	return e, nil
}
