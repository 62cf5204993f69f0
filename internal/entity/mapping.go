package entity

import (
	"strings"

	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/pg"
	"github.com/patdaburu/mothergeo/internal/schema"
)

// DefaultTextLength is the width of text columns whose field has no length
// preference.
const DefaultTextLength = 255

// GeometryColumnName is the name of the geometry column of feature tables.
const GeometryColumnName = "geometry"

type ColumnKind string

const (
	KindText     ColumnKind = "text"
	KindInt      ColumnKind = "int"
	KindFloat    ColumnKind = "float"
	KindDateTime ColumnKind = "datetime"
	KindGeometry ColumnKind = "geometry"
)

// columnName maps a field name to the name of its column.
func columnName(fieldName string) string {
	return strings.ToLower(fieldName)
}

func mapField(relation string, f *schema.FieldInfo) (ColumnKind, pg.DataType, error) {
	switch f.DataType {
	case schema.DataTypeText:
		length, ok := f.Length()
		if !ok {
			length = DefaultTextLength
		}
		return KindText, pg.Varchar(length), nil
	case schema.DataTypeInt:
		return KindInt, pg.DataType{Name: pg.DataTypeBigint}, nil
	case schema.DataTypeFloat:
		return KindFloat, pg.DataType{Name: pg.DataTypeDouble}, nil
	case schema.DataTypeDateTime:
		return KindDateTime, pg.DataType{Name: pg.DataTypeTimestamp}, nil
	}

	// UUID has no column mapping yet, it fails like any unknown type.
	return "", pg.DataType{}, &UnsupportedDataTypeError{
		Relation: relation,
		Field:    f.Name,
		Type:     f.DataType,
	}
}

func mapGeometry(relation string, t geometry.Type, srid int) (pg.DataType, error) {
	if !t.Spatial() {
		return pg.DataType{}, &UnsupportedGeometryError{Relation: relation, Type: t}
	}

	return pg.Geometry(t.PostGIS(), srid), nil
}
