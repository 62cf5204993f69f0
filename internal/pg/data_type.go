package pg

import (
	"slices"
	"strconv"
	"strings"
)

const (
	DataTypeVarchar   = "varchar"
	DataTypeBigint    = "bigint"
	DataTypeDouble    = "double precision"
	DataTypeTimestamp = "timestamp"
	DataTypeGeometry  = "geometry"
)

// typeAliases maps the internal names postgres uses for builtin types to the
// names they are written with.
var typeAliases = map[string]string{
	"int":               "integer",
	"int2":              "smallint",
	"int4":              "integer",
	"int8":              "bigint",
	"float4":            "real",
	"float8":            "double precision",
	"bool":              "boolean",
	"bpchar":            "char",
	"character varying": "varchar",
	"timestamptz":       "timestamp with time zone",
	"timetz":            "time with time zone",
}

// DataType represents a postgres column type. Modifiers hold the type
// modifiers in order, for example `varchar(200)` has the modifiers `["200"]`
// and `geometry(Polygon,3857)` has `["Polygon", "3857"]`.
type DataType struct {
	Name      string
	Schema    *string
	Modifiers []string
	NotNull   bool
}

func Varchar(length int) DataType {
	return DataType{Name: DataTypeVarchar, Modifiers: []string{strconv.Itoa(length)}}
}

// Geometry returns a PostGIS geometry type constrained to a subtype
// ("Point", "LineString", ...) and a SRID.
func Geometry(subtype string, srid int) DataType {
	return DataType{Name: DataTypeGeometry, Modifiers: []string{subtype, strconv.Itoa(srid)}}
}

func normalizeTypeName(name string) string {
	name = strings.ToLower(name)
	if alias, ok := typeAliases[name]; ok {
		return alias
	}

	return name
}

// Length returns the declared length of a varchar.
func (d *DataType) Length() (int, bool) {
	if d.Name != DataTypeVarchar || len(d.Modifiers) != 1 {
		return 0, false
	}

	n, err := strconv.Atoi(d.Modifiers[0])
	return n, err == nil
}

// SRID returns the spatial reference id of a constrained geometry.
func (d *DataType) SRID() (int, bool) {
	if d.Name != DataTypeGeometry || len(d.Modifiers) != 2 {
		return 0, false
	}

	n, err := strconv.Atoi(d.Modifiers[1])
	return n, err == nil
}

// Equal compares two types ignoring the case of names and modifiers.
func (d *DataType) Equal(o *DataType) bool {
	if !strings.EqualFold(d.Name, o.Name) || d.NotNull != o.NotNull {
		return false
	}

	if (d.Schema == nil) != (o.Schema == nil) || (d.Schema != nil && !strings.EqualFold(*d.Schema, *o.Schema)) {
		return false
	}

	return slices.EqualFunc(d.Modifiers, o.Modifiers, strings.EqualFold)
}

func (d *DataType) Clone() DataType {
	return DataType{
		Name:      d.Name,
		Schema:    d.Schema,
		Modifiers: slices.Clone(d.Modifiers),
		NotNull:   d.NotNull,
	}
}

func (d *DataType) writeString(s *stringBuilder) {
	if d.Schema != nil {
		s.WriteString(*d.Schema)
		s.WriteByte('.')
	}

	s.WriteString(d.Name)

	if len(d.Modifiers) > 0 {
		s.WriteByte('(')
		s.WriteString(strings.Join(d.Modifiers, ","))
		s.WriteByte(')')
	}

	if d.NotNull {
		s.WriteString(" not null")
	}
}

func (d *DataType) String() string {
	var s stringBuilder
	d.writeString(&s)
	return s.String()
}
