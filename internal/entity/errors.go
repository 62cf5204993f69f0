package entity

import (
	"errors"
	"fmt"

	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/schema"
)

var (
	ErrNilDataStore = errors.New("entity: data store cannot be nil")
	ErrNotFound     = errors.New("entity: not found")
)

// NotFoundError is returned for unknown classes and columns.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(`%s "%s" not found`, e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnsupportedDataTypeError is returned when a field's data type has no
// column mapping.
type UnsupportedDataTypeError struct {
	Relation string
	Field    string
	Type     schema.DataType
}

func (e *UnsupportedDataTypeError) Error() string {
	return fmt.Sprintf(`unsupported data type "%s" for field "%s" of relation "%s"`, e.Type, e.Field, e.Relation)
}

// UnsupportedGeometryError is returned when a feature table's geometry type
// has no column mapping.
type UnsupportedGeometryError struct {
	Relation string
	Type     geometry.Type
}

func (e *UnsupportedGeometryError) Error() string {
	return fmt.Sprintf(`unsupported geometry type "%s" for relation "%s"`, e.Type, e.Relation)
}

// ValueTypeError is returned when a value can't be stored in a column.
type ValueTypeError struct {
	Column string
	Kind   ColumnKind
	Value  any
}

func (e *ValueTypeError) Error() string {
	return fmt.Sprintf(`cannot store %T in %s column "%s"`, e.Value, e.Kind, e.Column)
}

// DomainError is returned when a text value is outside its field's domain.
type DomainError struct {
	Column string
	Value  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf(`"%s" is not in the domain of column "%s"`, e.Value, e.Column)
}

// LengthError is returned when a text value is longer than its column.
type LengthError struct {
	Column string
	Length int
	Max    int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf(`value of length %d is too long for column "%s" (max %d)`, e.Length, e.Column, e.Max)
}
