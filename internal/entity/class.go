package entity

import (
	"fmt"
	"strings"

	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/pg"
	"github.com/patdaburu/mothergeo/internal/schema"
)

// Relation is the part of a relation description a class is made from.
// Both *schema.RelationInfo and *schema.FeatureTableInfo implement it.
type Relation interface {
	Name() string
	Fields() []*schema.FieldInfo
	IdentityField() (*schema.FieldInfo, error)
}

// spatialRelation is implemented by *schema.FeatureTableInfo.
type spatialRelation interface {
	Relation
	GeometryType() geometry.Type
	SRID() int
}

// Column describes one column of a class. Field is nil for the geometry
// column.
type Column struct {
	Name       string
	Kind       ColumnKind
	Type       pg.DataType
	Field      *schema.FieldInfo
	PrimaryKey bool
}

type GeometryColumn struct {
	Column
	GeometryType geometry.Type
	SRID         int
}

// Class is the storage binding synthesized for a relation: one column per
// field, a primary key for the identity field and, for feature tables,
// a geometry column.
type Class struct {
	relation     Relation
	table        *pg.Table
	columns      []Column
	columnsByKey map[string]int
	primaryKey   int
	geometry     *GeometryColumn
}

func newClass(rel Relation, dbSchema string) (*Class, error) {
	identity, err := rel.IdentityField()
	if err != nil {
		return nil, fmt.Errorf(`failed to resolve the identity field of "%s": %w`, rel.Name(), err)
	}

	c := &Class{
		relation:     rel,
		table:        pg.NewTable(pg.NewTableName(strings.ToLower(rel.Name()), dbSchema)),
		columnsByKey: make(map[string]int),
		primaryKey:   -1,
	}

	for _, f := range rel.Fields() {
		kind, dataType, err := mapField(rel.Name(), f)
		if err != nil {
			return nil, err
		}

		col := Column{
			Name:  columnName(f.Name),
			Kind:  kind,
			Type:  dataType,
			Field: f,
		}

		if identity != nil && columnName(identity.Name) == col.Name {
			col.PrimaryKey = true
			col.Type.NotNull = true
		}

		if err := c.addColumn(col); err != nil {
			return nil, err
		}
	}

	if sr, ok := rel.(spatialRelation); ok {
		dataType, err := mapGeometry(rel.Name(), sr.GeometryType(), sr.SRID())
		if err != nil {
			return nil, err
		}

		col := Column{
			Name: GeometryColumnName,
			Kind: KindGeometry,
			Type: dataType,
		}

		if err := c.addColumn(col); err != nil {
			return nil, err
		}

		c.geometry = &GeometryColumn{
			Column:       col,
			GeometryType: sr.GeometryType(),
			SRID:         sr.SRID(),
		}
	}

	return c, nil
}

func (c *Class) addColumn(col Column) error {
	if err := c.table.AddColumn(&pg.Column{Name: col.Name, Type: col.Type.Clone(), PrimaryKey: col.PrimaryKey}); err != nil {
		return fmt.Errorf(`failed to add column to relation "%s": %w`, c.relation.Name(), err)
	}

	if col.PrimaryKey {
		c.primaryKey = len(c.columns)
	}

	c.columnsByKey[col.Name] = len(c.columns)
	c.columns = append(c.columns, col)
	return nil
}

// Name returns the name of the relation the class was made from.
func (c *Class) Name() string {
	return c.relation.Name()
}

func (c *Class) Relation() Relation {
	return c.relation
}

// Table returns the table definition of the class. The returned table must
// not be modified.
func (c *Class) Table() *pg.Table {
	return c.table
}

func (c *Class) TableName() pg.TableName {
	return c.table.Name
}

func (c *Class) Columns() []Column {
	return c.columns
}

// Column finds a column by field or column name, case-insensitively.
func (c *Class) Column(name string) (Column, error) {
	i, ok := c.columnsByKey[columnName(name)]
	if !ok {
		return Column{}, &NotFoundError{Kind: "column", Name: name}
	}

	return c.columns[i], nil
}

func (c *Class) PrimaryKey() (Column, bool) {
	if c.primaryKey < 0 {
		return Column{}, false
	}

	return c.columns[c.primaryKey], true
}

func (c *Class) Geometry() (GeometryColumn, bool) {
	if c.geometry == nil {
		return GeometryColumn{}, false
	}

	return *c.geometry, true
}

// New returns an empty entity of the class.
func (c *Class) New() *Entity {
	return &Entity{
		class:  c,
		values: make(map[string]any, len(c.columns)),
	}
}
