package pg

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

type Table struct {
	Name          TableName
	Columns       []*Column
	ColumnsByName map[string]*Column
}

func NewTable(name TableName) *Table {
	return &Table{
		Name:          name,
		Columns:       make([]*Column, 0),
		ColumnsByName: make(map[string]*Column),
	}
}

func (t *Table) AddColumn(col *Column) error {
	if _, ok := t.ColumnsByName[col.Name]; ok {
		return fmt.Errorf(`column "%s" specified more than once in table "%s"`, col.Name, t.Name)
	}

	t.ColumnsByName[col.Name] = col
	t.Columns = append(t.Columns, col)
	return nil
}

func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.ColumnsByName[name]
	return c, ok
}

func (t *Table) PrimaryKey() (*Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}

	return nil, false
}

func (t *Table) Clone() *Table {
	clone := NewTable(t.Name)

	for _, c := range t.Columns {
		_ = clone.AddColumn(c.Clone())
	}

	return clone
}

// Equal compares the shape of two tables: qualified names, column names,
// column order and types.
func (t *Table) Equal(o *Table) bool {
	if t.Name.Qualified() != o.Name.Qualified() || len(t.Columns) != len(o.Columns) {
		return false
	}

	for i, c := range t.Columns {
		oc := o.Columns[i]
		if c.Name != oc.Name || c.PrimaryKey != oc.PrimaryKey || !c.Type.Equal(&oc.Type) {
			return false
		}
	}

	return true
}

func (t *Table) writeString(s *stringBuilder) {
	s.WriteString(t.Name.Sanitize())
	s.WriteString(" (")
	s.WriteNewLine()
	s.Indent()

	for i, c := range t.Columns {
		c.writeString(s)

		if i != len(t.Columns)-1 {
			s.WriteString(",")
		}

		s.WriteNewLine()
	}

	s.DeIndent()
	s.WriteString(")")
}

func (t *Table) String() string {
	var s stringBuilder
	t.writeString(&s)
	return s.String()
}

// CreateSQL returns a `create table if not exists` statement for the table.
func (t *Table) CreateSQL() string {
	var s stringBuilder
	s.WriteString("create table if not exists ")
	t.writeString(&s)
	s.WriteString(";")
	return s.String()
}

func CreateSchemaSQL(schema string) string {
	return fmt.Sprintf("create schema if not exists %s;", pgx.Identifier{schema}.Sanitize())
}
