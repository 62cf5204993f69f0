package pg

import (
	"fmt"
	"slices"
)

// DB is an in-memory catalog of schemas and tables. Tables are keyed by
// their qualified name.
type DB struct {
	Schemas      []string
	Tables       []*Table
	TablesByName map[TableName]*Table
}

func NewDB() *DB {
	return &DB{
		Schemas:      []string{DefaultSchema},
		Tables:       make([]*Table, 0),
		TablesByName: make(map[TableName]*Table),
	}
}

func (db *DB) HasSchema(name string) bool {
	return slices.Contains(db.Schemas, name)
}

// AddSchema adds a schema and reports whether it was new.
func (db *DB) AddSchema(name string) bool {
	if db.HasSchema(name) {
		return false
	}

	db.Schemas = append(db.Schemas, name)
	return true
}

func (db *DB) Table(name TableName) (*Table, bool) {
	t, ok := db.TablesByName[name.Qualified()]
	return t, ok
}

func (db *DB) AddTable(table *Table) error {
	name := table.Name.Qualified()

	if !db.HasSchema(name.Schema) {
		return fmt.Errorf(`schema "%s" does not exist`, name.Schema)
	}

	if _, ok := db.TablesByName[name]; ok {
		return fmt.Errorf(`relation "%s" already exists`, name)
	}

	db.TablesByName[name] = table
	db.Tables = append(db.Tables, table)
	return nil
}

func (db *DB) Clone() *DB {
	clone := &DB{
		Schemas:      slices.Clone(db.Schemas),
		Tables:       make([]*Table, 0, len(db.Tables)),
		TablesByName: make(map[TableName]*Table, len(db.Tables)),
	}

	for _, t := range db.Tables {
		c := t.Clone()
		clone.Tables = append(clone.Tables, c)
		clone.TablesByName[c.Name.Qualified()] = c
	}

	return clone
}
