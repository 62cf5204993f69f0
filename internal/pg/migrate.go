package pg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

const catalogSchema = "pg_catalog"

// Migrate applies the `create schema` and `create table` statements of sql
// to db. Other statements are ignored.
func Migrate(db *DB, sql string) error {
	ast, err := pg_query.Parse(sql)
	if err != nil {
		return fmt.Errorf(`failed to parse AST: %w`, err)
	}

	for _, s := range ast.GetStmts() {
		switch node := s.GetStmt().GetNode().(type) {
		case *pg_query.Node_CreateSchemaStmt:
			if err := createSchema(db, node.CreateSchemaStmt); err != nil {
				return fmt.Errorf(`failed to apply a create schema statement: %w`, err)
			}
		case *pg_query.Node_CreateStmt:
			if err := createTable(db, node.CreateStmt); err != nil {
				return fmt.Errorf(`failed to apply a create table statement: %w`, err)
			}
		}
	}

	return nil
}

func createSchema(db *DB, stmt *pg_query.CreateSchemaStmt) error {
	name := stmt.GetSchemaname()
	if len(name) == 0 {
		return errors.New("empty schema name")
	}

	if !db.AddSchema(name) && !stmt.GetIfNotExists() {
		return fmt.Errorf(`schema "%s" already exists`, name)
	}

	return nil
}

func createTable(db *DB, stmt *pg_query.CreateStmt) error {
	rel := stmt.GetRelation()
	if rel == nil {
		return errors.New("no relation")
	}

	name := rel.GetRelname()
	if len(name) == 0 {
		return errors.New("empty table name")
	}

	table := NewTable(NewTableName(name, rel.GetSchemaname()))
	if _, ok := db.Table(table.Name); ok && stmt.GetIfNotExists() {
		return nil
	}

	for _, c := range stmt.GetTableElts() {
		if def := c.GetColumnDef(); def != nil {
			col, err := parseColumnDef(def)
			if err != nil {
				return err
			}

			if err := table.AddColumn(col); err != nil {
				return err
			}
		} else if cons := c.GetConstraint(); cons != nil {
			if err := applyTableConstraint(table, cons); err != nil {
				return err
			}
		}
	}

	return db.AddTable(table)
}

func applyTableConstraint(table *Table, cons *pg_query.Constraint) error {
	if cons.GetContype() != pg_query.ConstrType_CONSTR_PRIMARY {
		return nil
	}

	if _, ok := table.PrimaryKey(); ok || len(cons.GetKeys()) != 1 {
		return fmt.Errorf(`table "%s" must have exactly one primary key column`, table.Name)
	}

	colName := getString(cons.GetKeys()[0])

	col, ok := table.Column(colName)
	if !ok {
		return fmt.Errorf(`could not find column "%s" in table "%s"`, colName, table.Name)
	}

	col.PrimaryKey = true
	col.Type.NotNull = true
	return nil
}

func parseColumnDef(def *pg_query.ColumnDef) (*Column, error) {
	col := Column{
		Name: def.GetColname(),
	}

	typeName := def.GetTypeName()
	if typeName == nil {
		return nil, fmt.Errorf(`no type name for column "%s"`, col.Name)
	}

	if t, err := parseTypeName(typeName); err != nil {
		return nil, fmt.Errorf(`failed to parse type for column "%s": %w`, col.Name, err)
	} else {
		col.Type = *t
	}

	for _, c := range def.GetConstraints() {
		switch c.GetConstraint().GetContype() {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			col.Type.NotNull = true
		case pg_query.ConstrType_CONSTR_PRIMARY:
			col.Type.NotNull = true
			col.PrimaryKey = true
		}
	}

	return &col, nil
}

func parseTypeName(typeName *pg_query.TypeName) (*DataType, error) {
	t := &DataType{}

	names := typeName.GetNames()
	if len(names) == 2 {
		schema := strings.ToLower(getString(names[0]))
		if schema != catalogSchema {
			t.Schema = &schema
		}
		t.Name = getString(names[1])
	} else if len(names) == 1 {
		t.Name = getString(names[0])
	} else {
		return nil, fmt.Errorf("a surprising amount of names (%d) in a type name", len(names))
	}

	t.Name = normalizeTypeName(t.Name)

	for _, m := range typeName.GetTypmods() {
		mod, err := parseTypeModifier(m)
		if err != nil {
			return nil, err
		}

		t.Modifiers = append(t.Modifiers, mod)
	}

	return t, nil
}

func parseTypeModifier(node *pg_query.Node) (string, error) {
	if c := node.GetAConst(); c != nil {
		switch {
		case c.GetIval() != nil:
			return strconv.Itoa(int(c.GetIval().GetIval())), nil
		case c.GetFval() != nil:
			return c.GetFval().GetFval(), nil
		case c.GetSval() != nil:
			return c.GetSval().GetSval(), nil
		}
	}

	if ref := node.GetColumnRef(); ref != nil {
		parts := make([]string, 0, len(ref.GetFields()))
		for _, f := range ref.GetFields() {
			parts = append(parts, getString(f))
		}

		return strings.Join(parts, "."), nil
	}

	return "", fmt.Errorf("unsupported type modifier %s", node.String())
}

func getString(node *pg_query.Node) string {
	return node.GetString_().GetSval()
}
