package pg

import "github.com/jackc/pgx/v5"

// DefaultSchema is the schema of table names that don't carry one.
const DefaultSchema = "public"

type TableName struct {
	Name   string
	Schema string
}

func NewTableName(name string, schema ...string) TableName {
	var t TableName

	t.Name = name
	if len(schema) > 0 {
		t.Schema = schema[0]
	}

	return t
}

func (n TableName) HasSchema() bool {
	return len(n.Schema) != 0
}

// Qualified returns the name with DefaultSchema filled in when it has none.
func (n TableName) Qualified() TableName {
	if !n.HasSchema() {
		n.Schema = DefaultSchema
	}

	return n
}

func (n TableName) Identifier() pgx.Identifier {
	if n.HasSchema() {
		return pgx.Identifier{n.Schema, n.Name}
	}

	return pgx.Identifier{n.Name}
}

// Sanitize returns the name quoted for use in SQL.
func (n TableName) Sanitize() string {
	return n.Identifier().Sanitize()
}

func (n TableName) String() string {
	if n.HasSchema() {
		return n.Schema + "." + n.Name
	}

	return n.Name
}
