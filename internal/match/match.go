package match

import (
	"strings"

	"github.com/patdaburu/mothergeo/internal/pg"
)

// DoesTableHoldTable checks if `existing` can store every row of `wanted`.
// Returns a `MatchError` in case it can't.
//
// Every column of `wanted` must exist in `existing` with an equal type and the
// same primary key. `existing` may have additional columns as long as they
// are nullable.
func DoesTableHoldTable(existing, wanted *pg.Table) error {
	for _, wc := range wanted.Columns {
		path := ColumnPath{Table: wanted.Name, Column: wc.Name}
		ec := findColumn(existing, wc.Name)

		if ec == nil {
			return matchErrorf(path, `column %s is missing`, path)
		}

		if !ec.Type.Equal(&wc.Type) {
			return matchErrorf(path, `column %s has type "%s", expected "%s"`, path, ec.Type.String(), wc.Type.String())
		}

		if ec.PrimaryKey != wc.PrimaryKey {
			if wc.PrimaryKey {
				return matchErrorf(path, `column %s is not the primary key`, path)
			}

			return matchErrorf(path, `column %s is unexpectedly the primary key`, path)
		}
	}

	for _, ec := range existing.Columns {
		if findColumn(wanted, ec.Name) == nil && ec.Type.NotNull {
			path := ColumnPath{Table: wanted.Name, Column: ec.Name}
			return matchErrorf(path, `extra column %s is not nullable`, path)
		}
	}

	return nil
}

func findColumn(table *pg.Table, name string) *pg.Column {
	if c, ok := table.Column(name); ok {
		return c
	}

	normName := Normalize(name)
	for _, c := range table.Columns {
		if Normalize(c.Name) == normName {
			return c
		}
	}

	return nil
}

// Normalize folds a column name the way postgres folds unquoted identifiers.
func Normalize(name string) string {
	return strings.ToLower(name)
}
