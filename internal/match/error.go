package match

import (
	"fmt"

	"github.com/patdaburu/mothergeo/internal/pg"
)

// ColumnPath points to the column a mismatch was found in. Column is empty
// when the mismatch concerns the whole table.
type ColumnPath struct {
	Table  pg.TableName
	Column string
}

func (p ColumnPath) String() string {
	if p.Column == "" {
		return p.Table.Qualified().Sanitize()
	}

	return fmt.Sprintf("%s.%s", p.Table.Qualified().Sanitize(), p.Column)
}

type MatchError struct {
	Message      string
	MismatchPath ColumnPath
}

func (e *MatchError) Error() string {
	return e.Message
}

func matchErrorf(mismatchPath ColumnPath, format string, args ...any) *MatchError {
	return &MatchError{
		Message:      fmt.Sprintf(format, args...),
		MismatchPath: mismatchPath,
	}
}
