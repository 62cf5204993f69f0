package entity

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/patdaburu/mothergeo/internal/pg"
	"github.com/patdaburu/mothergeo/internal/schema"
)

// scriptStore is a DataStore that only records the DDL of created tables.
type scriptStore struct {
	schemas    []string
	statements []string
}

func (s *scriptStore) CreateTable(_ context.Context, table *pg.Table) error {
	name := table.Name.Qualified()

	if name.Schema != pg.DefaultSchema && !slices.Contains(s.schemas, name.Schema) {
		s.schemas = append(s.schemas, name.Schema)
		s.statements = append(s.statements, pg.CreateSchemaSQL(name.Schema))
	}

	s.statements = append(s.statements, table.CreateSQL())
	return nil
}

func (s *scriptStore) Add(context.Context, *Entity) error {
	return errors.New("cannot add entities to a DDL script")
}

func (s *scriptStore) Commit(context.Context) error {
	return nil
}

// TranslateModel returns the DDL script that creates the tables of every
// feature table of a model.
func TranslateModel(ctx context.Context, model *schema.ModelInfo, opts ...Option) (string, error) {
	store := &scriptStore{}

	f, err := NewFactory(store, opts...)
	if err != nil {
		return "", err
	}

	if _, err := f.MakeModel(ctx, model); err != nil {
		return "", err
	}

	return strings.Join(store.statements, "\n\n") + "\n", nil
}
