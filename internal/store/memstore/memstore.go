// Package memstore is an in-memory entity.DataStore. Tables are kept in a
// pg.DB catalog built by parsing the DDL a real database would receive.
package memstore

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"reflect"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/match"
	"github.com/patdaburu/mothergeo/internal/pg"
)

// Row is a stored entity. Values are keyed by column name.
type Row struct {
	ID     string
	Table  pg.TableName
	Values map[string]any
}

type Store struct {
	mu         sync.Mutex
	db         *pg.DB
	statements []string
	batch      Batch
	rows       map[pg.TableName][]Row
	entropy    io.Reader
}

func New() *Store {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))

	s := &Store{
		db:      pg.NewDB(),
		rows:    make(map[pg.TableName][]Row),
		entropy: ulid.Monotonic(src, 0),
	}
	s.batch.store = s

	return s
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// CreateTable applies the DDL of table to the catalog, creating its schema
// first when needed. Creating a table that already exists is a no-op as long
// as the existing table can hold its rows.
func (s *Store) CreateTable(_ context.Context, table *pg.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := table.Name.Qualified()

	var statements []string
	if !s.db.HasSchema(name.Schema) {
		statements = append(statements, pg.CreateSchemaSQL(name.Schema))
	}
	statements = append(statements, table.CreateSQL())

	for _, sql := range statements {
		if err := pg.Migrate(s.db, sql); err != nil {
			return fmt.Errorf(`failed to create table "%s": %w`, name, err)
		}
	}

	created, ok := s.db.Table(name)
	if !ok {
		return fmt.Errorf(`failed to create table "%s"`, name)
	}

	if err := match.DoesTableHoldTable(created, table); err != nil {
		return fmt.Errorf(`table "%s" already exists with a different definition: %w`, name, err)
	}

	s.statements = append(s.statements, statements...)
	return nil
}

// Batch stages rows apart from other batches of the same store.
type Batch struct {
	store  *Store
	staged []Row
}

// Begin starts a batch. Rows staged in it become visible on its Commit.
func (s *Store) Begin(_ context.Context) (entity.Batch, error) {
	return &Batch{store: s}, nil
}

// Add stages a row for e in the store's default batch. Staged rows become
// visible on Commit.
func (s *Store) Add(ctx context.Context, e *entity.Entity) error {
	return s.batch.Add(ctx, e)
}

// Commit makes the rows of the default batch visible.
func (s *Store) Commit(ctx context.Context) error {
	return s.batch.Commit(ctx)
}

// Rollback discards the rows of the default batch.
func (s *Store) Rollback(ctx context.Context) error {
	return s.batch.Rollback(ctx)
}

func (b *Batch) Add(_ context.Context, e *entity.Entity) error {
	s := b.store

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.row(e)
	if err != nil {
		return err
	}

	if err := s.checkKey(row, b.staged); err != nil {
		return err
	}

	b.staged = append(b.staged, row)
	return nil
}

// Commit makes the staged rows visible. Keys are checked again against the
// rows committed since they were staged; on a conflict nothing is stored.
func (b *Batch) Commit(_ context.Context) error {
	s := b.store

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := b.staged
	b.staged = nil

	for _, r := range staged {
		if err := s.checkKey(r, nil); err != nil {
			return err
		}
	}

	for _, r := range staged {
		s.rows[r.Table] = append(s.rows[r.Table], r)
	}

	return nil
}

func (b *Batch) Rollback(_ context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	b.staged = nil
	return nil
}

// row validates e against the catalog. Values are matched to catalog columns
// by name. s.mu must be held.
func (s *Store) row(e *entity.Entity) (Row, error) {
	name := e.Class().TableName().Qualified()

	table, ok := s.db.Table(name)
	if !ok {
		return Row{}, fmt.Errorf(`relation "%s" does not exist`, name)
	}

	columns := e.Class().Columns()
	values := make(map[string]any, len(table.Columns))

	for i, v := range e.Values() {
		col, ok := table.Column(columns[i].Name)
		if !ok {
			return Row{}, fmt.Errorf(`column "%s" of relation "%s" does not exist`, columns[i].Name, name)
		}

		if v != nil {
			values[col.Name] = v
		}
	}

	// Catalog columns the class doesn't know about are null as well.
	for _, col := range table.Columns {
		if _, ok := values[col.Name]; !ok && col.Type.NotNull {
			return Row{}, fmt.Errorf(`null value in column "%s" of relation "%s"`, col.Name, name)
		}
	}

	return Row{ID: s.newID(), Table: name, Values: values}, nil
}

// checkKey fails if the primary key of r is taken by a committed row or by
// one of staged. s.mu must be held.
func (s *Store) checkKey(r Row, staged []Row) error {
	table, ok := s.db.Table(r.Table)
	if !ok {
		return fmt.Errorf(`relation "%s" does not exist`, r.Table)
	}

	pk, ok := table.PrimaryKey()
	if !ok {
		return nil
	}

	key := r.Values[pk.Name]

	for _, rows := range [][]Row{s.rows[r.Table], staged} {
		for _, other := range rows {
			if other.Table == r.Table && reflect.DeepEqual(other.Values[pk.Name], key) {
				return fmt.Errorf(`duplicate key value %v for column "%s" of relation "%s"`, key, pk.Name, r.Table)
			}
		}
	}

	return nil
}

// Rows returns the committed rows of a table.
func (s *Store) Rows(name pg.TableName) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Row(nil), s.rows[name.Qualified()]...)
}

// Statements returns the DDL statements applied so far.
func (s *Store) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.statements...)
}

// DB returns a copy of the catalog.
func (s *Store) DB() *pg.DB {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Clone()
}
