// Package pgstore is an entity.DataStore backed by a PostGIS database.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/pg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
)

// Codes of errors raised when an object created concurrently already exists.
var duplicateCodes = map[string]bool{
	"42P06": true, // duplicate_schema
	"42P07": true, // duplicate_table
	"42710": true, // duplicate_object
}

// Store provisions tables and writes entities through a connection pool.
// Add, Commit and Rollback use a default batch shared by all callers;
// concurrent writers take their own batch with Begin.
type Store struct {
	pool  *pgxpool.Pool
	batch *Batch
}

func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf(`failed to connect to the database: %w`, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf(`failed to connect to the database: %w`, err)
	}

	return &Store{pool: pool, batch: &Batch{pool: pool}}, nil
}

// CreateTable creates the schema and the table if they don't exist.
func (s *Store) CreateTable(ctx context.Context, table *pg.Table) error {
	name := table.Name.Qualified()

	for _, sql := range []string{pg.CreateSchemaSQL(name.Schema), table.CreateSQL()} {
		if _, err := s.pool.Exec(ctx, sql); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && duplicateCodes[pgErr.Code] {
				log.Printf("DDL skipped (already exists): %s", strings.TrimSpace(pgErr.Message))
				continue
			}

			return fmt.Errorf(`failed to execute "%s": %w`, sql, err)
		}
	}

	return nil
}

// Batch is a transaction started by its first Add and ended by Commit or
// Rollback.
type Batch struct {
	pool *pgxpool.Pool

	mu sync.Mutex
	tx pgx.Tx
}

// Begin starts a batch that is independent of the default one.
func (s *Store) Begin(_ context.Context) (entity.Batch, error) {
	return &Batch{pool: s.pool}, nil
}

// Add inserts e in the default batch.
func (s *Store) Add(ctx context.Context, e *entity.Entity) error {
	return s.batch.Add(ctx, e)
}

func (s *Store) Commit(ctx context.Context) error {
	return s.batch.Commit(ctx)
}

// Rollback discards the entities added to the default batch since the last
// commit.
func (s *Store) Rollback(ctx context.Context) error {
	return s.batch.Rollback(ctx)
}

func (b *Batch) Add(ctx context.Context, e *entity.Entity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	sql, args, err := insertSQL(e)
	if err != nil {
		return err
	}

	if b.tx == nil {
		if b.tx, err = b.pool.Begin(ctx); err != nil {
			return fmt.Errorf(`failed to begin a transaction: %w`, err)
		}
	}

	if _, err := b.tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf(`failed to insert into "%s": %w`, e.Class().TableName(), err)
	}

	return nil
}

func (b *Batch) Commit(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tx == nil {
		return nil
	}

	tx := b.tx
	b.tx = nil

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(`failed to commit: %w`, err)
	}

	return nil
}

func (b *Batch) Rollback(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.tx == nil {
		return nil
	}

	tx := b.tx
	b.tx = nil

	if err := tx.Rollback(ctx); err != nil {
		return fmt.Errorf(`failed to roll back: %w`, err)
	}

	return nil
}

// Count returns the number of rows in a table.
func (s *Store) Count(ctx context.Context, name pg.TableName) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "select count(*) from "+name.Qualified().Sanitize()).Scan(&n); err != nil {
		return 0, fmt.Errorf(`failed to count rows of "%s": %w`, name, err)
	}

	return n, nil
}

// Close rolls back the uncommitted entities of the default batch and closes
// the pool.
func (s *Store) Close(ctx context.Context) error {
	err := s.batch.Rollback(ctx)
	s.pool.Close()

	return err
}

func insertSQL(e *entity.Entity) (string, []any, error) {
	class := e.Class()

	var columns, params []string
	var args []any

	for i, v := range e.Values() {
		col := class.Columns()[i]
		if v == nil {
			continue
		}

		columns = append(columns, pgx.Identifier{col.Name}.Sanitize())
		param := fmt.Sprintf("$%d", len(args)+1)

		if g, ok := v.(orb.Geometry); ok {
			geom, _ := class.Geometry()

			data, err := ewkb.Marshal(g, geom.SRID)
			if err != nil {
				return "", nil, fmt.Errorf(`failed to encode the geometry of "%s": %w`, class.Name(), err)
			}

			v = data
			param = fmt.Sprintf("ST_GeomFromEWKB(%s)", param)
		}

		params = append(params, param)
		args = append(args, v)
	}

	if len(columns) == 0 {
		return fmt.Sprintf("insert into %s default values", class.TableName().Sanitize()), nil, nil
	}

	sql := fmt.Sprintf(
		"insert into %s (%s) values (%s)",
		class.TableName().Sanitize(),
		strings.Join(columns, ", "),
		strings.Join(params, ", "),
	)

	return sql, args, nil
}
