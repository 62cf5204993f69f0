// Package entity synthesizes storage classes from relation descriptions and
// provisions their tables through a DataStore.
package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/patdaburu/mothergeo/internal/pg"
	"github.com/patdaburu/mothergeo/internal/schema"
)

// DataStore is the storage a factory provisions tables in and that persists
// entities.
type DataStore interface {
	CreateTable(ctx context.Context, table *pg.Table) error
	Add(ctx context.Context, e *Entity) error
	Commit(ctx context.Context) error
}

// Batch is a unit of work. Entities added to a batch are stored together on
// Commit and are independent of other batches of the same store.
type Batch interface {
	Add(ctx context.Context, e *Entity) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Batcher is implemented by data stores that can run batches concurrently.
type Batcher interface {
	Begin(ctx context.Context) (Batch, error)
}

type Option func(*Factory)

// WithSchema sets the database schema of the tables the factory creates.
// The default is pg.DefaultSchema.
func WithSchema(name string) Option {
	return func(f *Factory) {
		f.schema = name
	}
}

type makeOptions struct {
	schema string
}

type MakeOption func(*makeOptions)

// InSchema overrides the factory's schema for a single class.
func InSchema(name string) MakeOption {
	return func(o *makeOptions) {
		o.schema = name
	}
}

// Factory makes and caches one class per relation name. Names are compared
// case-insensitively and the first class made for a name is kept.
type Factory struct {
	store  DataStore
	schema string

	mu      sync.Mutex
	classes map[string]*Class
	order   []*Class
}

func NewFactory(store DataStore, opts ...Option) (*Factory, error) {
	if store == nil {
		return nil, ErrNilDataStore
	}

	f := &Factory{
		store:   store,
		schema:  pg.DefaultSchema,
		classes: make(map[string]*Class),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Factory) Store() DataStore {
	return f.store
}

// Lookup returns the cached class of a relation name.
func (f *Factory) Lookup(name string) (*Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.classes[cacheKey(name)]
	if !ok {
		return nil, &NotFoundError{Kind: "class", Name: name}
	}

	return c, nil
}

// Get returns the cached class of rel, making it if there is none.
func (f *Factory) Get(ctx context.Context, rel Relation) (*Class, error) {
	return f.Make(ctx, rel)
}

// Make synthesizes the class of rel and creates its table in the data store.
// If a class has already been made for the relation's name, that class is
// returned and the data store isn't touched.
func (f *Factory) Make(ctx context.Context, rel Relation, opts ...MakeOption) (*Class, error) {
	if rel == nil {
		return nil, errors.New("relation cannot be nil")
	}

	o := makeOptions{schema: f.schema}
	for _, opt := range opts {
		opt(&o)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.classes[cacheKey(rel.Name())]; ok {
		return c, nil
	}

	c, err := newClass(rel, o.schema)
	if err != nil {
		return nil, err
	}

	if err := f.store.CreateTable(ctx, c.Table()); err != nil {
		return nil, fmt.Errorf(`failed to create table "%s": %w`, c.TableName(), err)
	}

	f.classes[cacheKey(rel.Name())] = c
	f.order = append(f.order, c)
	return c, nil
}

// MakeModel makes the classes of every feature table of a model, in
// declaration order.
func (f *Factory) MakeModel(ctx context.Context, model *schema.ModelInfo) ([]*Class, error) {
	if model.Spatial == nil || model.Spatial.FeatureTables == nil {
		return nil, nil
	}

	relations := model.Spatial.FeatureTables.Relations()
	classes := make([]*Class, 0, len(relations))

	for _, rel := range relations {
		c, err := f.Make(ctx, rel)
		if err != nil {
			return nil, fmt.Errorf(`failed to make class for "%s" of model "%s": %w`, rel.Name(), model.Name, err)
		}

		classes = append(classes, c)
	}

	return classes, nil
}

// Classes returns the cached classes in the order they were made.
func (f *Factory) Classes() []*Class {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*Class(nil), f.order...)
}

func cacheKey(name string) string {
	return strings.ToLower(name)
}
