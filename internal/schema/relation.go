package schema

import (
	"errors"

	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/i18n"
)

const (
	kindField       = "field"
	kindCommonField = "common field"
	kindRelation    = "relation"
)

// RelationInfo describes a named tabular entity composed of fields.
type RelationInfo struct {
	name         string
	identity     string
	fields       []*FieldInfo
	fieldsByName map[string]*FieldInfo
	nena         NenaSpec
	i18n         *i18n.Pack
}

// NewRelationInfo builds a relation. Field names must be unique under
// case-insensitive comparison and a non-empty identity must name one of them.
func NewRelationInfo(
	name string,
	identity string,
	fields []*FieldInfo,
	nena NenaSpec,
	pack *i18n.Pack,
) (*RelationInfo, error) {
	if name == "" {
		return nil, errors.New("relation name cannot be empty")
	}

	if pack == nil {
		pack = i18n.NewPack(nil)
	}

	r := &RelationInfo{
		name:         name,
		identity:     identity,
		fields:       make([]*FieldInfo, 0, len(fields)),
		fieldsByName: make(map[string]*FieldInfo, len(fields)),
		nena:         nena,
		i18n:         pack,
	}

	for _, f := range fields {
		if f == nil || f.Name == "" {
			return nil, errors.New("field name cannot be empty")
		}

		if _, ok := r.fieldsByName[key(f.Name)]; ok {
			return nil, &DuplicateNameError{Kind: kindField, Name: f.Name}
		}

		r.fieldsByName[key(f.Name)] = f
		r.fields = append(r.fields, f)
	}

	if identity != "" {
		if _, err := r.Field(identity); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *RelationInfo) Name() string {
	return r.name
}

// Identity returns the name of the field holding the relation's unique key.
func (r *RelationInfo) Identity() (string, bool) {
	return r.identity, r.identity != ""
}

// Fields returns the fields in declaration order.
func (r *RelationInfo) Fields() []*FieldInfo {
	return r.fields
}

func (r *RelationInfo) Field(name string) (*FieldInfo, error) {
	f, ok := r.fieldsByName[key(name)]
	if !ok {
		return nil, &NotFoundError{Kind: kindField, Name: name}
	}

	return f, nil
}

// IdentityField returns nil without an error when no identity is configured.
func (r *RelationInfo) IdentityField() (*FieldInfo, error) {
	if r.identity == "" {
		return nil, nil
	}

	return r.Field(r.identity)
}

func (r *RelationInfo) Nena() NenaSpec {
	return r.nena
}

func (r *RelationInfo) I18n() *i18n.Pack {
	return r.i18n
}

// FeatureTableInfo is a relation that also stores one geometry per row.
type FeatureTableInfo struct {
	*RelationInfo
	geometryType geometry.Type
	srid         *int
}

// NewFeatureTableInfo wraps rel. A nil srid means "use the default".
func NewFeatureTableInfo(rel *RelationInfo, geometryType geometry.Type, srid *int) *FeatureTableInfo {
	return &FeatureTableInfo{
		RelationInfo: rel,
		geometryType: geometryType,
		srid:         srid,
	}
}

func (t *FeatureTableInfo) GeometryType() geometry.Type {
	return t.geometryType
}

// SRID returns the table's spatial reference, or geometry.DefaultSRID.
func (t *FeatureTableInfo) SRID() int {
	if t.srid == nil {
		return geometry.DefaultSRID
	}

	return *t.srid
}

func (t *FeatureTableInfo) HasSRID() bool {
	return t.srid != nil
}
