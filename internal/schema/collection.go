package schema

import (
	"errors"

	"github.com/patdaburu/mothergeo/internal/geometry"
)

// FeatureTableInfoCollection groups feature tables that share common fields,
// a default identity field and a common SRID.
type FeatureTableInfoCollection struct {
	commonFields       []*FieldInfo
	commonFieldsByName map[string]*FieldInfo
	relations          []*FeatureTableInfo
	relationsByName    map[string]*FeatureTableInfo
	defaultIdentity    string
	commonSRID         *int
}

func NewFeatureTableInfoCollection(
	commonFields []*FieldInfo,
	tables []*FeatureTableInfo,
	defaultIdentity string,
	commonSRID *int,
) (*FeatureTableInfoCollection, error) {
	c := &FeatureTableInfoCollection{
		commonFields:       make([]*FieldInfo, 0, len(commonFields)),
		commonFieldsByName: make(map[string]*FieldInfo, len(commonFields)),
		relations:          make([]*FeatureTableInfo, 0, len(tables)),
		relationsByName:    make(map[string]*FeatureTableInfo, len(tables)),
		defaultIdentity:    defaultIdentity,
		commonSRID:         commonSRID,
	}

	for _, f := range commonFields {
		if _, ok := c.commonFieldsByName[key(f.Name)]; ok {
			return nil, &DuplicateNameError{Kind: kindCommonField, Name: f.Name}
		}

		c.commonFieldsByName[key(f.Name)] = f
		c.commonFields = append(c.commonFields, f)
	}

	for _, t := range tables {
		if err := c.AddRelation(t); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// AddRelation adds t to the collection. Names are compared case-insensitively.
func (c *FeatureTableInfoCollection) AddRelation(t *FeatureTableInfo) error {
	if t == nil || t.RelationInfo == nil {
		return errors.New("relation cannot be nil")
	}

	if _, ok := c.relationsByName[key(t.Name())]; ok {
		return &DuplicateNameError{Kind: kindRelation, Name: t.Name()}
	}

	c.relationsByName[key(t.Name())] = t
	c.relations = append(c.relations, t)
	return nil
}

func (c *FeatureTableInfoCollection) Relation(name string) (*FeatureTableInfo, error) {
	t, ok := c.relationsByName[key(name)]
	if !ok {
		return nil, &NotFoundError{Kind: kindRelation, Name: name}
	}

	return t, nil
}

// FeatureTable is an alias of Relation.
func (c *FeatureTableInfoCollection) FeatureTable(name string) (*FeatureTableInfo, error) {
	return c.Relation(name)
}

// Relations returns the feature tables in insertion order.
func (c *FeatureTableInfoCollection) Relations() []*FeatureTableInfo {
	return c.relations
}

func (c *FeatureTableInfoCollection) Len() int {
	return len(c.relations)
}

func (c *FeatureTableInfoCollection) CommonFields() []*FieldInfo {
	return c.commonFields
}

func (c *FeatureTableInfoCollection) CommonField(name string) (*FieldInfo, error) {
	f, ok := c.commonFieldsByName[key(name)]
	if !ok {
		return nil, &NotFoundError{Kind: kindCommonField, Name: name}
	}

	return f, nil
}

func (c *FeatureTableInfoCollection) DefaultIdentity() string {
	return c.defaultIdentity
}

// CommonSRID returns the shared SRID, or geometry.DefaultSRID when unset.
func (c *FeatureTableInfoCollection) CommonSRID() int {
	if c.commonSRID == nil {
		return geometry.DefaultSRID
	}

	return *c.commonSRID
}
