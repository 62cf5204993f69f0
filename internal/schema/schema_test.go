package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/i18n"
	"github.com/patdaburu/mothergeo/internal/ptr"
	assert "github.com/stretchr/testify/require"
)

func field(name string, dataType DataType) *FieldInfo {
	return &FieldInfo{
		Name:     name,
		DataType: dataType,
		I18n:     i18n.NewPack(nil),
	}
}

func TestRelationFieldLookupIsCaseInsensitive(t *testing.T) {
	rel, err := NewRelationInfo("roads", "ID", []*FieldInfo{
		field("id", DataTypeInt),
		field("Name", DataTypeText),
	}, NenaSpec{}, nil)
	assert.NoError(t, err)

	upper, err := rel.Field("NAME")
	assert.NoError(t, err)

	lower, err := rel.Field("name")
	assert.NoError(t, err)

	assert.Same(t, upper, lower)
	assert.Equal(t, "Name", upper.Name)
}

func TestRelationFieldNotFound(t *testing.T) {
	rel, err := NewRelationInfo("roads", "", []*FieldInfo{field("id", DataTypeInt)}, NenaSpec{}, nil)
	assert.NoError(t, err)

	_, err = rel.Field("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.Name)
}

func TestRelationIdentityField(t *testing.T) {
	withIdentity, err := NewRelationInfo("roads", "id", []*FieldInfo{field("ID", DataTypeInt)}, NenaSpec{}, nil)
	assert.NoError(t, err)

	f, err := withIdentity.IdentityField()
	assert.NoError(t, err)
	assert.Equal(t, "ID", f.Name)

	without, err := NewRelationInfo("roads", "", []*FieldInfo{field("ID", DataTypeInt)}, NenaSpec{}, nil)
	assert.NoError(t, err)

	f, err = without.IdentityField()
	assert.NoError(t, err)
	assert.Nil(t, f)

	_, ok := without.Identity()
	assert.False(t, ok)
}

func TestRelationRejectsUnknownIdentity(t *testing.T) {
	_, err := NewRelationInfo("roads", "gid", []*FieldInfo{field("id", DataTypeInt)}, NenaSpec{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationRejectsDuplicateFields(t *testing.T) {
	_, err := NewRelationInfo("roads", "", []*FieldInfo{
		field("name", DataTypeText),
		field("NAME", DataTypeText),
	}, NenaSpec{}, nil)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRelationRejectsEmptyNames(t *testing.T) {
	_, err := NewRelationInfo("", "", nil, NenaSpec{}, nil)
	assert.Error(t, err)

	_, err = NewRelationInfo("roads", "", []*FieldInfo{field("", DataTypeText)}, NenaSpec{}, nil)
	assert.Error(t, err)
}

func TestFeatureTableSRID(t *testing.T) {
	rel, err := NewRelationInfo("roads", "", nil, NenaSpec{}, nil)
	assert.NoError(t, err)

	assert.Equal(t, geometry.DefaultSRID, NewFeatureTableInfo(rel, geometry.TypePolyline, nil).SRID())
	assert.Equal(t, 4326, NewFeatureTableInfo(rel, geometry.TypePolyline, ptr.V(4326)).SRID())
}

func TestCollectionAddRelation(t *testing.T) {
	c, err := NewFeatureTableInfoCollection(nil, nil, "id", nil)
	assert.NoError(t, err)

	roads, err := NewRelationInfo("Roads", "", nil, NenaSpec{}, nil)
	assert.NoError(t, err)
	assert.NoError(t, c.AddRelation(NewFeatureTableInfo(roads, geometry.TypePolyline, nil)))

	dup, err := NewRelationInfo("ROADS", "", nil, NenaSpec{}, nil)
	assert.NoError(t, err)

	err = c.AddRelation(NewFeatureTableInfo(dup, geometry.TypePolyline, nil))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, c.Len())

	got, err := c.FeatureTable("roads")
	assert.NoError(t, err)
	assert.Equal(t, "Roads", got.Name())

	_, err = c.Relation("rivers")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollectionCommonFields(t *testing.T) {
	c, err := NewFeatureTableInfoCollection([]*FieldInfo{field("id", DataTypeInt)}, nil, "id", ptr.V(4326))
	assert.NoError(t, err)

	f, err := c.CommonField("ID")
	assert.NoError(t, err)
	assert.Equal(t, "id", f.Name)
	assert.Equal(t, 4326, c.CommonSRID())
	assert.Equal(t, "id", c.DefaultIdentity())

	_, err = c.CommonField("other")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewFeatureTableInfoCollection([]*FieldInfo{field("id", DataTypeInt), field("Id", DataTypeInt)}, nil, "id", nil)
	assert.ErrorIs(t, err, ErrDuplicateName)

	empty, err := NewFeatureTableInfoCollection(nil, nil, "id", nil)
	assert.NoError(t, err)
	assert.Equal(t, geometry.DefaultSRID, empty.CommonSRID())
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		isInt   bool
		integer int64
		float   float64
	}{
		{"int string", "100", true, 100, 100},
		{"float string", "100.1", false, 100, 100.1},
		{"int", 1234567, true, 1234567, 1234567},
		{"whole float", float64(42), true, 42, 42},
		{"float", 1.5, false, 1, 1.5},
		{"json int", json.Number("7"), true, 7, 7},
		{"json float", json.Number("7.0"), false, 7, 7},
		{"json exponent", json.Number("1e2"), true, 100, 100},
		{"json fractional exponent", json.Number("2.5e1"), false, 25, 25},
		{"json negative", json.Number("-3"), true, -3, -3},
		{"negative string", "-3", true, -3, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSequence(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.isInt, s.IsInt())
			assert.Equal(t, tt.float, s.Float())

			if i, ok := s.Int(); ok {
				assert.Equal(t, tt.integer, i)
			}
		})
	}
}

func TestParseSequenceRejectsNonNumeric(t *testing.T) {
	for _, v := range []any{"BAD VALUE", "1.2.3", true, nil, []any{1}} {
		_, err := ParseSequence(v)

		var se *SequenceError
		assert.True(t, errors.As(err, &se), "%#v", v)
	}
}

func TestSequenceString(t *testing.T) {
	assert.Equal(t, "100", IntSequence(100).String())
	assert.Equal(t, "100.1", FloatSequence(100.1).String())
}

func TestFieldLength(t *testing.T) {
	tests := []struct {
		name  string
		prefs map[string]any
		want  int
		ok    bool
	}{
		{"absent", nil, 0, false},
		{"int", map[string]any{"length": 200}, 200, true},
		{"float", map[string]any{"length": float64(50)}, 50, true},
		{"json", map[string]any{"length": json.Number("12")}, 12, true},
		{"string", map[string]any{"length": "30"}, 30, true},
		{"fraction", map[string]any{"length": 1.5}, 0, false},
		{"negative", map[string]any{"length": -1}, 0, false},
		{"bool", map[string]any{"length": true}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FieldInfo{Name: "x", DataType: DataTypeText, Preferences: tt.prefs}
			n, ok := f.Length()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestFieldDomain(t *testing.T) {
	open := &FieldInfo{Name: "kind"}
	assert.True(t, open.InDomain("anything"))

	closed := &FieldInfo{Name: "kind", Domain: []string{"street", "avenue"}}
	assert.True(t, closed.InDomain("avenue"))
	assert.False(t, closed.InDomain("road"))
}

func TestParseRequirement(t *testing.T) {
	r, err := ParseRequirement("required")
	assert.NoError(t, err)
	assert.Equal(t, RequirementRequired, r)

	r, err = ParseRequirement("Requested")
	assert.NoError(t, err)
	assert.Equal(t, RequirementRequested, r)

	_, err = ParseRequirement("mandatory")
	assert.Error(t, err)
}

func TestParseDataType(t *testing.T) {
	assert.Equal(t, DataTypeText, ParseDataType("text"))
	assert.Equal(t, DataTypeDateTime, ParseDataType("DateTime"))
	assert.Equal(t, DataTypeUnknown, ParseDataType(""))

	blob := ParseDataType("blob")
	assert.Equal(t, DataType("BLOB"), blob)
	assert.False(t, blob.Known())
}
