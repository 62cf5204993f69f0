package api

import (
	"github.com/patdaburu/mothergeo/internal/schema"
)

type revision struct {
	Title       string          `json:"title"`
	Sequence    schema.Sequence `json:"sequence"`
	AuthorName  string          `json:"authorName"`
	AuthorEmail string          `json:"authorEmail"`
}

type modelSummary struct {
	Name     string   `json:"name"`
	Revision revision `json:"revision"`
}

type relationSummary struct {
	Name         string `json:"name"`
	GeometryType string `json:"geometryType"`
	SRID         int    `json:"srid"`
	Identity     string `json:"identity,omitempty"`
}

type modelDetail struct {
	modelSummary
	CommonSRID      int               `json:"commonSrid"`
	DefaultIdentity string            `json:"defaultIdentity"`
	CommonFields    []field           `json:"commonFields"`
	Relations       []relationSummary `json:"relations"`
}

type relationDetail struct {
	relationSummary
	NenaAnalog   *string           `json:"nenaAnalog,omitempty"`
	NenaRequired bool              `json:"nenaRequired"`
	Strings      map[string]string `json:"strings"`
	Fields       []field           `json:"fields"`
}

type field struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Unique       bool              `json:"unique"`
	Length       *int              `json:"length,omitempty"`
	Domain       []string          `json:"domain,omitempty"`
	Requirement  string            `json:"requirement,omitempty"`
	Analogs      []string          `json:"analogs"`
	Calculated   bool              `json:"calculated"`
	Guaranteed   bool              `json:"guaranteed"`
	Search       bool              `json:"search"`
	Display      bool              `json:"display"`
	NenaAnalog   *string           `json:"nenaAnalog,omitempty"`
	NenaRequired bool              `json:"nenaRequired"`
	Strings      map[string]string `json:"strings"`
}

func newModelSummary(m *schema.ModelInfo) modelSummary {
	return modelSummary{
		Name: m.Name,
		Revision: revision{
			Title:       m.Revision.Title,
			Sequence:    m.Revision.Sequence,
			AuthorName:  m.Revision.AuthorName,
			AuthorEmail: m.Revision.AuthorEmail,
		},
	}
}

func newModelDetail(m *schema.ModelInfo, locale string) modelDetail {
	out := modelDetail{
		modelSummary: newModelSummary(m),
		CommonFields: []field{},
		Relations:    []relationSummary{},
	}

	if m.Spatial == nil {
		return out
	}

	out.CommonSRID = m.Spatial.EffectiveSRID()
	out.DefaultIdentity = m.Spatial.DefaultIdentity

	for _, f := range m.Spatial.CommonFields {
		out.CommonFields = append(out.CommonFields, newField(f, locale))
	}

	if m.Spatial.FeatureTables != nil {
		for _, rel := range m.Spatial.FeatureTables.Relations() {
			out.Relations = append(out.Relations, newRelationSummary(rel))
		}
	}

	return out
}

func newRelationSummary(rel *schema.FeatureTableInfo) relationSummary {
	identity, _ := rel.Identity()

	return relationSummary{
		Name:         rel.Name(),
		GeometryType: rel.GeometryType().String(),
		SRID:         rel.SRID(),
		Identity:     identity,
	}
}

func newRelationDetail(rel *schema.FeatureTableInfo, locale string) relationDetail {
	out := relationDetail{
		relationSummary: newRelationSummary(rel),
		NenaAnalog:      rel.Nena().Analog,
		NenaRequired:    rel.Nena().Required,
		Strings:         rel.I18n().Resolve(locale),
		Fields:          make([]field, 0, len(rel.Fields())),
	}

	for _, f := range rel.Fields() {
		out.Fields = append(out.Fields, newField(f, locale))
	}

	return out
}

func newField(f *schema.FieldInfo, locale string) field {
	out := field{
		Name:         f.Name,
		Type:         f.DataType.String(),
		Unique:       f.Unique,
		Domain:       f.Domain,
		Requirement:  f.Source.Requirement.String(),
		Analogs:      f.Source.Analogs,
		Calculated:   f.Target.Calculated,
		Guaranteed:   f.Target.Guaranteed,
		Search:       f.Usage.Search,
		Display:      f.Usage.Display,
		NenaAnalog:   f.Nena.Analog,
		NenaRequired: f.Nena.Required,
		Strings:      f.I18n.Resolve(locale),
	}

	if n, ok := f.Length(); ok {
		out.Length = &n
	}

	if out.Analogs == nil {
		out.Analogs = []string{}
	}

	return out
}
