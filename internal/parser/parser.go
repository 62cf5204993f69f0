// Package parser turns serialized model documents into schema.ModelInfo
// graphs. Documents are JSON objects, given either as text or as the path of
// a JSON or YAML file.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/patdaburu/mothergeo/internal/geometry"
	"github.com/patdaburu/mothergeo/internal/i18n"
	"github.com/patdaburu/mothergeo/internal/schema"
	"gopkg.in/yaml.v3"
)

// Parse parses s as a JSON document. If s isn't a JSON object it is treated
// as the path of a file holding the document.
func Parse(s string) (*schema.ModelInfo, error) {
	doc, jsonErr := decodeJSON([]byte(s))
	if jsonErr == nil {
		return parseDocument(doc)
	}

	model, err := ParseFile(s)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Kind == KindFileNotFound && looksLikeJSON(s) {
			// The input was meant as a document, so its syntax error is the
			// more useful one.
			return nil, &ParseError{Kind: KindSyntax, Err: jsonErr}
		}
		return nil, err
	}

	return model, nil
}

// ParseFile parses the document stored at path. Files with a .yaml or .yml
// extension are decoded as YAML, everything else as JSON.
func ParseFile(path string) (*schema.ModelInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ParseError{Kind: KindFileNotFound, Err: err}
		}
		return nil, &ParseError{Kind: KindRead, Err: err}
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = decodeYAML(data)
	default:
		doc, err = decodeJSON(data)
	}

	if err != nil {
		return nil, &ParseError{Kind: KindSyntax, Err: fmt.Errorf(`failed to decode "%s": %w`, path, err)}
	}

	return parseDocument(doc)
}

// ParseBytes parses an in-memory document, JSON first and YAML second.
func ParseBytes(data []byte) (*schema.ModelInfo, error) {
	doc, jsonErr := decodeJSON(data)
	if jsonErr != nil {
		var err error
		if doc, err = decodeYAML(data); err != nil {
			return nil, &ParseError{Kind: KindSyntax, Err: jsonErr}
		}
	}

	return parseDocument(doc)
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after the top-level object")
	}

	if doc == nil {
		return nil, errors.New("document is not an object")
	}

	return doc, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}

	doc, ok := asMap(v)
	if !ok {
		return nil, errors.New("document is not an object")
	}

	return doc, nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func parseDocument(doc map[string]any) (*schema.ModelInfo, error) {
	root := object{m: doc}

	name, ok, err := root.string("name", false)
	if err != nil {
		return nil, err
	}
	if !ok {
		name = schema.NamelessModel
	}

	revObj, _, err := root.object("revision", true)
	if err != nil {
		return nil, err
	}

	revision, err := parseRevision(revObj)
	if err != nil {
		return nil, err
	}

	spatialObj, _, err := root.object("spatial", true)
	if err != nil {
		return nil, err
	}

	spatial, err := parseSpatial(spatialObj)
	if err != nil {
		return nil, err
	}

	return &schema.ModelInfo{
		Name:     name,
		Revision: *revision,
		Spatial:  spatial,
	}, nil
}

func parseRevision(o object) (*schema.Revision, error) {
	var r schema.Revision
	var err error

	if r.Title, _, err = o.string("title", true); err != nil {
		return nil, err
	}

	seq, _, err := o.value("sequence", true)
	if err != nil {
		return nil, err
	}

	if r.Sequence, err = schema.ParseSequence(seq); err != nil {
		return nil, wrapError(KindInvalidValue, o.child("sequence"), err)
	}

	if r.AuthorName, _, err = o.string("authorName", true); err != nil {
		return nil, err
	}

	if r.AuthorEmail, _, err = o.string("authorEmail", true); err != nil {
		return nil, err
	}

	return &r, nil
}

func parseSpatial(o object) (*schema.SpatialInfo, error) {
	commonSRID, err := o.int("commonSrid")
	if err != nil {
		return nil, err
	}

	defaultIdentity, _, err := o.string("defaultIdentity", true)
	if err != nil {
		return nil, err
	}

	commonFields, err := parseFields(o, "commonFields", false)
	if err != nil {
		return nil, err
	}

	tableObjs, err := o.objects("featureTables", false)
	if err != nil {
		return nil, err
	}

	collection, err := schema.NewFeatureTableInfoCollection(commonFields, nil, defaultIdentity, commonSRID)
	if err != nil {
		return nil, wrapError(KindModel, o.child("commonFields"), err)
	}

	for _, to := range tableObjs {
		table, err := parseFeatureTable(to, commonFields, defaultIdentity, commonSRID)
		if err != nil {
			return nil, err
		}

		if err := collection.AddRelation(table); err != nil {
			return nil, wrapError(KindModel, to.child("name"), err)
		}
	}

	return &schema.SpatialInfo{
		CommonSRID:      commonSRID,
		DefaultIdentity: defaultIdentity,
		CommonFields:    commonFields,
		FeatureTables:   collection,
	}, nil
}

func parseFeatureTable(
	o object,
	commonFields []*schema.FieldInfo,
	defaultIdentity string,
	defaultSRID *int,
) (*schema.FeatureTableInfo, error) {
	name, _, err := o.string("name", true)
	if err != nil {
		return nil, err
	}

	geometryType, _, err := o.string("geometryType", true)
	if err != nil {
		return nil, err
	}

	identity, ok, err := o.string("identity", false)
	if err != nil {
		return nil, err
	}
	if !ok {
		identity = defaultIdentity
	}

	srid, err := o.int("srid")
	if err != nil {
		return nil, err
	}
	if srid == nil {
		srid = defaultSRID
	}

	nena, err := parseNenaSpec(o, true)
	if err != nil {
		return nil, err
	}

	pack, err := parseI18n(o)
	if err != nil {
		return nil, err
	}

	fields, err := parseFields(o, "fields", true)
	if err != nil {
		return nil, err
	}

	// The effective field list is the table's own fields followed by the
	// collection's common fields.
	fields = append(fields, commonFields...)

	rel, err := schema.NewRelationInfo(name, identity, fields, *nena, pack)
	if err != nil {
		return nil, wrapError(KindModel, o.path, fmt.Errorf(`feature table "%s": %w`, name, err))
	}

	return schema.NewFeatureTableInfo(rel, geometry.ParseType(geometryType), srid), nil
}

func parseFields(o object, key string, required bool) ([]*schema.FieldInfo, error) {
	objs, err := o.objects(key, required)
	if err != nil {
		return nil, err
	}

	fields := make([]*schema.FieldInfo, 0, len(objs))
	for _, fo := range objs {
		f, err := parseField(fo)
		if err != nil {
			return nil, err
		}

		fields = append(fields, f)
	}

	return fields, nil
}

func parseField(o object) (*schema.FieldInfo, error) {
	var f schema.FieldInfo
	var err error

	if f.Name, _, err = o.string("name", true); err != nil {
		return nil, err
	}

	if f.Name == "" {
		return nil, parseErrorf(KindInvalidValue, o.child("name"), "field name cannot be empty")
	}

	dataType, _, err := o.string("type", true)
	if err != nil {
		return nil, err
	}
	f.DataType = schema.ParseDataType(dataType)

	if f.Unique, err = o.bool("unique"); err != nil {
		return nil, err
	}

	prefs, ok, err := o.object("preferences", false)
	if err != nil {
		return nil, err
	}
	if ok {
		f.Preferences = prefs.m

		if prefs.has(schema.PreferenceLength) {
			if _, valid := f.Length(); !valid {
				return nil, parseErrorf(KindInvalidValue, prefs.child(schema.PreferenceLength),
					"length must be a positive integer, got %v", prefs.m[schema.PreferenceLength])
			}
		}
	}

	domain, ok, err := o.strings("domain")
	if err != nil {
		return nil, err
	}
	if ok {
		f.Domain = dedupe(domain)
	}

	source, err := parseSource(o)
	if err != nil {
		return nil, err
	}
	f.Source = *source

	target, err := parseTarget(o)
	if err != nil {
		return nil, err
	}
	f.Target = *target

	usage, err := parseUsage(o)
	if err != nil {
		return nil, err
	}
	f.Usage = *usage

	nena, err := parseNenaSpec(o, false)
	if err != nil {
		return nil, err
	}
	f.Nena = *nena

	if f.I18n, err = parseI18n(o); err != nil {
		return nil, err
	}

	return &f, nil
}

func parseSource(parent object) (*schema.Source, error) {
	o, _, err := parent.object("source", true)
	if err != nil {
		return nil, err
	}

	s := &schema.Source{Analogs: []string{}}

	requirement, ok, err := o.string("requirement", false)
	if err != nil {
		return nil, err
	}
	if ok {
		if s.Requirement, err = schema.ParseRequirement(requirement); err != nil {
			return nil, wrapError(KindInvalidValue, o.child("requirement"), err)
		}
	}

	analogs, ok, err := o.strings("analogs")
	if err != nil {
		return nil, err
	}
	if ok {
		s.Analogs = analogs
	}

	return s, nil
}

func parseTarget(parent object) (*schema.Target, error) {
	o, _, err := parent.object("target", true)
	if err != nil {
		return nil, err
	}

	var t schema.Target
	if t.Calculated, err = o.bool("calculated"); err != nil {
		return nil, err
	}

	if t.Guaranteed, err = o.bool("guaranteed"); err != nil {
		return nil, err
	}

	return &t, nil
}

func parseUsage(parent object) (*schema.Usage, error) {
	o, _, err := parent.object("usage", false)
	if err != nil {
		return nil, err
	}

	var u schema.Usage
	if u.Search, err = o.bool("search"); err != nil {
		return nil, err
	}

	if u.Display, err = o.bool("display"); err != nil {
		return nil, err
	}

	return &u, nil
}

func parseNenaSpec(parent object, required bool) (*schema.NenaSpec, error) {
	o, _, err := parent.object("nena", required)
	if err != nil {
		return nil, err
	}

	var n schema.NenaSpec

	analog, ok, err := o.string("analog", false)
	if err != nil {
		return nil, err
	}
	if ok {
		n.Analog = &analog
	}

	if n.Required, err = o.bool("required"); err != nil {
		return nil, err
	}

	return &n, nil
}

// parseI18n reads the "i18n" object of parent. Its "default" member holds the
// default strings, every other member is a locale overlay.
func parseI18n(parent object) (*i18n.Pack, error) {
	o, _, err := parent.object("i18n", true)
	if err != nil {
		return nil, err
	}

	defaults, err := parseTranslations(o, i18n.DefaultLocale)
	if err != nil {
		return nil, err
	}

	pack := i18n.NewPack(defaults)

	// Locales are compared case-insensitively, so two spellings of one locale
	// would overwrite each other.
	seen := make(map[string]string, len(o.m))

	for _, locale := range slices.Sorted(maps.Keys(o.m)) {
		norm := strings.ToLower(locale)
		if prev, ok := seen[norm]; ok {
			return nil, parseErrorf(KindInvalidValue, o.child(locale), `locale "%s" is already given as "%s"`, locale, prev)
		}
		seen[norm] = locale

		if locale == i18n.DefaultLocale {
			continue
		}

		translations, err := parseTranslations(o, locale)
		if err != nil {
			return nil, err
		}

		pack.Set(translations, locale)
	}

	return pack, nil
}

func parseTranslations(o object, locale string) (map[string]string, error) {
	lo, _, err := o.object(locale, false)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(lo.m))
	for k, v := range lo.m {
		s, ok := v.(string)
		if !ok {
			return nil, lo.invalid(k, "a string", v)
		}

		out[k] = s
	}

	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	return out
}
