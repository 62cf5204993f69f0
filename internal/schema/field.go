package schema

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/patdaburu/mothergeo/internal/i18n"
)

const PreferenceLength = "length"

// FieldInfo describes a field of a relation.
type FieldInfo struct {
	// Name identifies the field within its relation, compared case-insensitively.
	Name        string
	DataType    DataType
	Unique      bool
	Source      Source
	Target      Target
	Usage       Usage
	Nena        NenaSpec
	I18n        *i18n.Pack
	Preferences map[string]any
	// Domain holds the legal values, or nil if any value is allowed.
	Domain []string
}

// Length returns the "length" preference as a positive integer.
func (f *FieldInfo) Length() (int, bool) {
	v, ok := f.Preferences[PreferenceLength]
	if !ok {
		return 0, false
	}

	var n float64
	switch t := v.(type) {
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case float64:
		n = t
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = x
	default:
		return 0, false
	}

	if n <= 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false
	}

	return int(n), true
}

// InDomain reports whether value is a legal value for the field.
func (f *FieldInfo) InDomain(value string) bool {
	if f.Domain == nil {
		return true
	}

	return slices.Contains(f.Domain, value)
}

func key(name string) string {
	return strings.ToLower(name)
}
