package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/patdaburu/mothergeo/internal/geometry"
)

const NamelessModel = "Nameless Model"

// ModelInfo is the root of a parsed data model.
type ModelInfo struct {
	Name     string
	Revision Revision
	Spatial  *SpatialInfo
}

// Relation finds a feature table by name.
func (m *ModelInfo) Relation(name string) (*FeatureTableInfo, error) {
	if m.Spatial == nil || m.Spatial.FeatureTables == nil {
		return nil, &NotFoundError{Kind: kindRelation, Name: name}
	}

	return m.Spatial.FeatureTables.Relation(name)
}

// SpatialInfo describes the spatial elements of a model.
type SpatialInfo struct {
	CommonSRID      *int
	DefaultIdentity string
	CommonFields    []*FieldInfo
	FeatureTables   *FeatureTableInfoCollection
}

func (s *SpatialInfo) EffectiveSRID() int {
	if s.CommonSRID == nil {
		return geometry.DefaultSRID
	}

	return *s.CommonSRID
}

// Revision holds version information about a model definition.
type Revision struct {
	Title       string
	Sequence    Sequence
	AuthorName  string
	AuthorEmail string
}

// Sequence is a revision number, either an integer or a float.
type Sequence struct {
	i       int64
	f       float64
	isFloat bool
}

func IntSequence(i int64) Sequence {
	return Sequence{i: i, f: float64(i)}
}

func FloatSequence(f float64) Sequence {
	return Sequence{i: int64(f), f: f, isFloat: true}
}

// ParseSequence accepts a number, or a string that is parsed as a float when
// it contains a decimal point and as an integer otherwise.
func ParseSequence(v any) (Sequence, error) {
	switch t := v.(type) {
	case int:
		return IntSequence(int64(t)), nil
	case int32:
		return IntSequence(int64(t)), nil
	case int64:
		return IntSequence(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return FloatSequence(float64(t)), nil
		}
		return IntSequence(int64(t)), nil
	case float32:
		return numberSequence(float64(t)), nil
	case float64:
		return numberSequence(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntSequence(i), nil
		}

		f, err := t.Float64()
		if err != nil {
			return Sequence{}, &SequenceError{Value: v, Err: err}
		}

		if strings.Contains(string(t), ".") {
			return FloatSequence(f), nil
		}

		return numberSequence(f), nil
	case string:
		return parseSequenceString(strings.TrimSpace(t), v)
	}

	return Sequence{}, &SequenceError{Value: v}
}

// Whole JSON numbers decode as float64; they are integers in the document.
func numberSequence(f float64) Sequence {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return IntSequence(int64(f))
	}

	return FloatSequence(f)
}

func parseSequenceString(s string, raw any) (Sequence, error) {
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Sequence{}, &SequenceError{Value: raw, Err: err}
		}
		return FloatSequence(f), nil
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Sequence{}, &SequenceError{Value: raw, Err: err}
	}

	return IntSequence(i), nil
}

func (s Sequence) IsInt() bool {
	return !s.isFloat
}

// Int returns the integer value; ok is false for float sequences.
func (s Sequence) Int() (int64, bool) {
	return s.i, !s.isFloat
}

func (s Sequence) Float() float64 {
	return s.f
}

func (s Sequence) String() string {
	if s.isFloat {
		return strconv.FormatFloat(s.f, 'f', -1, 64)
	}

	return strconv.FormatInt(s.i, 10)
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Sequence) GoString() string {
	return fmt.Sprintf("schema.Sequence(%s)", s.String())
}
