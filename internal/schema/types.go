package schema

import (
	"fmt"
	"strings"
)

// DataType is the abstract type of a field. Values outside the closed set
// are kept as parsed so they can be reported when no storage mapping exists.
type DataType string

const (
	DataTypeUnknown  DataType = "UNKNOWN"
	DataTypeText     DataType = "TEXT"
	DataTypeUUID     DataType = "UUID"
	DataTypeInt      DataType = "INT"
	DataTypeFloat    DataType = "FLOAT"
	DataTypeDateTime DataType = "DATETIME"
)

var dataTypes = map[DataType]bool{
	DataTypeUnknown:  true,
	DataTypeText:     true,
	DataTypeUUID:     true,
	DataTypeInt:      true,
	DataTypeFloat:    true,
	DataTypeDateTime: true,
}

// ParseDataType converts a type name ("text", "Int", ...) into a DataType.
func ParseDataType(s string) DataType {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DataTypeUnknown
	}

	return DataType(s)
}

func (d DataType) Known() bool {
	return dataTypes[d]
}

func (d DataType) String() string {
	return string(d)
}

// Requirement says how strongly a source is expected to supply a value.
// The zero value means the document didn't say.
type Requirement string

const (
	RequirementUnspecified Requirement = ""
	RequirementNone        Requirement = "NONE"
	RequirementRequested   Requirement = "REQUESTED"
	RequirementRequired    Requirement = "REQUIRED"
)

func ParseRequirement(s string) (Requirement, error) {
	switch r := Requirement(strings.ToUpper(strings.TrimSpace(s))); r {
	case RequirementNone, RequirementRequested, RequirementRequired:
		return r, nil
	}

	return RequirementUnspecified, fmt.Errorf(`unknown requirement "%s"`, s)
}

func (r Requirement) String() string {
	return string(r)
}

// Source describes what we expect from the data's source.
type Source struct {
	Requirement Requirement
	// Analogs are alternate field name patterns that may identify the same
	// data point at ingestion time.
	Analogs []string
}

// Target describes what we promise about the stored value.
type Target struct {
	Calculated bool
	Guaranteed bool
}

type Usage struct {
	Search  bool
	Display bool
}

// NenaSpec cross-references the NENA field naming standard.
type NenaSpec struct {
	Analog   *string
	Required bool
}
