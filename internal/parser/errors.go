package parser

import (
	"errors"
	"fmt"
)

// ErrParse matches every *ParseError through errors.Is.
var ErrParse = errors.New("parse error")

// Kind classifies the cause of a ParseError.
type Kind string

const (
	KindSyntax       Kind = "syntax"
	KindFileNotFound Kind = "file not found"
	KindRead         Kind = "read"
	KindMissingKey   Kind = "missing key"
	KindInvalidValue Kind = "invalid value"
	KindModel        Kind = "model"
)

// ParseError is returned for any document that can't be turned into a model.
// Path is the location in the document ("spatial.featureTables[0].name"),
// empty for errors concerning the whole input.
type ParseError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", ErrParse, e.Kind, e.Err)
	}

	return fmt.Sprintf(`%s at "%s": %s: %v`, ErrParse, e.Path, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// MissingKeyError is the cause of a KindMissingKey ParseError.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf(`missing required key "%s"`, e.Key)
}

func parseErrorf(kind Kind, path string, format string, args ...any) *ParseError {
	return &ParseError{
		Kind: kind,
		Path: path,
		Err:  fmt.Errorf(format, args...),
	}
}

func wrapError(kind Kind, path string, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}

	return &ParseError{Kind: kind, Path: path, Err: err}
}
