package schema

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
)

// NotFoundError is returned when a named field or relation doesn't exist.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(`%s "%s" is not defined`, e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateNameError is returned when a name is already taken
// (compared case-insensitively).
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf(`%s "%s" is already defined`, e.Kind, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// SequenceError is returned when a revision sequence is neither a number
// nor a string holding one.
type SequenceError struct {
	Value any
	Err   error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence must be a number or a convertible string, got %#v", e.Value)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}
