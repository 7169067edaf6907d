package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument marks a data file that exists but does not match the document shape.
	ErrMalformedDocument = errors.New("planner: malformed document")
	// ErrIO marks a failure to read or write the backing file.
	ErrIO = errors.New("planner: io failure")
	// ErrNotFound is returned when an id does not resolve within its collection.
	ErrNotFound = errors.New("planner: not found")
	// ErrValidation is returned when caller-supplied input is out of range or unparsable.
	ErrValidation = errors.New("planner: validation failed")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup miss.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
