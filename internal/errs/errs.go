// Package errs defines the error taxonomy shared by services and handlers.
// Callers match with errors.Is; the HTTP boundary maps each sentinel to a status.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateSlug = errors.New("a blog with this title already exists")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidAction = errors.New("invalid bulk action")
	ErrConflict      = errors.New("conflict")
)

// ValidationError carries field-level detail for ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// Validation builds a ValidationError from field/message pairs.
func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Field builds a ValidationError for a single field.
func Field(name, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{name: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
