package library

import (
	"errors"
	"strings"
)

var (
	// ErrConnection means the store could not be reached. Fatal at startup.
	ErrConnection = errors.New("database unreachable")
	// ErrSchemaMissing means one of the required tables does not exist. Fatal at startup.
	ErrSchemaMissing = errors.New("database schema incomplete")

	ErrValidation        = errors.New("invalid input")
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrAuthFailure       = errors.New("invalid credentials")
	ErrUnavailable       = errors.New("book not available or not found")
	ErrNotFound          = errors.New("loan not found, already returned, or not yours")
	ErrForbidden         = errors.New("operation not permitted for this session")
)

// ValidationError lists every problem found in a piece of input. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationError(problems ...string) error {
	return &ValidationError{Problems: problems}
}
