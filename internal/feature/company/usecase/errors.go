// Package usecase implements the business logic for the company feature.
package usecase

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrCompanyNotFound is returned when no company matches the given ID.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrCompanyIDExists is returned when a company with the same ID already exists.
	ErrCompanyIDExists = errors.New("company with this id already exists")

	// ErrCompanyEmailExists is returned when another company already uses the email.
	ErrCompanyEmailExists = errors.New("company with this email already exists")

	// ErrUserNotFound is returned by the user directory when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// FieldErrors maps a JSON field name to the problems found on it.
type FieldErrors map[string][]string

// Add appends a problem for field.
func (f FieldErrors) Add(field, problem string) {
	f[field] = append(f[field], problem)
}

func (f FieldErrors) String() string {
	parts := make([]string, 0, len(f))
	for _, k := range slices.Sorted(maps.Keys(f)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(f[k], "; ")))
	}
	return strings.Join(parts, ", ")
}

// ValidationError is returned when a field is missing or malformed.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

// ConflictError is returned when a uniqueness constraint (id, email) would be violated.
// It unwraps to the sentinel errors that caused it.
type ConflictError struct {
	Fields FieldErrors
	causes []error
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Fields.String()
}

func (e *ConflictError) Unwrap() []error {
	return e.causes
}

// newConflict builds a ConflictError from uniqueness sentinels.
func newConflict(causes ...error) *ConflictError {
	ce := &ConflictError{Fields: FieldErrors{}}
	for _, err := range causes {
		switch {
		case errors.Is(err, ErrCompanyIDExists):
			ce.Fields.Add("id", ErrCompanyIDExists.Error())
		case errors.Is(err, ErrCompanyEmailExists):
			ce.Fields.Add("email", ErrCompanyEmailExists.Error())
		default:
			continue
		}
		ce.causes = append(ce.causes, err)
	}
	return ce
}

// asConflict converts a repository-level uniqueness sentinel into a ConflictError and
// passes every other error through unchanged.
func asConflict(err error) error {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, ErrCompanyIDExists) || errors.Is(err, ErrCompanyEmailExists) {
		return newConflict(err)
	}
	return err
}
