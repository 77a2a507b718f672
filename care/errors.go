/*
errors.go - Centralized error types for the care tracker

PURPOSE:
  All error types in one place for consistency and discoverability.

ERROR CATEGORIES:
  1. Validation errors - missing fields, date ordering, palette rules.
     Shown to the user; nothing is written.
  2. Conflict errors - a care day already exists for the same child,
     caregiver and date.
  3. Store errors - failures reaching the backend. The Repository logs
     them and turns them into empty results; only the scheduler commit
     reports them (ErrCommitFailed).

USAGE:
    var conflict *care.ConflictError
    if errors.As(err, &conflict) {
        // conflict.Dates lists every taken day
    }

SEE ALSO:
  - scheduler.go: Produces ConflictError
  - profiles.go: Produces palette errors
*/
package care

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingFields is returned when a required form field is empty.
	ErrMissingFields = errors.New("please fill in all fields")

	// ErrEndBeforeStart is returned when a period ends before it starts.
	ErrEndBeforeStart = errors.New("end date must not be before start date")

	// ErrDateConflict is returned when a care day already exists for the
	// same child, caregiver and date.
	ErrDateConflict = errors.New("dates already taken")

	// ErrCommitFailed is returned when care days could not be written.
	ErrCommitFailed = errors.New("failed to record care days")

	ErrChildNotFound     = errors.New("child not found")
	ErrCaregiverNotFound = errors.New("caregiver not found")
	ErrCareDayNotFound   = errors.New("care day not found")

	// ErrBirthDateInFuture is returned for a birth date after today.
	ErrBirthDateInFuture = errors.New("birth date is in the future")

	ErrInvalidRole  = errors.New("invalid caregiver role")
	ErrInvalidColor = errors.New("color is not in the palette")

	// ErrColorTaken is returned when another caregiver already uses the colour.
	ErrColorTaken = errors.New("please choose a unique color for this caregiver")

	// ErrNotReady is logged when the repository has no usable backend.
	ErrNotReady = errors.New("storage not ready")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConflictError lists every date of a request that is already taken.
type ConflictError struct {
	ChildID     ChildID
	CaregiverID CaregiverID
	Dates       []Date
}

func (e *ConflictError) Error() string {
	dates := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		dates[i] = d.String()
	}
	return fmt.Sprintf("dates already taken: %s", strings.Join(dates, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrDateConflict
}

// ValidationError names the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid user input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrEndBeforeStart) ||
		errors.Is(err, ErrBirthDateInFuture) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidColor)
}

// IsConflict returns true for duplicate dates and taken colours.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDateConflict) || errors.Is(err, ErrColorTaken)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChildNotFound) ||
		errors.Is(err, ErrCaregiverNotFound) ||
		errors.Is(err, ErrCareDayNotFound)
}
