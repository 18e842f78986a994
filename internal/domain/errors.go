// Package domain holds the character record and the errors the rest of the
// service speaks in. Nothing here knows about HTTP or the backend wire format.
package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every error the board returns unwraps to one of them:
// the HTTP layer picks a status code, the page picks an alert.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")

	// ErrNoSelection is returned by vote and reset on an empty board.
	ErrNoSelection = fmt.Errorf("%w: no character selected", ErrValidation)

	// ErrVotesOverflow is returned when a vote total would not fit in an int.
	ErrVotesOverflow = fmt.Errorf("%w: vote total out of range", ErrValidation)
)

// NotFoundError names a record the board or the backend does not have.
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError is rejected input. Message is shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue keeps the rejected input for logging.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ForbiddenError is an operation a feature flag has switched off.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("operation %q forbidden", e.Operation)
	}

	return fmt.Sprintf("operation %q forbidden: %s", e.Operation, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// UnavailableError means the characters backend failed us: unreachable,
// circuit open, or an answer we could not use.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("service %q unavailable", e.Service)
	}

	return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation includes ErrNoSelection.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
