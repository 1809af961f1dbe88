// Package apperr defines the two failure kinds every Flockr operation can
// raise. InputError means the request data does not describe a valid domain
// object or breaks a validation rule; AccessError means the caller is not
// authenticated or lacks the required membership/ownership relationship.
package apperr

import (
	"errors"
	"fmt"
)

// Kind discriminates the two operation failure classes.
type Kind string

const (
	KindInput  Kind = "InputError"
	KindAccess Kind = "AccessError"
)

// Error is the only error type returned by service operations.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Input builds an InputError with the given description.
func Input(message string) error {
	return &Error{Kind: KindInput, Message: message}
}

// Inputf builds an InputError with a formatted description.
func Inputf(format string, args ...any) error {
	return &Error{Kind: KindInput, Message: fmt.Sprintf(format, args...)}
}

// Access builds an AccessError with the given description.
func Access(message string) error {
	return &Error{Kind: KindAccess, Message: message}
}

// IsInput reports whether err is an InputError.
func IsInput(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInput
}

// IsAccess reports whether err is an AccessError.
func IsAccess(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAccess
}
