package models

import "errors"

// ErrorKind classifies domain failures. Kinds, not types, drive the transport mapping.
type ErrorKind string

const (
	ErrorKindNotFound      ErrorKind = "not_found"
	ErrorKindInvalidAmount ErrorKind = "invalid_amount"
	ErrorKindInvalidState  ErrorKind = "invalid_state"
	ErrorKindWindowExpired ErrorKind = "window_expired"
	ErrorKindInvalidInput  ErrorKind = "invalid_input"
)

// DomainError is a business-rule failure with a message suitable for direct display.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NotFound builds a not_found error.
func NotFound(msg string) error {
	return &DomainError{Kind: ErrorKindNotFound, Message: msg}
}

// InvalidAmount builds an invalid_amount error.
func InvalidAmount(msg string) error {
	return &DomainError{Kind: ErrorKindInvalidAmount, Message: msg}
}

// InvalidState builds an invalid_state error.
func InvalidState(msg string) error {
	return &DomainError{Kind: ErrorKindInvalidState, Message: msg}
}

// WindowExpired builds a window_expired error.
func WindowExpired(msg string) error {
	return &DomainError{Kind: ErrorKindWindowExpired, Message: msg}
}

// InvalidInput builds an invalid_input error.
func InvalidInput(msg string) error {
	return &DomainError{Kind: ErrorKindInvalidInput, Message: msg}
}

// ErrorKindOf returns the kind of a wrapped DomainError, or "" for anything else.
func ErrorKindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && ErrorKindOf(err) == kind
}
