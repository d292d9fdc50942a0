// Package errdefs defines the error kinds returned by storage operations.
//
// Every error built here carries a human readable message and matches its
// kind with errors.Is, so callers can branch on the kind without parsing text.
package errdefs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrForbidden     = errors.New("forbidden")
	ErrAborted       = errors.New("aborted")
	ErrUnsupported   = errors.New("unsupported")
	ErrPersistence   = errors.New("persistence failure")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newf(kind error, cause error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// NotFound reports an unknown storage or an unset default.
func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, nil, format, args...)
}

// AlreadyExists reports a duplicate storage name.
func AlreadyExists(format string, args ...any) error {
	return newf(ErrAlreadyExists, nil, format, args...)
}

// Validation reports malformed input.
func Validation(format string, args ...any) error {
	return newf(ErrValidation, nil, format, args...)
}

// Forbidden reports an operation refused by a safety rule.
func Forbidden(format string, args ...any) error {
	return newf(ErrForbidden, nil, format, args...)
}

// Aborted reports that the user declined a confirmation.
func Aborted(format string, args ...any) error {
	return newf(ErrAborted, nil, format, args...)
}

// Unsupported reports a container engine that is too old for an operation.
func Unsupported(format string, args ...any) error {
	return newf(ErrUnsupported, nil, format, args...)
}

// Persistence wraps a failure to read or write the config document.
func Persistence(cause error, format string, args ...any) error {
	return newf(ErrPersistence, cause, format, args...)
}

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool     { return errors.Is(err, ErrForbidden) }
func IsAborted(err error) bool       { return errors.Is(err, ErrAborted) }
func IsUnsupported(err error) bool   { return errors.Is(err, ErrUnsupported) }
func IsPersistence(err error) bool   { return errors.Is(err, ErrPersistence) }
