// Package domainerrors carries typed error codes from services to transports.
//
// Services return *Error values (usually via New or Wrap). Transports map the
// Code to a status and never inspect messages. Infrastructure facts such as
// "row not found" live in pkg/platform/sentinel and are translated into codes
// at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure that callers can branch on.
type Code string

const (
	CodeInternal           Code = "internal_error"
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeIssuerResolution   Code = "issuer_not_found"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotImplemented     Code = "not_implemented"
)

// Error is a coded domain error. Fields optionally carries per-field
// validation messages keyed by the request field name.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports equality on code and message so tests can use
// require.ErrorIs(err, dErrors.New(code, msg)).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code to an underlying error. The cause is kept for logging
// but never rendered to clients for CodeInternal.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// WithFields builds a validation error carrying field-level detail.
func WithFields(code Code, msg string, fields map[string]string) error {
	return &Error{Code: code, Message: msg, Fields: fields}
}

// GetCode returns the code of the first *Error in the chain, or CodeInternal.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Fields returns field-level details attached to err, if any.
func Fields(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// Message returns the client-safe message of a coded error.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
