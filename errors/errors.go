package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// UnhandledField is the field label carried by every Unhandled error.
const UnhandledField = "An unhandled error occurred"

// Error is the canonical error record. It is a value type and immutable
// once constructed; field and message are either explicitly set by a
// constructor or absent.
type Error struct {
	code       ErrorCode
	field      string
	message    string
	hasField   bool
	hasMessage bool
}

// New creates an Error with every part set explicitly.
func New(field, message string, code ErrorCode) Error {
	return Error{
		code:       code,
		field:      field,
		message:    message,
		hasField:   true,
		hasMessage: true,
	}
}

// FromCode creates an Error carrying only a code.
func FromCode(code ErrorCode) Error {
	return Error{code: code}
}

// ServerError creates a code-only SERVER_ERROR.
func ServerError() Error {
	return FromCode(CodeServerError)
}

// InvalidCredentials creates a code-only INVALID_CREDENTIALS.
func InvalidCredentials() Error {
	return FromCode(CodeInvalidCredentials)
}

// Unique creates a UNIQUE error for field when the conflicting value is unknown.
func Unique(field string) Error {
	return New(field, fmt.Sprintf("The %s already exists", field), CodeUnique)
}

// UniqueValue creates a UNIQUE error naming the conflicting value.
func UniqueValue(field, value string) Error {
	return New(field, fmt.Sprintf("A %s with %s already exists", field, value), CodeUnique)
}

// Unhandled creates an UNHANDLED error whose message is the text of cause.
// A nil cause leaves the message absent.
func Unhandled(cause error) Error {
	e := Error{code: CodeUnhandled, field: UnhandledField, hasField: true}
	if cause != nil {
		e.message = cause.Error()
		e.hasMessage = true
	}
	return e
}

// Code returns the error code.
func (e Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if set.
func (e Error) Field() (string, bool) { return e.field, e.hasField }

// Message returns the human-readable detail, if set.
func (e Error) Message() (string, bool) { return e.message, e.hasMessage }

// Error returns the code followed by whichever detail is present.
func (e Error) Error() string {
	var b strings.Builder
	b.WriteString(e.code.String())
	if e.hasField {
		b.WriteString(" [")
		b.WriteString(e.field)
		b.WriteString("]")
	}
	if e.hasMessage {
		b.WriteString(": ")
		b.WriteString(e.message)
	}
	return b.String()
}

// Is reports whether target is an Error with the same code.
func (e Error) Is(target error) bool {
	var t Error
	if stderrors.As(target, &t) {
		return t.code == e.code
	}
	return false
}

// As extracts an Error from err's chain.
func As(err error) (Error, bool) {
	var e Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return Error{}, false
}
