package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeInvalidLink       Code = "INVALID_LINK"
	CodeDuplicate         Code = "DUPLICATE_SUBMISSION"
	CodeDependency        Code = "DEPENDENCY_ERROR"
	CodeInternal          Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:        http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeForbidden:         http.StatusForbidden,
	CodeNotFound:          http.StatusNotFound,
	CodeConflict:          http.StatusConflict,
	CodeInsufficientFunds: http.StatusUnprocessableEntity,
	CodeInvalidLink:       http.StatusNotFound,
	CodeDuplicate:         http.StatusConflict,
	CodeDependency:        http.StatusServiceUnavailable,
	CodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus maps a code to the status the handlers answer with.
func HTTPStatus(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

type Error struct {
	code    Code
	message string
	fields  map[string][]string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// Validation builds a validation error for a single field.
func Validation(field, message string) *Error {
	return New(CodeValidation, message).WithField(field, message)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Fields() map[string][]string {
	if e == nil {
		return nil
	}
	return e.fields
}

func (e *Error) WithField(field, msg string) *Error {
	if e == nil {
		return nil
	}
	if e.fields == nil {
		e.fields = map[string][]string{}
	}
	e.fields[field] = append(e.fields[field], msg)
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if e := As(err); e != nil {
		return e.code == code
	}
	return false
}
