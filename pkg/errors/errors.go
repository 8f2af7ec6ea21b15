package errors

import (
	"errors"
	"fmt"
)

// Error represents a typed domain error reported back to the caller.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones and wraps of a
// predefined error still match it through errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrDuplicateLogin       = New("DUPLICATE_LOGIN", "login already exists")
	ErrInvalidCredentials   = New("INVALID_CREDENTIALS", "invalid login or password")
	ErrStudentNotFound      = New("STUDENT_NOT_FOUND", "student not found")
	ErrTrainerNotFound      = New("TRAINER_NOT_FOUND", "trainer not found")
	ErrEmailNotFound        = New("EMAIL_NOT_FOUND", "email not found")
	ErrPasswordMismatch     = New("PASSWORD_MISMATCH", "passwords do not match")
	ErrIndexOutOfRange      = New("INDEX_OUT_OF_RANGE", "index out of range")
	ErrFirstAccessRequired  = New("FIRST_ACCESS_REQUIRED", "password not set yet")
	ErrFirstAccessCompleted = New("FIRST_ACCESS_COMPLETED", "password already set")
	ErrInvalidTransition    = New("INVALID_TRANSITION", "operation not allowed in current session state")
	ErrInvalidSession       = New("INVALID_SESSION", "invalid session token")
	ErrValidation           = New("VALIDATION_ERROR", "validation failed")
	ErrInternal             = New("INTERNAL_ERROR", "internal error")
	ErrUnitNotFound         = New("UNIT_NOT_FOUND", "storage unit not found")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
