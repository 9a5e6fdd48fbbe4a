package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Engine errors. These abort the current operation in full.
	ErrParse ErrorCode = "PARSE_ERROR"
	ErrApply ErrorCode = "APPLY_ERROR"

	// Pack declaration errors. The offending pack is skipped.
	ErrSpec ErrorCode = "SPEC_ERROR"

	// Collaborator errors. Recoverable and retryable.
	ErrFetch ErrorCode = "FETCH_ERROR"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Project errors
	ErrNoProject ErrorCode = "NO_PROJECT"
	ErrTemplate  ErrorCode = "TEMPLATE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// BpackError represents a structured error with code and details
type BpackError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BpackError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BpackError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BpackError) Is(target error) bool {
	var targetErr *BpackError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BpackError with the given code and message
func New(code ErrorCode, message string) *BpackError {
	return &BpackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BpackError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BpackError {
	return &BpackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BpackError.
// A nil err yields a nil *BpackError; do not return it directly as an error.
func Wrap(err error, code ErrorCode, message string) *BpackError {
	if err == nil {
		return nil
	}
	return &BpackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BpackError {
	if err == nil {
		return nil
	}
	return &BpackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BpackError) WithDetail(key string, value interface{}) *BpackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *BpackError) WithDetails(details map[string]interface{}) *BpackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code anywhere in its
// chain, including every branch of a joined error
func IsErrorCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *BpackError:
		if e == nil {
			return false
		}
		if e.Code == code {
			return true
		}
		return IsErrorCode(e.Wrapped, code)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if IsErrorCode(inner, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsErrorCode(e.Unwrap(), code)
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if not a BpackError
func GetErrorCode(err error) ErrorCode {
	var bpErr *BpackError
	if errors.As(err, &bpErr) {
		return bpErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BpackError
func GetErrorDetails(err error) map[string]interface{} {
	var bpErr *BpackError
	if errors.As(err, &bpErr) {
		return bpErr.Details
	}
	return nil
}

// IsRecoverable reports whether err is a collaborator failure the
// interactive session can show and retry instead of aborting.
func IsRecoverable(err error) bool {
	return IsErrorCode(err, ErrFetch) || IsErrorCode(err, ErrNotFound)
}

// Join combines per-item failures into one error: nil for none, the error
// itself for one. Nil entries are dropped.
func Join(errs ...error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return errors.Join(kept...)
}
