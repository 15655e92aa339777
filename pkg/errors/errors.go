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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Filesystem errors
	ErrIOFailure ErrorCode = "IO_FAILURE"
	ErrDirCreate ErrorCode = "DIR_CREATE"
	ErrFileCopy  ErrorCode = "FILE_COPY"

	// Manifest errors
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"

	// External collaborator errors
	ErrExternalTool ErrorCode = "EXTERNAL_TOOL"
	ErrNetwork      ErrorCode = "NETWORK"
)

// CaelumError represents a structured error with code and details
type CaelumError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CaelumError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CaelumError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CaelumError) Is(target error) bool {
	var targetErr *CaelumError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CaelumError with the given code and message
func New(code ErrorCode, message string) *CaelumError {
	return &CaelumError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CaelumError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CaelumError {
	return &CaelumError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CaelumError
func Wrap(err error, code ErrorCode, message string) *CaelumError {
	if err == nil {
		return nil
	}
	return &CaelumError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CaelumError {
	if err == nil {
		return nil
	}
	return &CaelumError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CaelumError) WithDetail(key string, value interface{}) *CaelumError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var caelumErr *CaelumError
	if errors.As(err, &caelumErr) {
		return caelumErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CaelumError
func GetErrorCode(err error) ErrorCode {
	var caelumErr *CaelumError
	if errors.As(err, &caelumErr) {
		return caelumErr.Code
	}
	return ErrUnknown
}
