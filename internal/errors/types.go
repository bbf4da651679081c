package errors

import (
	"fmt"
	"strings"
)

// MimicError defines the base interface for all mimic errors
type MimicError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Target resolution errors
	UnknownTypeCode
	TypeIsEnumerationCode
	TypeIsSealedCode

	// Method list errors
	InvalidMethodNameCode
	DuplicateMethodCode
	ReservedMethodNameCode

	// Naming errors
	NameInUseCode

	// Pipeline errors
	SyntaxErrorCode
	ScanErrorCode
	GenerationErrorCode
	TemplateErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode

	// Generic invariant violations
	RuntimeErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case UnknownTypeCode:
		return "UnknownType"
	case TypeIsEnumerationCode:
		return "TypeIsEnumeration"
	case TypeIsSealedCode:
		return "TypeIsSealed"
	case InvalidMethodNameCode:
		return "InvalidMethodName"
	case DuplicateMethodCode:
		return "DuplicateMethod"
	case ReservedMethodNameCode:
		return "ReservedMethodName"
	case NameInUseCode:
		return "NameInUse"
	case SyntaxErrorCode:
		return "SyntaxError"
	case ScanErrorCode:
		return "ScanError"
	case GenerationErrorCode:
		return "GenerationError"
	case TemplateErrorCode:
		return "TemplateError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case RuntimeErrorCode:
		return "RuntimeError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where an error originated in scanned source
type SourceLocation struct {
	File string // file path where the error occurred
	Line int    // line number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the MimicError interface
type BaseError struct {
	Code    ErrorCode      // type of error
	Message string         // error message
	Loc     SourceLocation // where the error occurred
	Cause   error          // underlying error cause
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Loc.IsEmpty() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), e.Message)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the source location where the error occurred
func (e *BaseError) Location() SourceLocation {
	return e.Loc
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// IsCode reports whether err (or anything it wraps) carries the given code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if me, ok := err.(MimicError); ok && me.ErrorCode() == code {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// MultipleErrors represents multiple errors collected together
type MultipleErrors struct {
	Errors []MimicError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err MimicError) {
	e.Errors = append(e.Errors, err)
}

// IsEmpty returns true if there are no errors
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Count returns the number of errors
func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// Unwrap returns the first underlying error for error inspection
func (e *MultipleErrors) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}

// NewMultipleErrors creates a new MultipleErrors collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{
		Errors: make([]MimicError, 0),
	}
}
