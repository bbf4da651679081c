package mimic

import (
	"errors"
	"fmt"
)

// Reason classifies runtime double errors
type Reason int

const (
	// ReasonUnknownType means no double was generated for the target
	ReasonUnknownType Reason = iota

	// ReasonInvalidMethodName means a requested method name is not a
	// valid identifier
	ReasonInvalidMethodName

	// ReasonDuplicateMethod means a method name was requested twice, or
	// two intersected interfaces declare the same method
	ReasonDuplicateMethod

	// ReasonReservedMethodName means a requested method collides with the
	// Mimic accessor
	ReasonReservedMethodName

	// ReasonNameInUse means the requested double name is already taken
	ReasonNameInUse

	// ReasonConstructorFailure means the target's constructor was invoked
	// and failed
	ReasonConstructorFailure

	// ReasonBadIntersection means an interface intersection request was
	// malformed
	ReasonBadIntersection
)

// String returns a short label for the reason
func (r Reason) String() string {
	switch r {
	case ReasonUnknownType:
		return "unknown type"
	case ReasonInvalidMethodName:
		return "invalid method name"
	case ReasonDuplicateMethod:
		return "duplicate method"
	case ReasonReservedMethodName:
		return "reserved method name"
	case ReasonNameInUse:
		return "name in use"
	case ReasonConstructorFailure:
		return "constructor failure"
	case ReasonBadIntersection:
		return "bad intersection"
	default:
		return "unknown reason"
	}
}

// DoubleError is the error type returned by the runtime double API
type DoubleError struct {
	Reason  Reason
	Target  string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DoubleError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Reason, e.Message)
	if e.Target != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Reason, e.Target, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, if any
func (e *DoubleError) Unwrap() error { return e.Cause }

// NewDoubleError creates a new DoubleError for a target
func NewDoubleError(reason Reason, target, format string, args ...any) *DoubleError {
	return &DoubleError{
		Reason:  reason,
		Target:  target,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsReason reports whether err is a DoubleError with the given reason
func IsReason(err error, reason Reason) bool {
	var doubleErr *DoubleError
	if errors.As(err, &doubleErr) {
		return doubleErr.Reason == reason
	}
	return false
}
