package types

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the bounded failure taxonomy of the booking
// coordinator. Services wrap these with operation context; the handler
// layer maps them to HTTP status classes.
var (
	// ErrValidation marks malformed input that never reached the store
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced entity that does not exist
	ErrNotFound = errors.New("not found")
	// ErrPrecondition marks an entity that exists but is not in a state
	// the operation requires
	ErrPrecondition = errors.New("precondition failed")
	// ErrPersistence marks a store I/O or transaction failure
	ErrPersistence = errors.New("persistence error")
	// ErrDispatchUnavailable marks an execution-engine handle that is not
	// ready yet
	ErrDispatchUnavailable = errors.New("dispatch unavailable")
	// ErrDispatch marks a submission the engine rejected
	ErrDispatch = errors.New("dispatch error")
)

// ValidationErrorf wraps ErrValidation with a formatted description
func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundErrorf wraps ErrNotFound with a formatted description
func NotFoundErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// PreconditionErrorf wraps ErrPrecondition with a formatted description
func PreconditionErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// PersistenceErrorf wraps ErrPersistence with a formatted description and
// the underlying store error
func PersistenceErrorf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, fmt.Sprintf(format, args...), err)
}
