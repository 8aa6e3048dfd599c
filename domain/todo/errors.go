package todo

import (
	"errors"
	"fmt"
)

// Sentinel errors for todo operations.
var (
	// ErrValidation is returned when input is missing or holds an invalid value.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no todo has the requested id.
	ErrNotFound = errors.New("todo not found")

	// ErrStoreUnavailable is returned when the store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error codes used when errors cross the service bus.
const (
	CodeValidation       = "validation"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// Error carries a client-facing message and unwraps to one of the sentinels.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation builds an ErrValidation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds the error returned for an unknown id.
func NotFound() error {
	return &Error{Kind: ErrNotFound, Message: "Todo not found"}
}

// Unavailable wraps cause so that it matches ErrStoreUnavailable.
func Unavailable(cause error) error {
	if errors.Is(cause, ErrStoreUnavailable) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, cause)
}

// Code classifies err for transport.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	}
	return CodeInternal
}

// FromCode rebuilds an error from its transported code and message.
func FromCode(code, message string) error {
	switch code {
	case "":
		return nil
	case CodeValidation:
		return &Error{Kind: ErrValidation, Message: message}
	case CodeNotFound:
		return &Error{Kind: ErrNotFound, Message: message}
	case CodeStoreUnavailable:
		return &Error{Kind: ErrStoreUnavailable, Message: message}
	}
	return errors.New(message)
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
