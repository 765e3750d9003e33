package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// API errors
	ErrAPIFailure    = errors.New("api request failed")
	ErrBadResponse   = errors.New("malformed api response")
	ErrRequestFailed = errors.New("request could not be sent")

	// Session errors
	ErrNoSession       = errors.New("no persisted session")
	ErrSnapshotInvalid = errors.New("persisted snapshot is invalid")
)

// Lifecycle errors
var (
	ErrEventEnded = errors.New("event has ended")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewAPIFailureError wraps a failure reported by the backend, keeping the
// server-provided message for the UI when present.
func NewAPIFailureError(message string) error {
	if message == "" {
		message = "the request could not be completed"
	}
	return &CustomError{
		Err:     ErrAPIFailure,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
