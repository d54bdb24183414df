package domain

import "errors"

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a request credential cannot be resolved to a user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidStep indicates a step index that is not a positive integer.
	ErrInvalidStep = errors.New("invalid step")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
)

// ErrMissingFields rejects a register or login request with a blank field.
var ErrMissingFields = Invalid("All fields are required")

// ValidationError carries a client-facing message for rejected input and
// matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError with the given message.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}
