package leads

import "errors"

var (
	// ErrMissingName is returned when the name is empty
	ErrMissingName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is empty or not addr-shaped
	ErrInvalidEmail = errors.New("a valid email is required")

	// ErrMissingPhone is returned when the phone is empty
	ErrMissingPhone = errors.New("phone is required")
)
