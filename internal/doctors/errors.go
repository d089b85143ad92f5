package doctors

import "errors"

var (
	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrMissingEmail is returned when the email is missing
	ErrMissingEmail = errors.New("email is required")

	// ErrDoctorNotFound is returned when a doctor is not found
	ErrDoctorNotFound = errors.New("doctor not found")
)
