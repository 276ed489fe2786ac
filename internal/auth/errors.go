package auth

import "errors"

var (
	// ErrValidation is returned when a registration is missing a required field.
	ErrValidation = errors.New("missing registration field")

	// ErrPasswordTooLong is returned for a password bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email address already taken")

	// ErrMissingCredentials is returned when a login lacks the email or password.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)
