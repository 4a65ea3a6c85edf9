// Package apperr defines the error taxonomy shared by services and handlers.
// Services wrap these sentinels with context; handlers translate them to HTTP
// statuses with errors.Is. None of the messages reveal storage detail — a
// revoked token and a token that never existed produce the same error, and a
// failed login never says whether the email was known.
package apperr

import "errors"

var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUnauthenticated is returned when a request carries no usable token.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when an authenticated user acts on a resource
	// they do not own.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
