// Package login provides HTTP handlers for back-office authentication.
package login

import "errors"

var (
	// ErrInvalidFormData is returned when the submitted login form cannot be parsed.
	ErrInvalidFormData = errors.New("invalid form data")

	// ErrInvalidCredentials is shown for unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled is shown when the account exists but was deactivated.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrInternalServerError is returned for unexpected failures during the login
	// process.
	ErrInternalServerError = errors.New("internal server error")
)
