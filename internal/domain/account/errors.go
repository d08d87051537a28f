// internal/domain/account/errors.go
package account

import "errors"

var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailTaken is returned when creating an account with an email
	// that already has one.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for every login failure. The
	// message never reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordMismatch is returned when the password confirmation
	// does not match the password.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidRefreshToken is returned when refreshing with a token
	// that is expired, malformed, of the wrong type, or issued to an
	// account that no longer signs in.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
