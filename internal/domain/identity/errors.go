// internal/domain/identity/errors.go
package identity

import "errors"

var (
	// ErrUnauthenticated is returned when no valid credential accompanies
	// a request that requires one
	ErrUnauthenticated = errors.New("authentication required")

	// ErrScopeMismatch is returned when a valid token carries the wrong
	// scope for the operation, e.g. a customer token on an admin endpoint
	ErrScopeMismatch = errors.New("token scope does not permit this operation")

	// ErrInsufficientPermissions is returned when an admin principal lacks
	// the specific permission an operation requires
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
