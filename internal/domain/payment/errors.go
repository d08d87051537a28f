// internal/domain/payment/errors.go
package payment

import "errors"

var (
	// ErrDeclined is returned when the provider refuses the charge.
	// Declines are final for the attempted method; callers may retry
	// with a different one.
	ErrDeclined = errors.New("payment declined")

	// ErrProviderUnavailable is returned for transport failures and
	// provider 5xx responses. Safe to retry with the same idempotency key.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrAuthorizationNotFound is returned when capturing or voiding a
	// hold the provider does not know about
	ErrAuthorizationNotFound = errors.New("authorization not found")
)
