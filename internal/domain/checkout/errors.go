// internal/domain/checkout/errors.go
package checkout

import "errors"

var (
	// ErrCheckoutNotFound is returned when no checkout session exists
	// for the cart
	ErrCheckoutNotFound = errors.New("checkout session not found")

	// ErrInvalidAddress is returned for syntactically invalid addresses
	ErrInvalidAddress = errors.New("invalid address")

	// ErrShippingMethodUnavailable is returned when the chosen method is
	// not in the set currently quoted for the address
	ErrShippingMethodUnavailable = errors.New("shipping method unavailable")

	// ErrInvalidTransition is returned when an operation is called from
	// a state it cannot run in
	ErrInvalidTransition = errors.New("invalid checkout state transition")

	// ErrConcurrentModification is returned when another writer moved
	// the session first. The caller should re-fetch; transitions are
	// never retried automatically.
	ErrConcurrentModification = errors.New("checkout session was modified concurrently")

	// ErrServiceUnavailable is returned after bounded retries against a
	// transiently failing provider are exhausted
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// ErrReconciliationRequired is returned when a compensating reversal
	// itself failed and a human has to reconcile the payment
	ErrReconciliationRequired = errors.New("payment requires manual reconciliation")
)
