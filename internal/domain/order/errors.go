// internal/domain/order/errors.go
package order

import "errors"

var (
	// ErrOrderNotFound is returned when no order matches the lookup.
	// Guest lookups return it for both wrong email and wrong number, so
	// existence is never revealed.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidStatusTransition is returned when a status update is
	// not in the transition table
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrDuplicateOrderNumber is returned by repositories when the
	// unique index rejects an allocated number; the materializer
	// allocates a fresh one and retries
	ErrDuplicateOrderNumber = errors.New("order number already exists")

	// ErrDuplicateCart is returned when an order for the cart already
	// exists; completion replays resolve to that order
	ErrDuplicateCart = errors.New("order for cart already exists")

	// ErrClaimNotFound is returned when an account-claim token is
	// unknown, already redeemed, or expired
	ErrClaimNotFound = errors.New("claim token not found")

	// ErrOrderAlreadyClaimed is returned when attaching a customer to an
	// order that has one
	ErrOrderAlreadyClaimed = errors.New("order already belongs to an account")
)
