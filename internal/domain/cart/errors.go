// internal/domain/cart/errors.go
package cart

import "errors"

var (
	// ErrCartNotFound is returned when no cart exists for the lookup
	ErrCartNotFound = errors.New("cart not found")

	// ErrItemNotFound is returned when the addressed line is not in the cart
	ErrItemNotFound = errors.New("item not found in cart")

	// ErrInvalidQuantity is returned for negative or otherwise malformed quantities
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrMaxQuantityExceeded is returned when a line would exceed its
	// per-line quantity limit
	ErrMaxQuantityExceeded = errors.New("maximum quantity per item exceeded")

	// ErrCartNotActive is returned when mutating a cart that is mid-checkout,
	// completed, or abandoned
	ErrCartNotActive = errors.New("cart is not active")

	// ErrEmptyCart is returned when an operation requires at least one line
	ErrEmptyCart = errors.New("cart is empty")

	// ErrCartNotInCheckout is returned when completing or releasing a cart
	// that is not in the checkout_in_progress state
	ErrCartNotInCheckout = errors.New("cart is not in checkout")

	// ErrVersionConflict is returned by repositories when another writer
	// updated the cart first. Item operations retry on it internally.
	ErrVersionConflict = errors.New("cart was modified concurrently")
)
