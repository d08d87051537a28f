// internal/domain/cart/repository.go
package cart

import (
	"context"
	"time"
)

// Repository persists carts. Update applies optimistic locking on the
// cart's Version: when the stored version differs, ErrVersionConflict is
// returned and nothing is written.
type Repository interface {
	Create(ctx context.Context, cart *Cart) error
	GetByID(ctx context.Context, id uint) (*Cart, error)

	// ActiveBySession returns the single active cart bound to the session,
	// or ErrCartNotFound
	ActiveBySession(ctx context.Context, sessionID string) (*Cart, error)

	// ActiveByCustomer returns the single active cart bound to the customer,
	// or ErrCartNotFound
	ActiveByCustomer(ctx context.Context, customerID uint) (*Cart, error)

	// Update persists one or more carts atomically, bumping each Version.
	// Passing multiple carts keeps merge results consistent under failure.
	Update(ctx context.Context, carts ...*Cart) error

	// ExpireStale marks up to limit active carts whose expiry has passed
	// as abandoned, returning how many were swept. Safe to call repeatedly
	// and from multiple nodes.
	ExpireStale(ctx context.Context, now time.Time, limit int) (int64, error)
}
