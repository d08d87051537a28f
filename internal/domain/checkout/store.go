// internal/domain/checkout/store.go
package checkout

import (
	"context"
	"time"
)

// Store persists checkout sessions keyed by cart ID.
//
// Save is a compare-and-swap: expectedVersion is the Version the caller
// loaded the session with, or zero when the session must not exist yet.
// On success the store bumps session.Version and refreshes the TTL; a
// failed swap returns ErrConcurrentModification and writes nothing.
type Store interface {
	Get(ctx context.Context, cartID uint) (*CheckoutSession, error)
	Save(ctx context.Context, session *CheckoutSession, expectedVersion int, ttl time.Duration) error
	Delete(ctx context.Context, cartID uint) error
}
