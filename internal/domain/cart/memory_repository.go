// internal/domain/cart/memory_repository.go
package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository implements Repository with in-memory storage, for
// tests and single-node development runs. Its version semantics mirror
// the GORM repository exactly.
type MemoryRepository struct {
	mu     sync.Mutex
	carts  map[uint]*Cart
	nextID uint
}

// NewMemoryRepository creates a new in-memory cart repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts:  make(map[uint]*Cart),
		nextID: 1,
	}
}

// Create inserts a new cart with its lines
func (r *MemoryRepository) Create(ctx context.Context, cart *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart.ID = r.nextID
	r.nextID++

	now := time.Now().UTC()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
	}

	r.carts[cart.ID] = copyCart(cart)
	return nil
}

// GetByID retrieves a cart with its lines
func (r *MemoryRepository) GetByID(ctx context.Context, id uint) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.carts[id]
	if !exists {
		return nil, ErrCartNotFound
	}
	return copyCart(stored), nil
}

// ActiveBySession returns the active cart bound to the session
func (r *MemoryRepository) ActiveBySession(ctx context.Context, sessionID string) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.carts {
		if stored.Status == CartStatusActive && stored.SessionID != nil && *stored.SessionID == sessionID {
			return copyCart(stored), nil
		}
	}
	return nil, ErrCartNotFound
}

// ActiveByCustomer returns the active cart bound to the customer
func (r *MemoryRepository) ActiveByCustomer(ctx context.Context, customerID uint) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.carts {
		if stored.Status == CartStatusActive && stored.CustomerID != nil && *stored.CustomerID == customerID {
			return copyCart(stored), nil
		}
	}
	return nil, ErrCartNotFound
}

// Update persists carts atomically, guarded by their versions
func (r *MemoryRepository) Update(ctx context.Context, carts ...*Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate every version before writing anything
	for _, cart := range carts {
		stored, exists := r.carts[cart.ID]
		if !exists {
			return ErrCartNotFound
		}
		if stored.Version != cart.Version {
			return ErrVersionConflict
		}
	}

	now := time.Now().UTC()
	for _, cart := range carts {
		cart.Version++
		cart.UpdatedAt = now
		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
		}
		r.carts[cart.ID] = copyCart(cart)
	}
	return nil
}

// ExpireStale abandons active carts whose expiry has passed
func (r *MemoryRepository) ExpireStale(ctx context.Context, now time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept int64
	for _, stored := range r.carts {
		if swept >= int64(limit) {
			break
		}
		if stored.Status == CartStatusActive && now.After(stored.ExpiresAt) {
			stored.Status = CartStatusAbandoned
			stored.Version++
			stored.UpdatedAt = now
			swept++
		}
	}
	return swept, nil
}

func copyCart(cart *Cart) *Cart {
	copied := *cart
	copied.Items = make([]CartItem, len(cart.Items))
	copy(copied.Items, cart.Items)
	return &copied
}
