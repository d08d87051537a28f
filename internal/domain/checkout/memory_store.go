// internal/domain/checkout/memory_store.go
package checkout

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store in memory with the same compare-and-swap
// semantics as the Redis store, for tests and single-node development
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uint]memoryEntry
}

type memoryEntry struct {
	session   CheckoutSession
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory checkout session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uint]memoryEntry),
	}
}

// Get retrieves the checkout session for a cart
func (s *MemoryStore) Get(ctx context.Context, cartID uint) (*CheckoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.sessions[cartID]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, ErrCheckoutNotFound
	}

	return entry.session.clone(), nil
}

// Save stores the session if its stored Version still matches
// expectedVersion
func (s *MemoryStore) Save(ctx context.Context, session *CheckoutSession, expectedVersion int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[session.CartID]
	if exists && time.Now().After(entry.expiresAt) {
		delete(s.sessions, session.CartID)
		exists = false
	}

	if exists {
		if expectedVersion == 0 || entry.session.Version != expectedVersion {
			return ErrConcurrentModification
		}
	} else if expectedVersion != 0 {
		return ErrConcurrentModification
	}

	session.Version = expectedVersion + 1
	session.UpdatedAt = time.Now()

	s.sessions[session.CartID] = memoryEntry{
		session:   *session.clone(),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes the checkout session for a cart
func (s *MemoryStore) Delete(ctx context.Context, cartID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, cartID)
	return nil
}
