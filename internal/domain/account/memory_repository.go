// internal/domain/account/memory_repository.go
package account

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepository implements Repository in memory, for tests and
// single-node development runs. It enforces the same case-insensitive
// email uniqueness as the SQL schema.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[uint]*Account
	byEmail  map[string]uint
	nextID   uint
}

// NewMemoryRepository creates a new in-memory account repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[uint]*Account),
		byEmail:  make(map[string]uint),
		nextID:   1,
	}
}

// Create inserts the account, assigning IDs the way the database would
func (r *MemoryRepository) Create(ctx context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Mirror the BeforeCreate hook that GORM would run
	a.Email = strings.ToLower(a.Email)
	if _, exists := r.byEmail[a.Email]; exists {
		return ErrEmailTaken
	}

	a.ID = r.nextID
	r.nextID++
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	r.accounts[a.ID] = cloneAccount(a)
	r.byEmail[a.Email] = a.ID
	return nil
}

// GetByID retrieves an account by primary key
func (r *MemoryRepository) GetByID(ctx context.Context, id uint) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.accounts[id]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// GetByEmail retrieves an account by email, case-insensitively
func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(r.accounts[id]), nil
}

// Update persists changes to an existing account
func (r *MemoryRepository) Update(ctx context.Context, a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.accounts[a.ID]
	if !exists {
		return ErrAccountNotFound
	}
	if stored.Email != a.Email {
		delete(r.byEmail, stored.Email)
		r.byEmail[a.Email] = a.ID
	}
	a.UpdatedAt = time.Now()
	r.accounts[a.ID] = cloneAccount(a)
	return nil
}

func cloneAccount(a *Account) *Account {
	c := *a
	if a.Permissions != nil {
		c.Permissions = append([]string(nil), a.Permissions...)
	}
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}
