// internal/domain/account/repository.go
package account

import "context"

// Repository abstracts account persistence
type Repository interface {
	// Create inserts the account. An email collision returns
	// ErrEmailTaken; emails are unique case-insensitively.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by primary key.
	GetByID(ctx context.Context, id uint) (*Account, error)

	// GetByEmail retrieves an account by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update persists changes to an existing account.
	Update(ctx context.Context, account *Account) error
}
