// internal/domain/account/gorm_repository.go
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// GormRepository implements Repository on PostgreSQL via GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-backed account repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts the account
func (r *GormRepository) Create(ctx context.Context, a *Account) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by primary key
func (r *GormRepository) GetByID(ctx context.Context, id uint) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// GetByEmail retrieves an account by email. Emails are stored lowercase
// so the lookup folds case on both sides.
func (r *GormRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var a Account
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &a, nil
}

// Update persists changes to an existing account
func (r *GormRepository) Update(ctx context.Context, a *Account) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}
