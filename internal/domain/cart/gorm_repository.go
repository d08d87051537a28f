// internal/domain/cart/gorm_repository.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormRepository implements Repository on PostgreSQL via GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM-backed cart repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts a new cart with its lines
func (r *GormRepository) Create(ctx context.Context, cart *Cart) error {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// GetByID retrieves a cart with its lines
func (r *GormRepository) GetByID(ctx context.Context, id uint) (*Cart, error) {
	var cart Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&cart, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

// ActiveBySession returns the active cart bound to the session
func (r *GormRepository) ActiveBySession(ctx context.Context, sessionID string) (*Cart, error) {
	var cart Cart
	err := r.db.WithContext(ctx).Preload("Items").
		Where("session_id = ? AND status = ?", sessionID, CartStatusActive).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session cart: %w", err)
	}
	return &cart, nil
}

// ActiveByCustomer returns the active cart bound to the customer
func (r *GormRepository) ActiveByCustomer(ctx context.Context, customerID uint) (*Cart, error) {
	var cart Cart
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ? AND status = ?", customerID, CartStatusActive).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer cart: %w", err)
	}
	return &cart, nil
}

// Update persists carts in one transaction, guarded by their versions
func (r *GormRepository) Update(ctx context.Context, carts ...*Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, cart := range carts {
			if err := r.updateOne(tx, cart); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) updateOne(tx *gorm.DB, cart *Cart) error {
	currentVersion := cart.Version

	result := tx.Model(&Cart{}).
		Where("id = ? AND version = ?", cart.ID, currentVersion).
		Updates(map[string]interface{}{
			"session_id":  cart.SessionID,
			"customer_id": cart.CustomerID,
			"email":       cart.Email,
			"status":      cart.Status,
			"version":     currentVersion + 1,
			"expires_at":  cart.ExpiresAt,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	cart.Version = currentVersion + 1

	// Replace lines wholesale; the version guard above serializes writers
	// and carts stay small
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
	}
	if len(cart.Items) > 0 {
		if err := tx.Create(&cart.Items).Error; err != nil {
			return fmt.Errorf("failed to write cart lines: %w", err)
		}
	}

	return nil
}

// ExpireStale abandons active carts whose expiry has passed
func (r *GormRepository) ExpireStale(ctx context.Context, now time.Time, limit int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE carts SET status = ?, version = version + 1, updated_at = ?
		WHERE id IN (
			SELECT id FROM carts WHERE status = ? AND expires_at < ? LIMIT ?
		)`,
		CartStatusAbandoned, now, CartStatusActive, now, limit)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire carts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
