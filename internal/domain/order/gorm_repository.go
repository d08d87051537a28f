// internal/domain/order/gorm_repository.go
package order

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

// NewGormRepository creates a new GORM-backed order repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts the order with its items and initial history in one
// transaction. GORM cascades the associations from the parent insert.
func (r *GormRepository) Create(ctx context.Context, o *Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return mapDuplicate(err)
	}
	return nil
}

// mapDuplicate translates unique-index violations into the sentinels the
// materializer retries on
func mapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || errors.Is(err, gorm.ErrDuplicatedKey) {
		switch {
		case strings.Contains(msg, "cart_id"):
			return ErrDuplicateCart
		case strings.Contains(msg, "order_number"):
			return ErrDuplicateOrderNumber
		}
		return ErrDuplicateOrderNumber
	}
	return fmt.Errorf("failed to create order: %w", err)
}

// GetByID retrieves an order with its lines and history
func (r *GormRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("StatusHistory").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// GetByNumber retrieves an order by its order number
func (r *GormRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("StatusHistory").
		Where("order_number = ?", number).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}
	return &o, nil
}

// GetByCartID retrieves the order a cart produced, if any
func (r *GormRepository) GetByCartID(ctx context.Context, cartID uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("StatusHistory").
		Where("cart_id = ?", cartID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by cart: %w", err)
	}
	return &o, nil
}

// FindByEmailAndNumber is the guest lookup: both parts must match
func (r *GormRepository) FindByEmailAndNumber(ctx context.Context, email, number string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("StatusHistory").
		Where("LOWER(email) = ? AND order_number = ?", strings.ToLower(email), number).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	return &o, nil
}

// ListByCustomer returns a page of the customer's orders, newest first
func (r *GormRepository) ListByCustomer(ctx context.Context, customerID uint, p *Pagination) ([]Order, int64, error) {
	p.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&Order{}).
		Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// List returns a page of all orders, newest first
func (r *GormRepository) List(ctx context.Context, p *Pagination) ([]Order, int64, error) {
	p.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus persists the new status with its history row in one
// transaction
func (r *GormRepository) UpdateStatus(ctx context.Context, o *Order, history *OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       o.Status,
			"shipped_at":   o.ShippedAt,
			"delivered_at": o.DeliveredAt,
		}
		if err := tx.Model(&Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
}

// AttachCustomer binds a guest order to an account; it refuses to steal
// an order that already has one
func (r *GormRepository) AttachCustomer(ctx context.Context, orderID, customerID uint) error {
	result := r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND customer_id IS NULL", orderID).
		Update("customer_id", customerID)
	if result.Error != nil {
		return fmt.Errorf("failed to attach customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var o Order
		if err := r.db.WithContext(ctx).First(&o, orderID).Error; err != nil {
			return ErrOrderNotFound
		}
		return ErrOrderAlreadyClaimed
	}
	return nil
}
