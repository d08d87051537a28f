// internal/domain/order/repository.go
package order

import "context"

// Pagination carries list paging parameters and defaults
type Pagination struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps paging parameters to sane bounds
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset returns the row offset for the current page
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Repository persists orders. Create inserts the order, its items, and
// its initial status history atomically; unique-index violations map to
// ErrDuplicateOrderNumber / ErrDuplicateCart.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	GetByCartID(ctx context.Context, cartID uint) (*Order, error)
	FindByEmailAndNumber(ctx context.Context, email, number string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID uint, p *Pagination) ([]Order, int64, error)
	List(ctx context.Context, p *Pagination) ([]Order, int64, error)

	// UpdateStatus persists a status change and appends its history row
	// in one transaction
	UpdateStatus(ctx context.Context, o *Order, history *OrderStatusHistory) error

	// AttachCustomer binds a guest order to an account
	AttachCustomer(ctx context.Context, orderID, customerID uint) error
}
