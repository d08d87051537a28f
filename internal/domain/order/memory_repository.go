// internal/domain/order/memory_repository.go
package order

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository implements Repository in memory, for tests and
// single-node development runs. It enforces the same uniqueness rules
// as the SQL schema.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[uint]*Order
	nextID uint
}

// NewMemoryRepository creates a new in-memory order repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[uint]*Order),
		nextID: 1,
	}
}

// Create inserts the order, assigning IDs the way the database would
func (r *MemoryRepository) Create(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return ErrDuplicateOrderNumber
		}
		if existing.CartID == o.CartID {
			return ErrDuplicateCart
		}
	}

	o.ID = r.nextID
	r.nextID++
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		o.Items[i].ID = uint(i + 1)
		o.Items[i].OrderID = o.ID
		o.Items[i].CreatedAt = now
	}
	for i := range o.StatusHistory {
		o.StatusHistory[i].ID = uint(i + 1)
		o.StatusHistory[i].OrderID = o.ID
	}

	r.orders[o.ID] = cloneOrder(o)
	return nil
}

// GetByID retrieves an order
func (r *MemoryRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, exists := r.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// GetByNumber retrieves an order by its order number
func (r *MemoryRepository) GetByNumber(ctx context.Context, number string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrOrderNotFound
}

// GetByCartID retrieves the order a cart produced, if any
func (r *MemoryRepository) GetByCartID(ctx context.Context, cartID uint) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.CartID == cartID {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrOrderNotFound
}

// FindByEmailAndNumber is the guest lookup: both parts must match
func (r *MemoryRepository) FindByEmailAndNumber(ctx context.Context, email, number string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.OrderNumber == number && strings.EqualFold(o.Email, email) {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrOrderNotFound
}

// ListByCustomer returns a page of the customer's orders, newest first
func (r *MemoryRepository) ListByCustomer(ctx context.Context, customerID uint, p *Pagination) ([]Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Order
	for _, o := range r.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			matched = append(matched, o)
		}
	}
	return paginate(matched, p)
}

// List returns a page of all orders, newest first
func (r *MemoryRepository) List(ctx context.Context, p *Pagination) ([]Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*Order, 0, len(r.orders))
	for _, o := range r.orders {
		matched = append(matched, o)
	}
	return paginate(matched, p)
}

func paginate(matched []*Order, p *Pagination) ([]Order, int64, error) {
	p.Normalize()
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := p.Offset()
	if start >= len(matched) {
		return []Order{}, total, nil
	}
	end := start + p.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]Order, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, *cloneOrder(o))
	}
	return page, total, nil
}

// UpdateStatus persists the new status with its history row
func (r *MemoryRepository) UpdateStatus(ctx context.Context, o *Order, history *OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.orders[o.ID]
	if !exists {
		return ErrOrderNotFound
	}

	stored.Status = o.Status
	stored.ShippedAt = o.ShippedAt
	stored.DeliveredAt = o.DeliveredAt
	stored.UpdatedAt = time.Now()

	h := *history
	h.ID = uint(len(stored.StatusHistory) + 1)
	h.OrderID = stored.ID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	stored.StatusHistory = append(stored.StatusHistory, h)
	return nil
}

// AttachCustomer binds a guest order to an account
func (r *MemoryRepository) AttachCustomer(ctx context.Context, orderID, customerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.orders[orderID]
	if !exists {
		return ErrOrderNotFound
	}
	if stored.CustomerID != nil {
		return ErrOrderAlreadyClaimed
	}
	id := customerID
	stored.CustomerID = &id
	stored.UpdatedAt = time.Now()
	return nil
}

func cloneOrder(o *Order) *Order {
	copied := *o
	if o.CustomerID != nil {
		id := *o.CustomerID
		copied.CustomerID = &id
	}
	copied.Items = make([]OrderItem, len(o.Items))
	copy(copied.Items, o.Items)
	copied.StatusHistory = make([]OrderStatusHistory, len(o.StatusHistory))
	copy(copied.StatusHistory, o.StatusHistory)
	return &copied
}
