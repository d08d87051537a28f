// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartStatus represents the lifecycle state of a cart
type CartStatus string

const (
	CartStatusActive             CartStatus = "active"
	CartStatusCheckoutInProgress CartStatus = "checkout_in_progress"
	CartStatusCompleted          CartStatus = "completed"
	CartStatusAbandoned          CartStatus = "abandoned"
)

// Cart represents a shopping cart bound to a session, a customer, or
// both after a merge. Version guards concurrent writers.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SessionID  *string    `gorm:"size:64;index" json:"session_id,omitempty"`
	CustomerID *uint      `gorm:"index" json:"customer_id,omitempty"`
	Email      *string    `gorm:"size:255" json:"email,omitempty"`
	Status     CartStatus `gorm:"size:32;not null;default:'active';index" json:"status"`
	Version    int        `gorm:"not null;default:1" json:"version"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// CartItem represents a line in a cart. UnitPrice and Name are snapshots
// taken when the line was added; they change only through an explicit
// reprice.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID *uint     `gorm:"index" json:"variant_id,omitempty"`
	Name      string    `gorm:"size:255" json:"name"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int   `json:"item_count"`     // Number of unique lines
	TotalQuantity int   `json:"total_quantity"` // Sum of all quantities
	Subtotal      int64 `json:"subtotal"`       // Sum of line prices, in cents
}

// IsActive checks whether the cart accepts item mutations
func (c *Cart) IsActive() bool {
	return c.Status == CartStatusActive
}

// IsEmpty checks whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the line matching product and variant, or nil
func (c *Cart) FindItem(productID uint, variantID *uint) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && sameVariant(c.Items[i].VariantID, variantID) {
			return &c.Items[i]
		}
	}
	return nil
}

// DropItem removes the line matching product and variant, reporting
// whether a line was removed
func (c *Cart) DropItem(productID uint, variantID *uint) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && sameVariant(c.Items[i].VariantID, variantID) {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Subtotal returns the sum of line prices in cents
func (c *Cart) Subtotal() int64 {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	return subtotal
}

// Totals calculates the cart's summary figures
func (c *Cart) Totals() CartTotals {
	totals := CartTotals{
		ItemCount: len(c.Items),
	}
	for _, item := range c.Items {
		totals.TotalQuantity += item.Quantity
		totals.Subtotal += item.UnitPrice * int64(item.Quantity)
	}
	return totals
}

func sameVariant(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
