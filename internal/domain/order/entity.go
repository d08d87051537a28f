// internal/domain/order/entity.go
package order

import "time"

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// statusTransitions lists, per status, the statuses an order may move
// to. Orders are cancellable until they ship.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Order is the immutable purchase snapshot produced by a completed
// checkout. Monetary amounts are in cents, recomputed from the cart's
// price snapshots at materialization time; only Status and the
// fulfillment timestamps change afterwards.
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	CartID      uint        `gorm:"uniqueIndex;not null" json:"cart_id"`
	CustomerID  *uint       `gorm:"index" json:"customer_id,omitempty"` // nil for guest orders
	Email       string      `gorm:"not null;size:255;index" json:"email"`
	Status      OrderStatus `gorm:"not null;default:'pending';size:32" json:"status"`

	Subtotal       int64  `gorm:"not null" json:"subtotal"`
	ShippingCost   int64  `gorm:"default:0" json:"shipping_cost"`
	TaxAmount      int64  `gorm:"default:0" json:"tax_amount"`
	DiscountAmount int64  `gorm:"default:0" json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	Currency       string `gorm:"size:3;default:'USD'" json:"currency"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	ShippingMethodID   string `gorm:"size:32" json:"shipping_method_id"`
	ShippingMethodName string `gorm:"size:100" json:"shipping_method_name"`

	// Gateway handles kept for support and reconciliation
	AuthorizationRef string `gorm:"size:64" json:"authorization_ref,omitempty"`
	CaptureRef       string `gorm:"size:64" json:"capture_ref,omitempty"`

	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
}

// OrderItem is a purchased line, snapshotted from the cart
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	VariantID  *uint     `gorm:"index" json:"variant_id,omitempty"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`
	TotalPrice int64     `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderStatusHistory records one status change
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null;size:32" json:"status"`
	Note      string      `gorm:"type:text" json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

// Address is the postal address snapshot embedded in an order
type Address struct {
	FirstName  string `gorm:"size:100" json:"first_name"`
	LastName   string `gorm:"size:100" json:"last_name"`
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:2" json:"country"`
	Phone      string `gorm:"size:20" json:"phone,omitempty"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// IsGuest reports whether the order was placed without an account
func (o *Order) IsGuest() bool {
	return o.CustomerID == nil
}

// CanBeCancelled reports whether the order may still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

// AddStatusHistory appends a status change to the in-memory history
func (o *Order) AddStatusHistory(status OrderStatus, note string) {
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	})
}
