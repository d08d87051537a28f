// internal/pkg/notification/notification.go
package notification

import "context"

// OrderConfirmation is the payload for the order-placed notification.
// ClaimToken is set for guest orders and lets the recipient turn the
// order into an account.
type OrderConfirmation struct {
	OrderNumber string `json:"order_number"`
	Email       string `json:"email"`
	TotalAmount int64  `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
	ClaimToken  string `json:"claim_token,omitempty"`
}

// Notifier delivers customer notifications. Implementations own the
// channel (email, log, queue); callers treat dispatch as fire and
// forget and never block user-facing work on delivery.
type Notifier interface {
	NotifyOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}
