// internal/domain/checkout/entity.go
package checkout

import "time"

// Address is a postal address collected during checkout. Country is an
// ISO 3166-1 alpha-2 code.
type Address struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone,omitempty"`
}

// CheckoutSession is one state machine instance driving one cart to an
// order. Keyed by cart ID: a cart has at most one checkout at a time.
// Monetary amounts are in cents and are quoted from the cart's price
// snapshots at each step; the cart itself is frozen while in checkout,
// so they cannot drift underneath the session.
type CheckoutSession struct {
	CartID             uint      `json:"cart_id"`
	State              State     `json:"state"`
	ShippingAddress    *Address  `json:"shipping_address,omitempty"`
	BillingAddress     *Address  `json:"billing_address,omitempty"`
	ShippingMethodID   string    `json:"shipping_method_id,omitempty"`
	ShippingMethodName string    `json:"shipping_method_name,omitempty"`
	ShippingCost       int64     `json:"shipping_cost"`
	Subtotal           int64     `json:"subtotal"`
	TaxAmount          int64     `json:"tax_amount"`
	DiscountAmount     int64     `json:"discount_amount"`
	AuthorizationRef   string    `json:"authorization_ref,omitempty"`
	AuthorizedAmount   int64     `json:"authorized_amount"`
	FailureStep        string    `json:"failure_step,omitempty"`
	FailureReason      string    `json:"failure_reason,omitempty"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Total returns the amount to charge, in cents
func (cs *CheckoutSession) Total() int64 {
	return cs.Subtotal + cs.ShippingCost + cs.TaxAmount - cs.DiscountAmount
}

// HasAuthorization reports whether the gateway currently holds funds
// for this session
func (cs *CheckoutSession) HasAuthorization() bool {
	return cs.AuthorizationRef != ""
}

// resetShipping clears the quoted method; shipping quotes depend on the
// address, so address changes must call this
func (cs *CheckoutSession) resetShipping() {
	cs.ShippingMethodID = ""
	cs.ShippingMethodName = ""
	cs.ShippingCost = 0
	cs.TaxAmount = 0
}

// resetPayment clears the authorization handle. The caller owns voiding
// the gateway hold first.
func (cs *CheckoutSession) resetPayment() {
	cs.AuthorizationRef = ""
	cs.AuthorizedAmount = 0
}

// clone returns a deep copy so store reads never alias stored state
func (cs *CheckoutSession) clone() *CheckoutSession {
	copied := *cs
	if cs.ShippingAddress != nil {
		addr := *cs.ShippingAddress
		copied.ShippingAddress = &addr
	}
	if cs.BillingAddress != nil {
		addr := *cs.BillingAddress
		copied.BillingAddress = &addr
	}
	return &copied
}
