// internal/domain/payment/gateway.go
package payment

import (
	"context"
	"time"
)

// AuthorizationRequest describes a hold to place against a payment method.
// Amount is in minor units (cents).
type AuthorizationRequest struct {
	Amount         int64                  `json:"amount"`
	Currency       string                 `json:"currency"`
	MethodToken    string                 `json:"method_token"`
	Reference      string                 `json:"reference"`
	IdempotencyKey string                 `json:"-"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Authorization is a provider-side hold on funds. It can later be
// captured exactly once or voided.
type Authorization struct {
	Ref       string    `json:"id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Capture is the settlement of a previously authorized amount.
type Capture struct {
	Ref       string    `json:"id"`
	AuthRef   string    `json:"authorization_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Gateway is the payment provider port used by checkout. Implementations
// must be safe for concurrent use and must treat the idempotency key as
// the dedupe handle for retried calls.
type Gateway interface {
	// Authorize places a hold for the requested amount. A decline is
	// reported as ErrDeclined, provider outages as ErrProviderUnavailable.
	Authorize(ctx context.Context, req AuthorizationRequest) (*Authorization, error)

	// Capture settles a previously placed hold. Capturing an unknown or
	// already-voided hold returns ErrAuthorizationNotFound.
	Capture(ctx context.Context, authRef string, amount int64, idempotencyKey string) (*Capture, error)

	// Void releases a hold without settling it. Voiding is idempotent on
	// the provider side; an unknown ref returns ErrAuthorizationNotFound.
	Void(ctx context.Context, authRef string, idempotencyKey string) error
}
