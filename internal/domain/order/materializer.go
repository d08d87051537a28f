// internal/domain/order/materializer.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/cart"
)

// MaterializeInput carries everything needed to turn a paid checkout
// into an order: the frozen cart plus the amounts and addresses the
// checkout session quoted server-side.
type MaterializeInput struct {
	Cart               *cart.Cart
	ShippingAddress    Address
	BillingAddress     Address
	ShippingMethodID   string
	ShippingMethodName string
	ShippingCost       int64
	TaxAmount          int64
	DiscountAmount     int64
	AuthorizationRef   string
	CaptureRef         string
}

// MaterializeResult is the materialized order plus, for guest
// checkouts, the account-claim token minted for it
type MaterializeResult struct {
	Order      *Order
	ClaimToken string
}

// Materializer turns paid checkouts into persistent orders. Totals are
// recomputed from the cart's price snapshots, never taken from client
// input. By the time Materialize runs the payment is captured, so
// failures retry with backoff rather than dropping the order.
type Materializer struct {
	repo     Repository
	sequence Sequence
	claims   ClaimStore
	config   *config.Config
	logger   *logrus.Logger
}

// NewMaterializer creates a new order materializer
func NewMaterializer(repo Repository, sequence Sequence, claims ClaimStore, cfg *config.Config, logger *logrus.Logger) *Materializer {
	return &Materializer{
		repo:     repo,
		sequence: sequence,
		claims:   claims,
		config:   cfg,
		logger:   logger,
	}
}

// Materialize produces the order for a captured checkout. Replaying it
// for a cart that already has an order returns that order, so retried
// completions stay idempotent.
func (m *Materializer) Materialize(ctx context.Context, in MaterializeInput) (*MaterializeResult, error) {
	if existing, err := m.repo.GetByCartID(ctx, in.Cart.ID); err == nil {
		return &MaterializeResult{Order: existing}, nil
	} else if !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}

	o := m.build(in)

	err := m.createWithRetry(ctx, o)
	if errors.Is(err, ErrDuplicateCart) {
		// lost a race with a concurrent completion; adopt its order
		existing, getErr := m.repo.GetByCartID(ctx, in.Cart.ID)
		if getErr != nil {
			return nil, getErr
		}
		return &MaterializeResult{Order: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to materialize order: %w", err)
	}

	result := &MaterializeResult{Order: o}
	if o.IsGuest() && o.Email != "" {
		token, err := m.claims.Issue(ctx, o.ID, o.Email, m.config.Order.ClaimTokenTTL)
		if err != nil {
			// the order exists; the claim token is a nicety
			m.logger.WithError(err).WithField("order_number", o.OrderNumber).Warn("Failed to issue account-claim token")
		} else {
			result.ClaimToken = token
		}
	}

	m.logger.WithFields(logrus.Fields{
		"order_number": o.OrderNumber,
		"cart_id":      o.CartID,
		"total_amount": o.TotalAmount,
		"guest":        o.IsGuest(),
	}).Info("Order materialized")
	return result, nil
}

// ForCart returns the order a cart already produced
func (m *Materializer) ForCart(ctx context.Context, cartID uint) (*Order, error) {
	return m.repo.GetByCartID(ctx, cartID)
}

// build assembles the order snapshot, recomputing all totals from the
// cart lines
func (m *Materializer) build(in MaterializeInput) *Order {
	items := make([]OrderItem, 0, len(in.Cart.Items))
	var subtotal int64
	for _, line := range in.Cart.Items {
		lineTotal := line.UnitPrice * int64(line.Quantity)
		subtotal += lineTotal
		items = append(items, OrderItem{
			ProductID:  line.ProductID,
			VariantID:  line.VariantID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: lineTotal,
		})
	}

	email := ""
	if in.Cart.Email != nil {
		email = *in.Cart.Email
	}

	o := &Order{
		CartID:             in.Cart.ID,
		CustomerID:         in.Cart.CustomerID,
		Email:              email,
		Status:             OrderStatusPending,
		Subtotal:           subtotal,
		ShippingCost:       in.ShippingCost,
		TaxAmount:          in.TaxAmount,
		DiscountAmount:     in.DiscountAmount,
		TotalAmount:        subtotal + in.ShippingCost + in.TaxAmount - in.DiscountAmount,
		Currency:           "USD",
		ShippingAddress:    in.ShippingAddress,
		BillingAddress:     in.BillingAddress,
		ShippingMethodID:   in.ShippingMethodID,
		ShippingMethodName: in.ShippingMethodName,
		AuthorizationRef:   in.AuthorizationRef,
		CaptureRef:         in.CaptureRef,
		Items:              items,
	}
	o.AddStatusHistory(OrderStatusPending, "Order placed")
	return o
}

// createWithRetry inserts the order, drawing a fresh number and trying
// again when the unique index rejects one. Duplicate cart errors are
// final here; the caller resolves them to the existing order.
func (m *Materializer) createWithRetry(ctx context.Context, o *Order) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second

	return backoff.Retry(func() error {
		number, err := m.sequence.Next(ctx)
		if err != nil {
			return err
		}
		o.OrderNumber = number

		err = m.repo.Create(ctx, o)
		if errors.Is(err, ErrDuplicateOrderNumber) {
			m.logger.WithField("order_number", number).Warn("Order number collision, reallocating")
			return err
		}
		if errors.Is(err, ErrDuplicateCart) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}
