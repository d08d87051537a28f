// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/commerce-core/internal/config"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/catalog"
	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/domain/payment"
	"github.com/your-org/commerce-core/internal/pkg/notification"
)

// Orders is the slice of the order domain checkout needs: turning a
// paid session into a persisted order, and finding the order a cart
// already produced.
type Orders interface {
	Materialize(ctx context.Context, in order.MaterializeInput) (*order.MaterializeResult, error)
	ForCart(ctx context.Context, cartID uint) (*order.Order, error)
}

// Service orchestrates the checkout state machine. Every step loads the
// session, applies the transition, and persists it with a
// compare-and-swap; steps with gateway side effects additionally bump
// the version before calling out, so a concurrent transition fails its
// swap instead of racing the payment call.
type Service struct {
	store    Store
	carts    *cart.Service
	catalog  catalog.Service
	gateway  payment.Gateway
	orders   Orders
	notifier notification.Notifier
	config   *config.Config
	logger   *logrus.Logger
}

// NewService creates a new checkout service
func NewService(store Store, carts *cart.Service, catalogSvc catalog.Service, gateway payment.Gateway, orders Orders, notifier notification.Notifier, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		carts:    carts,
		catalog:  catalogSvc,
		gateway:  gateway,
		orders:   orders,
		notifier: notifier,
		config:   cfg,
		logger:   logger,
	}
}

// SetAddressRequest carries the addresses collected at the first step
type SetAddressRequest struct {
	ShippingAddress       Address  `json:"shipping_address" binding:"required"`
	BillingAddress        *Address `json:"billing_address,omitempty"`
	BillingSameAsShipping bool     `json:"billing_same_as_shipping"`
}

// SetShippingRequest selects one method from the current quote
type SetShippingRequest struct {
	ShippingMethodID string `json:"shipping_method_id" binding:"required"`
}

// AuthorizePaymentRequest carries the tokenized payment method
type AuthorizePaymentRequest struct {
	MethodToken    string `json:"method_token" binding:"required"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CompleteRequest finalizes the checkout
type CompleteRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CompletionResult is returned by Complete
type CompletionResult struct {
	Session    *CheckoutSession `json:"checkout"`
	Order      *order.Order     `json:"order"`
	ClaimToken string           `json:"claim_token,omitempty"`
}

// Begin opens a checkout for a cart and freezes the cart against item
// mutations. Calling it again while a checkout is live returns the
// existing session; a terminal leftover session is discarded and the
// checkout restarts.
func (s *Service) Begin(ctx context.Context, cartID uint) (*CheckoutSession, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, cartID)
	switch {
	case err == nil:
		if !existing.State.IsTerminal() && c.Status == cart.CartStatusCheckoutInProgress {
			return existing, nil
		}
		if err := s.store.Delete(ctx, cartID); err != nil {
			return nil, err
		}
	case !errors.Is(err, ErrCheckoutNotFound):
		return nil, err
	}

	if c.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}

	if _, err := s.carts.BeginCheckout(ctx, cartID); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &CheckoutSession{
		CartID:    cartID,
		State:     StateCart,
		Subtotal:  c.Subtotal(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, session, 0, s.config.Checkout.TTL); err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			// a concurrent Begin won the race; adopt its session
			return s.store.Get(ctx, cartID)
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":  cartID,
		"subtotal": session.Subtotal,
	}).Info("Checkout started")
	return session, nil
}

// Get returns the current checkout session for a cart
func (s *Service) Get(ctx context.Context, cartID uint) (*CheckoutSession, error) {
	return s.store.Get(ctx, cartID)
}

// SetAddress stores validated shipping and billing addresses and moves
// the session to AddressSet. Re-entrant: calling it after shipping or
// payment resets those later steps, releasing any held authorization,
// because shipping quotes depend on the destination.
func (s *Service) SetAddress(ctx context.Context, cartID uint, req *SetAddressRequest) (*CheckoutSession, error) {
	session, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	expected := session.Version

	if !session.State.CanTransitionTo(StateAddressSet) {
		return nil, fmt.Errorf("%w: cannot set address from %s", ErrInvalidTransition, session.State)
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}

	shipping := req.ShippingAddress
	if err := shipping.Validate(); err != nil {
		return nil, err
	}

	var billing *Address
	switch {
	case req.BillingSameAsShipping:
		b := shipping
		billing = &b
	case req.BillingAddress == nil:
		return nil, fmt.Errorf("%w: billing address or billing_same_as_shipping is required", ErrInvalidAddress)
	default:
		if err := req.BillingAddress.Validate(); err != nil {
			return nil, err
		}
		b := *req.BillingAddress
		billing = &b
	}

	if session.HasAuthorization() {
		expected, err = s.claim(ctx, session, expected)
		if err != nil {
			return nil, err
		}
		if err := s.voidAuthorization(ctx, session, "address_changed"); err != nil {
			return nil, err
		}
	}

	session.ShippingAddress = &shipping
	session.BillingAddress = billing
	session.Subtotal = c.Subtotal()
	session.resetShipping()
	session.resetPayment()
	session.State = StateAddressSet

	if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id": cartID,
		"country": shipping.Country,
	}).Info("Checkout address set")
	return session, nil
}

// ListShippingOptions quotes the shipping methods for the session's
// address and the cart's current weight and value. Quotes are computed
// fresh on every call and never persisted.
func (s *Service) ListShippingOptions(ctx context.Context, cartID uint) ([]ShippingMethod, error) {
	session, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if session.ShippingAddress == nil {
		return nil, fmt.Errorf("%w: address must be set before quoting shipping", ErrInvalidTransition)
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return QuoteShippingMethods(session.ShippingAddress, c.Subtotal(), s.cartWeight(ctx, c), s.config.Checkout.FreeShippingThreshold), nil
}

// SetShipping selects a method out of the quote currently valid for the
// session's address. Re-entrant: re-selecting resets payment.
func (s *Service) SetShipping(ctx context.Context, cartID uint, methodID string) (*CheckoutSession, error) {
	session, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	expected := session.Version

	if !session.State.CanTransitionTo(StateShippingSet) {
		return nil, fmt.Errorf("%w: cannot set shipping from %s", ErrInvalidTransition, session.State)
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	methods := QuoteShippingMethods(session.ShippingAddress, c.Subtotal(), s.cartWeight(ctx, c), s.config.Checkout.FreeShippingThreshold)
	method := findShippingMethod(methods, methodID)
	if method == nil {
		return nil, fmt.Errorf("%w: %q is not offered for this destination", ErrShippingMethodUnavailable, methodID)
	}

	if session.HasAuthorization() {
		expected, err = s.claim(ctx, session, expected)
		if err != nil {
			return nil, err
		}
		if err := s.voidAuthorization(ctx, session, "shipping_changed"); err != nil {
			return nil, err
		}
	}

	session.ShippingMethodID = method.ID
	session.ShippingMethodName = method.Name
	session.ShippingCost = method.Price
	session.Subtotal = c.Subtotal()
	session.TaxAmount = CalculateTax(session.Subtotal+method.Price-session.DiscountAmount, session.ShippingAddress)
	session.resetPayment()
	session.State = StateShippingSet

	if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":         cartID,
		"shipping_method": method.ID,
		"shipping_cost":   method.Price,
		"tax_amount":      session.TaxAmount,
	}).Info("Checkout shipping set")
	return session, nil
}

// AuthorizePayment places a hold for the order total. A decline leaves
// the session in ShippingSet so the caller can retry with another
// method; provider outages are retried with backoff and then surfaced
// as ErrServiceUnavailable.
func (s *Service) AuthorizePayment(ctx context.Context, cartID uint, req *AuthorizePaymentRequest) (*CheckoutSession, error) {
	session, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	expected := session.Version

	if !session.State.CanTransitionTo(StatePaymentAuthorized) {
		return nil, fmt.Errorf("%w: cannot authorize payment from %s", ErrInvalidTransition, session.State)
	}

	// Bump the version before touching the gateway so concurrent
	// transitions fail fast instead of racing the money.
	expected, err = s.claim(ctx, session, expected)
	if err != nil {
		return nil, err
	}

	// Re-authorization: release the previous hold and record that before
	// placing a new one.
	if session.HasAuthorization() {
		if err := s.voidAuthorization(ctx, session, "reauthorization"); err != nil {
			return nil, err
		}
		session.State = StateShippingSet
		if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
			return nil, err
		}
		expected = session.Version
	}

	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = uuid.New().String()
	}

	total := session.Total()
	var auth *payment.Authorization
	err = s.retryTransient(ctx, func() error {
		a, err := s.gateway.Authorize(ctx, payment.AuthorizationRequest{
			Amount:         total,
			Currency:       "USD",
			MethodToken:    req.MethodToken,
			Reference:      fmt.Sprintf("cart-%d", cartID),
			IdempotencyKey: idemKey,
		})
		if err != nil {
			return err
		}
		auth = a
		return nil
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			s.logger.WithFields(logrus.Fields{
				"cart_id": cartID,
				"amount":  total,
			}).Warn("Payment declined")
			return nil, err
		}
		if errors.Is(err, payment.ErrProviderUnavailable) {
			return nil, fmt.Errorf("%w: payment provider did not recover: %v", ErrServiceUnavailable, err)
		}
		return nil, err
	}

	session.AuthorizationRef = auth.Ref
	session.AuthorizedAmount = auth.Amount
	session.State = StatePaymentAuthorized

	if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			// the session moved while we were authorizing; the fresh
			// hold must not survive it
			if verr := s.voidAuthorization(ctx, session, "concurrent_modification"); verr != nil {
				return nil, verr
			}
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":           cartID,
		"authorization_ref": auth.Ref,
		"amount":            auth.Amount,
	}).Info("Payment authorized")
	return session, nil
}

// Complete captures the authorized payment, materializes the order,
// marks the cart completed, and schedules the confirmation. If capture
// fails after a successful authorization the hold is voided and the
// session parks in Failed(payment-capture); a failed void escalates for
// manual reconciliation. Replaying Complete on a completed checkout
// returns the existing order.
func (s *Service) Complete(ctx context.Context, cartID uint, req *CompleteRequest) (*CompletionResult, error) {
	session, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	expected := session.Version

	if session.State == StateCompleted {
		existing, err := s.orders.ForCart(ctx, cartID)
		if err != nil {
			return nil, err
		}
		return &CompletionResult{Session: session, Order: existing}, nil
	}

	if !session.State.CanTransitionTo(StateCompleted) {
		// an address change after shipping selection drops the quote; the
		// caller must re-select before completing
		if session.State == StateAddressSet && session.ShippingMethodID == "" {
			return nil, fmt.Errorf("%w: no shipping method selected", ErrShippingMethodUnavailable)
		}
		return nil, fmt.Errorf("%w: cannot complete from %s", ErrInvalidTransition, session.State)
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	expected, err = s.claim(ctx, session, expected)
	if err != nil {
		return nil, err
	}

	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = fmt.Sprintf("capture-%s", session.AuthorizationRef)
	}

	var capture *payment.Capture
	err = s.retryTransient(ctx, func() error {
		captured, err := s.gateway.Capture(ctx, session.AuthorizationRef, session.AuthorizedAmount, idemKey)
		if err != nil {
			return err
		}
		capture = captured
		return nil
	})
	if err != nil {
		return nil, s.failCapture(ctx, session, expected, err)
	}

	result, err := s.orders.Materialize(ctx, order.MaterializeInput{
		Cart:               c,
		ShippingAddress:    toOrderAddress(session.ShippingAddress),
		BillingAddress:     toOrderAddress(session.BillingAddress),
		ShippingMethodID:   session.ShippingMethodID,
		ShippingMethodName: session.ShippingMethodName,
		ShippingCost:       session.ShippingCost,
		TaxAmount:          session.TaxAmount,
		DiscountAmount:     session.DiscountAmount,
		AuthorizationRef:   session.AuthorizationRef,
		CaptureRef:         capture.Ref,
	})
	if err != nil {
		// Money is captured but there is no order. This must never be
		// dropped on the floor.
		s.logger.WithFields(logrus.Fields{
			"event":       "payment.reconciliation_required",
			"cart_id":     cartID,
			"capture_ref": capture.Ref,
		}).WithError(err).Error("Order materialization failed after capture")

		session.State = StateFailed
		session.FailureStep = FailureStepMaterialize
		session.FailureReason = err.Error()
		if saveErr := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); saveErr != nil {
			s.logger.WithError(saveErr).WithField("cart_id", cartID).Error("Failed to record materialization failure")
		}
		return nil, fmt.Errorf("%w: captured payment %s has no order: %v", ErrReconciliationRequired, capture.Ref, err)
	}

	if _, err := s.carts.CompleteCheckout(ctx, cartID); err != nil {
		s.logger.WithError(err).WithField("cart_id", cartID).Error("Failed to mark cart completed")
	}

	session.State = StateCompleted
	if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
		// the order exists and the payment is captured; a bookkeeping
		// race must not unwind either
		s.logger.WithError(err).WithField("cart_id", cartID).Error("Failed to record checkout completion")
	}

	s.notifyConfirmation(ctx, result)

	s.logger.WithFields(logrus.Fields{
		"cart_id":      cartID,
		"order_number": result.Order.OrderNumber,
		"total_amount": result.Order.TotalAmount,
	}).Info("Checkout completed")

	return &CompletionResult{
		Session:    session,
		Order:      result.Order,
		ClaimToken: result.ClaimToken,
	}, nil
}

// Cancel abandons the checkout: any held authorization is voided, the
// cart goes back to active, and the session is removed. Cancelling a
// completed checkout is an error; cancelling a failed one just cleans
// up. The void still runs when the caller's context is already gone.
func (s *Service) Cancel(ctx context.Context, cartID uint) error {
	session, err := s.store.Get(ctx, cartID)
	if errors.Is(err, ErrCheckoutNotFound) {
		// the session may have expired mid-checkout; still free the cart
		c, cerr := s.carts.Get(ctx, cartID)
		if cerr != nil {
			return cerr
		}
		if c.Status == cart.CartStatusCheckoutInProgress {
			_, rerr := s.carts.ReleaseCheckout(ctx, cartID)
			return rerr
		}
		return ErrCheckoutNotFound
	}
	if err != nil {
		return err
	}
	expected := session.Version

	if session.State == StateCompleted {
		return fmt.Errorf("%w: checkout already completed", ErrInvalidTransition)
	}

	if !session.State.IsTerminal() {
		session.State = StateAbandoned
		if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
			return err
		}
	}

	if session.HasAuthorization() {
		if err := s.voidAuthorization(ctx, session, "checkout_cancelled"); err != nil {
			// keep the session record so the dangling ref stays findable
			return err
		}
	}

	if _, err := s.carts.ReleaseCheckout(ctx, cartID); err != nil && !errors.Is(err, cart.ErrCartNotInCheckout) {
		return err
	}

	if err := s.store.Delete(ctx, cartID); err != nil {
		s.logger.WithError(err).WithField("cart_id", cartID).Warn("Failed to delete cancelled checkout session")
	}

	s.logger.WithField("cart_id", cartID).Info("Checkout cancelled")
	return nil
}

// claim persists the session unchanged to bump its version, fencing off
// concurrent transitions for the duration of a gateway call
func (s *Service) claim(ctx context.Context, session *CheckoutSession, expected int) (int, error) {
	if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
		return 0, err
	}
	return session.Version, nil
}

// failCapture compensates a failed capture: void the hold, park the
// session in Failed(payment-capture). An authorized-but-uncaptured
// payment must never survive this path.
func (s *Service) failCapture(ctx context.Context, session *CheckoutSession, expected int, captureErr error) error {
	voidErr := s.voidAuthorization(ctx, session, "capture_failed")

	session.State = StateFailed
	session.FailureStep = FailureStepCapture
	session.FailureReason = captureErr.Error()
	if err := s.store.Save(ctx, session, expected, s.config.Checkout.TTL); err != nil {
		s.logger.WithError(err).WithField("cart_id", session.CartID).Error("Failed to record capture failure")
	}

	if voidErr != nil {
		return voidErr
	}
	if errors.Is(captureErr, payment.ErrProviderUnavailable) {
		return fmt.Errorf("%w: payment capture did not recover: %v", ErrServiceUnavailable, captureErr)
	}
	return fmt.Errorf("payment capture failed: %w", captureErr)
}

// voidAuthorization releases the gateway hold recorded on the session.
// It runs detached from the caller's cancellation: once an authorize
// call has been sent, giving up on the void would leak the hold. A void
// that still fails after retries is escalated for manual reconciliation
// under the payment.reconciliation_required event.
func (s *Service) voidAuthorization(ctx context.Context, session *CheckoutSession, cause string) error {
	ref := session.AuthorizationRef
	if ref == "" {
		return nil
	}

	voidCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Payment.RequestTimeout)
	defer cancel()

	err := s.retryTransient(voidCtx, func() error {
		return s.gateway.Void(voidCtx, ref, fmt.Sprintf("void-%s", ref))
	})
	if err != nil && !errors.Is(err, payment.ErrAuthorizationNotFound) {
		s.logger.WithFields(logrus.Fields{
			"event":             "payment.reconciliation_required",
			"cart_id":           session.CartID,
			"authorization_ref": ref,
			"cause":             cause,
		}).WithError(err).Error("Failed to void payment authorization")
		return fmt.Errorf("%w: authorization %s must be voided manually: %v", ErrReconciliationRequired, ref, err)
	}

	session.resetPayment()
	s.logger.WithFields(logrus.Fields{
		"cart_id":           session.CartID,
		"authorization_ref": ref,
		"cause":             cause,
	}).Info("Payment authorization voided")
	return nil
}

// retryTransient retries op while it fails with ErrProviderUnavailable,
// with exponential backoff bounded by Payment.MaxRetryWait
func (s *Service) retryTransient(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = s.config.Payment.MaxRetryWait

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, payment.ErrProviderUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}

// notifyConfirmation hands the confirmation to the notifier. Dispatch is
// fire and forget; a failure is logged and never blocks completion.
func (s *Service) notifyConfirmation(ctx context.Context, result *order.MaterializeResult) {
	msg := notification.OrderConfirmation{
		OrderNumber: result.Order.OrderNumber,
		Email:       result.Order.Email,
		TotalAmount: result.Order.TotalAmount,
		ItemCount:   len(result.Order.Items),
		ClaimToken:  result.ClaimToken,
	}
	if err := s.notifier.NotifyOrderConfirmation(ctx, msg); err != nil {
		s.logger.WithError(err).WithField("order_number", result.Order.OrderNumber).Warn("Failed to schedule order confirmation")
	}
}

// cartWeight sums the catalog weights of the cart's lines. Lines whose
// product no longer resolves weigh nothing rather than blocking a quote.
func (s *Service) cartWeight(ctx context.Context, c *cart.Cart) int64 {
	var grams int64
	for _, item := range c.Items {
		product, err := s.catalog.Product(ctx, item.ProductID, item.VariantID)
		if err != nil {
			continue
		}
		grams += int64(product.WeightGrams) * int64(item.Quantity)
	}
	return grams
}

func toOrderAddress(a *Address) order.Address {
	if a == nil {
		return order.Address{}
	}
	return order.Address{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}
