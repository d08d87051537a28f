// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/domain/account"
	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/catalog"
	"github.com/your-org/commerce-core/internal/domain/checkout"
	"github.com/your-org/commerce-core/internal/domain/identity"
	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/domain/payment"
	"github.com/your-org/commerce-core/internal/interfaces/http/middleware"
)

// statusFor maps domain sentinel errors onto HTTP status codes. Every
// handler funnels service errors through here so the mapping lives in
// one place.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, checkout.ErrCheckoutNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrClaimNotFound),
		errors.Is(err, account.ErrAccountNotFound):
		return http.StatusNotFound

	case errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, account.ErrInvalidRefreshToken):
		return http.StatusUnauthorized

	case errors.Is(err, identity.ErrScopeMismatch),
		errors.Is(err, identity.ErrInsufficientPermissions):
		return http.StatusForbidden

	case errors.Is(err, cart.ErrCartNotActive),
		errors.Is(err, cart.ErrCartNotInCheckout),
		errors.Is(err, cart.ErrVersionConflict),
		errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrConcurrentModification),
		errors.Is(err, account.ErrEmailTaken),
		errors.Is(err, order.ErrOrderAlreadyClaimed),
		errors.Is(err, order.ErrInvalidStatusTransition):
		return http.StatusConflict

	case errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrMaxQuantityExceeded),
		errors.Is(err, catalog.ErrProductInactive),
		errors.Is(err, checkout.ErrShippingMethodUnavailable):
		return http.StatusUnprocessableEntity

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidAddress),
		errors.Is(err, account.ErrPasswordMismatch):
		return http.StatusBadRequest

	case errors.Is(err, payment.ErrDeclined):
		return http.StatusPaymentRequired

	case errors.Is(err, checkout.ErrServiceUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status with the sentinel's message.
// Unmapped errors hide their detail behind a generic message. The
// reconciliation sentinel keeps its message even as a 500: the caller
// must learn that money may have moved and support is needed.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, checkout.ErrReconciliationRequired) {
		message = "Internal server error"
	}
	c.JSON(status, gin.H{
		"error": message,
	})
}

// respondBindError reports a malformed or invalid request body
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// activeCart resolves the caller's active cart, provisioning one on
// first touch. Guests are keyed by session, customers by account with
// the current session kept as the cart's link.
func activeCart(c *gin.Context, carts *cart.Service) (*cart.Cart, error) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	if principal.IsGuest() {
		return carts.EnsureForSession(c.Request.Context(), principal.SessionID)
	}
	return carts.EnsureForCustomer(c.Request.Context(), principal.AccountID, middleware.GetSessionID(c))
}
