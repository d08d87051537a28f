// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/checkout"
)

// CheckoutHandler handles the checkout flow. Every operation is keyed
// by the caller's active cart; the handler resolves the cart and the
// checkout service owns the state machine.
type CheckoutHandler struct {
	checkouts *checkout.Service
	carts     *cart.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkouts *checkout.Service, carts *cart.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		carts:     carts,
	}
}

// Begin handles POST /checkout
func (h *CheckoutHandler) Begin(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.checkouts.Begin(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout started successfully",
		"data":    session,
	})
}

// Get handles GET /checkout
func (h *CheckoutHandler) Get(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.checkouts.Get(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout retrieved successfully",
		"data":    session,
	})
}

// SetAddress handles PUT /checkout/address
func (h *CheckoutHandler) SetAddress(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	var req checkout.SetAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.checkouts.SetAddress(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address set successfully",
		"data":    session,
	})
}

// ShippingOptions handles GET /checkout/shipping-options
func (h *CheckoutHandler) ShippingOptions(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	methods, err := h.checkouts.ListShippingOptions(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping options retrieved successfully",
		"data":    methods,
	})
}

// SetShipping handles PUT /checkout/shipping
func (h *CheckoutHandler) SetShipping(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	var req checkout.SetShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.checkouts.SetShipping(c.Request.Context(), current.ID, req.ShippingMethodID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping method set successfully",
		"data":    session,
	})
}

// AuthorizePayment handles POST /checkout/payment
func (h *CheckoutHandler) AuthorizePayment(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	var req checkout.AuthorizePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.checkouts.AuthorizePayment(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment authorized successfully",
		"data":    session,
	})
}

// Complete handles POST /checkout/complete. The body is optional; an
// idempotency key may be supplied for replay-safe retries.
func (h *CheckoutHandler) Complete(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	var req checkout.CompleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.checkouts.Complete(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// Cancel handles DELETE /checkout
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.checkouts.Cancel(c.Request.Context(), current.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout cancelled successfully",
	})
}
