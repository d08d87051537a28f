// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints. Customers see their own orders;
// guests can look one up with the order number and email together.
type OrderHandler struct {
	orders *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var p order.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		respondBindError(c, err)
		return
	}

	orders, total, err := h.orders.ListForCustomer(c.Request.Context(), principal.AccountID, &p)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data": gin.H{
			"orders": orders,
			"total":  total,
			"page":   p.Page,
			"limit":  p.Limit,
		},
	})
}

// Get handles GET /orders/:id. The lookup is scoped to the caller's
// account, so someone else's order ID reads as not found.
func (h *OrderHandler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orders.GetForCustomer(c.Request.Context(), uint(id), principal.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// Track handles GET /orders/track?number=...&email=...; the guest order
// lookup requires both to match
func (h *OrderHandler) Track(c *gin.Context) {
	number := c.Query("number")
	email := c.Query("email")
	if number == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Both number and email query parameters are required",
		})
		return
	}

	o, err := h.orders.GuestLookup(c.Request.Context(), email, number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}
