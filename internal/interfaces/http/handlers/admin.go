// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/domain/order"
)

// AdminHandler handles back-office endpoints. Routes are gated per
// permission by the AdminPermission middleware; handlers assume an
// authorized admin principal.
type AdminHandler struct {
	orders *order.Service
	carts  *cart.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(orders *order.Service, carts *cart.Service) *AdminHandler {
	return &AdminHandler{
		orders: orders,
		carts:  carts,
	}
}

// ListOrders handles GET /admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var p order.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		respondBindError(c, err)
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), &p)
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

// GetOrder handles GET /admin/orders/:id
func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orders.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateOrderStatusRequest moves an order along the fulfillment flow
type UpdateOrderStatusRequest struct {
	Status order.OrderStatus `json:"status" binding:"required"`
	Note   string            `json:"note"`
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), uint(id), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    o,
	})
}

// SweepCarts handles POST /admin/carts/sweep; expired carts are
// abandoned immediately instead of waiting for the background sweeper
func (h *AdminHandler) SweepCarts(c *gin.Context) {
	swept, err := h.carts.ExpireStale(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expired carts swept successfully",
		"data": gin.H{
			"swept": swept,
		},
	})
}
