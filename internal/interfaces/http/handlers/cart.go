// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/domain/cart"
	"github.com/your-org/commerce-core/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    current,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.carts.AddItem(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    updated,
	})
}

// UpdateItem handles PUT /cart/items/:productID
func (h *CartHandler) UpdateItem(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	productID, variantID, err := itemKey(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.carts.UpdateItemQuantity(c.Request.Context(), current.ID, productID, variantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    updated,
	})
}

// RemoveItem handles DELETE /cart/items/:productID
func (h *CartHandler) RemoveItem(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	productID, variantID, err := itemKey(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.carts.RemoveItem(c.Request.Context(), current.ID, productID, variantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    updated,
	})
}

// SetEmail handles PUT /cart/email; guests set a contact address before
// checking out
func (h *CartHandler) SetEmail(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	var req cart.SetEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.carts.SetEmail(c.Request.Context(), current.ID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart email updated successfully",
		"data":    updated,
	})
}

// Reprice handles POST /cart/reprice; line prices re-snapshot from the
// catalog and retired products drop out
func (h *CartHandler) Reprice(c *gin.Context) {
	current, err := activeCart(c, h.carts)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.carts.Reprice(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart repriced successfully",
		"data":    updated,
	})
}

// Merge handles POST /cart/merge; an authenticated caller folds the
// session's guest cart into their account cart. Login and registration
// already do this; the endpoint covers clients that authenticate out of
// band.
func (h *CartHandler) Merge(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.IsGuest() {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	result, err := h.carts.MergeOnLogin(c.Request.Context(), middleware.GetSessionID(c), principal.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged successfully",
		"data":    result,
	})
}

// itemKey parses the product ID path parameter and the optional
// variant_id query parameter
func itemKey(c *gin.Context) (uint, *uint, error) {
	productID, err := strconv.ParseUint(c.Param("productID"), 10, 32)
	if err != nil {
		return 0, nil, err
	}

	var variantID *uint
	if raw := c.Query("variant_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, nil, err
		}
		v := uint(parsed)
		variantID = &v
	}

	return uint(productID), variantID, nil
}
