// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/commerce-core/internal/domain/order"
	"github.com/your-org/commerce-core/internal/pkg/invoice"
)

// InvoiceHandler renders order invoices as PDF downloads
type InvoiceHandler struct {
	orders   *order.Service
	invoices *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *order.Service, invoices *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		orders:   orders,
		invoices: invoices,
	}
}

// Download handles GET /admin/orders/:id/invoice
func (h *InvoiceHandler) Download(c *gin.Context) {
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

	pdfBuffer, err := h.invoices.Generate(o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", invoice.Filename(o)))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))

	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
