package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketera/internal/services"
)

// OrderHandler: публичные документы по заказу (id: uuid, не угадывается).
type OrderHandler struct {
	Receipts *services.ReceiptService
}

func NewOrderHandler(receipts *services.ReceiptService) *OrderHandler {
	return &OrderHandler{Receipts: receipts}
}

// @Summary  Download the order receipt
// @Tags     Orders
// @Produce  application/pdf
// @Param    id   path  string  true  "Order ID"
// @Success  200  {file}  file
// @Failure  404  {object}  map[string]string
// @Router   /orders/{id}/receipt.pdf [get]
func (h *OrderHandler) Receipt(c *gin.Context) {
	id := c.Param("id")
	out, err := h.Receipts.ReceiptPDF(c.Request.Context(), id)
	if err != nil {
		writeError(c, "receipt", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", out)
}

// @Summary  Payment reference as a QR code
// @Tags     Orders
// @Produce  image/png
// @Param    id    path   string  true   "Order ID"
// @Param    size  query  int     false  "Side in pixels"
// @Success  200   {file}  file
// @Router   /orders/{id}/reference.png [get]
func (h *OrderHandler) ReferenceQR(c *gin.Context) {
	size := queryInt(c, "size", 256)
	if size < 64 || size > 1024 {
		size = 256
	}
	out, err := h.Receipts.ReferenceQR(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		writeError(c, "receipt", err)
		return
	}
	c.Data(http.StatusOK, "image/png", out)
}
