package handlers

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"ticketera/internal/models"
	"ticketera/internal/services"
)

const defaultMaxVoucherBytes = 5 << 20

type CheckoutHandler struct {
	Service         *services.CheckoutService
	MaxVoucherBytes int64
}

func NewCheckoutHandler(service *services.CheckoutService, maxVoucherBytes int64) *CheckoutHandler {
	if maxVoucherBytes <= 0 {
		maxVoucherBytes = defaultMaxVoucherBytes
	}
	return &CheckoutHandler{Service: service, MaxVoucherBytes: maxVoucherBytes}
}

type checkoutResponse struct {
	*models.Checkout
	Total       string `json:"total"`
	TicketCount int    `json:"ticket_count"`
}

func checkoutView(co *models.Checkout) checkoutResponse {
	return checkoutResponse{
		Checkout:    co,
		Total:       co.Cart.Total().StringFixed(2),
		TicketCount: co.Cart.TicketCount(),
	}
}

func (h *CheckoutHandler) reply(c *gin.Context, co *models.Checkout, err error) {
	if err != nil {
		writeError(c, "checkout", err)
		return
	}
	c.JSON(http.StatusOK, checkoutView(co))
}

type startCheckoutRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// @Summary  Start a checkout for an event
// @Tags     Checkout
// @Accept   json
// @Produce  json
// @Param    body  body      startCheckoutRequest  true  "Event"
// @Success  201   {object}  checkoutResponse
// @Failure  404   {object}  map[string]string
// @Router   /checkouts [post]
func (h *CheckoutHandler) Start(c *gin.Context) {
	var req startCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	co, err := h.Service.Start(c.Request.Context(), req.EventID)
	if err != nil {
		writeError(c, "checkout", err)
		return
	}
	c.JSON(http.StatusCreated, checkoutView(co))
}

// @Summary  Get checkout
// @Tags     Checkout
// @Produce  json
// @Param    id   path      string  true  "Checkout ID"
// @Success  200  {object}  checkoutResponse
// @Failure  404  {object}  map[string]string
// @Router   /checkouts/{id} [get]
func (h *CheckoutHandler) Get(c *gin.Context) {
	co, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	h.reply(c, co, err)
}

type addItemRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
}

// @Summary  Add one ticket of a type to the cart
// @Tags     Checkout
// @Accept   json
// @Produce  json
// @Param    id    path      string          true  "Checkout ID"
// @Param    body  body      addItemRequest  true  "Ticket type"
// @Success  200   {object}  checkoutResponse
// @Router   /checkouts/{id}/items [post]
func (h *CheckoutHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	co, err := h.Service.AddItem(c.Request.Context(), c.Param("id"), req.TicketTypeID)
	h.reply(c, co, err)
}

func (h *CheckoutHandler) IncrementItem(c *gin.Context) {
	co, err := h.Service.IncrementItem(c.Request.Context(), c.Param("id"), c.Param("ticket_type_id"))
	h.reply(c, co, err)
}

func (h *CheckoutHandler) DecrementItem(c *gin.Context) {
	co, err := h.Service.DecrementItem(c.Request.Context(), c.Param("id"), c.Param("ticket_type_id"))
	h.reply(c, co, err)
}

func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	co, err := h.Service.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("ticket_type_id"))
	h.reply(c, co, err)
}

type contactRequest struct {
	FullName string `json:"full_name"`
	DNI      string `json:"dni"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// @Summary      Submit buyer contact and send a verification code
// @Description  Validates the form, checks attempt limits and pending purchases, then emails a 6 digit code.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Checkout ID"
// @Param        body  body      contactRequest  true  "Contact"
// @Success      200   {object}  checkoutResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /checkouts/{id}/contact [post]
func (h *CheckoutHandler) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw := models.ContactInfo{FullName: req.FullName, DNI: req.DNI, Email: req.Email, Phone: req.Phone}
	co, err := h.Service.SubmitContact(c.Request.Context(), c.Param("id"), raw, clientIP(c))
	h.reply(c, co, err)
}

// @Summary  Send a new verification code
// @Tags     Checkout
// @Produce  json
// @Param    id   path      string  true  "Checkout ID"
// @Success  200  {object}  checkoutResponse
// @Failure  429  {object}  map[string]string
// @Router   /checkouts/{id}/code/resend [post]
func (h *CheckoutHandler) ResendCode(c *gin.Context) {
	co, err := h.Service.ResendCode(c.Request.Context(), c.Param("id"), clientIP(c))
	h.reply(c, co, err)
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

// @Summary  Verify the emailed code
// @Tags     Checkout
// @Accept   json
// @Produce  json
// @Param    id    path      string       true  "Checkout ID"
// @Param    body  body      codeRequest  true  "Code"
// @Success  200   {object}  checkoutResponse
// @Failure  422   {object}  map[string]string
// @Router   /checkouts/{id}/code [post]
func (h *CheckoutHandler) SubmitCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	co, err := h.Service.SubmitCode(c.Request.Context(), c.Param("id"), req.Code)
	h.reply(c, co, err)
}

func (h *CheckoutHandler) Back(c *gin.Context) {
	co, err := h.Service.Back(c.Request.Context(), c.Param("id"))
	h.reply(c, co, err)
}

// @Summary  Upload the payment voucher and place the order
// @Tags     Checkout
// @Accept   multipart/form-data
// @Produce  json
// @Param    id       path      string  true  "Checkout ID"
// @Param    voucher  formData  file    true  "Payment voucher"
// @Success  201      {object}  models.Order
// @Failure  400      {object}  map[string]string
// @Failure  503      {object}  map[string]string
// @Router   /checkouts/{id}/purchase [post]
func (h *CheckoutHandler) SubmitPurchase(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxVoucherBytes+1<<20)

	var voucher *services.Voucher
	fh, err := c.FormFile("voucher")
	if err == nil {
		if fh.Size > h.MaxVoucherBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "voucher file is too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read voucher"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read voucher"})
			return
		}
		voucher = &services.Voucher{
			FileName:    filepath.Base(fh.Filename),
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	order, err := h.Service.SubmitPurchase(c.Request.Context(), c.Param("id"), voucher)
	if err != nil {
		writeError(c, "purchase", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
