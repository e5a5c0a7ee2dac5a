package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ticketera/internal/authz"
	"ticketera/internal/models"
	"ticketera/internal/services"
)

type AdminHandler struct {
	Auth    services.AuthService
	Reviews *services.ReviewService
}

func NewAdminHandler(auth services.AuthService, reviews *services.ReviewService) *AdminHandler {
	return &AdminHandler{Auth: auth, Reviews: reviews}
}

// @Summary      Staff login
// @Description  Returns a bearer token for the order review endpoints
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[admin][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := strings.TrimSpace(req.Username)

	token, user, err := h.Auth.Login(username, req.Password)
	if err != nil {
		log.Printf("[admin][login] rejected username=%q", username)
		writeError(c, "admin", err)
		return
	}
	log.Printf("[admin][login] ok username=%q role=%s", user.Username, authz.RoleName(user.Role))
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"username":     user.Username,
		"role":         authz.RoleName(user.Role),
	})
}

// @Summary   List orders
// @Tags      Admin
// @Produce   json
// @Security  BearerAuth
// @Param     status  query     string  false  "pending | approved | rejected"
// @Param     limit   query     int     false  "Page size"
// @Param     offset  query     int     false  "Offset"
// @Success   200     {array}   models.Order
// @Router    /admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	status := c.DefaultQuery("status", models.ValidationPending)
	orders, err := h.Reviews.ListOrders(c.Request.Context(), status, queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		writeError(c, "admin", err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// @Summary   Get order with items
// @Tags      Admin
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Order ID"
// @Success   200  {object}  models.Order
// @Failure   404  {object}  map[string]string
// @Router    /admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	o, err := h.Reviews.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type reviewRequest struct {
	Action string `json:"action" binding:"required"`
}

// @Summary   Approve or reject a pending order
// @Tags      Admin
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string         true  "Order ID"
// @Param     body  body      reviewRequest  true  "approve | reject"
// @Success   200   {object}  models.Order
// @Failure   409   {object}  map[string]string
// @Router    /admin/orders/{id}/review [post]
func (h *AdminHandler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if roleID, _ := getIntFromCtx(c, "role_id"); !authz.CanReview(roleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	reviewer := c.GetString("username")
	o, err := h.Reviews.Review(c.Request.Context(), c.Param("id"), strings.ToLower(strings.TrimSpace(req.Action)), reviewer)
	if err != nil {
		writeError(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, o)
}
