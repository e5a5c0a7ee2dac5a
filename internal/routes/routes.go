package routes

import (
	"github.com/gin-gonic/gin"

	"ticketera/internal/authz"
	"ticketera/internal/handlers"
	"ticketera/internal/middleware"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Catalog  *handlers.CatalogHandler
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrderHandler
	Admin    *handlers.AdminHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	// ---- public
	r.GET("/healthz", h.Health.Healthz)

	events := r.Group("/events")
	{
		events.GET("", h.Catalog.ListEvents)
		events.GET("/:id", h.Catalog.GetEvent)
		events.GET("/:id/ticket-types", h.Catalog.ListTicketTypes)
	}

	checkouts := r.Group("/checkouts")
	{
		checkouts.POST("", h.Checkout.Start)
		checkouts.GET("/:id", h.Checkout.Get)
		checkouts.POST("/:id/items", h.Checkout.AddItem)
		checkouts.POST("/:id/items/:ticket_type_id/increment", h.Checkout.IncrementItem)
		checkouts.POST("/:id/items/:ticket_type_id/decrement", h.Checkout.DecrementItem)
		checkouts.DELETE("/:id/items/:ticket_type_id", h.Checkout.RemoveItem)
		checkouts.POST("/:id/contact", h.Checkout.SubmitContact)
		checkouts.POST("/:id/code", h.Checkout.SubmitCode)
		checkouts.POST("/:id/code/resend", h.Checkout.ResendCode)
		checkouts.POST("/:id/back", h.Checkout.Back)
		checkouts.POST("/:id/purchase", h.Checkout.SubmitPurchase)
	}

	orders := r.Group("/orders")
	{
		orders.GET("/:id/receipt.pdf", h.Orders.Receipt)
		orders.GET("/:id/reference.png", h.Orders.ReferenceQR)
	}

	// ---- admin (JWT)
	r.POST("/admin/login", h.Admin.Login)
	admin := r.Group("/admin",
		middleware.AuthMiddleware(tokens),
		middleware.RequireRoles(authz.RoleReviewer, authz.RoleAdmin),
	)
	{
		admin.GET("/orders", h.Admin.ListOrders)
		admin.GET("/orders/:id", h.Admin.GetOrder)
		admin.POST("/orders/:id/review", h.Admin.Review)
	}

	return r
}
