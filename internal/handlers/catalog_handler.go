package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketera/internal/services"
)

type CatalogHandler struct {
	Service *services.CatalogService
}

func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

// @Summary  List active events
// @Tags     Catalog
// @Produce  json
// @Success  200  {array}   models.Event
// @Router   /events [get]
func (h *CatalogHandler) ListEvents(c *gin.Context) {
	events, err := h.Service.ListEvents(c.Request.Context())
	if err != nil {
		writeError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// @Summary  Get event
// @Tags     Catalog
// @Produce  json
// @Param    id   path      string  true  "Event ID"
// @Success  200  {object}  models.Event
// @Failure  404  {object}  map[string]string
// @Router   /events/{id} [get]
func (h *CatalogHandler) GetEvent(c *gin.Context) {
	ev, err := h.Service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// @Summary  List ticket types of an event
// @Tags     Catalog
// @Produce  json
// @Param    id   path      string  true  "Event ID"
// @Success  200  {array}   models.TicketType
// @Failure  404  {object}  map[string]string
// @Router   /events/{id}/ticket-types [get]
func (h *CatalogHandler) ListTicketTypes(c *gin.Context) {
	types, err := h.Service.ListTicketTypes(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, types)
}
