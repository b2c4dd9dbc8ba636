package feed

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalhub/internal/pkg/response"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/products/:id/feed", h.Subscribe)
}

// Subscribe opens a WebSocket that streams availability events for one
// product. Public: events carry no customer data.
func (h *Handler) Subscribe(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	if err := h.hub.ServeWS(c.Writer, c.Request, productID); err != nil {
		// Upgrade failures already wrote an HTTP error response.
		return
	}
}
