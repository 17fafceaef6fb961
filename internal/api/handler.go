package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"faculty-desk-unit/internal/input"
	"faculty-desk-unit/internal/model"
	"faculty-desk-unit/internal/render"
)

// Unit is the slice of the desk unit the local API exposes.
type Unit interface {
	Frame() render.Frame
	Status() model.AvailabilityStatus
	Connection() model.ConnectionState
	Nearby() []string
	Press(btn input.Button)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	unit     Unit
	identity render.Identity
}

// NewHandler creates a new API handler.
func NewHandler(u Unit, identity render.Identity) *Handler {
	return &Handler{unit: u, identity: identity}
}

// GetHealth handles GET /healthz.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetFrame handles GET /api/frame: the last rendered display frame.
func (h *Handler) GetFrame(c *gin.Context) {
	c.JSON(http.StatusOK, h.unit.Frame())
}

// GetStatus handles GET /api/status: availability plus link state.
func (h *Handler) GetStatus(c *gin.Context) {
	conn := h.unit.Connection()
	c.JSON(http.StatusOK, gin.H{
		"status":                h.unit.Status(),
		"network_attached":      conn.NetworkAttached,
		"broker_session_active": conn.BrokerSessionActive,
	})
}

// GetNearby handles GET /api/nearby: radio identifiers sighted within the
// presence window.
func (h *Handler) GetNearby(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ids": h.unit.Nearby()})
}

// GetIdentity handles GET /api/identity.
func (h *Handler) GetIdentity(c *gin.Context) {
	c.JSON(http.StatusOK, h.identity)
}

// PressButton handles POST /api/buttons/:name, injecting an operator press.
func (h *Handler) PressButton(c *gin.Context) {
	btn, ok := input.ParseButton(c.Param("name"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown button"})
		return
	}
	h.unit.Press(btn)
	c.JSON(http.StatusAccepted, gin.H{"pressed": btn.String()})
}
