// Package api is the unit's local diagnostic surface: the current frame,
// connectivity, recently sighted radio identifiers, and button injection for
// headless bench units. It is not the administrative dashboard, which lives in
// the central system.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"faculty-desk-unit/internal/mw"
	"faculty-desk-unit/internal/render"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(u Unit, identity render.Identity, rateLimitPerSec float64) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(u, identity)

	rateLimiter := mw.RateLimiter(rate.Limit(rateLimitPerSec), 5)

	// The identity never changes at runtime; cache it.
	caching := mw.Cache(cache.New(time.Hour, 2*time.Hour))

	r.GET("/healthz", handler.GetHealth)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/frame", handler.GetFrame)
		api.GET("/status", handler.GetStatus)
		api.GET("/nearby", handler.GetNearby)
		api.GET("/identity", caching, handler.GetIdentity)
		api.POST("/buttons/:name", handler.PressButton)
	}

	return r
}
