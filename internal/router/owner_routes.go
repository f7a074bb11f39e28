package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quickcourt/internal/handler"
	"github.com/iliyamo/quickcourt/internal/middleware"
	"github.com/iliyamo/quickcourt/internal/model"
)

// RegisterOwner registers venue and court management for facility owners.
func RegisterOwner(e *echo.Echo, h *handler.OwnerHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	owner := middleware.RequireRole(model.RoleOwner)

	g := e.Group("/v1/owner")
	g.POST("/venues", h.CreateVenue, auth, owner)
	g.POST("/venues/:id/courts", h.CreateCourt, auth, owner)
	g.PATCH("/courts/:id/price", h.UpdatePrice, auth, owner)
}

// RegisterAdmin registers the venue approval workflow.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	e.PATCH("/v1/admin/venues/:id/status", h.SetVenueStatus,
		middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
}
