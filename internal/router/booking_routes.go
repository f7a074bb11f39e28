package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quickcourt/internal/handler"
	"github.com/iliyamo/quickcourt/internal/middleware"
	"github.com/iliyamo/quickcourt/internal/model"
)

// RegisterBookings registers the ledger endpoints under /v1/bookings.
// Creation is limited to players and passes through limiter; listing and
// detail are open to every role and scoped by the ledger.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	if limiter == nil {
		limiter = passThrough
	}
	auth := middleware.JWTAuth(jwtSecret)
	anyRole := middleware.RequireRole(model.RolePlayer, model.RoleOwner, model.RoleAdmin)

	g := e.Group("/v1/bookings")
	g.POST("", h.Create, auth, middleware.RequireRole(model.RolePlayer), limiter)
	g.GET("", h.List, auth, anyRole)
	g.GET("/:id", h.Get, auth, anyRole)
	g.POST("/:id/cancel", h.Cancel, auth, middleware.RequireRole(model.RolePlayer, model.RoleAdmin))
}
