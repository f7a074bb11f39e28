package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quickcourt/internal/handler"
	"github.com/iliyamo/quickcourt/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication and
// are not part of the API surface.  db may be nil.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected profile endpoint /v1/me.  Logout accepts either a refresh token
// or a bearer token, so it is not behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated browse endpoints.  cache
// wraps only the catalog listings; occupancy and availability are always
// computed from the ledger.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	if cache == nil {
		cache = passThrough
	}
	e.GET(handler.VenuesRoute, p.ListVenues, cache)
	e.GET(handler.VenueCourtsRoute, p.ListCourts, cache)

	e.GET("/v1/courts/:id/occupied", p.Occupied)
	e.GET("/v1/courts/:id/availability", p.Availability)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
