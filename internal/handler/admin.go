package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/repository"
	"github.com/iliyamo/quickcourt/internal/service"
)

// AdminHandler runs the venue approval workflow.
type AdminHandler struct {
	Venues VenueStore
	Cache  CatalogCache
	Log    *zap.Logger
}

func NewAdminHandler(v VenueStore, cache CatalogCache, logger *zap.Logger) *AdminHandler {
	if cache == nil {
		cache = nopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{Venues: v, Cache: cache, Log: logger}
}

// SetVenueStatus handles PATCH /v1/admin/venues/:id/status with body
// {"status": "APPROVED" | "REJECTED" | "PENDING"}.
func (h *AdminHandler) SetVenueStatus(c echo.Context) error {
	venueID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	status := model.VenueStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return badRequest(c, "status must be PENDING, APPROVED or REJECTED")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	if err := h.Venues.UpdateStatus(ctx, venueID, status); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return fail(c, service.KindNotFound, "venue not found")
		}
		h.Log.Error("update venue status failed", zap.Uint64("venue_id", venueID), zap.Error(err))
		return internalError(c)
	}
	v, err := h.Venues.GetByID(ctx, venueID)
	if err != nil {
		return internalError(c)
	}
	// The public venue list only shows approved venues.
	h.Cache.Invalidate(ctx, VenuesRoute)
	h.Log.Info("venue status changed", zap.Uint64("venue_id", venueID), zap.String("status", string(status)))
	return c.JSON(http.StatusOK, v)
}
