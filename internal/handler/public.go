package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/service"
)

// Cached catalog listings.  The router mounts the cache on these paths and
// owner or admin writes invalidate them.
const (
	VenuesRoute      = "/v1/venues"
	VenueCourtsRoute = "/v1/venues/:id/courts"
)

// CatalogCache drops cached listings of a route for the given path params.
type CatalogCache interface {
	Invalidate(ctx context.Context, route string, params ...string)
}

type nopCache struct{}

func (nopCache) Invalidate(context.Context, string, ...string) {}

// VenueLister lists approved venues for browsing.
type VenueLister interface {
	ListApproved(ctx context.Context, city string, limit, offset int) ([]model.Venue, int, error)
}

// CourtLister lists the active courts of a venue.
type CourtLister interface {
	ListByVenue(ctx context.Context, venueID uint64) ([]model.Court, error)
}

// PublicHandler serves unauthenticated catalog and availability reads.
type PublicHandler struct {
	Venues VenueLister
	Courts CourtLister
	Ledger *service.Ledger
	Log    *zap.Logger
}

func NewPublicHandler(v VenueLister, c CourtLister, l *service.Ledger, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandler{Venues: v, Courts: c, Ledger: l, Log: logger}
}

// ListVenues handles GET /v1/venues?city=&page=&limit=.
func (h *PublicHandler) ListVenues(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok || page < 1 {
		return badRequest(c, "page must be a positive integer")
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok || limit < 1 || limit > 100 {
		return badRequest(c, "limit must be between 1 and 100")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	items, total, err := h.Venues.ListApproved(ctx, strings.TrimSpace(c.QueryParam("city")), limit, (page-1)*limit)
	if err != nil {
		h.Log.Error("list venues failed", zap.Error(err))
		return internalError(c)
	}
	if items == nil {
		items = []model.Venue{}
	}
	return c.JSON(http.StatusOK, model.Page[model.Venue]{
		Data:       items,
		Pagination: model.NewPagination(page, limit, total),
	})
}

// ListCourts handles GET /v1/venues/:id/courts.
func (h *PublicHandler) ListCourts(c echo.Context) error {
	venueID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	courts, err := h.Courts.ListByVenue(ctx, venueID)
	if err != nil {
		h.Log.Error("list courts failed", zap.Uint64("venue_id", venueID), zap.Error(err))
		return internalError(c)
	}
	if courts == nil {
		courts = []model.Court{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": courts})
}

// Occupied handles GET /v1/courts/:id/occupied?date=YYYY-MM-DD.
func (h *PublicHandler) Occupied(c echo.Context) error {
	courtID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	slots, err := h.Ledger.GetOccupiedSlots(ctx, courtID, c.QueryParam("date"))
	if err != nil {
		return ledgerError(c, err)
	}
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	return c.JSON(http.StatusOK, echo.Map{"courtId": courtID, "date": c.QueryParam("date"), "occupied": slots})
}

// Availability handles GET /v1/courts/:id/availability?date=YYYY-MM-DD.
func (h *PublicHandler) Availability(c echo.Context) error {
	courtID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	slots, err := h.Ledger.GetAvailability(ctx, courtID, c.QueryParam("date"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"courtId":     courtID,
		"date":        c.QueryParam("date"),
		"slotMinutes": h.Ledger.SlotMinutes(),
		"slots":       slots,
	})
}
