package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/repository"
	"github.com/iliyamo/quickcourt/internal/schedule"
	"github.com/iliyamo/quickcourt/internal/service"
)

// VenueStore is the venue persistence used by owners and admins.
type VenueStore interface {
	Create(ctx context.Context, v *model.Venue) error
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
	UpdateStatus(ctx context.Context, id uint64, status model.VenueStatus) error
}

// CourtStore is the court persistence used by owners.
type CourtStore interface {
	Create(ctx context.Context, c *model.Court) error
	GetByID(ctx context.Context, id uint64) (*model.Court, error)
	UpdatePrice(ctx context.Context, id uint64, price int64) error
}

// OwnerHandler lets facility owners manage their venues and courts.
type OwnerHandler struct {
	Venues VenueStore
	Courts CourtStore
	Cache  CatalogCache
	Log    *zap.Logger
}

// NewOwnerHandler panics if a store is nil.  cache may be nil.
func NewOwnerHandler(v VenueStore, c CourtStore, cache CatalogCache, logger *zap.Logger) *OwnerHandler {
	if v == nil || c == nil {
		panic("nil store passed to NewOwnerHandler")
	}
	if cache == nil {
		cache = nopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnerHandler{Venues: v, Courts: c, Cache: cache, Log: logger}
}

type createVenueReq struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type createCourtReq struct {
	Name           string               `json:"name"`
	Sport          string               `json:"sport"`
	PricePerHour   int64                `json:"pricePerHour"`
	OperatingHours model.OperatingHours `json:"operatingHours"`
}

type updatePriceReq struct {
	PricePerHour int64 `json:"pricePerHour"`
}

// CreateVenue handles POST /v1/owner/venues.  New venues start PENDING
// and cannot take bookings until an admin approves them.
func (h *OwnerHandler) CreateVenue(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	var req createVenueReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.Name, req.City = strings.TrimSpace(req.Name), strings.TrimSpace(req.City)
	if req.Name == "" || req.City == "" {
		return badRequest(c, "name and city are required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	v := &model.Venue{OwnerID: uid, Name: req.Name, City: req.City}
	if err := h.Venues.Create(ctx, v); err != nil {
		h.Log.Error("create venue failed", zap.Uint64("owner_id", uid), zap.Error(err))
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, v)
}

// CreateCourt handles POST /v1/owner/venues/:id/courts.
func (h *OwnerHandler) CreateCourt(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	venueID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	var req createCourtReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return badRequest(c, "name is required")
	}
	if req.PricePerHour <= 0 {
		return badRequest(c, "pricePerHour must be positive")
	}
	for _, dh := range []model.DayHours{req.OperatingHours.Weekday, req.OperatingHours.Weekend} {
		if _, err := schedule.ParseHours(dh); err != nil {
			return badRequest(c, "operatingHours: "+err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	if err := h.ownVenue(ctx, uid, venueID); err != nil {
		return h.ownershipError(c, err)
	}
	court := &model.Court{
		VenueID:        venueID,
		Name:           req.Name,
		Sport:          strings.TrimSpace(req.Sport),
		PricePerHour:   req.PricePerHour,
		OperatingHours: req.OperatingHours,
	}
	if err := h.Courts.Create(ctx, court); err != nil {
		if errors.Is(err, repository.ErrCourtExists) {
			return fail(c, service.KindConflict, "a court with this name already exists")
		}
		h.Log.Error("create court failed", zap.Uint64("venue_id", venueID), zap.Error(err))
		return internalError(c)
	}
	h.Cache.Invalidate(ctx, VenueCourtsRoute, strconv.FormatUint(venueID, 10))
	return c.JSON(http.StatusCreated, court)
}

// UpdatePrice handles PATCH /v1/owner/courts/:id/price.  Existing bookings
// keep the amount computed when they were made.
func (h *OwnerHandler) UpdatePrice(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	courtID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid court id")
	}
	var req updatePriceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.PricePerHour <= 0 {
		return badRequest(c, "pricePerHour must be positive")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	court, err := h.Courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrCourtNotFound) {
			return fail(c, service.KindNotFound, "court not found")
		}
		return internalError(c)
	}
	if err := h.ownVenue(ctx, uid, court.VenueID); err != nil {
		return h.ownershipError(c, err)
	}
	if err := h.Courts.UpdatePrice(ctx, courtID, req.PricePerHour); err != nil {
		h.Log.Error("update price failed", zap.Uint64("court_id", courtID), zap.Error(err))
		return internalError(c)
	}
	court.PricePerHour = req.PricePerHour
	h.Cache.Invalidate(ctx, VenueCourtsRoute, strconv.FormatUint(court.VenueID, 10))
	return c.JSON(http.StatusOK, court)
}

var errNotOwner = errors.New("venue belongs to another owner")

func (h *OwnerHandler) ownVenue(ctx context.Context, uid, venueID uint64) error {
	v, err := h.Venues.GetByID(ctx, venueID)
	if err != nil {
		return err
	}
	if v.OwnerID != uid {
		return errNotOwner
	}
	return nil
}

func (h *OwnerHandler) ownershipError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrVenueNotFound):
		return fail(c, service.KindNotFound, "venue not found")
	case errors.Is(err, errNotOwner):
		return fail(c, service.KindForbidden, "venue belongs to another owner")
	}
	h.Log.Error("load venue failed", zap.Error(err))
	return internalError(c)
}
