package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/service"
)

// ledgerTimeout bounds every ledger call made on behalf of a request.
const ledgerTimeout = 5 * time.Second

// BookingHandler exposes the booking ledger.  All methods assume JWTAuth
// has already run.
type BookingHandler struct {
	Ledger *service.Ledger
}

func NewBookingHandler(l *service.Ledger) *BookingHandler {
	if l == nil {
		panic("nil ledger passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: l}
}

type createBookingReq struct {
	VenueID       uint64              `json:"venueId"`
	CourtID       uint64              `json:"courtId"`
	Date          string              `json:"date"`
	TimeSlots     []model.TimeSlot    `json:"timeSlots"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	TransactionID string              `json:"transactionId"`
}

// cancelBookingReq holds the optional fields a client resubmits to prove
// it is cancelling the booking it thinks it is.
type cancelBookingReq struct {
	VenueID       uint64              `json:"venueId"`
	CourtID       uint64              `json:"courtId"`
	Date          string              `json:"date"`
	TimeSlots     []model.TimeSlot    `json:"timeSlots"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	TransactionID string              `json:"transactionId"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	b, err := h.Ledger.CreateBooking(ctx, uid, service.CreateBookingInput{
		VenueID:       req.VenueID,
		CourtID:       req.CourtID,
		Date:          req.Date,
		TimeSlots:     req.TimeSlots,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /v1/bookings?status=&page=&limit=.
func (h *BookingHandler) List(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return badRequest(c, "page must be an integer")
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return badRequest(c, "limit must be an integer")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	res, err := h.Ledger.ListBookings(ctx, a, service.ListFilter{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	b, err := h.Ledger.GetBooking(ctx, a, c.Param("id"))
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles POST /v1/bookings/:id/cancel.  The body is optional.
func (h *BookingHandler) Cancel(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, service.KindUnauthorized, "unauthorized")
	}
	var exp *service.CancelExpectation
	if c.Request().ContentLength != 0 {
		var req cancelBookingReq
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		exp = &service.CancelExpectation{
			CourtID:       req.CourtID,
			VenueID:       req.VenueID,
			Date:          req.Date,
			TimeSlots:     req.TimeSlots,
			PaymentMethod: req.PaymentMethod,
			TransactionID: req.TransactionID,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), ledgerTimeout)
	defer cancel()

	b, err := h.Ledger.CancelBooking(ctx, a, c.Param("id"), exp)
	if err != nil {
		return ledgerError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
