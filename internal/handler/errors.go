package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quickcourt/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindUnauthorized:          http.StatusUnauthorized,
	service.KindForbidden:             http.StatusForbidden,
	service.KindNotFound:              http.StatusNotFound,
	service.KindInvalidRequest:        http.StatusBadRequest,
	service.KindNotBookable:           http.StatusUnprocessableEntity,
	service.KindOutsideOperatingHours: http.StatusUnprocessableEntity,
	service.KindSlotUnavailable:       http.StatusConflict,
	service.KindConflict:              http.StatusConflict,
	service.KindInvalidState:          http.StatusConflict,
	service.KindInternal:              http.StatusInternalServerError,
}

// statusOf maps a ledger error kind to its HTTP status.
func statusOf(kind service.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// fail writes the error envelope {"error", "kind"}.
func fail(c echo.Context, kind service.Kind, msg string) error {
	return c.JSON(statusOf(kind), echo.Map{"error": msg, "kind": kind})
}

// ledgerError renders an error returned by the ledger.  Internal causes
// never reach the client.
func ledgerError(c echo.Context, err error) error {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		return internalError(c)
	}
	msg := err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		// The kind travels in its own field; the message carries only the detail.
		msg = se.Message
		if se.Err != nil {
			msg += ": " + se.Err.Error()
		}
	}
	return fail(c, kind, msg)
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, service.KindInvalidRequest, msg)
}

func internalError(c echo.Context) error {
	return fail(c, service.KindInternal, "internal error")
}
