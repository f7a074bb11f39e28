package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/quickcourt/internal/config"
	"github.com/iliyamo/quickcourt/internal/handler"
	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/service"
	"github.com/iliyamo/quickcourt/internal/service/servicetest"
	"github.com/iliyamo/quickcourt/internal/utils"
)

const secret = "router-secret"

// marker records which paths ran through a middleware.
type marker struct{ hits []string }

func (m *marker) mw(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		m.hits = append(m.hits, c.Path())
		return next(c)
	}
}

func newServer(t *testing.T, cache, limiter *marker) *echo.Echo {
	t.Helper()
	venues := servicetest.NewVenues(model.Venue{ID: 1, OwnerID: 10, Status: model.VenueApproved})
	courts := servicetest.NewCourts(model.Court{ID: 1, VenueID: 1, PricePerHour: 100, IsActive: true,
		OperatingHours: model.OperatingHours{
			Weekday: model.DayHours{Open: "06:00", Close: "22:00"},
			Weekend: model.DayHours{Open: "06:00", Close: "22:00"},
		}})
	users := servicetest.NewUsers(model.User{ID: 5, Role: model.RolePlayer, IsActive: true})
	ledger := service.NewLedger(users, courts, venues, servicetest.NewBookings(venues), nil, nil, service.LedgerConfig{
		Now: func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) },
	})

	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterAuth(e, handler.NewAuthHandler(config.Config{JWTSecret: secret}, nil, nil, nil), secret)
	RegisterPublic(e, handler.NewPublicHandler(emptyCatalog{}, emptyCatalog{}, ledger, nil), cache.mw)
	RegisterBookings(e, handler.NewBookingHandler(ledger), secret, limiter.mw)
	RegisterOwner(e, handler.NewOwnerHandler(nopVenues{}, nopCourts{}, nil, nil), secret)
	RegisterAdmin(e, handler.NewAdminHandler(nopVenues{}, nil, nil), secret)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer(t, &marker{}, &marker{})
	var got []string
	for _, r := range e.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)
	for _, want := range []string{
		"GET /healthz",
		"POST /v1/auth/register",
		"POST /v1/auth/login",
		"POST /v1/auth/refresh",
		"POST /v1/auth/logout",
		"GET /v1/me",
		"GET /v1/venues",
		"GET /v1/venues/:id/courts",
		"GET /v1/courts/:id/occupied",
		"GET /v1/courts/:id/availability",
		"POST /v1/bookings",
		"GET /v1/bookings",
		"GET /v1/bookings/:id",
		"POST /v1/bookings/:id/cancel",
		"POST /v1/owner/venues",
		"POST /v1/owner/venues/:id/courts",
		"PATCH /v1/owner/courts/:id/price",
		"PATCH /v1/admin/venues/:id/status",
	} {
		assert.Contains(t, got, want)
	}
}

func TestCacheWrapsOnlyCatalog(t *testing.T) {
	cache := &marker{}
	e := newServer(t, cache, &marker{})

	for _, path := range []string{
		"/v1/venues",
		"/v1/venues/1/courts",
		"/v1/courts/1/occupied?date=2025-03-10",
		"/v1/courts/1/availability?date=2025-03-10",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, []string{"/v1/venues", "/v1/venues/:id/courts"}, cache.hits)
}

func TestLimiterRunsAfterAuthOnCreateOnly(t *testing.T) {
	limiter := &marker{}
	e := newServer(t, &marker{}, limiter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, limiter.hits)

	at, err := utils.NewAccessToken(secret, 5, "PLAYER", 5)
	require.NoError(t, err)
	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/v1/bookings", nil),
		httptest.NewRequest(http.MethodGet, "/v1/bookings", nil),
	} {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+at.Token)
		e.ServeHTTP(httptest.NewRecorder(), r)
	}
	assert.Equal(t, []string{"/v1/bookings"}, limiter.hits)
}

func TestHealthz(t *testing.T) {
	e := newServer(t, &marker{}, &marker{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
