package queue

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/quickcourt/internal/model"
)

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:            "3f6c2a4e-9c1b-4d8e-8a2f-1b2c3d4e5f60",
		UserID:        7,
		CourtID:       11,
		VenueID:       3,
		Date:          "2025-03-10",
		TimeSlots:     []model.TimeSlot{{StartTime: "09:00", EndTime: "10:00"}, {StartTime: "10:00", EndTime: "11:00"}},
		TotalAmount:   1000,
		PaymentStatus: model.PaymentPaid,
		BookingStatus: model.BookingConfirmed,
	}
}

func TestFormatAuditLine(t *testing.T) {
	at := time.Date(2025, 3, 9, 8, 30, 0, 0, time.UTC)
	line := FormatAuditLine(NewBookingEvent(EventBookingConfirmed, sampleBooking(), at))

	assert.Equal(t,
		"[2025-03-09T08:30:00Z] booking.confirmed | booking_id=3f6c2a4e-9c1b-4d8e-8a2f-1b2c3d4e5f60 | user_id=7 | venue_id=3 | court_id=11 | date=2025-03-10 | slots=[09:00-10:00,10:00-11:00] | total=1000 | payment=paid | status=confirmed\n",
		line)
}

func TestAuditLogHandleAppends(t *testing.T) {
	dir := t.TempDir()
	audit := NewAuditLog(dir + "/logs")

	for _, typ := range []string{EventBookingConfirmed, EventBookingCancelled} {
		body, err := json.Marshal(NewBookingEvent(typ, sampleBooking(), time.Now()))
		require.NoError(t, err)
		require.NoError(t, audit.Handle(body))
	}

	raw, err := os.ReadFile(audit.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "booking.confirmed")
	assert.Contains(t, lines[1], "booking.cancelled")
}

func TestAuditLogRejectsGarbage(t *testing.T) {
	audit := NewAuditLog(t.TempDir())
	assert.Error(t, audit.Handle([]byte("not json")))
	assert.Error(t, audit.Handle([]byte(`{"type":""}`)))

	_, err := os.Stat(audit.Path())
	assert.True(t, os.IsNotExist(err))
}
