// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the audit consumer that use them.
package queue

import (
	"time"

	"github.com/iliyamo/quickcourt/internal/model"
)

// Routing keys of booking lifecycle events on the booking exchange.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is published whenever a booking is confirmed, cancelled or
// completed.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type BookingEvent struct {
	Type          string           `json:"type"`
	BookingID     string           `json:"booking_id"`
	UserID        uint64           `json:"user_id"`
	CourtID       uint64           `json:"court_id"`
	VenueID       uint64           `json:"venue_id"`
	Date          string           `json:"date"`
	TimeSlots     []model.TimeSlot `json:"time_slots"`
	TotalAmount   int64            `json:"total_amount"`
	PaymentStatus string           `json:"payment_status"`
	BookingStatus string           `json:"booking_status"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// NewBookingEvent builds the event of the given type for b.
func NewBookingEvent(typ string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          typ,
		BookingID:     b.ID,
		UserID:        b.UserID,
		CourtID:       b.CourtID,
		VenueID:       b.VenueID,
		Date:          b.Date,
		TimeSlots:     b.TimeSlots,
		TotalAmount:   b.TotalAmount,
		PaymentStatus: string(b.PaymentStatus),
		BookingStatus: string(b.BookingStatus),
		OccurredAt:    at.UTC(),
	}
}
