package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// PaymentStatus records the settlement state reported by the caller.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod is opaque to the ledger beyond being recorded.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentWallet PaymentMethod = "wallet"
	PaymentCash   PaymentMethod = "cash"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentWallet, PaymentCash:
		return true
	}
	return false
}

// TimeSlot is a wall-clock "HH:MM" pair within a booking date.  An
// EndTime of "00:00" or "24:00" stands for midnight at the end of the day.
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Booking is a reservation of one or more slots of a court on a date.
// UserID, CourtID, VenueID, Date, TimeSlots and TotalAmount never change
// after creation; only BookingStatus (and UpdatedAt) move.
type Booking struct {
	ID            string        `json:"id"`
	UserID        uint64        `json:"userId"`
	CourtID       uint64        `json:"courtId"`
	VenueID       uint64        `json:"venueId"`
	Date          string        `json:"date"` // YYYY-MM-DD, venue local
	TimeSlots     []TimeSlot    `json:"timeSlots"`
	TotalAmount   int64         `json:"totalAmount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	BookingStatus BookingStatus `json:"bookingStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	TransactionID string        `json:"transactionId"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CanTransition reports whether the booking may move to the given status.
// Only confirmed bookings move, and only to cancelled or completed.
func (b *Booking) CanTransition(to BookingStatus) bool {
	if b.BookingStatus != BookingConfirmed {
		return false
	}
	return to == BookingCancelled || to == BookingCompleted
}

// OccupiesSlots reports whether the booking still holds its slots.
// Completed bookings keep their slots so history cannot be double sold.
func (b *Booking) OccupiesSlots() bool {
	return b.BookingStatus == BookingConfirmed || b.BookingStatus == BookingCompleted
}
