package model

import "time"

// VenueStatus is the admin approval state of a venue.
type VenueStatus string

const (
	VenuePending  VenueStatus = "PENDING"
	VenueApproved VenueStatus = "APPROVED"
	VenueRejected VenueStatus = "REJECTED"
)

// Valid reports whether s is a known approval state.
func (s VenueStatus) Valid() bool {
	switch s {
	case VenuePending, VenueApproved, VenueRejected:
		return true
	}
	return false
}

// Venue is a sports facility owned by a facility owner.  Only approved
// venues accept bookings.
type Venue struct {
	ID        uint64      `json:"id"`
	OwnerID   uint64      `json:"ownerId"`
	Name      string      `json:"name"`
	City      string      `json:"city"`
	Status    VenueStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
