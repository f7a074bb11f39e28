package model

import "time"

// DayHours is an opening window expressed as "HH:MM" wall-clock values.
// Close may be "24:00" for courts that stay open until midnight.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OperatingHours holds the weekday (Mon-Fri) and weekend (Sat-Sun)
// schedules of a court.
type OperatingHours struct {
	Weekday DayHours `json:"weekday"`
	Weekend DayHours `json:"weekend"`
}

// Court is a bookable playing surface belonging to a venue.
//
// Fields:
//  ID             – courts.id
//  VenueID        – owning venue, courts.venue_id
//  Name           – display name unique within the venue
//  Sport          – free text sport label (badminton, tennis, ...)
//  PricePerHour   – current hourly price in currency units
//  OperatingHours – weekday/weekend schedule
//  IsActive       – inactive courts are hidden from browsing
type Court struct {
	ID             uint64         `json:"id"`
	VenueID        uint64         `json:"venueId"`
	Name           string         `json:"name"`
	Sport          string         `json:"sport"`
	PricePerHour   int64          `json:"pricePerHour"`
	OperatingHours OperatingHours `json:"operatingHours"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
