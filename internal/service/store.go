package service

import (
	"context"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/queue"
	"github.com/iliyamo/quickcourt/internal/repository"
)

// IdentityProvider resolves the caller of a ledger operation.
// Implementations return repository.ErrUserNotFound for unknown ids.
type IdentityProvider interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// Catalog supplies courts with their price and operating hours.
// Implementations return repository.ErrCourtNotFound for unknown ids.
type Catalog interface {
	GetByID(ctx context.Context, id uint64) (*model.Court, error)
}

// VenueDirectory supplies venue ownership and approval status.
// Implementations return repository.ErrVenueNotFound for unknown ids.
type VenueDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
}

// BookingStore persists bookings.  Create must fail with
// repository.ErrSlotTaken when any (court, date, slot start) of the new
// booking is already held by an active booking, no matter how many
// callers race for it.
type BookingStore interface {
	OccupiedSlots(ctx context.Context, courtID uint64, date string) ([]model.TimeSlot, error)
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Transition(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]model.Booking, int, error)
	ListDue(ctx context.Context, beforeDate string, limit int) ([]string, error)
}

// EventPublisher receives booking lifecycle events after they commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}
