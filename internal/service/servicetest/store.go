// Package servicetest provides in-memory collaborators for exercising the
// booking ledger without MySQL.  Bookings enforces the same rule as the
// uq_booking_slots_active index: one active booking per court, date and
// slot start.
package servicetest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/repository"
)

// Users is an in-memory IdentityProvider.
type Users struct {
	mu sync.RWMutex
	m  map[uint64]model.User
}

func NewUsers(users ...model.User) *Users {
	u := &Users{m: map[uint64]model.User{}}
	for _, x := range users {
		u.Put(x)
	}
	return u
}

func (u *Users) Put(x model.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.m[x.ID] = x
}

func (u *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	x, ok := u.m[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &x, nil
}

// Venues is an in-memory VenueDirectory.
type Venues struct {
	mu sync.RWMutex
	m  map[uint64]model.Venue
}

func NewVenues(venues ...model.Venue) *Venues {
	v := &Venues{m: map[uint64]model.Venue{}}
	for _, x := range venues {
		v.Put(x)
	}
	return v
}

func (v *Venues) Put(x model.Venue) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m[x.ID] = x
}

func (v *Venues) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	x, ok := v.m[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	return &x, nil
}

func (v *Venues) ownerOf(id uint64) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.m[id].OwnerID
}

// Courts is an in-memory Catalog.
type Courts struct {
	mu sync.RWMutex
	m  map[uint64]model.Court
}

func NewCourts(courts ...model.Court) *Courts {
	c := &Courts{m: map[uint64]model.Court{}}
	for _, x := range courts {
		c.Put(x)
	}
	return c
}

func (c *Courts) Put(x model.Court) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[x.ID] = x
}

// SetPrice changes the hourly price of a court.
func (c *Courts) SetPrice(id uint64, price int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	x := c.m[id]
	x.PricePerHour = price
	c.m[id] = x
}

func (c *Courts) GetByID(_ context.Context, id uint64) (*model.Court, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	x, ok := c.m[id]
	if !ok {
		return nil, repository.ErrCourtNotFound
	}
	return &x, nil
}

type slotKey struct {
	courtID uint64
	date    string
	start   string
}

// Bookings is an in-memory BookingStore.
type Bookings struct {
	mu     sync.Mutex
	venues *Venues
	rows   map[string]model.Booking
	active map[slotKey]string

	// FailCreate, when set, is returned by Create before any state changes.
	FailCreate error
	// BeforeCreate runs before the uniqueness check, with no lock held.
	BeforeCreate func(b *model.Booking)
}

// NewBookings returns an empty store.  venues resolves venue owners for
// owner scoped listings and may be nil.
func NewBookings(venues *Venues) *Bookings {
	return &Bookings{
		venues: venues,
		rows:   map[string]model.Booking{},
		active: map[slotKey]string{},
	}
}

func (s *Bookings) OccupiedSlots(_ context.Context, courtID uint64, date string) ([]model.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TimeSlot
	for _, b := range s.rows {
		if b.CourtID == courtID && b.Date == date && b.BookingStatus == model.BookingConfirmed {
			out = append(out, b.TimeSlots...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *Bookings) Create(_ context.Context, b *model.Booking) error {
	if s.FailCreate != nil {
		return s.FailCreate
	}
	if s.BeforeCreate != nil {
		s.BeforeCreate(b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[b.ID]; ok {
		return errors.New("duplicate booking id")
	}
	keys := make([]slotKey, 0, len(b.TimeSlots))
	for _, ts := range b.TimeSlots {
		k := slotKey{courtID: b.CourtID, date: b.Date, start: ts.StartTime}
		if _, taken := s.active[k]; taken {
			return repository.ErrSlotTaken
		}
		keys = append(keys, k)
	}
	for _, k := range keys {
		s.active[k] = b.ID
	}
	s.rows[b.ID] = cloneBooking(*b)
	return nil
}

func (s *Bookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	out := cloneBooking(b)
	return &out, nil
}

func (s *Bookings) Transition(_ context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	if b.BookingStatus != from {
		return nil, repository.ErrStatusChanged
	}
	b.BookingStatus = to
	if to == model.BookingCancelled {
		for _, ts := range b.TimeSlots {
			delete(s.active, slotKey{courtID: b.CourtID, date: b.Date, start: ts.StartTime})
		}
	}
	s.rows[id] = b
	out := cloneBooking(b)
	return &out, nil
}

func (s *Bookings) List(_ context.Context, f repository.BookingFilter) ([]model.Booking, int, error) {
	s.mu.Lock()
	var all []model.Booking
	for _, b := range s.rows {
		all = append(all, cloneBooking(b))
	}
	s.mu.Unlock()

	var match []model.Booking
	for _, b := range all {
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		if f.VenueOwnerID != 0 && (s.venues == nil || s.venues.ownerOf(b.VenueID) != f.VenueOwnerID) {
			continue
		}
		if f.Status != "" && b.BookingStatus != f.Status {
			continue
		}
		match = append(match, b)
	}
	sort.Slice(match, func(i, j int) bool {
		if !match[i].CreatedAt.Equal(match[j].CreatedAt) {
			return match[i].CreatedAt.After(match[j].CreatedAt)
		}
		return match[i].ID > match[j].ID
	})
	total := len(match)
	if f.Offset >= total {
		return []model.Booking{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < total {
		end = f.Offset + f.Limit
	}
	return match[f.Offset:end], total, nil
}

func (s *Bookings) ListDue(_ context.Context, beforeDate string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, b := range s.rows {
		if b.BookingStatus == model.BookingConfirmed && b.Date < beforeDate {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Len returns the number of stored bookings.
func (s *Bookings) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func cloneBooking(b model.Booking) model.Booking {
	b.TimeSlots = append([]model.TimeSlot(nil), b.TimeSlots...)
	return b
}
