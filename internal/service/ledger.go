package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/queue"
	"github.com/iliyamo/quickcourt/internal/repository"
	"github.com/iliyamo/quickcourt/internal/schedule"
)

const (
	defaultSlotMinutes = 60
	defaultPageLimit   = 10
	maxPageLimit       = 100
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   model.Role
}

// LedgerConfig tunes slot granularity and the venue clock.
type LedgerConfig struct {
	SlotMinutes int
	Location    *time.Location
	Now         func() time.Time
}

// Ledger owns booking creation, cancellation, completion and queries.
type Ledger struct {
	users    IdentityProvider
	courts   Catalog
	venues   VenueDirectory
	bookings BookingStore
	events   EventPublisher
	logger   *zap.Logger

	slotMinutes int
	loc         *time.Location
	now         func() time.Time
}

// NewLedger wires the ledger to its collaborators.  events may be nil, in
// which case no lifecycle events are published.
func NewLedger(users IdentityProvider, courts Catalog, venues VenueDirectory, bookings BookingStore, events EventPublisher, logger *zap.Logger, cfg LedgerConfig) *Ledger {
	if users == nil || courts == nil || venues == nil || bookings == nil {
		panic("nil collaborator passed to NewLedger")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = defaultSlotMinutes
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Ledger{
		users:       users,
		courts:      courts,
		venues:      venues,
		bookings:    bookings,
		events:      events,
		logger:      logger,
		slotMinutes: cfg.SlotMinutes,
		loc:         cfg.Location,
		now:         cfg.Now,
	}
}

// SlotMinutes returns the booking granularity.
func (l *Ledger) SlotMinutes() int { return l.slotMinutes }

// Today returns the current date in the venue time zone.
func (l *Ledger) Today() string {
	return l.now().In(l.loc).Format(schedule.DateLayout)
}

// CreateBookingInput is what a player submits to reserve slots.
type CreateBookingInput struct {
	VenueID       uint64
	CourtID       uint64
	Date          string
	TimeSlots     []model.TimeSlot
	PaymentMethod model.PaymentMethod
	PaymentStatus model.PaymentStatus
	TransactionID string
}

// CreateBooking validates and persists a reservation of one or more slots.
func (l *Ledger) CreateBooking(ctx context.Context, userID uint64, in CreateBookingInput) (*model.Booking, error) {
	if _, err := l.activeUser(ctx, userID); err != nil {
		return nil, err
	}

	court, err := l.courts.GetByID(ctx, in.CourtID)
	if err != nil {
		if errors.Is(err, repository.ErrCourtNotFound) {
			return nil, newError(KindNotFound, "court not found")
		}
		return nil, l.internal("load court", err)
	}
	if !court.IsActive {
		return nil, newError(KindNotFound, "court not found")
	}
	if in.VenueID != court.VenueID {
		return nil, newError(KindNotFound, "court not found in venue")
	}
	venue, err := l.venues.GetByID(ctx, court.VenueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, newError(KindNotFound, "venue not found")
		}
		return nil, l.internal("load venue", err)
	}
	if venue.Status != model.VenueApproved {
		return nil, newError(KindNotBookable, "venue is not open for booking")
	}

	if len(in.TimeSlots) == 0 {
		return nil, newError(KindInvalidRequest, "timeSlots is required")
	}
	slots, err := schedule.Normalize(in.TimeSlots)
	if err != nil {
		return nil, wrapError(KindInvalidRequest, "invalid time slots", err)
	}
	for _, iv := range slots {
		if iv.Minutes() != l.slotMinutes {
			return nil, newError(KindInvalidRequest, fmt.Sprintf("each slot must last %d minutes", l.slotMinutes))
		}
	}
	method := model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod))))
	if !method.Valid() {
		return nil, newError(KindInvalidRequest, "invalid paymentMethod")
	}
	status, err := initialPaymentStatus(in.PaymentStatus, in.TransactionID)
	if err != nil {
		return nil, err
	}
	day, err := schedule.ParseDate(in.Date)
	if err != nil {
		return nil, wrapError(KindInvalidRequest, "invalid date", err)
	}

	hours, err := schedule.HoursFor(court.OperatingHours, day)
	if err != nil {
		return nil, l.internal("court operating hours", err)
	}
	for _, iv := range slots {
		if !hours.Contains(iv) {
			return nil, newError(KindOutsideOperatingHours,
				fmt.Sprintf("slot %s-%s is outside operating hours %s-%s",
					schedule.FormatClock(iv.Start), schedule.FormatClock(iv.End),
					schedule.FormatClock(hours.Start), schedule.FormatClock(hours.End)))
		}
	}
	for _, iv := range slots {
		if !schedule.Aligned(hours, iv, l.slotMinutes) {
			return nil, newError(KindInvalidRequest, "slots must start on the court's slot grid")
		}
	}

	date := day.Format(schedule.DateLayout)
	if date < l.Today() {
		return nil, newError(KindInvalidRequest, "date is in the past")
	}

	occupied, err := l.occupied(ctx, court.ID, date)
	if err != nil {
		return nil, l.internal("load occupied slots", err)
	}
	if schedule.AnyOverlap(slots, occupied) {
		return nil, newError(KindSlotUnavailable, "one or more slots are already booked")
	}

	now := l.now().UTC()
	b := &model.Booking{
		ID:            uuid.NewString(),
		UserID:        userID,
		CourtID:       court.ID,
		VenueID:       court.VenueID,
		Date:          date,
		TimeSlots:     schedule.Slots(slots),
		TotalAmount:   court.PricePerHour * int64(len(slots)*l.slotMinutes) / 60,
		PaymentStatus: status,
		BookingStatus: model.BookingConfirmed,
		PaymentMethod: method,
		TransactionID: strings.TrimSpace(in.TransactionID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			l.logger.Info("slot taken at insert",
				zap.Uint64("court_id", b.CourtID),
				zap.String("date", b.Date),
				zap.Uint64("user_id", userID))
			return nil, newError(KindSlotUnavailable, "one or more slots are already booked")
		}
		return nil, l.internal("create booking", err)
	}

	l.logger.Info("booking confirmed",
		zap.String("booking_id", b.ID),
		zap.Uint64("court_id", b.CourtID),
		zap.Uint64("user_id", b.UserID),
		zap.String("date", b.Date),
		zap.Int("slots", len(b.TimeSlots)),
		zap.Int64("total_amount", b.TotalAmount))
	l.publish(ctx, queue.EventBookingConfirmed, b)
	return b, nil
}

// CancelExpectation carries the defining fields a caller resubmits when
// cancelling.  Zero fields are not compared.
type CancelExpectation struct {
	CourtID       uint64
	VenueID       uint64
	Date          string
	TimeSlots     []model.TimeSlot
	PaymentMethod model.PaymentMethod
	TransactionID string
}

// CancelBooking moves a confirmed booking to cancelled and releases its
// slots.  exp may be nil.
func (l *Ledger) CancelBooking(ctx context.Context, actor Actor, bookingID string, exp *CancelExpectation) (*model.Booking, error) {
	b, err := l.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		if err := matchExpectation(b, exp); err != nil {
			return nil, err
		}
	}
	if b.UserID != actor.UserID && actor.Role != model.RoleAdmin {
		return nil, newError(KindForbidden, "not allowed to cancel this booking")
	}
	if !b.CanTransition(model.BookingCancelled) {
		return nil, newError(KindInvalidState, fmt.Sprintf("booking is %s", b.BookingStatus))
	}

	updated, err := l.bookings.Transition(ctx, b.ID, model.BookingConfirmed, model.BookingCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, newError(KindInvalidState, "booking is no longer confirmed")
		}
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, newError(KindNotFound, "booking not found")
		}
		return nil, l.internal("cancel booking", err)
	}

	l.logger.Info("booking cancelled",
		zap.String("booking_id", updated.ID),
		zap.Uint64("court_id", updated.CourtID),
		zap.Uint64("user_id", actor.UserID),
		zap.String("role", string(actor.Role)))
	l.publish(ctx, queue.EventBookingCancelled, updated)
	return updated, nil
}

// CompleteBooking marks a confirmed booking as played.  Completed bookings
// keep their slots.
func (l *Ledger) CompleteBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := l.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.CanTransition(model.BookingCompleted) {
		return nil, newError(KindInvalidState, fmt.Sprintf("booking is %s", b.BookingStatus))
	}
	updated, err := l.bookings.Transition(ctx, b.ID, model.BookingConfirmed, model.BookingCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, newError(KindInvalidState, "booking is no longer confirmed")
		}
		return nil, l.internal("complete booking", err)
	}
	l.logger.Info("booking completed", zap.String("booking_id", updated.ID))
	l.publish(ctx, queue.EventBookingCompleted, updated)
	return updated, nil
}

// ListFilter selects and pages bookings.
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// ListBookings returns the bookings visible to actor: their own for
// players, those of their venues for owners and everything for admins.
func (l *Ledger) ListBookings(ctx context.Context, actor Actor, f ListFilter) (*model.Page[model.Booking], error) {
	filter := repository.BookingFilter{}
	switch actor.Role {
	case model.RolePlayer:
		filter.UserID = actor.UserID
	case model.RoleOwner:
		filter.VenueOwnerID = actor.UserID
	case model.RoleAdmin:
	default:
		return nil, newError(KindForbidden, "unknown role")
	}
	if s := strings.ToLower(strings.TrimSpace(f.Status)); s != "" {
		st := model.BookingStatus(s)
		if !st.Valid() {
			return nil, newError(KindInvalidRequest, "invalid status filter")
		}
		filter.Status = st
	}
	page, limit := f.Page, f.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if page < 1 {
		return nil, newError(KindInvalidRequest, "page must be >= 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, newError(KindInvalidRequest, fmt.Sprintf("limit must be between 1 and %d", maxPageLimit))
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	items, total, err := l.bookings.List(ctx, filter)
	if err != nil {
		return nil, l.internal("list bookings", err)
	}
	if items == nil {
		items = []model.Booking{}
	}
	return &model.Page[model.Booking]{
		Data:       items,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// GetBooking returns one booking to its player, the venue owner or an admin.
func (l *Ledger) GetBooking(ctx context.Context, actor Actor, bookingID string) (*model.Booking, error) {
	b, err := l.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == model.RoleAdmin, b.UserID == actor.UserID:
		return b, nil
	case actor.Role == model.RoleOwner:
		v, err := l.venues.GetByID(ctx, b.VenueID)
		if err != nil && !errors.Is(err, repository.ErrVenueNotFound) {
			return nil, l.internal("load venue", err)
		}
		if v != nil && v.OwnerID == actor.UserID {
			return b, nil
		}
	}
	return nil, newError(KindForbidden, "not allowed to view this booking")
}

// GetOccupiedSlots lists the slots held by confirmed bookings of a court
// on a date, ordered by start time.
func (l *Ledger) GetOccupiedSlots(ctx context.Context, courtID uint64, date string) ([]model.TimeSlot, error) {
	court, day, err := l.courtDay(ctx, courtID, date)
	if err != nil {
		return nil, err
	}
	ivs, err := l.occupied(ctx, court.ID, day.Format(schedule.DateLayout))
	if err != nil {
		return nil, l.internal("load occupied slots", err)
	}
	return schedule.Slots(ivs), nil
}

// SlotAvailability is one cell of a court's availability grid.
type SlotAvailability struct {
	model.TimeSlot
	Available bool `json:"available"`
}

// GetAvailability renders the slot grid of a court for a date with each
// slot flagged free or taken.
func (l *Ledger) GetAvailability(ctx context.Context, courtID uint64, date string) ([]SlotAvailability, error) {
	court, day, err := l.courtDay(ctx, courtID, date)
	if err != nil {
		return nil, err
	}
	hours, err := schedule.HoursFor(court.OperatingHours, day)
	if err != nil {
		return nil, l.internal("court operating hours", err)
	}
	occupied, err := l.occupied(ctx, court.ID, day.Format(schedule.DateLayout))
	if err != nil {
		return nil, l.internal("load occupied slots", err)
	}
	past := day.Format(schedule.DateLayout) < l.Today()
	grid := schedule.Grid(hours, l.slotMinutes)
	out := make([]SlotAvailability, 0, len(grid))
	for _, iv := range grid {
		taken := schedule.AnyOverlap([]schedule.Interval{iv}, occupied)
		out = append(out, SlotAvailability{TimeSlot: iv.Slot(), Available: !taken && !past})
	}
	return out, nil
}

// CompleteDue completes up to limit confirmed bookings dated before today
// and returns how many moved.  Bookings that changed state concurrently
// are skipped.
func (l *Ledger) CompleteDue(ctx context.Context, limit int) (int, error) {
	ids, err := l.bookings.ListDue(ctx, l.Today(), limit)
	if err != nil {
		return 0, fmt.Errorf("list due bookings: %w", err)
	}
	done := 0
	for _, id := range ids {
		if _, err := l.CompleteBooking(ctx, id); err != nil {
			if IsKind(err, KindInvalidState) || IsKind(err, KindNotFound) {
				continue
			}
			return done, err
		}
		done++
	}
	return done, nil
}

func (l *Ledger) activeUser(ctx context.Context, userID uint64) (*model.User, error) {
	if userID == 0 {
		return nil, newError(KindUnauthorized, "authentication required")
	}
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, newError(KindUnauthorized, "unknown user")
		}
		return nil, l.internal("load user", err)
	}
	if !u.CanAct() {
		return nil, newError(KindUnauthorized, "account is suspended or inactive")
	}
	return u, nil
}

func (l *Ledger) load(ctx context.Context, bookingID string) (*model.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, newError(KindNotFound, "booking not found")
	}
	b, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, newError(KindNotFound, "booking not found")
		}
		return nil, l.internal("load booking", err)
	}
	return b, nil
}

func (l *Ledger) courtDay(ctx context.Context, courtID uint64, date string) (*model.Court, time.Time, error) {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, time.Time{}, wrapError(KindInvalidRequest, "invalid date", err)
	}
	court, err := l.courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrCourtNotFound) {
			return nil, time.Time{}, newError(KindNotFound, "court not found")
		}
		return nil, time.Time{}, l.internal("load court", err)
	}
	if !court.IsActive {
		return nil, time.Time{}, newError(KindNotFound, "court not found")
	}
	return court, day, nil
}

func (l *Ledger) occupied(ctx context.Context, courtID uint64, date string) ([]schedule.Interval, error) {
	slots, err := l.bookings.OccupiedSlots(ctx, courtID, date)
	if err != nil {
		return nil, err
	}
	out := make([]schedule.Interval, 0, len(slots))
	for _, ts := range slots {
		iv, err := schedule.ParseSlot(ts)
		if err != nil {
			return nil, fmt.Errorf("stored slot %v: %w", ts, err)
		}
		out = append(out, iv)
	}
	return out, nil
}

func (l *Ledger) publish(ctx context.Context, typ string, b *model.Booking) {
	if l.events == nil {
		return
	}
	if err := l.events.Publish(ctx, queue.NewBookingEvent(typ, b, l.now())); err != nil {
		l.logger.Warn("publish booking event failed",
			zap.String("event", typ),
			zap.String("booking_id", b.ID),
			zap.Error(err))
	}
}

func (l *Ledger) internal(op string, err error) *Error {
	l.logger.Error("ledger failure", zap.String("op", op), zap.Error(err))
	return wrapError(KindInternal, "internal error", fmt.Errorf("%s: %w", op, err))
}

func initialPaymentStatus(s model.PaymentStatus, txID string) (model.PaymentStatus, error) {
	st := model.PaymentStatus(strings.ToLower(strings.TrimSpace(string(s))))
	switch st {
	case "":
		if strings.TrimSpace(txID) != "" {
			return model.PaymentPaid, nil
		}
		return model.PaymentPending, nil
	case model.PaymentPending, model.PaymentPaid:
		return st, nil
	}
	return "", newError(KindInvalidRequest, "paymentStatus must be pending or paid")
}

func matchExpectation(b *model.Booking, exp *CancelExpectation) error {
	mismatch := func(field string) error {
		return newError(KindConflict, field+" does not match the booking")
	}
	if exp.CourtID != 0 && exp.CourtID != b.CourtID {
		return mismatch("courtId")
	}
	if exp.VenueID != 0 && exp.VenueID != b.VenueID {
		return mismatch("venueId")
	}
	if exp.Date != "" {
		d, err := schedule.ParseDate(exp.Date)
		if err != nil || d.Format(schedule.DateLayout) != b.Date {
			return mismatch("date")
		}
	}
	if len(exp.TimeSlots) > 0 {
		want, err := schedule.Normalize(exp.TimeSlots)
		if err != nil {
			return mismatch("timeSlots")
		}
		have, err := schedule.Normalize(b.TimeSlots)
		if err != nil || len(have) != len(want) {
			return mismatch("timeSlots")
		}
		for i := range want {
			if want[i] != have[i] {
				return mismatch("timeSlots")
			}
		}
	}
	if exp.PaymentMethod != "" && !strings.EqualFold(string(exp.PaymentMethod), string(b.PaymentMethod)) {
		return mismatch("paymentMethod")
	}
	if exp.TransactionID != "" && strings.TrimSpace(exp.TransactionID) != b.TransactionID {
		return mismatch("transactionId")
	}
	return nil
}
