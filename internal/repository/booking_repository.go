package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/quickcourt/internal/model"
)

// BookingRepo persists bookings and the per-slot rows that back the
// double booking guard.  Every booking owns one booking_slots row per
// slot; while the booking is confirmed or completed the row's active
// column is 1, and cancelling sets it to NULL.  The unique index
// uq_booking_slots_active (court_id, slot_date, start_time, active)
// therefore admits at most one active booking per court, date and
// slot start, while any number of cancelled rows may share the key.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows List.  Zero values mean "no restriction".
type BookingFilter struct {
	UserID       uint64              // bookings made by this player
	VenueOwnerID uint64              // bookings under venues owned by this user
	Status       model.BookingStatus // exact booking_status
	Limit        int
	Offset       int
}

const bookingColumns = `b.id, b.user_id, b.court_id, b.venue_id, b.booking_date, b.total_amount,
       b.payment_status, b.booking_status, b.payment_method, b.transaction_id,
       b.created_at, b.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b   model.Booking
		day time.Time
	)
	err := s.Scan(&b.ID, &b.UserID, &b.CourtID, &b.VenueID, &day, &b.TotalAmount,
		&b.PaymentStatus, &b.BookingStatus, &b.PaymentMethod, &b.TransactionID,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Date = day.Format("2006-01-02")
	return &b, nil
}

// OccupiedSlots returns the slots held by confirmed bookings of a court on
// a date, ordered by start time.
func (r *BookingRepo) OccupiedSlots(ctx context.Context, courtID uint64, date string) ([]model.TimeSlot, error) {
	const q = `SELECT s.start_time, s.end_time
               FROM booking_slots s
               JOIN bookings b ON b.id = s.booking_id
               WHERE s.court_id = ? AND s.slot_date = ? AND b.booking_status = 'confirmed'
               ORDER BY s.start_time`
	rows, err := r.db.QueryContext(ctx, q, courtID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TimeSlot
	for rows.Next() {
		var ts model.TimeSlot
		if err := rows.Scan(&ts.StartTime, &ts.EndTime); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// Create inserts the booking row and its slot rows in one transaction.
// A duplicate key on the active slot index is reported as ErrSlotTaken.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	if len(b.TimeSlots) == 0 {
		return errors.New("booking without time slots")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO bookings (id, user_id, court_id, venue_id, booking_date, total_amount,
                 payment_status, booking_status, payment_method, transaction_id, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, b.ID, b.UserID, b.CourtID, b.VenueID, b.Date, b.TotalAmount,
		b.PaymentStatus, b.BookingStatus, b.PaymentMethod, b.TransactionID, b.CreatedAt, b.UpdatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_slots (booking_id, court_id, slot_date, start_time, end_time, active) VALUES `)
	args := make([]any, 0, len(b.TimeSlots)*5)
	for i, ts := range b.TimeSlots {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, 1)")
		args = append(args, b.ID, b.CourtID, b.Date, ts.StartTime, ts.EndTime)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if isSlotContention(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking slots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a booking with its slots.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	slots, err := r.slotsFor(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.TimeSlots = slots[b.ID]
	return b, nil
}

// Transition moves a booking from one status to another only if it is
// still in from.  Cancelling also releases the slot keys in the same
// transaction.  ErrStatusChanged is returned when the booking exists but
// is no longer in from.
func (r *BookingRepo) Transition(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET booking_status = ?, updated_at = ? WHERE id = ? AND booking_status = ?`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrStatusChanged
	}
	if to == model.BookingCancelled {
		if _, err := tx.ExecContext(ctx, `UPDATE booking_slots SET active = NULL WHERE booking_id = ?`, id); err != nil {
			return nil, fmt.Errorf("release booking slots: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// List returns one page of bookings matching f, newest first, plus the
// total number of matches.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, int, error) {
	from := ` FROM bookings b`
	var (
		where []string
		args  []any
	)
	if f.VenueOwnerID != 0 {
		from += ` JOIN venues v ON v.id = b.venue_id`
		where = append(where, "v.owner_id = ?")
		args = append(args, f.VenueOwnerID)
	}
	if f.UserID != 0 {
		where = append(where, "b.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		where = append(where, "b.booking_status = ?")
		args = append(args, f.Status)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	out := []model.Booking{}
	if total == 0 || f.Offset >= total {
		return out, total, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = total
	}
	q := `SELECT ` + bookingColumns + from + cond + ` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	slots, err := r.slotsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].TimeSlots = slots[out[i].ID]
	}
	return out, total, nil
}

// ListDue returns ids of confirmed bookings dated strictly before
// beforeDate, oldest first.
func (r *BookingRepo) ListDue(ctx context.Context, beforeDate string, limit int) ([]string, error) {
	const q = `SELECT id FROM bookings
               WHERE booking_status = 'confirmed' AND booking_date < ?
               ORDER BY booking_date, id
               LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, beforeDate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *BookingRepo) slotsFor(ctx context.Context, ids []string) (map[string][]model.TimeSlot, error) {
	out := make(map[string][]model.TimeSlot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT booking_id, start_time, end_time FROM booking_slots
          WHERE booking_id IN (` + placeholders + `)
          ORDER BY booking_id, start_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load booking slots: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id string
			ts model.TimeSlot
		)
		if err := rows.Scan(&id, &ts.StartTime, &ts.EndTime); err != nil {
			return nil, err
		}
		out[id] = append(out[id], ts)
	}
	return out, rows.Err()
}
