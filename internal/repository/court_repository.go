package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/quickcourt/internal/model"
)

// CourtRepo is the court catalog.  It stores each court's hourly price and
// its weekday/weekend operating hours as "HH:MM" strings.
type CourtRepo struct {
	db *sql.DB
}

// NewCourtRepo constructs a CourtRepo with the given DB handle.
func NewCourtRepo(db *sql.DB) *CourtRepo {
	return &CourtRepo{db: db}
}

const courtColumns = `id, venue_id, name, sport, price_per_hour,
       weekday_open, weekday_close, weekend_open, weekend_close,
       is_active, created_at, updated_at`

func scanCourt(s rowScanner) (*model.Court, error) {
	var c model.Court
	oh := &c.OperatingHours
	err := s.Scan(&c.ID, &c.VenueID, &c.Name, &c.Sport, &c.PricePerHour,
		&oh.Weekday.Open, &oh.Weekday.Close, &oh.Weekend.Open, &oh.Weekend.Close,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new court under c.VenueID and reloads it so defaults
// and timestamps are populated.  A second court with the same name in a
// venue yields ErrCourtExists.
func (r *CourtRepo) Create(ctx context.Context, c *model.Court) error {
	const q = `INSERT INTO courts (venue_id, name, sport, price_per_hour,
	                weekday_open, weekday_close, weekend_open, weekend_close)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	oh := c.OperatingHours
	res, err := r.db.ExecContext(ctx, q, c.VenueID, c.Name, c.Sport, c.PricePerHour,
		oh.Weekday.Open, oh.Weekday.Close, oh.Weekend.Open, oh.Weekend.Close)
	if err != nil {
		if isDuplicate(err) {
			return ErrCourtExists
		}
		return fmt.Errorf("insert court: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID retrieves a court by its ID.  It returns ErrCourtNotFound when
// no row is found.
func (r *CourtRepo) GetByID(ctx context.Context, id uint64) (*model.Court, error) {
	c, err := scanCourt(r.db.QueryRowContext(ctx, `SELECT `+courtColumns+` FROM courts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByVenue returns the active courts of a venue ordered by id.
func (r *CourtRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Court, error) {
	q := `SELECT ` + courtColumns + ` FROM courts WHERE venue_id = ? AND is_active = 1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Court{}
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePrice changes the hourly price of a court.  Existing bookings keep
// the total computed when they were made.
func (r *CourtRepo) UpdatePrice(ctx context.Context, id uint64, price int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE courts SET price_per_hour = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, price, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCourtNotFound
	}
	return nil
}
