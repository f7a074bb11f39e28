package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/quickcourt/internal/model"
)

// VenueRepo is the venue directory: ownership and approval status.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `id, owner_id, name, city, status, created_at, updated_at`

func scanVenue(s rowScanner) (*model.Venue, error) {
	var v model.Venue
	if err := s.Scan(&v.ID, &v.OwnerID, &v.Name, &v.City, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new venue in PENDING status and reloads it.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (owner_id, name, city, status) VALUES (?, ?, ?, ?)`,
		v.OwnerID, v.Name, v.City, model.VenuePending)
	if err != nil {
		return fmt.Errorf("insert venue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*v = *got
	return nil
}

// GetByID retrieves a venue by id or returns ErrVenueNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return v, nil
}

// ListApproved returns a page of approved venues, optionally restricted to
// a city, ordered by name then id, together with the total count.
func (r *VenueRepo) ListApproved(ctx context.Context, city string, limit, offset int) ([]model.Venue, int, error) {
	cond := ` WHERE status = 'APPROVED'`
	args := []any{}
	if city != "" {
		cond += ` AND city = ?`
		args = append(args, city)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count venues: %w", err)
	}
	out := []model.Venue{}
	if total == 0 || offset >= total {
		return out, total, nil
	}
	q := `SELECT ` + venueColumns + ` FROM venues` + cond + ` ORDER BY name, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the approval status of a venue.
func (r *VenueRepo) UpdateStatus(ctx context.Context, id uint64, status model.VenueStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	return nil
}
