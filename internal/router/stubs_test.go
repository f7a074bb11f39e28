package router

import (
	"context"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/repository"
)

type emptyCatalog struct{}

func (emptyCatalog) ListApproved(context.Context, string, int, int) ([]model.Venue, int, error) {
	return nil, 0, nil
}

func (emptyCatalog) ListByVenue(context.Context, uint64) ([]model.Court, error) { return nil, nil }

type nopVenues struct{}

func (nopVenues) Create(context.Context, *model.Venue) error { return nil }
func (nopVenues) GetByID(context.Context, uint64) (*model.Venue, error) {
	return nil, repository.ErrVenueNotFound
}
func (nopVenues) UpdateStatus(context.Context, uint64, model.VenueStatus) error { return nil }

type nopCourts struct{}

func (nopCourts) Create(context.Context, *model.Court) error { return nil }
func (nopCourts) GetByID(context.Context, uint64) (*model.Court, error) {
	return nil, repository.ErrCourtNotFound
}
func (nopCourts) UpdatePrice(context.Context, uint64, int64) error { return nil }
