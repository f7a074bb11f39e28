package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/quickcourt/internal/model"
	"github.com/iliyamo/quickcourt/internal/utils"
)

var (
	stamp     = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	userCols  = []string{"id", "email", "full_name", "password_hash", "role", "is_active", "is_suspended", "created_at", "updated_at"}
	venueCols = []string{"id", "owner_id", "name", "city", "status", "created_at", "updated_at"}
	courtCols = []string{"id", "venue_id", "name", "sport", "price_per_hour",
		"weekday_open", "weekday_close", "weekend_open", "weekend_close", "is_active", "created_at", "updated_at"}
)

func TestUserCreateHashesAndNormalizes(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("asha@example.com", "Asha", sqlmock.AnyArg(), model.RoleOwner).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), " Asha@Example.com", " Asha ", "longenough", model.RoleOwner, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'uq_users_email'"})

	_, err := NewUserRepo(db).Create(context.Background(), "a@b.co", "", "longenough", model.RolePlayer, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserLookups(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	hash, err := utils.HashPassword("longenough", 4)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM users WHERE email=\?`).WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(7, "asha@example.com", "Asha", hash, "OWNER", true, false, stamp, stamp))
	u, err := repo.GetByEmail(context.Background(), "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, u.Role)
	assert.True(t, u.CanAct())

	mock.ExpectQuery(`FROM users WHERE id=\?`).WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows(userCols))
	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenValidate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens WHERE token_hash = \? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP\(\)`).
		WithArgs("live").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	id, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	_, err = repo.ValidateRefresh(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRotate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	exp := stamp.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP\(\)`).
		WithArgs("old", uint64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(uint64(7), "new", exp).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Rotate(context.Background(), 7, "old", "new", exp))

	// A concurrent rotation already revoked it.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("old", uint64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	assert.ErrorIs(t, repo.Rotate(context.Background(), 7, "old", "newer", exp), ErrTokenNotFound)
}

func TestVenueCreateReloads(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVenueRepo(db)

	mock.ExpectExec(`INSERT INTO venues`).
		WithArgs(uint64(10), "Smash Arena", "Pune", model.VenuePending).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectQuery(`FROM venues WHERE id = \?`).WithArgs(uint64(100)).
		WillReturnRows(sqlmock.NewRows(venueCols).AddRow(100, 10, "Smash Arena", "Pune", "PENDING", stamp, stamp))

	v := &model.Venue{OwnerID: 10, Name: "Smash Arena", City: "Pune", Status: model.VenueApproved}
	require.NoError(t, repo.Create(context.Background(), v))
	assert.Equal(t, uint64(100), v.ID)
	assert.Equal(t, model.VenuePending, v.Status, "new venues always start pending")
}

func TestVenueListApprovedByCity(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVenueRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM venues WHERE status = 'APPROVED' AND city = \?`).
		WithArgs("Pune").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery(`ORDER BY name, id LIMIT \? OFFSET \?`).
		WithArgs("Pune", 2, 2).
		WillReturnRows(sqlmock.NewRows(venueCols).AddRow(103, 10, "Zen Courts", "Pune", "APPROVED", stamp, stamp))

	items, total, err := repo.ListApproved(context.Background(), "Pune", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Zen Courts", items[0].Name)
}

func TestVenueUpdateStatusMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`UPDATE venues SET status = \?`).
		WithArgs(model.VenueApproved, uint64(4242)).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewVenueRepo(db).UpdateStatus(context.Background(), 4242, model.VenueApproved)
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestCourtCreateAndLookup(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCourtRepo(db)
	hours := model.OperatingHours{
		Weekday: model.DayHours{Open: "06:00", Close: "22:00"},
		Weekend: model.DayHours{Open: "08:00", Close: "00:00"},
	}

	mock.ExpectExec(`INSERT INTO courts`).
		WithArgs(uint64(100), "Court 1", "badminton", int64(500), "06:00", "22:00", "08:00", "00:00").
		WillReturnResult(sqlmock.NewResult(1000, 1))
	mock.ExpectQuery(`FROM courts WHERE id = \?`).WithArgs(uint64(1000)).
		WillReturnRows(sqlmock.NewRows(courtCols).
			AddRow(1000, 100, "Court 1", "badminton", 500, "06:00", "22:00", "08:00", "00:00", true, stamp, stamp))

	c := &model.Court{VenueID: 100, Name: "Court 1", Sport: "badminton", PricePerHour: 500, OperatingHours: hours}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, uint64(1000), c.ID)
	assert.Equal(t, hours, c.OperatingHours)
	assert.True(t, c.IsActive)

	mock.ExpectExec(`INSERT INTO courts`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.ErrorIs(t, repo.Create(context.Background(), &model.Court{VenueID: 100, Name: "Court 1"}), ErrCourtExists)

	mock.ExpectQuery(`FROM courts WHERE id = \?`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(courtCols))
	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCourtNotFound)

	mock.ExpectExec(`UPDATE courts SET price_per_hour = \?`).
		WithArgs(int64(800), uint64(1000)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePrice(context.Background(), 1000, 800))

	mock.ExpectQuery(`WHERE venue_id = \? AND is_active = 1`).WithArgs(uint64(100)).
		WillReturnError(errors.New("conn reset"))
	_, err = repo.ListByVenue(context.Background(), 100)
	assert.Error(t, err)
}
