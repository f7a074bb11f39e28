package database

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/quickcourt/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{DBUser: "qc", DBPass: "p@ss:w/rd", DBHost: "db", DBPort: "3306", DBName: "quickcourt"})

	mc, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "qc", mc.User)
	assert.Equal(t, "p@ss:w/rd", mc.Passwd)
	assert.Equal(t, "db:3306", mc.Addr)
	assert.Equal(t, "quickcourt", mc.DBName)
	assert.True(t, mc.ParseTime)
	assert.True(t, mc.ClientFoundRows)
	assert.Equal(t, time.UTC, mc.Loc)
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"migrations/00001_users.sql",
		"migrations/00002_venues_courts.sql",
		"migrations/00003_bookings.sql",
	}, files)

	for _, f := range files {
		body, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", f)
		assert.Contains(t, string(body), "-- +goose Down", f)
	}

	bookings, err := fs.ReadFile(migrations, "migrations/00003_bookings.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(bookings), "uq_booking_slots_active (court_id, slot_date, start_time, active)"),
		"active-slot uniqueness must be enforced by the schema")
}
