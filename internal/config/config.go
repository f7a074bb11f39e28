package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // venue zones resolve without system tzdata

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "production")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	SlotMinutes       int            // booking slot granularity
	VenueTimezone     *time.Location // zone that defines "today" for venues
	CompleterInterval time.Duration  // how often past bookings are completed
	AutoMigrate       bool           // run embedded migrations on startup

	AMQPURL         string // RabbitMQ URL; empty disables booking events
	BookingExchange string // topic exchange for booking events
	AuditLogDir     string // directory of booking.log written by the audit consumer
}

// Load reads a .env file when present, then builds a Config from the
// environment.  Every missing or malformed required variable is reported
// in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load(".env") // absent file is fine: real env wins anyway

	var errs []error
	must := func(key string) string {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", key))
		}
		return v
	}
	intOr := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid int for %s: %q", key, v))
		}
		return n
	}

	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     intOr("BCRYPT_COST", 10),

		SlotMinutes:       intOr("SLOT_MINUTES", 60),
		CompleterInterval: envDur("COMPLETER_INTERVAL", 15*time.Minute),
		AutoMigrate:       envBool("AUTO_MIGRATE", true),

		AMQPURL:         os.Getenv("AMQP_URL"),
		BookingExchange: envStr("BOOKING_EXCHANGE", "booking.events"),
		AuditLogDir:     envStr("AUDIT_LOG_DIR", "logs"),
	}

	tz := envStr("VENUE_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid VENUE_TIMEZONE %q: %w", tz, err))
	}
	cfg.VenueTimezone = loc

	if cfg.SlotMinutes <= 0 || cfg.SlotMinutes > 24*60 || (24*60)%cfg.SlotMinutes != 0 {
		errs = append(errs, fmt.Errorf("SLOT_MINUTES must divide a day, got %d", cfg.SlotMinutes))
	}
	if cfg.CompleterInterval <= 0 {
		cfg.CompleterInterval = 15 * time.Minute
	}
	return cfg, errors.Join(errs...)
}
