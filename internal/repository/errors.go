// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking ledger and handlers to distinguish between different failure
// scenarios without inspecting driver errors. For example, ErrSlotTaken
// indicates that the unique index over active booking slots rejected an
// insert, while ErrStatusChanged signals that a conditional status update
// found the booking in a different state than expected.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrVenueNotFound   = errors.New("venue not found")
	ErrCourtNotFound   = errors.New("court not found")
	ErrCourtExists     = errors.New("court name already used in venue")
	ErrBookingNotFound = errors.New("booking not found")
	ErrTokenNotFound   = errors.New("refresh token not found")
)

// ErrSlotTaken is returned by BookingRepo.Create when another active
// booking already holds one of the requested (court, date, start) keys.
var ErrSlotTaken = errors.New("time slot already booked")

// ErrStatusChanged is returned by a conditional transition when the
// booking was no longer in the expected state.
var ErrStatusChanged = errors.New("booking status changed")

// MySQL server error numbers used by the repositories.
const (
	mysqlDuplicateEntry  uint16 = 1062
	mysqlLockWaitTimeout uint16 = 1205
	mysqlDeadlock        uint16 = 1213
)

// isDuplicate reports whether err is a MySQL duplicate key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isSlotContention reports whether err means another transaction won the
// race for a unique slot key.  Besides 1062, InnoDB can pick a waiter on the
// same key as a deadlock victim or time it out when the holder rolls back.
func isSlotContention(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	switch me.Number {
	case mysqlDuplicateEntry, mysqlDeadlock, mysqlLockWaitTimeout:
		return true
	}
	return false
}
