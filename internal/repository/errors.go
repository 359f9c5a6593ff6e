// Package repository holds the MySQL data access for events, seats and
// bookings.  The sentinel values below let the service layer tell
// failure scenarios apart without inspecting driver errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrEventNotFound is returned when an event lookup yields no rows.
var ErrEventNotFound = errors.New("event not found")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrBookingNotFound is returned when a booking lookup yields no rows.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateTicket is returned when a seat update collides with the
// unique ticket index.  It is the store's backstop for two bookings racing
// with the same ticket number.
var ErrDuplicateTicket = errors.New("ticket number already in use")

// ErrContention is returned when MySQL aborts a statement because of a
// deadlock or a lock wait timeout.  The transaction is already rolled back
// by the server; callers report it as a conflict.
var ErrContention = errors.New("seats locked by a concurrent transaction")

const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlockDetected = 1213
)

func mysqlErrNumber(err error) uint16 {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number
	}
	return 0
}

func isDuplicateKey(err error) bool {
	return mysqlErrNumber(err) == mysqlDuplicateEntry
}

// lockError wraps deadlocks and lock wait timeouts in ErrContention and
// returns any other error unchanged.
func lockError(err error) error {
	switch mysqlErrNumber(err) {
	case mysqlLockWaitTimeout, mysqlDeadlockDetected:
		return fmt.Errorf("%w: %v", ErrContention, err)
	}
	return err
}
