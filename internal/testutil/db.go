// Package testutil provides a MySQL handle for integration tests.  Every
// package using it shares one database, so run them with -p 1.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/database"
)

// NewTestDB opens TEST_MYSQL_DSN, applies the migrations and empties the
// tables.  The test is skipped when the variable is unset or the server is
// unreachable.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping MySQL integration tests: TEST_MYSQL_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, dsn)
	if err != nil {
		t.Skipf("skipping MySQL integration tests: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	Reset(t, db)
	return db
}

// Reset deletes all rows in dependency order.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, table := range []string{"seats", "bookings", "events"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
}
