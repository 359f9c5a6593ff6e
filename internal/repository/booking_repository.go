package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// BookingRepo persists bookings.  Bookings are written once inside the
// booking transaction and never updated.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create inserts a booking.  ID and CreatedAt must be set by the caller so
// the seats written in the same transaction can reference them.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, event_id, customer_first_name, customer_last_name,
	             seller_first_name, seller_last_name, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := conn(ctx, r.db).ExecContext(ctx, q, b.ID, b.EventID, b.CustomerFirstName, b.CustomerLastName,
		b.SellerFirstName, b.SellerLastName, b.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT id, event_id, customer_first_name, customer_last_name,
	                  seller_first_name, seller_last_name, created_at
	           FROM bookings WHERE id = ?`
	var b model.Booking
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(&b.ID, &b.EventID, &b.CustomerFirstName,
		&b.CustomerLastName, &b.SellerFirstName, &b.SellerLastName, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// DeleteByEvent removes all bookings of an event.  Seats referencing them
// must already be gone.
func (r *BookingRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE event_id = ?`, eventID)
	return err
}
