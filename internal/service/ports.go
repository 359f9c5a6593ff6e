// Package service implements the booking engine and the event directory on
// top of the repository interfaces declared here.
package service

import (
	"context"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// TxRunner runs fn in a transaction; store calls made with the context
// passed to fn join it.  A non-nil error from fn rolls everything back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeatStore is the seat persistence contract.
type SeatStore interface {
	CreateBulk(ctx context.Context, seats []model.Seat) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Seat, error)
	ListByBooking(ctx context.Context, bookingID string) ([]model.Seat, error)
	GetForEvent(ctx context.Context, eventID string, ids []string) ([]model.Seat, error)
	GetByID(ctx context.Context, eventID, seatID string) (*model.Seat, error)
	// BookIfAvailable reports false when the seat was not AVAILABLE at the
	// moment of the write.
	BookIfAvailable(ctx context.Context, claim model.SeatClaim) (bool, error)
	FindTicketNumbers(ctx context.Context, numbers []string) ([]string, error)
	LockEventSeats(ctx context.Context, eventID string) (booked int, err error)
	DeleteByEvent(ctx context.Context, eventID string) error
	ListBooked(ctx context.Context, eventID string) ([]model.BookedSeat, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.EventSummary, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

// BookingNotifier is told about every committed booking.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, booking model.Booking, seats []model.Seat) error
}
