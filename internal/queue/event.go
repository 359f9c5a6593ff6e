// Package queue carries booking notifications over RabbitMQ: a publisher
// used by the booking engine after commit and a consumer that appends
// every notification to the booking log.
package queue

import (
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// BookingCreatedQueue is the durable queue booking notifications go to.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published once a booking has committed.  It holds
// enough for downstream consumers to log or notify without querying the
// database.
type BookingCreatedEvent struct {
	BookingID  string   `json:"booking_id"`
	EventID    string   `json:"event_id"`
	Customer   string   `json:"customer"`
	Seller     string   `json:"seller"`
	SeatLabels []string `json:"seats"`
	Tickets    []string `json:"tickets"`
	CreatedAt  string   `json:"created_at"`
}

// NewBookingCreatedEvent builds the payload for a committed booking.
// Seat labels and tickets keep the order of seats.
func NewBookingCreatedEvent(b model.Booking, seats []model.Seat) BookingCreatedEvent {
	ev := BookingCreatedEvent{
		BookingID:  b.ID,
		EventID:    b.EventID,
		Customer:   b.CustomerName(),
		Seller:     b.SellerName(),
		SeatLabels: make([]string, 0, len(seats)),
		Tickets:    make([]string, 0, len(seats)),
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, s := range seats {
		ev.SeatLabels = append(ev.SeatLabels, s.Label())
		if s.TicketNumber != nil {
			ev.Tickets = append(ev.Tickets, *s.TicketNumber)
		}
	}
	return ev
}
