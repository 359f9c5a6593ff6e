package model

import "time"

// Booking groups the seats claimed together by one booking request.
// Bookings are immutable once created; the seats reference them.
//
// Fields:
//  ID                – primary key (uuid).
//  EventID           – event the seats belong to.
//  CustomerFirstName – customer the seats are booked for.
//  CustomerLastName  – customer the seats are booked for.
//  SellerFirstName   – seller who made the booking.
//  SellerLastName    – seller who made the booking.
//  CreatedAt         – creation timestamp.
type Booking struct {
	ID                string    `json:"id"`                // bookings.id
	EventID           string    `json:"eventId"`           // bookings.event_id
	CustomerFirstName string    `json:"customerFirstName"` // bookings.customer_first_name
	CustomerLastName  string    `json:"customerLastName"`  // bookings.customer_last_name
	SellerFirstName   string    `json:"sellerFirstName"`   // bookings.seller_first_name
	SellerLastName    string    `json:"sellerLastName"`    // bookings.seller_last_name
	CreatedAt         time.Time `json:"createdAt"`         // bookings.created_at
}

// CustomerName is the display name written to booked seats.
func (b Booking) CustomerName() string {
	return b.CustomerFirstName + " " + b.CustomerLastName
}

// SellerName is the display name of the seller.
func (b Booking) SellerName() string {
	return b.SellerFirstName + " " + b.SellerLastName
}

// SeatClaim is the conditional AVAILABLE -> BOOKED write for one seat.
type SeatClaim struct {
	SeatID       string
	EventID      string
	BookingID    string
	BookedBy     string
	TicketNumber string
	BookedAt     time.Time
}

// BookedSeat is a booked seat joined with its booking, as exported.
type BookedSeat struct {
	Seat
	SellerFirstName string
	SellerLastName  string
}
