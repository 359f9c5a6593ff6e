package model

import (
	"strconv"
	"time"
)

// Section tags the block of the venue a seat belongs to.
type Section string

const (
	SectionMain  Section = "MAIN"  // single continuous floor (flexible layouts)
	SectionLeft  Section = "LEFT"  // left block (legacy layouts)
	SectionRight Section = "RIGHT" // right block (legacy layouts)
	SectionRang  Section = "RANG"  // upper tier
)

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	switch s {
	case SectionMain, SectionLeft, SectionRight, SectionRang:
		return true
	}
	return false
}

// SeatStatus is the availability of a seat.  AVAILABLE -> BOOKED is the
// only transition; RESERVED is recognised but never entered.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatReserved  SeatStatus = "RESERVED"
	SeatBooked    SeatStatus = "BOOKED"
)

// Valid reports whether s is one of the known statuses.
func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatReserved, SeatBooked:
		return true
	}
	return false
}

// Seat is a single addressable place of an event.  Seats are unique by
// event, section, row label and number.  The booking fields (BookedBy,
// BookedAt, TicketNumber, BookingID) are set together exactly when
// Status is BOOKED.
//
// Fields:
//  ID           – primary key (uuid).
//  EventID      – event owning the seat.
//  Row          – row label (A, B, ..., Z, AA, ...).
//  Number       – 1-based position within the row.
//  Section      – MAIN, LEFT, RIGHT or RANG.
//  Status       – AVAILABLE, RESERVED or BOOKED.
//  BookedBy     – customer display name once booked.
//  BookedAt     – booking time once booked.
//  TicketNumber – caller supplied ticket identifier once booked.
//  BookingID    – booking grouping this seat once booked.
//  CreatedAt    – creation timestamp.
type Seat struct {
	ID           string     `json:"id"`           // seats.id
	EventID      string     `json:"eventId"`      // seats.event_id
	Row          string     `json:"row"`          // seats.row_label
	Number       int        `json:"number"`       // seats.number
	Section      Section    `json:"section"`      // seats.section
	Status       SeatStatus `json:"status"`       // seats.status
	BookedBy     *string    `json:"bookedBy"`     // seats.booked_by (nullable)
	BookedAt     *time.Time `json:"bookedAt"`     // seats.booked_at (nullable)
	TicketNumber *string    `json:"ticketNumber"` // seats.ticket_number (nullable)
	BookingID    *string    `json:"bookingId"`    // seats.booking_id (nullable)
	CreatedAt    time.Time  `json:"createdAt"`    // seats.created_at
}

// Label renders the seat as shown on tickets and exports, e.g. "LEFT A7".
func (s Seat) Label() string {
	return string(s.Section) + " " + s.Row + strconv.Itoa(s.Number)
}

// Consistent reports whether the booking fields agree with Status.
func (s Seat) Consistent() bool {
	set := s.BookedBy != nil && s.BookedAt != nil && s.TicketNumber != nil && s.BookingID != nil
	unset := s.BookedBy == nil && s.BookedAt == nil && s.TicketNumber == nil && s.BookingID == nil
	if s.Status == SeatBooked {
		return set
	}
	return unset
}
