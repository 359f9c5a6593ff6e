package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/iliyamo/event-seat-booking/internal/clock"
	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// freeTicket is the ticket value exempt from global uniqueness, compared
// after lowercasing and removing all whitespace.
const freeTicket = "freikarte"

// IsFreeTicket reports whether ticket is a "freikarte" variant such as
// "Freikarte", "FREIKARTE" or "frei karte".
func IsFreeTicket(ticket string) bool {
	return normalizeTicket(ticket) == freeTicket
}

func normalizeTicket(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// BookingRequest asks for a set of seats of one event.  TicketNumbers[i]
// is written to the seat SeatIDs[i]; surrounding whitespace of ids, names
// and ticket numbers is not part of the value and is dropped.
type BookingRequest struct {
	EventID           string   `json:"eventId" validate:"required"`
	SeatIDs           []string `json:"seatIds" validate:"required,min=1,dive,required"`
	CustomerFirstName string   `json:"customerFirstName" validate:"required,max=255"`
	CustomerLastName  string   `json:"customerLastName" validate:"required,max=255"`
	SellerFirstName   string   `json:"sellerFirstName" validate:"required,max=255"`
	SellerLastName    string   `json:"sellerLastName" validate:"required,max=255"`
	TicketNumbers     []string `json:"ticketNumbers" validate:"required,min=1,dive,required,max=191"`
}

// BookingResult is a committed booking with its seats in request order.
type BookingResult struct {
	Booking model.Booking `json:"booking"`
	Seats   []model.Seat  `json:"seats"`
}

// BookingService books seats.  Correctness under concurrency rests on the
// store: every seat write is conditional on the seat still being
// AVAILABLE, and the whole seat set commits or rolls back together.
type BookingService struct {
	tx       TxRunner
	seats    SeatStore
	bookings BookingStore
	clock    clock.Clock
	notifier BookingNotifier
	notifyTO time.Duration
}

// BookingServiceOption configures a BookingService.
type BookingServiceOption func(*BookingService)

// WithNotifier publishes committed bookings to n.  Notification failures
// are logged and never fail the booking.
func WithNotifier(n BookingNotifier) BookingServiceOption {
	return func(s *BookingService) { s.notifier = n }
}

// WithNotifyTimeout bounds the time spent notifying after commit.
func WithNotifyTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.notifyTO = d
		}
	}
}

// NewBookingService wires a BookingService.  All stores must be non-nil.
func NewBookingService(tx TxRunner, seats SeatStore, bookings BookingStore, clk clock.Clock, opts ...BookingServiceOption) *BookingService {
	if tx == nil || seats == nil || bookings == nil {
		panic("nil dependency passed to NewBookingService")
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	s := &BookingService{
		tx:       tx,
		seats:    seats,
		bookings: bookings,
		clock:    clk,
		notifyTO: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalize trims names, ids and ticket numbers.  The slices are replaced
// by trimmed copies so the caller's arrays are never written.
func (r *BookingRequest) normalize() {
	r.EventID = strings.TrimSpace(r.EventID)
	r.CustomerFirstName = strings.TrimSpace(r.CustomerFirstName)
	r.CustomerLastName = strings.TrimSpace(r.CustomerLastName)
	r.SellerFirstName = strings.TrimSpace(r.SellerFirstName)
	r.SellerLastName = strings.TrimSpace(r.SellerLastName)
	r.SeatIDs = trimmed(r.SeatIDs)
	r.TicketNumbers = trimmed(r.TicketNumbers)
}

func trimmed(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// Validate checks the request without touching the store: required
// fields, one ticket per seat, no seat twice and no repeated ticket number
// other than freikarte.
func (r *BookingRequest) Validate() error {
	r.normalize()
	if err := validate.Struct(r); err != nil {
		return validationFailure(err)
	}
	if len(r.TicketNumbers) != len(r.SeatIDs) {
		return validationError("ticketNumbers must have one entry per seat (got %d for %d seats)",
			len(r.TicketNumbers), len(r.SeatIDs))
	}
	seen := make(map[string]struct{}, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if _, dup := seen[id]; dup {
			return validationError("seat %s is requested more than once", id)
		}
		seen[id] = struct{}{}
	}
	if dups := duplicateTickets(r.TicketNumbers); len(dups) > 0 {
		e := validationError("duplicate ticket numbers in request: %s", strings.Join(dups, ", "))
		e.Tickets = dups
		return e
	}
	return nil
}

// duplicateTickets returns the non-freikarte values occurring more than
// once, in order of first repetition.
func duplicateTickets(tickets []string) []string {
	count := make(map[string]int, len(tickets))
	var dups []string
	for _, t := range tickets {
		if IsFreeTicket(t) {
			continue
		}
		count[t]++
		if count[t] == 2 {
			dups = append(dups, t)
		}
	}
	return dups
}

// BookSeats books every requested seat for one customer in a single
// transaction, or none of them.  Failures are *Error values of kind
// validation, not_found, conflict or internal; nothing is retried.
func (s *BookingService) BookSeats(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uniqueTickets := make([]string, 0, len(req.TicketNumbers))
	for _, t := range req.TicketNumbers {
		if !IsFreeTicket(t) {
			uniqueTickets = append(uniqueTickets, t)
		}
	}

	var result BookingResult
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		seats, err := s.seats.GetForEvent(txCtx, req.EventID, req.SeatIDs)
		if err != nil {
			return classify("booking: load seats", err)
		}
		if len(seats) < len(req.SeatIDs) {
			return notFoundError("some seats were not found for event %s", req.EventID)
		}

		byID := make(map[string]model.Seat, len(seats))
		var taken []string
		for _, seat := range seats {
			byID[seat.ID] = seat
			if seat.Status != model.SeatAvailable {
				taken = append(taken, seat.Label())
			}
		}
		if len(taken) > 0 {
			return conflictError("seats no longer available: %s", strings.Join(taken, ", "))
		}

		if len(uniqueTickets) > 0 {
			existing, err := s.seats.FindTicketNumbers(txCtx, uniqueTickets)
			if err != nil {
				return classify("booking: check ticket numbers", err)
			}
			if len(existing) > 0 {
				e := conflictError("ticket numbers already in use: %s", strings.Join(existing, ", "))
				e.Tickets = existing
				return e
			}
		}

		now := s.clock.Now()
		booking := model.Booking{
			ID:                uuid.NewString(),
			EventID:           req.EventID,
			CustomerFirstName: req.CustomerFirstName,
			CustomerLastName:  req.CustomerLastName,
			SellerFirstName:   req.SellerFirstName,
			SellerLastName:    req.SellerLastName,
			CreatedAt:         now,
		}
		if err := s.bookings.Create(txCtx, &booking); err != nil {
			return classify("booking: create booking", err)
		}

		// Claims are issued in seat id order so that two requests for
		// overlapping seats lock rows in the same order and cannot deadlock.
		bookedBy := booking.CustomerName()
		order := make([]int, len(req.SeatIDs))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return req.SeatIDs[order[a]] < req.SeatIDs[order[b]] })

		updated := make([]model.Seat, len(req.SeatIDs))
		for _, i := range order {
			seatID := req.SeatIDs[i]
			claim := model.SeatClaim{
				SeatID:       seatID,
				EventID:      req.EventID,
				BookingID:    booking.ID,
				BookedBy:     bookedBy,
				TicketNumber: req.TicketNumbers[i],
				BookedAt:     now,
			}
			ok, err := s.seats.BookIfAvailable(txCtx, claim)
			if err != nil {
				if errors.Is(err, repository.ErrDuplicateTicket) {
					e := conflictError("ticket number already in use: %s", claim.TicketNumber)
					e.Tickets = []string{claim.TicketNumber}
					return e
				}
				return classify("booking: claim seat", err)
			}
			if !ok {
				return conflictError("seat %s was booked concurrently", byID[seatID].Label())
			}
			updated[i] = bookedSeat(byID[seatID], claim)
		}

		result = BookingResult{Booking: booking, Seats: updated}
		return nil
	})
	if err != nil {
		return nil, classify("booking: transaction", err)
	}

	s.notify(ctx, result)
	return &result, nil
}

func bookedSeat(seat model.Seat, c model.SeatClaim) model.Seat {
	bookedBy, ticket, bookingID, at := c.BookedBy, c.TicketNumber, c.BookingID, c.BookedAt
	seat.Status = model.SeatBooked
	seat.BookedBy = &bookedBy
	seat.TicketNumber = &ticket
	seat.BookingID = &bookingID
	seat.BookedAt = &at
	return seat
}

func (s *BookingService) notify(ctx context.Context, r BookingResult) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTO)
	defer cancel()
	if err := s.notifier.BookingCreated(nctx, r.Booking, r.Seats); err != nil {
		log.Printf("booking: notify booking %s: %v", r.Booking.ID, err)
	}
}

// GetBooking returns a booking with its seats.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*BookingResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validationError("booking id is required")
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, classify("booking: get booking", err)
	}
	seats, err := s.seats.ListByBooking(ctx, id)
	if err != nil {
		return nil, classify("booking: list booking seats", err)
	}
	return &BookingResult{Booking: *b, Seats: seats}, nil
}
