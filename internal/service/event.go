package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/iliyamo/event-seat-booking/internal/layout"
	"github.com/iliyamo/event-seat-booking/internal/model"
)

// EventDetail is an event together with its seats ordered by row then
// number.
type EventDetail struct {
	model.Event
	Seats []model.Seat `json:"seats"`
}

// CreateEventInput describes a new event and its seating.
type CreateEventInput struct {
	Title       string             `json:"title" validate:"required,max=255"`
	Description string             `json:"description" validate:"max=2000"`
	Venue       string             `json:"venue" validate:"required,max=255"`
	Date        time.Time          `json:"date" validate:"required"`
	ImageURL    string             `json:"imageUrl" validate:"omitempty,url,max=1024"`
	Layout      model.LayoutConfig `json:"layout"`
}

// UpdateEventInput carries the fields to change.  Empty strings and a zero
// date leave the current value untouched; a nil Layout keeps the seats.
type UpdateEventInput struct {
	Title       string              `json:"title" validate:"max=255"`
	Description string              `json:"description" validate:"max=2000"`
	Venue       string              `json:"venue" validate:"max=255"`
	Date        time.Time           `json:"date"`
	ImageURL    string              `json:"imageUrl" validate:"omitempty,url,max=1024"`
	Layout      *model.LayoutConfig `json:"layout" copier:"-"`
}

// EventService is the event directory: it owns event metadata and keeps
// the seats in step with the layout they were generated from.
type EventService struct {
	tx       TxRunner
	events   EventStore
	seats    SeatStore
	bookings BookingStore
}

// NewEventService wires an EventService.  All stores must be non-nil.
func NewEventService(tx TxRunner, events EventStore, seats SeatStore, bookings BookingStore) *EventService {
	if tx == nil || events == nil || seats == nil || bookings == nil {
		panic("nil dependency passed to NewEventService")
	}
	return &EventService{tx: tx, events: events, seats: seats, bookings: bookings}
}

// plan validates a layout and expands it.  Layouts without any seat are
// rejected because an event must be bookable.
func plan(cfg model.LayoutConfig) (layout.Plan, error) {
	p, err := layout.Generate(cfg)
	if err != nil {
		if errors.Is(err, layout.ErrInvalidLayout) {
			return layout.Plan{}, validationError("%v", err)
		}
		return layout.Plan{}, classify("event: generate layout", err)
	}
	if p.TotalSeats == 0 {
		return layout.Plan{}, validationError("layout must contain at least one seat")
	}
	return p, nil
}

func seatsFromPlan(eventID string, p layout.Plan) []model.Seat {
	seats := make([]model.Seat, len(p.Seats))
	for i, spec := range p.Seats {
		seats[i] = model.Seat{
			ID:      uuid.NewString(),
			EventID: eventID,
			Row:     spec.Row,
			Number:  spec.Number,
			Section: spec.Section,
			Status:  spec.Status,
		}
	}
	return seats
}

// CreateEvent stores the event and all seats of its layout in one
// transaction, so both appear together or not at all.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*EventDetail, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Venue = strings.TrimSpace(in.Venue)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}
	p, err := plan(in.Layout)
	if err != nil {
		return nil, err
	}

	cfg := in.Layout
	cfg.Mode = layout.Mode(cfg)
	ev := model.Event{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Venue:       in.Venue,
		Date:        in.Date.UTC(),
		ImageURL:    in.ImageURL,
		TotalSeats:  p.TotalSeats,
		Layout:      cfg,
	}
	seats := seatsFromPlan(ev.ID, p)

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, &ev); err != nil {
			return classify("event: create event", err)
		}
		if err := s.seats.CreateBulk(txCtx, seats); err != nil {
			return classify("event: create seats", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("event: create transaction", err)
	}
	return &EventDetail{Event: ev, Seats: seats}, nil
}

// GetEvent returns an event with its seats.
func (s *EventService) GetEvent(ctx context.Context, id string) (*EventDetail, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, classify("event: get event", err)
	}
	seats, err := s.seats.ListByEvent(ctx, id)
	if err != nil {
		return nil, classify("event: list seats", err)
	}
	return &EventDetail{Event: *ev, Seats: seats}, nil
}

// ListEvents returns all events by date with seat counts.
func (s *EventService) ListEvents(ctx context.Context) ([]model.EventSummary, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, classify("event: list events", err)
	}
	return events, nil
}

// ListSeats returns the seats of an existing event.
func (s *EventService) ListSeats(ctx context.Context, eventID string) ([]model.Seat, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, classify("event: get event", err)
	}
	seats, err := s.seats.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, classify("event: list seats", err)
	}
	return seats, nil
}

// UpdateEvent changes event metadata and, when in.Layout is set, replaces
// the seats with those of the new layout.  Seats are only regenerated
// while none of them is booked; otherwise the update is a conflict and
// nothing changes.
func (s *EventService) UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*EventDetail, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Venue = strings.TrimSpace(in.Venue)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}
	var (
		p          layout.Plan
		regenerate bool
	)
	if in.Layout != nil {
		var err error
		if p, err = plan(*in.Layout); err != nil {
			return nil, err
		}
		regenerate = true
	}

	var detail EventDetail
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		ev, err := s.events.GetByID(txCtx, id)
		if err != nil {
			return classify("event: get event", err)
		}
		if err := copier.CopyWithOption(ev, &in, copier.Option{IgnoreEmpty: true}); err != nil {
			return classify("event: apply update", err)
		}
		ev.Date = ev.Date.UTC()

		if regenerate {
			booked, err := s.seats.LockEventSeats(txCtx, id)
			if err != nil {
				return classify("event: lock seats", err)
			}
			if booked > 0 {
				return conflictError("layout cannot change: %d seats are already booked", booked)
			}
			if err := s.seats.DeleteByEvent(txCtx, id); err != nil {
				return classify("event: delete seats", err)
			}
			if err := s.seats.CreateBulk(txCtx, seatsFromPlan(id, p)); err != nil {
				return classify("event: create seats", err)
			}
			cfg := *in.Layout
			cfg.Mode = layout.Mode(cfg)
			ev.Layout = cfg
			ev.TotalSeats = p.TotalSeats
		}

		if err := s.events.Update(txCtx, ev); err != nil {
			return classify("event: update event", err)
		}
		seats, err := s.seats.ListByEvent(txCtx, id)
		if err != nil {
			return classify("event: list seats", err)
		}
		detail = EventDetail{Event: *ev, Seats: seats}
		return nil
	})
	if err != nil {
		return nil, classify("event: update transaction", err)
	}
	return &detail, nil
}

// DeleteEvent removes an event with all of its seats and bookings.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.events.GetByID(txCtx, id); err != nil {
			return classify("event: get event", err)
		}
		if err := s.seats.DeleteByEvent(txCtx, id); err != nil {
			return classify("event: delete seats", err)
		}
		if err := s.bookings.DeleteByEvent(txCtx, id); err != nil {
			return classify("event: delete bookings", err)
		}
		if err := s.events.Delete(txCtx, id); err != nil {
			return classify("event: delete event", err)
		}
		return nil
	})
	return classify("event: delete transaction", err)
}

// BookedSeats returns an event and its booked seats with their sellers,
// as needed for the booking export.
func (s *EventService) BookedSeats(ctx context.Context, eventID string) (*model.Event, []model.BookedSeat, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, classify("event: get event", err)
	}
	seats, err := s.seats.ListBooked(ctx, eventID)
	if err != nil {
		return nil, nil, classify("event: list booked seats", err)
	}
	return ev, seats, nil
}

// TicketSeat returns a booked seat of an event.  Seats that are not
// booked have no ticket and yield a conflict.
func (s *EventService) TicketSeat(ctx context.Context, eventID, seatID string) (*model.Seat, error) {
	seat, err := s.seats.GetByID(ctx, eventID, seatID)
	if err != nil {
		return nil, classify("event: get seat", err)
	}
	if seat.Status != model.SeatBooked || seat.TicketNumber == nil {
		return nil, conflictError("seat %s is not booked", seat.Label())
	}
	return seat, nil
}
