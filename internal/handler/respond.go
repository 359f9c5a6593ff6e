// Package handler contains the echo handlers of the booking API.  Handlers
// bind and shape HTTP; all rules live in the service layer.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

// EventDirectory is the event service as used by EventHandler.
type EventDirectory interface {
	CreateEvent(ctx context.Context, in service.CreateEventInput) (*service.EventDetail, error)
	GetEvent(ctx context.Context, id string) (*service.EventDetail, error)
	ListEvents(ctx context.Context) ([]model.EventSummary, error)
	ListSeats(ctx context.Context, eventID string) ([]model.Seat, error)
	UpdateEvent(ctx context.Context, id string, in service.UpdateEventInput) (*service.EventDetail, error)
	DeleteEvent(ctx context.Context, id string) error
	BookedSeats(ctx context.Context, eventID string) (*model.Event, []model.BookedSeat, error)
	TicketSeat(ctx context.Context, eventID, seatID string) (*model.Seat, error)
}

// BookingEngine is the booking service as used by BookingHandler.
type BookingEngine interface {
	BookSeats(ctx context.Context, req service.BookingRequest) (*service.BookingResult, error)
	GetBooking(ctx context.Context, id string) (*service.BookingResult, error)
}

// CacheInvalidator drops cached reads of an event.
type CacheInvalidator interface {
	InvalidateEvent(ctx context.Context, eventID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateEvent(context.Context, string) {}

func invalidatorOrNoop(c CacheInvalidator) CacheInvalidator {
	if c == nil {
		return noopInvalidator{}
	}
	return c
}

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Tickets []string `json:"tickets,omitempty"`
}

var statusByKind = map[service.Kind]int{
	service.KindValidation: http.StatusBadRequest,
	service.KindNotFound:   http.StatusNotFound,
	service.KindConflict:   http.StatusConflict,
	service.KindInternal:   http.StatusInternalServerError,
}

// respondError writes err as {"error","code","tickets"} with the status of
// its kind.  Messages of internal errors are never exposed.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		se = &service.Error{Kind: service.KindInternal, Message: "internal error", Err: err}
	}
	msg := se.Message
	if se.Kind == service.KindInternal {
		msg = "internal error"
	}
	return c.JSON(statusByKind[se.Kind], errorBody{Error: msg, Code: string(se.Kind), Tickets: se.Tickets})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: string(service.KindValidation)})
}

// detached returns a context for work that must finish after the response,
// such as cache invalidation.
func detached(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
}
