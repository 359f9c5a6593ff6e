package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/export"
	"github.com/iliyamo/event-seat-booking/internal/service"
	"github.com/iliyamo/event-seat-booking/internal/ticket"
)

// EventHandler serves the event directory, the booking export and ticket
// QR codes.
type EventHandler struct {
	Events EventDirectory
	Cache  CacheInvalidator
	// Location renders export times; UTC when nil.
	Location *time.Location
	Now      func() time.Time
}

// NewEventHandler wires an EventHandler.  cache may be nil.
func NewEventHandler(events EventDirectory, cache CacheInvalidator, loc *time.Location) *EventHandler {
	return &EventHandler{Events: events, Cache: invalidatorOrNoop(cache), Location: loc, Now: time.Now}
}

// List handles GET /api/events.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.ListEvents(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// Create handles POST /api/events.
func (h *EventHandler) Create(c echo.Context) error {
	var in service.CreateEventInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	ev, err := h.Events.CreateEvent(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := detached(c)
	defer cancel()
	h.Cache.InvalidateEvent(ctx, ev.ID)
	return c.JSON(http.StatusCreated, ev)
}

// Get handles GET /api/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	ev, err := h.Events.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Update handles PUT /api/events/:id.
func (h *EventHandler) Update(c echo.Context) error {
	var in service.UpdateEventInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	id := c.Param("id")
	ev, err := h.Events.UpdateEvent(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := detached(c)
	defer cancel()
	h.Cache.InvalidateEvent(ctx, id)
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /api/events/:id.
func (h *EventHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.Events.DeleteEvent(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := detached(c)
	defer cancel()
	h.Cache.InvalidateEvent(ctx, id)
	return c.NoContent(http.StatusNoContent)
}

// ListSeats handles GET /api/events/:id/seats.
func (h *EventHandler) ListSeats(c echo.Context) error {
	seats, err := h.Events.ListSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// Export handles GET /api/events/:id/bookings.csv.
func (h *EventHandler) Export(c echo.Context) error {
	ev, seats, err := h.Events.BookedSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, seats, h.Location); err != nil {
		return respondError(c, err)
	}
	name := export.FileName(ev.Title, h.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// TicketQR handles GET /api/events/:id/seats/:seatId/ticket.png.  The
// optional size query parameter is clamped to 64..1024 pixels.
func (h *EventHandler) TicketQR(c echo.Context) error {
	seat, err := h.Events.TicketSeat(c.Request().Context(), c.Param("id"), c.Param("seatId"))
	if err != nil {
		return respondError(c, err)
	}
	size := ticket.DefaultSize
	if s := c.QueryParam("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "size must be a number")
		}
		size = min(max(n, 64), 1024)
	}
	png, err := ticket.QRCode(*seat.TicketNumber, size)
	if err != nil {
		return respondError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
