package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/service"
)

// BookingHandler serves seat bookings.
type BookingHandler struct {
	Bookings BookingEngine
	Cache    CacheInvalidator
}

// NewBookingHandler wires a BookingHandler.  cache may be nil.
func NewBookingHandler(bookings BookingEngine, cache CacheInvalidator) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Cache: invalidatorOrNoop(cache)}
}

// Book handles POST /api/bookings.
func (h *BookingHandler) Book(c echo.Context) error {
	var req service.BookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Bookings.BookSeats(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := detached(c)
	defer cancel()
	h.Cache.InvalidateEvent(ctx, res.Booking.EventID)
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	res, err := h.Bookings.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
