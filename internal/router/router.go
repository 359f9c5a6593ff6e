// Package router registers the HTTP routes of the booking API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/handler"
)

// Deps are the handlers and middleware the routes are built from.  Cache
// and Limiter may be nil.
type Deps struct {
	Health   *handler.HealthHandler
	Events   *handler.EventHandler
	Bookings *handler.BookingHandler
	Cache    echo.MiddlewareFunc // wraps cacheable event reads
	Limiter  echo.MiddlewareFunc // wraps booking creation
}

func optional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

// RegisterRoutes mounts every endpoint under /api.
func RegisterRoutes(e *echo.Echo, d Deps) {
	api := e.Group("/api")
	api.GET("/health", d.Health.Health)

	cached := optional(d.Cache)
	events := api.Group("/events")
	events.GET("", d.Events.List, cached...)
	events.POST("", d.Events.Create)
	events.GET("/:id", d.Events.Get, cached...)
	events.PUT("/:id", d.Events.Update)
	events.DELETE("/:id", d.Events.Delete)
	events.GET("/:id/seats", d.Events.ListSeats, cached...)
	// exports and tickets are always read fresh
	events.GET("/:id/bookings.csv", d.Events.Export)
	events.GET("/:id/seats/:seatId/ticket.png", d.Events.TicketQR)

	bookings := api.Group("/bookings")
	bookings.POST("", d.Bookings.Book, optional(d.Limiter)...)
	bookings.GET("/:id", d.Bookings.Get)
}
