package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/event-ticketing/internal/handler" // handlers that call into the entity system
)

// RegisterRoutes registers the health checks that live outside /api.  /healthz
// only reports that the process is up; /readyz pings the backends.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// API bundles the handlers and the middleware applied to /api.  Limit is
// applied to the whole group; CatalogCache only to the catalog listing.
type API struct {
	Users        *handler.UserHandler
	Events       *handler.EventHandler
	Reservations *handler.ReservationHandler
	Limit        echo.MiddlewareFunc
	CatalogCache echo.MiddlewareFunc
}

// RegisterAPI mounts the user, event and reservation endpoints under /api
// and installs the request validator used by the handlers.
func RegisterAPI(e *echo.Echo, a API) {
	if e.Validator == nil {
		e.Validator = handler.NewRequestValidator()
	}
	var mw []echo.MiddlewareFunc
	if a.Limit != nil {
		mw = append(mw, a.Limit)
	}
	g := e.Group("/api", mw...)

	g.GET("/users/:email", a.Users.GetUser)
	g.POST("/users", a.Users.CreateUser)
	g.PUT("/users/:email", a.Users.UpdateUser)

	var listMW []echo.MiddlewareFunc
	if a.CatalogCache != nil {
		listMW = append(listMW, a.CatalogCache)
	}
	g.GET("/events", a.Events.ListEvents, listMW...)
	g.GET("/events/:id", a.Events.GetEvent)
	g.POST("/events", a.Events.CreateEvent)
	g.PUT("/events/:id", a.Events.UpdateEvent)
	g.DELETE("/events/:id", a.Events.CancelEvent)

	g.POST("/events/:id/seats/:seatId", a.Reservations.ReserveSeat)
	g.GET("/reservations/:id", a.Reservations.GetReservation)
	g.DELETE("/reservations/:id", a.Reservations.CancelReservation)
}
