package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/ticketing"
)

// EventHandler exposes the event entity and the catalog query.
// CatalogChanged, when set, runs after every write that can change the
// catalog listing; the router uses it to purge the response cache.
type EventHandler struct {
	Events         *ticketing.Events
	Query          *ticketing.Query
	CatalogChanged func(ctx context.Context) error
	Log            *slog.Logger
}

func NewEventHandler(events *ticketing.Events, query *ticketing.Query, log *slog.Logger) *EventHandler {
	if events == nil || query == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &EventHandler{Events: events, Query: query, Log: log}
}

type seatRequest struct {
	Price float64 `json:"price" validate:"gte=0"`
}

type createEventRequest struct {
	Name     string        `json:"name" validate:"required,max=200"`
	Duration float64       `json:"duration" validate:"gte=0"`
	Location string        `json:"location" validate:"max=200"`
	Date     time.Time     `json:"date" validate:"required"`
	Seats    []seatRequest `json:"seats" validate:"dive"`
}

type updateEventRequest struct {
	Name     string    `json:"name" validate:"required,max=200"`
	Duration float64   `json:"duration" validate:"gte=0"`
	Location string    `json:"location" validate:"max=200"`
	Date     time.Time `json:"date" validate:"required"`
}

type seatResponse struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

type eventResponse struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Duration             float64        `json:"duration"`
	Location             string         `json:"location"`
	Date                 time.Time      `json:"date"`
	Status               string         `json:"status"`
	SeatsAmount          int            `json:"seatsAmount"`
	AvailableSeatsAmount int            `json:"availableSeatsAmount"`
	AvailableSeats       []seatResponse `json:"availableSeats"`
	CheapestSeat         *float64       `json:"cheapestSeat,omitempty"`
}

type eventListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type eventListResponse struct {
	Events []eventListItem `json:"events"`
}

func toEventResponse(d model.EventDetails) eventResponse {
	seats := make([]seatResponse, 0, len(d.AvailableSeats))
	for _, s := range d.AvailableSeats {
		seats = append(seats, seatResponse{ID: s.ID, Price: s.Price})
	}
	return eventResponse{
		ID:                   d.Key,
		Name:                 d.Name,
		Duration:             d.Duration,
		Location:             d.Location,
		Date:                 d.Date,
		Status:               string(d.Status),
		SeatsAmount:          d.TotalSeats,
		AvailableSeatsAmount: d.AvailableCount(),
		AvailableSeats:       seats,
		CheapestSeat:         d.CheapestSeat,
	}
}

// uuidParam reads a path parameter that must be a UUID.  Keys are
// returned in canonical lower-case form.
func uuidParam(c echo.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (h *EventHandler) catalogChanged(ctx context.Context) {
	if h.CatalogChanged == nil {
		return
	}
	if err := h.CatalogChanged(ctx); err != nil {
		h.Log.WarnContext(ctx, "catalog change hook failed", "err", err)
	}
}

// GetEvent handles GET /api/events/:id?currency=.  The cheapest available
// price is converted to the requested currency (empty means the event's
// own).  400 for a malformed id or unsupported currency, 404 for an
// unknown event.
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	d, err := h.Events.FullSummary(c.Request().Context(), id, c.QueryParam("currency"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toEventResponse(d))
}

// CreateEvent handles POST /api/events.  One seat is created per entry in
// "seats"; seat ids are generated.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var body createEventRequest
	if err := bindAndValidate(c, &body); err != nil {
		return err
	}
	prices := make([]float64, 0, len(body.Seats))
	for _, s := range body.Seats {
		prices = append(prices, s.Price)
	}
	ctx := c.Request().Context()
	key, err := h.Events.Create(ctx, ticketing.EventInput{
		Name:       body.Name,
		Duration:   body.Duration,
		Location:   body.Location,
		Date:       body.Date,
		SeatPrices: prices,
	})
	if err != nil {
		return fail(c, err)
	}
	h.catalogChanged(ctx)
	c.Response().Header().Set(echo.HeaderLocation, "/api/events/"+key)
	return c.JSON(http.StatusCreated, echo.Map{"id": key})
}

// UpdateEvent handles PUT /api/events/:id.  Holders of a seat are
// notified asynchronously.
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body updateEventRequest
	if err := bindAndValidate(c, &body); err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.Events.Update(ctx, id, ticketing.EventUpdate{
		Name:     body.Name,
		Duration: body.Duration,
		Location: body.Location,
		Date:     body.Date,
	})
	if err != nil {
		return fail(c, err)
	}
	h.catalogChanged(ctx)
	return c.JSON(http.StatusOK, toEventResponse(d))
}

// CancelEvent handles DELETE /api/events/:id.  Every reservation holding a
// seat is canceled.
func (h *EventHandler) CancelEvent(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Cancel(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListEvents handles GET /api/events?name=.  The name is matched as a
// case-insensitive prefix.  503 when the query gave up after retries.
func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.Query.AllEvents(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return fail(c, err)
	}
	out := eventListResponse{Events: make([]eventListItem, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, eventListItem{ID: e.Key, Name: e.Name})
	}
	return c.JSON(http.StatusOK, out)
}
