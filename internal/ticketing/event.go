package ticketing

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/actor"
	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventInput carries the fields of a new event.  One seat is created per
// entry of SeatPrices.
type EventInput struct {
	Name       string
	Duration   float64
	Location   string
	Date       time.Time
	SeatPrices []float64
}

// EventUpdate carries the mutable descriptive fields of an event.
type EventUpdate struct {
	Name     string
	Duration float64
	Location string
	Date     time.Time
}

type eventState struct {
	initialized bool
	event       model.Event
	// holds maps a seat ID to the key of the reservation holding it.
	// Presence of a key is what makes a seat unavailable.
	holds map[string]string
}

func (s *eventState) available() []model.Seat {
	out := make([]model.Seat, 0, len(s.event.Seats))
	for _, seat := range s.event.Seats {
		if _, held := s.holds[seat.ID]; !held {
			out = append(out, seat)
		}
	}
	return out
}

func (s *eventState) details(key string) model.EventDetails {
	return model.EventDetails{
		Key:            key,
		Name:           s.event.Name,
		Duration:       s.event.Duration,
		Location:       s.event.Location,
		Date:           s.event.Date,
		Status:         s.event.Status,
		TotalSeats:     len(s.event.Seats),
		AvailableSeats: s.available(),
	}
}

func (s *eventState) hasSeat(seatID string) bool {
	return slices.ContainsFunc(s.event.Seats, func(seat model.Seat) bool { return seat.ID == seatID })
}

// cheapest returns the lowest price among seats, or 0 when there are none.
func cheapest(seats []model.Seat) float64 {
	if len(seats) == 0 {
		return 0
	}
	return slices.MinFunc(seats, func(a, b model.Seat) int {
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	}).Price
}

// Events is the event entity.  Each event owns its seat inventory and
// the seat to reservation index, and is the single place where seat
// exclusivity is decided.
type Events struct {
	reg          *actor.Registry[eventState]
	catalog      *Catalog
	exchange     *Exchange
	reservations *Reservations
	latency      func(key string) time.Duration
	clock        clock.Clock
	log          *slog.Logger
}

// Create initializes an event under a freshly generated key.
func (e *Events) Create(ctx context.Context, in EventInput) (string, error) {
	return e.Initialize(ctx, uuid.NewString(), in)
}

// Initialize sets up the event identified by key and registers it in the
// catalog.  It fails with ErrEventExists when called twice for a key.
func (e *Events) Initialize(ctx context.Context, key string, in EventInput) (string, error) {
	err := e.reg.Invoke(ctx, key, func(ctx context.Context, s *eventState) error {
		if s.initialized {
			return ErrEventExists
		}
		if err := e.catalog.Register(ctx, key); err != nil {
			return err
		}
		seats := make([]model.Seat, 0, len(in.SeatPrices))
		for _, price := range in.SeatPrices {
			seats = append(seats, model.Seat{ID: uuid.NewString(), Price: price})
		}
		s.event = model.Event{
			Name:     in.Name,
			Duration: in.Duration,
			Location: in.Location,
			Date:     in.Date,
			Status:   model.EventActive,
			Seats:    seats,
		}
		s.holds = make(map[string]string)
		s.initialized = true
		e.log.InfoContext(ctx, "event initialized", "event", key, "seats", len(seats))
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Summary returns the event's fields and its currently available seats.
func (e *Events) Summary(ctx context.Context, key string) (model.EventDetails, error) {
	var out model.EventDetails
	err := e.reg.Invoke(ctx, key, func(_ context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		out = s.details(key)
		return nil
	})
	return out, err
}

// FullSummary is Summary plus the cheapest available price converted to
// currency.  The conversion happens after the event's turn so a slow
// exchange does not hold up claims on the event.
func (e *Events) FullSummary(ctx context.Context, key, currency string) (model.EventDetails, error) {
	if _, err := e.exchange.Rate(currency); err != nil {
		return model.EventDetails{}, err
	}
	out, err := e.Summary(ctx, key)
	if err != nil {
		return model.EventDetails{}, err
	}
	price, err := e.exchange.Convert(ctx, cheapest(out.AvailableSeats), currency)
	if err != nil {
		return model.EventDetails{}, err
	}
	out.CheapestSeat = &price
	return out, nil
}

// Minimal returns the key and name of the event after a simulated,
// variable delay.
func (e *Events) Minimal(ctx context.Context, key string) (model.MinimalEvent, error) {
	var out model.MinimalEvent
	err := e.reg.Invoke(ctx, key, func(_ context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		out = model.MinimalEvent{Key: key, Name: s.event.Name}
		return nil
	})
	if err != nil {
		return model.MinimalEvent{}, err
	}
	if d := e.latency(key); d > 0 {
		select {
		case <-e.clock.After(d):
		case <-ctx.Done():
			return model.MinimalEvent{}, ctx.Err()
		}
	}
	return out, nil
}

// Update replaces the descriptive fields and tells every reservation
// holding a seat that the event changed.  The returned summary carries
// the cheapest available price in the event's own currency.
func (e *Events) Update(ctx context.Context, key string, in EventUpdate) (model.EventDetails, error) {
	var out model.EventDetails
	err := e.reg.Invoke(ctx, key, func(ctx context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		s.event.Name = in.Name
		s.event.Duration = in.Duration
		s.event.Location = in.Location
		s.event.Date = in.Date
		for _, reservation := range s.holds {
			e.reservations.EventChanged(ctx, reservation)
		}
		out = s.details(key)
		price := cheapest(out.AvailableSeats)
		out.CheapestSeat = &price
		e.log.InfoContext(ctx, "event updated", "event", key, "notified", len(s.holds))
		return nil
	})
	return out, err
}

// Cancel marks the event CANCELED, cancels every reservation holding a
// seat and empties the index.  Canceling again is allowed.
func (e *Events) Cancel(ctx context.Context, key string) error {
	return e.reg.Invoke(ctx, key, func(ctx context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		s.event.Status = model.EventCanceled
		for _, reservation := range s.holds {
			e.reservations.EventCanceled(ctx, reservation)
		}
		e.log.InfoContext(ctx, "event canceled", "event", key, "reservations", len(s.holds))
		clear(s.holds)
		return nil
	})
}

// ClaimSeat links seatID to reservationKey if the seat is free.  It
// returns false without error when another reservation holds the seat.
func (e *Events) ClaimSeat(ctx context.Context, key, seatID, reservationKey string) (bool, error) {
	var claimed bool
	err := e.reg.Invoke(ctx, key, func(ctx context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		if !s.hasSeat(seatID) {
			return ErrSeatNotFound
		}
		if _, held := s.holds[seatID]; held {
			return nil
		}
		s.holds[seatID] = reservationKey
		claimed = true
		return nil
	})
	return claimed, err
}

// ReleaseSeat frees seatID.  Releasing a free seat is a no-op.
func (e *Events) ReleaseSeat(ctx context.Context, key, seatID string) error {
	return e.reg.Invoke(ctx, key, func(_ context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		delete(s.holds, seatID)
		return nil
	})
}

// releaseHoldOp frees seatID only if reservationKey still holds it.  A
// seat that was freed and claimed again by another reservation is left
// alone.
func releaseHoldOp(seatID, reservationKey string) actor.Op[eventState] {
	return func(_ context.Context, s *eventState) error {
		if !s.initialized {
			return ErrEventNotFound
		}
		if s.holds[seatID] == reservationKey {
			delete(s.holds, seatID)
		}
		return nil
	}
}

// ReleaseSeatHeldBy is ReleaseSeat restricted to the hold of
// reservationKey.  Reservations use it when they are canceled.
func (e *Events) ReleaseSeatHeldBy(ctx context.Context, key, seatID, reservationKey string) error {
	return e.reg.Invoke(ctx, key, releaseHoldOp(seatID, reservationKey))
}

// releaseHeldBy is the one-way form of ReleaseSeatHeldBy.  It
// compensates a claim whose outcome the reservation could not observe.
func (e *Events) releaseHeldBy(ctx context.Context, key, seatID, reservationKey string) {
	e.reg.Tell(ctx, key, releaseHoldOp(seatID, reservationKey))
}
