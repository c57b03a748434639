// Package ticketing implements the event, reservation and user entities
// and the protocols between them: claiming a seat, cascading an event
// change or cancellation to its reservations, and aggregating the event
// catalog under retry and deadline policies.
//
// Every entity runs on an actor.Registry, so all operations on one key
// are serialized while different keys proceed concurrently.
package ticketing

import (
	"log/slog"
	"time"

	"github.com/iliyamo/event-ticketing/internal/actor"
	"github.com/iliyamo/event-ticketing/internal/clock"
)

// Config holds the tunables of the simulated dependencies.
type Config struct {
	CurrencyDelay     time.Duration // simulated exchange latency
	CurrencyWorkers   int           // concurrent conversions
	QueryMaxAttempts  int
	QueryFailureRate  float64 // probability that one query attempt hits ErrNoConnection
	QueryDeadline     time.Duration
	MinimalLatencyMax time.Duration // upper bound of Events.Minimal latency
	Seed              uint64        // 0 seeds from the current time
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		CurrencyDelay:     5 * time.Second,
		CurrencyWorkers:   3,
		QueryMaxAttempts:  3,
		QueryFailureRate:  0.2,
		QueryDeadline:     2 * time.Second,
		MinimalLatencyMax: 3 * time.Second,
	}
}

// System wires every entity together.
type System struct {
	Users        *Users
	Events       *Events
	Reservations *Reservations
	Catalog      *Catalog
	Query        *Query
	Exchange     *Exchange
}

// Option customises a System.
type Option func(*systemOptions)

type systemOptions struct {
	log     *slog.Logger
	clock   clock.Clock
	latency func(key string) time.Duration
	fault   func(attempt int) bool
}

// WithLogger sets the logger shared by all entities.
func WithLogger(l *slog.Logger) Option {
	return func(o *systemOptions) { o.log = l }
}

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(o *systemOptions) { o.clock = c }
}

// WithMinimalLatency replaces the random latency of Events.Minimal.
func WithMinimalLatency(f func(key string) time.Duration) Option {
	return func(o *systemOptions) { o.latency = f }
}

// WithQueryFault replaces the random connection fault of the catalog
// query.  f receives the 1-based attempt number.
func WithQueryFault(f func(attempt int) bool) Option {
	return func(o *systemOptions) { o.fault = f }
}

// NewSystem builds the entity system on top of store and notifier.
func NewSystem(cfg Config, store ProfileStore, notifier Notifier, opts ...Option) *System {
	o := systemOptions{log: slog.Default(), clock: clock.NewSystem()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.QueryMaxAttempts < 1 {
		cfg.QueryMaxAttempts = 1
	}
	d := newDice(cfg.Seed)
	if o.latency == nil {
		o.latency = func(string) time.Duration { return d.upTo(cfg.MinimalLatencyMax) }
	}
	if o.fault == nil {
		o.fault = func(int) bool { return d.chance(cfg.QueryFailureRate) }
	}
	if notifier == nil {
		notifier = LogNotifier{Log: o.log}
	}

	s := &System{
		Users:    newUsers(store, o.log),
		Catalog:  newCatalog(o.log),
		Exchange: NewExchange(cfg.CurrencyDelay, cfg.CurrencyWorkers, o.clock, o.log),
	}
	s.Events = &Events{
		reg:      actor.NewRegistry[eventState]("event", nil, actor.WithLogger(o.log)),
		catalog:  s.Catalog,
		exchange: s.Exchange,
		latency:  o.latency,
		clock:    o.clock,
		log:      o.log.With("component", "events"),
	}
	s.Reservations = &Reservations{
		reg:      actor.NewRegistry[reservationState]("reservation", newReservationState, actor.WithLogger(o.log)),
		events:   s.Events,
		users:    s.Users,
		notifier: notifier,
		clock:    o.clock,
		log:      o.log.With("component", "reservations"),
	}
	s.Events.reservations = s.Reservations
	s.Query = &Query{
		catalog:     s.Catalog,
		events:      s.Events,
		maxAttempts: cfg.QueryMaxAttempts,
		deadline:    cfg.QueryDeadline,
		fault:       o.fault,
		clock:       o.clock,
		log:         o.log.With("component", "query"),
	}
	return s
}
