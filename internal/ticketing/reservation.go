package ticketing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/actor"
	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
)

type reservationState struct {
	res model.Reservation
	// initialized is set once the reservation has been ACTIVE.
	initialized bool
}

// Reservations is the reservation entity.  It drives the claim protocol
// across the user and event entities and owns the reservation lifecycle.
type Reservations struct {
	reg      *actor.Registry[reservationState]
	events   *Events
	users    *Users
	notifier Notifier
	clock    clock.Clock
	log      *slog.Logger
}

func newReservationState(context.Context, string) (*reservationState, error) {
	return &reservationState{res: model.Reservation{Status: model.ReservationCreated}}, nil
}

// Create claims a seat under a freshly generated reservation key.
func (r *Reservations) Create(ctx context.Context, eventKey, seatID, userKey string) (string, error) {
	return r.Claim(ctx, uuid.NewString(), eventKey, seatID, userKey)
}

// Claim runs the reservation protocol: check the user, claim the seat on
// the event, record the reservation on the user, then become ACTIVE.  Any
// failure leaves the reservation DECLINED and is returned to the caller.
// Only a reservation in CREATED state can claim; every later call fails
// with ErrReservationExists.
func (r *Reservations) Claim(ctx context.Context, key, eventKey, seatID, userKey string) (string, error) {
	err := r.reg.Invoke(ctx, key, func(ctx context.Context, s *reservationState) error {
		r.log.InfoContext(ctx, "reserving seat", "reservation", key, "event", eventKey, "seat", seatID, "user", userKey)
		if s.res.Status != model.ReservationCreated {
			return ErrReservationExists
		}
		s.res.EventKey, s.res.UserKey = eventKey, userKey

		ok, err := r.users.IsInitialized(ctx, userKey)
		if err != nil {
			return r.decline(ctx, s, key, err)
		}
		if !ok {
			return r.decline(ctx, s, key, ErrUserNotFound)
		}

		claimed, err := r.events.ClaimSeat(ctx, eventKey, seatID, key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				// The claim may have landed even though its answer was lost.
				r.events.releaseHeldBy(ctx, eventKey, seatID, key)
			}
			return r.decline(ctx, s, key, err)
		}
		if !claimed {
			return r.decline(ctx, s, key, ErrReservationDeclined)
		}

		if err := r.users.AddReservation(ctx, userKey, key); err != nil {
			r.events.releaseHeldBy(ctx, eventKey, seatID, key)
			return r.decline(ctx, s, key, err)
		}

		s.res.SeatID = seatID
		s.res.Status = model.ReservationActive
		s.initialized = true
		r.notify(ctx, key, s, NoticeReservationConfirmed)
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (r *Reservations) decline(ctx context.Context, s *reservationState, key string, cause error) error {
	s.res.Status = model.ReservationDeclined
	r.log.InfoContext(ctx, "reservation declined", "reservation", key, "err", cause)
	return cause
}

// Info returns the reservation.  Reservations that never became ACTIVE
// are reported as ErrReservationNotFound.
func (r *Reservations) Info(ctx context.Context, key string) (model.ReservationDetails, error) {
	var out model.ReservationDetails
	err := r.reg.Invoke(ctx, key, func(_ context.Context, s *reservationState) error {
		if !s.initialized {
			return ErrReservationNotFound
		}
		out = model.ReservationDetails{
			Key:      key,
			Status:   s.res.Status,
			EventKey: s.res.EventKey,
			SeatID:   s.res.SeatID,
		}
		return nil
	})
	return out, err
}

// Cancel releases the reservation's seat, if it still holds it, and
// marks it CANCELED.  A reservation that is already CANCELED fails with
// ErrReservationClosed.
func (r *Reservations) Cancel(ctx context.Context, key string) error {
	return r.reg.Invoke(ctx, key, r.cancelOp(key))
}

func (r *Reservations) cancelOp(key string) actor.Op[reservationState] {
	return func(ctx context.Context, s *reservationState) error {
		r.log.InfoContext(ctx, "canceling reservation", "reservation", key)
		if !s.initialized {
			return ErrReservationNotFound
		}
		if s.res.Status == model.ReservationCanceled {
			return ErrReservationClosed
		}
		if err := r.events.ReleaseSeatHeldBy(ctx, s.res.EventKey, s.res.SeatID, key); err != nil {
			return err
		}
		s.res.Status = model.ReservationCanceled
		return nil
	}
}

// EventChanged tells the reservation that its event was modified.  The
// reservation state does not change; the owner gets a notice.
func (r *Reservations) EventChanged(ctx context.Context, key string) {
	r.reg.Tell(ctx, key, func(ctx context.Context, s *reservationState) error {
		r.log.InfoContext(ctx, "event changed", "reservation", key)
		r.notify(ctx, key, s, NoticeEventChanged)
		return nil
	})
}

// EventCanceled tells the reservation that its event was canceled.  The
// reservation becomes CANCELED whatever its current state.
func (r *Reservations) EventCanceled(ctx context.Context, key string) {
	r.reg.Tell(ctx, key, func(ctx context.Context, s *reservationState) error {
		s.res.Status = model.ReservationCanceled
		r.log.InfoContext(ctx, "reservation canceled by event", "reservation", key)
		r.notify(ctx, key, s, NoticeEventCanceled)
		return nil
	})
}

// notify delivers a notice without letting a failure reach the caller.
func (r *Reservations) notify(ctx context.Context, key string, s *reservationState, kind NoticeKind) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	err := r.notifier.Notify(ctx, Notice{
		Kind:           kind,
		ReservationKey: key,
		EventKey:       s.res.EventKey,
		SeatID:         s.res.SeatID,
		UserKey:        s.res.UserKey,
		At:             r.clock.Now(),
	})
	if err != nil {
		r.log.WarnContext(ctx, "notice not delivered", "reservation", key, "kind", kind, "err", err)
	}
}
