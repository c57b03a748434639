package ticketing

import (
	"errors"
	"fmt"
)

// Error classes.  Every specific error below wraps one of these when it
// belongs to the class, so transports can map by errors.Is on the class.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

var (
	ErrEventExists         = fmt.Errorf("event %w", ErrAlreadyExists)
	ErrEventNotFound       = fmt.Errorf("event %w", ErrNotFound)
	ErrSeatNotFound        = fmt.Errorf("seat %w", ErrNotFound)
	ErrUserExists          = fmt.Errorf("user %w", ErrAlreadyExists)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrReservationExists   = fmt.Errorf("reservation %w", ErrAlreadyExists)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)

	// ErrReservationDeclined is returned when the requested seat is
	// already held by another reservation.
	ErrReservationDeclined = errors.New("reservation declined: seat already reserved")
	// ErrReservationClosed is returned when canceling a reservation that
	// is already canceled.
	ErrReservationClosed = errors.New("reservation already canceled")

	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrNoConnection is the simulated transient fault of the catalog
	// query.  It never leaves the query's retry loop.
	ErrNoConnection = errors.New("no connection")
	ErrQueryFailed  = errors.New("event query failed")
)
