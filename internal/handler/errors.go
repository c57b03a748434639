package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/ticketing"
)

// statusFor maps an error from the ticketing package to an HTTP status.
// The class checks come last so that specific errors win.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ticketing.ErrReservationClosed):
		return http.StatusConflict
	case errors.Is(err, ticketing.ErrReservationDeclined),
		errors.Is(err, ticketing.ErrUnsupportedCurrency),
		errors.Is(err, ticketing.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, ticketing.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ticketing.ErrQueryFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client facing message for err.  Internal errors
// are not echoed back.
func messageFor(err error) string {
	switch {
	case errors.Is(err, ticketing.ErrReservationDeclined):
		return "seat is already reserved"
	case errors.Is(err, ticketing.ErrUserNotFound):
		return "user does not exist"
	case errors.Is(err, ticketing.ErrEventNotFound):
		return "event does not exist"
	case errors.Is(err, ticketing.ErrSeatNotFound):
		return "seat does not exist"
	case errors.Is(err, ticketing.ErrReservationNotFound):
		return "reservation does not exist"
	case errors.Is(err, ticketing.ErrUserExists):
		return "user already exists"
	case errors.Is(err, ticketing.ErrReservationExists):
		return "reservation already exists"
	}
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": messageFor(err)})
}
