package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/ticketing"
)

// ReservationHandler exposes seat reservation and the reservation entity.
type ReservationHandler struct {
	Reservations *ticketing.Reservations
}

func NewReservationHandler(reservations *ticketing.Reservations) *ReservationHandler {
	if reservations == nil {
		panic("nil reservations passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

type reserveSeatRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type reservationResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	EventID string `json:"eventId"`
	SeatID  string `json:"seatId"`
}

// ReserveSeat handles POST /api/events/:id/seats/:seatId.  A new
// reservation is created for the user in the body.  404 when the user,
// event or seat does not exist; 400 when the seat is already reserved.
func (h *ReservationHandler) ReserveSeat(c echo.Context) error {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body reserveSeatRequest
	if err := bindAndValidate(c, &body); err != nil {
		return err
	}
	key, err := h.Reservations.Create(c.Request().Context(), eventID, c.Param("seatId"), strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/reservations/"+key)
	return c.JSON(http.StatusCreated, echo.Map{"id": key})
}

// GetReservation handles GET /api/reservations/:id.
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	d, err := h.Reservations.Info(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reservationResponse{
		ID:      d.Key,
		Status:  string(d.Status),
		EventID: d.EventKey,
		SeatID:  d.SeatID,
	})
}

// CancelReservation handles DELETE /api/reservations/:id.  409 when the
// reservation was already canceled.
func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Reservations.Cancel(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
