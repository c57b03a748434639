package model

// ReservationStatus is the lifecycle state of a reservation.
//
//  CREATED  → ACTIVE | DECLINED
//  ACTIVE   → CANCELED
//
// DECLINED and CANCELED are terminal.
type ReservationStatus string

const (
    ReservationCreated  ReservationStatus = "CREATED"
    ReservationDeclined ReservationStatus = "DECLINED"
    ReservationActive   ReservationStatus = "ACTIVE"
    ReservationCanceled ReservationStatus = "CANCELED"
)

// Terminal reports whether no further transition is possible.
func (s ReservationStatus) Terminal() bool {
    return s == ReservationDeclined || s == ReservationCanceled
}

// Reservation records one user's claim on one seat of one event.  The
// event and user are referenced by key only; the reservation does not
// own them.
//
// Fields:
//  Status   – current lifecycle state.
//  EventKey – event the seat belongs to.
//  SeatID   – claimed seat, set once the claim succeeds.
//  UserKey  – user the reservation was made for.
type Reservation struct {
    Status   ReservationStatus
    EventKey string
    SeatID   string
    UserKey  string
}

// ReservationDetails is the read model of a reservation.
type ReservationDetails struct {
    Key      string
    Status   ReservationStatus
    EventKey string
    SeatID   string
}
