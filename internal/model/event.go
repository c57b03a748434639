package model

import "time"

// EventStatus is the lifecycle state of an event.  CANCELED is terminal.
type EventStatus string

const (
    EventActive   EventStatus = "ACTIVE"
    EventCanceled EventStatus = "CANCELED"
)

// Event holds the descriptive fields and seat inventory owned by an
// event entity.  The seat to reservation index is private to the
// entity and is not part of this record.
//
// Fields:
//  Name     – display name used by catalog search.
//  Duration – length of the event in hours.
//  Location – free form venue description.
//  Date     – when the event takes place.
//  Status   – ACTIVE or CANCELED.
//  Seats    – ordered seat inventory, fixed at initialization.
type Event struct {
    Name     string
    Duration float64
    Location string
    Date     time.Time
    Status   EventStatus
    Seats    []Seat
}

// EventDetails is the read model returned by the summary operations.
// CheapestSeat is only populated by the full summary (and by update,
// which returns the full summary); for the plain summary it is nil.
type EventDetails struct {
    Key            string
    Name           string
    Duration       float64
    Location       string
    Date           time.Time
    Status         EventStatus
    TotalSeats     int
    AvailableSeats []Seat
    CheapestSeat   *float64
}

// AvailableCount is the number of seats not held by any reservation.
func (d EventDetails) AvailableCount() int { return len(d.AvailableSeats) }

// MinimalEvent is the lightweight projection aggregated by the catalog
// query.
type MinimalEvent struct {
    Key  string
    Name string
}
