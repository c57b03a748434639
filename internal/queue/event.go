// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/iliyamo/event-ticketing/internal/ticketing"
)

// NoticeQueueName is the durable queue carrying reservation notices.
const NoticeQueueName = "reservation.notices"

// ReservationNotice is published whenever a reservation owner should hear
// about something: their reservation was confirmed, or the event behind
// it changed or was canceled.  It carries keys only; consumers that need
// more look the entities up through the API.
type ReservationNotice struct {
    Kind          string `json:"kind"`
    ReservationID string `json:"reservation_id"`
    EventID       string `json:"event_id"`
    SeatID        string `json:"seat_id,omitempty"`
    UserEmail     string `json:"user_email"`
    OccurredAt    string `json:"occurred_at"`
}

// FromNotice converts a ticketing notice into its wire form.  OccurredAt
// is RFC 3339 in UTC.
func FromNotice(n ticketing.Notice) ReservationNotice {
    return ReservationNotice{
        Kind:          string(n.Kind),
        ReservationID: n.ReservationKey,
        EventID:       n.EventKey,
        SeatID:        n.SeatID,
        UserEmail:     n.UserKey,
        OccurredAt:    n.At.UTC().Format(time.RFC3339),
    }
}
