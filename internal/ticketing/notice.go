package ticketing

import (
	"context"
	"log/slog"
	"time"
)

// NoticeKind names the user-facing notice a reservation emits.
type NoticeKind string

const (
	NoticeReservationConfirmed NoticeKind = "reservation.confirmed"
	NoticeEventChanged         NoticeKind = "event.changed"
	NoticeEventCanceled        NoticeKind = "event.canceled"
)

// notifyTimeout bounds a single delivery attempt.
const notifyTimeout = 3 * time.Second

// Notice is sent to the owner of a reservation.  Delivery is best
// effort; a failed delivery never fails the operation that caused it.
type Notice struct {
	Kind           NoticeKind
	ReservationKey string
	EventKey       string
	SeatID         string
	UserKey        string
	At             time.Time
}

// Notifier delivers notices, for example by publishing them to a broker.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to a logger.  It is used when no broker is
// configured.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, notice Notice) error {
	n.Log.InfoContext(ctx, "notice",
		"kind", notice.Kind,
		"reservation", notice.ReservationKey,
		"event", notice.EventKey,
		"seat", notice.SeatID,
		"user", notice.UserKey,
	)
	return nil
}
