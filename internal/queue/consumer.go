// Package queue contains the background consumer that listens to the
// reservation.notices queue and appends one line per notice to a log file.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultNoticeLog is where notices are written when no path is given.
var DefaultNoticeLog = filepath.Join("logs", "notices.log")

// StartNoticeConsumer connects to RabbitMQ, declares the notice queue
// (durable) and consumes it until ctx is canceled.  Dial failures are
// retried with exponential backoff capped at 30s; a broken consume loop
// reconnects.  Messages that cannot be handled are rejected without
// requeue so one bad payload cannot block the queue.
func StartNoticeConsumer(ctx context.Context, url, logPath string, log *slog.Logger) error {
    if logPath == "" {
        logPath = DefaultNoticeLog
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("notice-consumer: dial failed", "err", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, logPath, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("notice-consumer: consume loop ended, reconnecting", "err", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-t.C:
        return true
    case <-ctx.Done():
        return false
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string, log *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("notice-consumer: set QoS failed", "err", err)
    }
    if _, err := ch.QueueDeclare(NoticeQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(NoticeQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(d.Body, logPath); err != nil {
                log.Error("notice-consumer: handle message failed", "err", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// handleMessage decodes one notice and appends it to logPath.
func handleMessage(body []byte, logPath string) error {
    var n ReservationNotice
    if err := json.Unmarshal(body, &n); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if n.Kind == "" || n.ReservationID == "" {
        return errors.New("notice without kind or reservation id")
    }
    if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatNotice(n)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatNotice(n ReservationNotice) string {
    var what string
    switch n.Kind {
    case "reservation.confirmed":
        what = "Reservation confirmed"
    case "event.changed":
        what = "Event changed"
    case "event.canceled":
        what = "Event canceled"
    default:
        what = n.Kind
    }
    return fmt.Sprintf("[%s] %s | to=%s | reservation_id=%s | event_id=%s | seat_id=%s\n",
        n.OccurredAt, what, n.UserEmail, n.ReservationID, n.EventID, n.SeatID)
}
