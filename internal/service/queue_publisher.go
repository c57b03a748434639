// Package queue_publisher publishes reservation notices to RabbitMQ.
// Errors are logged and returned so callers can decide to ignore them;
// the ticketing system treats notice delivery as best effort.
package queue_publisher

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/event-ticketing/internal/queue"
    "github.com/iliyamo/event-ticketing/internal/ticketing"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
    PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
    Close() error
}

// Publisher keeps one connection and channel open and reopens them after
// the broker drops them.  It implements ticketing.Notifier.
type Publisher struct {
    url string
    log *slog.Logger

    // open dials the broker and returns a channel on which the notice
    // queue has been declared.
    open func(url string) (channel, func() error, error)

    mu        sync.Mutex
    ch        channel
    closeConn func() error
}

var _ ticketing.Notifier = (*Publisher)(nil)

func NewPublisher(url string, log *slog.Logger) *Publisher {
    if log == nil {
        log = slog.Default()
    }
    return &Publisher{url: url, log: log, open: dialChannel}
}

// dialChannel opens a connection and channel and declares the durable
// notice queue (idempotent).
func dialChannel(url string) (channel, func() error, error) {
    conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
    if err != nil {
        return nil, nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, nil, fmt.Errorf("channel open: %w", err)
    }
    if _, err := ch.QueueDeclare(
        q.NoticeQueueName, // name
        true,              // durable
        false,             // autoDelete
        false,             // exclusive
        false,             // noWait
        nil,               // args
    ); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, nil, fmt.Errorf("queue declare: %w", err)
    }
    return ch, conn.Close, nil
}

// Notify publishes n as a ReservationNotice.
func (p *Publisher) Notify(ctx context.Context, n ticketing.Notice) error {
    return p.Publish(ctx, q.FromNotice(n))
}

// Publish sends one notice to the notice queue as a persistent message.
// A failed publish drops the cached channel so the next call redials.
func (p *Publisher) Publish(ctx context.Context, notice q.ReservationNotice) error {
    body, err := json.Marshal(notice)
    if err != nil {
        p.log.Error("rabbitmq: marshal notice failed", "err", err)
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channelLocked()
    if err != nil {
        p.log.Warn("rabbitmq: connect failed", "err", err)
        return err
    }
    err = ch.PublishWithContext(ctx,
        "",                // default exchange
        q.NoticeQueueName, // routing key = queue name
        false,             // mandatory
        false,             // immediate
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            Timestamp:    time.Now().UTC(),
            Body:         body,
        })
    if err != nil {
        p.log.Warn("rabbitmq: publish failed", "kind", notice.Kind, "reservation", notice.ReservationID, "err", err)
        p.resetLocked()
        return err
    }
    return nil
}

func (p *Publisher) channelLocked() (channel, error) {
    if p.ch != nil {
        return p.ch, nil
    }
    if p.url == "" {
        return nil, errors.New("rabbitmq: no broker url")
    }
    ch, closeConn, err := p.open(p.url)
    if err != nil {
        return nil, err
    }
    p.ch, p.closeConn = ch, closeConn
    return ch, nil
}

func (p *Publisher) resetLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.closeConn != nil {
        _ = p.closeConn()
    }
    p.ch, p.closeConn = nil, nil
}

// Close releases the connection.  The publisher can still be used; the
// next publish reconnects.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.resetLocked()
    return nil
}
