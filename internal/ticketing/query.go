package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// Query builds the event catalog view.  Each attempt may hit a simulated
// connection fault and is retried up to maxAttempts times.  A successful
// attempt asks every event for its minimal projection concurrently and
// keeps whatever answered before the deadline.
type Query struct {
	catalog     *Catalog
	events      *Events
	maxAttempts int
	deadline    time.Duration
	// fault reports whether the given attempt (1-based) hits
	// ErrNoConnection.
	fault func(attempt int) bool
	clock       clock.Clock
	log         *slog.Logger
}

type minimalResult struct {
	index int
	event model.MinimalEvent
	err   error
}

// AllEvents returns the events whose name starts with namePrefix,
// compared case-insensitively.  An empty prefix matches every event.
// It fails with ErrQueryFailed once every attempt hit ErrNoConnection.
func (q *Query) AllEvents(ctx context.Context, namePrefix string) ([]model.MinimalEvent, error) {
	var lastErr error
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		events, err := q.attempt(ctx, attempt, namePrefix)
		if err == nil {
			return events, nil
		}
		if !errors.Is(err, ErrNoConnection) {
			return nil, err
		}
		lastErr = err
		q.log.WarnContext(ctx, "event query attempt failed", "attempt", attempt, "err", err)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrQueryFailed, q.maxAttempts, lastErr)
}

func (q *Query) attempt(ctx context.Context, attempt int, namePrefix string) ([]model.MinimalEvent, error) {
	if q.fault(attempt) {
		return nil, ErrNoConnection
	}
	keys, err := q.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	// Calls that lose the race keep running and write into the buffer
	// after nobody is listening.
	results := make(chan minimalResult, len(keys))
	callCtx := context.WithoutCancel(ctx)
	for i, key := range keys {
		go func() {
			ev, err := q.events.Minimal(callCtx, key)
			results <- minimalResult{index: i, event: ev, err: err}
		}()
	}

	collected := make([]*model.MinimalEvent, len(keys))
	deadline := q.clock.After(q.deadline)
	pending := len(keys)
collect:
	for pending > 0 {
		select {
		case r := <-results:
			pending--
			if r.err != nil {
				q.log.WarnContext(ctx, "event skipped", "event", keys[r.index], "err", r.err)
				continue
			}
			collected[r.index] = &r.event
		case <-deadline:
			q.log.InfoContext(ctx, "event query deadline reached", "abandoned", pending, "total", len(keys))
			break collect
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	prefix := strings.ToLower(namePrefix)
	out := make([]model.MinimalEvent, 0, len(keys))
	for _, ev := range collected {
		if ev != nil && strings.HasPrefix(strings.ToLower(ev.Name), prefix) {
			out = append(out, *ev)
		}
	}
	return out, nil
}
