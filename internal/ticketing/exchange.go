package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/iliyamo/event-ticketing/internal/clock"
)

// defaultRates converts event prices into the requested currency.  The
// empty code means no conversion.
var defaultRates = map[string]float64{
	"":    1,
	"EUR": 0.23,
	"USD": 0.25,
}

// Exchange is a stateless currency converter.  Each conversion waits
// for a simulated upstream delay; at most workers conversions wait at
// the same time and the rest queue for a slot.
type Exchange struct {
	rates map[string]float64
	delay time.Duration
	slots *semaphore.Weighted
	clock clock.Clock
	log   *slog.Logger
}

// NewExchange builds an exchange with the fixed rate table.
func NewExchange(delay time.Duration, workers int, clk clock.Clock, log *slog.Logger) *Exchange {
	if workers < 1 {
		workers = 1
	}
	return &Exchange{
		rates: defaultRates,
		delay: delay,
		slots: semaphore.NewWeighted(int64(workers)),
		clock: clk,
		log:   log.With("component", "exchange"),
	}
}

// Rate returns the multiplier for code without any delay.
func (x *Exchange) Rate(code string) (float64, error) {
	rate, ok := x.rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return rate, nil
}

// Convert returns amount expressed in the currency identified by code.
func (x *Exchange) Convert(ctx context.Context, amount float64, code string) (float64, error) {
	rate, err := x.Rate(code)
	if err != nil {
		return 0, err
	}
	x.log.DebugContext(ctx, "exchanging", "amount", amount, "currency", code)

	if err := x.slots.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer x.slots.Release(1)

	if x.delay > 0 {
		select {
		case <-x.clock.After(x.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return amount * rate, nil
}
