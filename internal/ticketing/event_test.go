package ticketing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func TestEvents_InitializeOncePerKey(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	in := EventInput{Name: "Jazz Night", SeatPrices: []float64{10, 20, 30}}

	key, err := f.sys.Events.Initialize(ctx, "ev-1", in)
	require.NoError(t, err)
	assert.Equal(t, "ev-1", key)

	_, err = f.sys.Events.Initialize(ctx, "ev-1", in)
	assert.ErrorIs(t, err, ErrEventExists)

	details, err := f.sys.Events.Summary(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", details.Name)
	assert.Equal(t, model.EventActive, details.Status)
	assert.Equal(t, 3, details.TotalSeats)
	assert.Len(t, details.AvailableSeats, 3)
	assert.Nil(t, details.CheapestSeat)

	ids := map[string]bool{}
	for _, s := range details.AvailableSeats {
		assert.NotEmpty(t, s.ID)
		ids[s.ID] = true
	}
	assert.Len(t, ids, 3)

	keys, err := f.sys.Catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ev-1"}, keys)
}

func TestEvents_UninitializedOperations(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()

	_, err := f.sys.Events.Summary(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
	_, err = f.sys.Events.FullSummary(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrEventNotFound)
	_, err = f.sys.Events.Update(ctx, "missing", EventUpdate{Name: "x"})
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, f.sys.Events.Cancel(ctx, "missing"), ErrEventNotFound)
	_, err = f.sys.Events.ClaimSeat(ctx, "missing", "s", "r")
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, f.sys.Events.ReleaseSeat(ctx, "missing", "s"), ErrEventNotFound)
}

func TestEvents_ClaimSeat(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Rock Show", 10, 20)

	_, err := f.sys.Events.ClaimSeat(ctx, key, "no-such-seat", "r1")
	assert.ErrorIs(t, err, ErrSeatNotFound)

	ok, err := f.sys.Events.ClaimSeat(ctx, key, seats[0].ID, "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.sys.Events.ClaimSeat(ctx, key, seats[0].ID, "r2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.sys.Events.ReleaseSeat(ctx, key, seats[0].ID))
	require.NoError(t, f.sys.Events.ReleaseSeat(ctx, key, seats[0].ID))

	ok, err = f.sys.Events.ClaimSeat(ctx, key, seats[0].ID, "r2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvents_ReleaseSeatHeldByChecksHolder(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Rock Show", 10)

	ok, err := f.sys.Events.ClaimSeat(ctx, key, seats[0].ID, "r1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.sys.Events.ReleaseSeatHeldBy(ctx, key, seats[0].ID, "r2"))
	details, err := f.sys.Events.Summary(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, details.AvailableCount())

	require.NoError(t, f.sys.Events.ReleaseSeatHeldBy(ctx, key, seats[0].ID, "r1"))
	details, err = f.sys.Events.Summary(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, details.AvailableCount())

	assert.ErrorIs(t, f.sys.Events.ReleaseSeatHeldBy(ctx, "missing", "s", "r1"), ErrEventNotFound)
}

func TestEvents_TwoSeatScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Jazz Night", 10, 20)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	_, err := f.sys.Reservations.Create(ctx, key, seats[0].ID, alice)
	require.NoError(t, err)

	_, err = f.sys.Reservations.Create(ctx, key, seats[0].ID, bob)
	assert.ErrorIs(t, err, ErrReservationDeclined)

	details, err := f.sys.Events.Summary(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, details.TotalSeats)
	assert.Equal(t, 1, details.AvailableCount())
	assert.Equal(t, seats[1].ID, details.AvailableSeats[0].ID)
}

func TestEvents_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Jazz Night", 10)

	const n = 25
	users := make([]string, n)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("user-%d@example.com", i))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []string
		declined int
	)
	for _, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.sys.Reservations.Create(ctx, key, seats[0].ID, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, res)
			case errors.Is(err, ErrReservationDeclined):
				declined++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, n-1, declined)

	info, err := f.sys.Reservations.Info(ctx, winners[0])
	require.NoError(t, err)
	assert.Equal(t, model.ReservationActive, info.Status)
}

func TestEvents_FullSummaryConvertsCheapestAvailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Opera", 10, 20, 40)
	_, err := f.sys.Reservations.Create(ctx, key, seats[0].ID, f.user(t, "a@example.com"))
	require.NoError(t, err)

	tests := []struct {
		currency string
		want     float64
	}{
		{"", 20},
		{"EUR", 20 * 0.23},
		{"usd", 20 * 0.25},
	}
	for _, tt := range tests {
		details, err := f.sys.Events.FullSummary(ctx, key, tt.currency)
		require.NoError(t, err, tt.currency)
		require.NotNil(t, details.CheapestSeat)
		assert.InDelta(t, tt.want, *details.CheapestSeat, 1e-9, tt.currency)
		assert.Equal(t, 2, details.AvailableCount())
	}

	_, err = f.sys.Events.FullSummary(ctx, key, "GBP")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestEvents_FullSummaryWithoutAvailableSeats(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, _ := f.event(t, "Empty")

	details, err := f.sys.Events.FullSummary(ctx, key, "EUR")
	require.NoError(t, err)
	require.NotNil(t, details.CheapestSeat)
	assert.Zero(t, *details.CheapestSeat)
}

func TestEvents_UpdateNotifiesReservations(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Jazz Night", 15, 5)
	res, err := f.sys.Reservations.Create(ctx, key, seats[1].ID, f.user(t, "a@example.com"))
	require.NoError(t, err)

	when := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
	details, err := f.sys.Events.Update(ctx, key, EventUpdate{Name: "Jazz Night II", Duration: 3, Location: "Club", Date: when})
	require.NoError(t, err)
	assert.Equal(t, "Jazz Night II", details.Name)
	assert.Equal(t, "Club", details.Location)
	assert.Equal(t, when, details.Date)
	require.NotNil(t, details.CheapestSeat)
	assert.Equal(t, 15.0, *details.CheapestSeat)

	// Info is queued behind the one-way notice on the same key.
	info, err := f.sys.Reservations.Info(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationActive, info.Status)
	assert.Equal(t, []NoticeKind{NoticeReservationConfirmed, NoticeEventChanged}, f.notifier.kinds(res))
}

func TestEvents_CancelCascadesToReservations(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key, seats := f.event(t, "Jazz Night", 10, 20, 30)

	var reservations []string
	for i, seat := range seats[:2] {
		res, err := f.sys.Reservations.Create(ctx, key, seat.ID, f.user(t, fmt.Sprintf("u%d@example.com", i)))
		require.NoError(t, err)
		reservations = append(reservations, res)
	}

	require.NoError(t, f.sys.Events.Cancel(ctx, key))

	for _, res := range reservations {
		info, err := f.sys.Reservations.Info(ctx, res)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationCanceled, info.Status)
		assert.Contains(t, f.notifier.kinds(res), NoticeEventCanceled)

		assert.ErrorIs(t, f.sys.Reservations.Cancel(ctx, res), ErrReservationClosed)
	}

	details, err := f.sys.Events.Summary(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, model.EventCanceled, details.Status)
	assert.Equal(t, 3, details.AvailableCount())

	require.NoError(t, f.sys.Events.Cancel(ctx, key))
}
