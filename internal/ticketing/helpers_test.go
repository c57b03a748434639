package ticketing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]model.UserProfile
	saves    int
	failSave map[string]bool
	failLoad bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[string]model.UserProfile{}, failSave: map[string]bool{}}
}

func (f *fakeStore) Load(_ context.Context, key string) (model.UserProfile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLoad {
		return model.UserProfile{}, false, errors.New("store unavailable")
	}
	p, ok := f.profiles[key]
	return p, ok, nil
}

func (f *fakeStore) Save(_ context.Context, key string, p model.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave[key] {
		return errors.New("write rejected")
	}
	f.saves++
	f.profiles[key] = p
	return nil
}

func (f *fakeStore) setFailSave(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSave[key] = fail
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *recordingNotifier) kinds(reservationKey string) []NoticeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []NoticeKind
	for _, n := range r.notices {
		if n.ReservationKey == reservationKey {
			out = append(out, n.Kind)
		}
	}
	return out
}

func testConfig() Config {
	return Config{
		CurrencyWorkers:  3,
		QueryMaxAttempts: 3,
		QueryDeadline:    time.Second,
		Seed:             1,
	}
}

type fixture struct {
	sys      *System
	store    *fakeStore
	notifier *recordingNotifier
}

func newFixture(t *testing.T, cfg Config, opts ...Option) *fixture {
	t.Helper()
	store := newFakeStore()
	notifier := &recordingNotifier{}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return &fixture{
		sys:      NewSystem(cfg, store, notifier, opts...),
		store:    store,
		notifier: notifier,
	}
}

func (f *fixture) user(t *testing.T, key string) string {
	t.Helper()
	_, err := f.sys.Users.Initialize(context.Background(), key, "Name "+key, "Surname")
	require.NoError(t, err)
	return key
}

func (f *fixture) event(t *testing.T, name string, prices ...float64) (string, []model.Seat) {
	t.Helper()
	ctx := context.Background()
	key, err := f.sys.Events.Create(ctx, EventInput{
		Name:       name,
		Duration:   2,
		Location:   "Main Hall",
		Date:       time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC),
		SeatPrices: prices,
	})
	require.NoError(t, err)
	details, err := f.sys.Events.Summary(ctx, key)
	require.NoError(t, err)
	return key, details.AvailableSeats
}
