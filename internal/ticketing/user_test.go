package ticketing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func TestUsers_InitializeAndInfo(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()

	key, err := f.sys.Users.Initialize(ctx, "martin@example.com", "Martin", "Kuczynski")
	require.NoError(t, err)
	assert.Equal(t, "martin@example.com", key)

	info, err := f.sys.Users.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Martin", info.Name)
	assert.Equal(t, "Kuczynski", info.Surname)
	assert.Empty(t, info.Reservations)

	for i := 0; i < 2; i++ {
		_, err = f.sys.Users.Initialize(ctx, key, "Other", "Person")
		assert.ErrorIs(t, err, ErrUserExists)
		assert.ErrorIs(t, err, ErrAlreadyExists)
	}

	info, err = f.sys.Users.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Martin", info.Name)
}

func TestUsers_UninitializedOperations(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()

	ok, err := f.sys.Users.IsInitialized(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, f.sys.Users.Update(ctx, "ghost@example.com", "a", "b"), ErrUserNotFound)
	assert.ErrorIs(t, f.sys.Users.AddReservation(ctx, "ghost@example.com", "r1"), ErrUserNotFound)
	_, err = f.sys.Users.Info(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_UpdatePersists(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key := f.user(t, "ana@example.com")

	require.NoError(t, f.sys.Users.Update(ctx, key, "Ana", "Lopez"))

	info, err := f.sys.Users.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Ana", info.Name)
	assert.Equal(t, "Lopez", info.Surname)
	assert.Equal(t, model.UserProfile{Name: "Ana", Surname: "Lopez", Initialized: true}, f.store.profiles[key])
}

func TestUsers_ReservationListIsNotDurable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	key := f.user(t, "ana@example.com")

	require.NoError(t, f.sys.Users.AddReservation(ctx, key, "r1"))
	require.NoError(t, f.sys.Users.AddReservation(ctx, key, "r2"))
	info, err := f.sys.Users.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, info.Reservations)
	assert.Equal(t, 3, f.store.saves)

	// A fresh process over the same store sees the profile but not the list.
	restarted := NewSystem(testConfig(), f.store, f.notifier, WithLogger(f.sys.Users.log))
	info, err = restarted.Users.Info(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Name ana@example.com", info.Name)
	assert.Empty(t, info.Reservations)

	_, err = restarted.Users.Initialize(ctx, key, "x", "y")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUsers_FailedSaveLeavesUserUninitialized(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.store.setFailSave("ana@example.com", true)

	_, err := f.sys.Users.Initialize(ctx, "ana@example.com", "Ana", "Lopez")
	require.Error(t, err)

	ok, err := f.sys.Users.IsInitialized(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	f.store.setFailSave("ana@example.com", false)
	_, err = f.sys.Users.Initialize(ctx, "ana@example.com", "Ana", "Lopez")
	assert.NoError(t, err)
}

func TestUsers_LoadFailureIsReported(t *testing.T) {
	t.Parallel()
	f := newFixture(t, testConfig())
	f.store.failLoad = true

	_, err := f.sys.Users.IsInitialized(context.Background(), "ana@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}
