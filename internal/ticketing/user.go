package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/iliyamo/event-ticketing/internal/actor"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ProfileStore persists the durable part of a user.  Load reports
// found=false for a key that was never saved.
type ProfileStore interface {
	Load(ctx context.Context, key string) (profile model.UserProfile, found bool, err error)
	Save(ctx context.Context, key string, profile model.UserProfile) error
}

type userState struct {
	profile model.UserProfile
	// reservations is deliberately not persisted.
	reservations []string
}

// Users is the user entity.  Profiles are loaded from the store the
// first time a key is used and written back on every mutation.
type Users struct {
	reg   *actor.Registry[userState]
	store ProfileStore
	log   *slog.Logger
}

func newUsers(store ProfileStore, log *slog.Logger) *Users {
	u := &Users{store: store, log: log.With("component", "users")}
	u.reg = actor.NewRegistry[userState]("user", u.activate, actor.WithLogger(log))
	return u
}

func (u *Users) activate(ctx context.Context, key string) (*userState, error) {
	profile, found, err := u.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return &userState{}, nil
	}
	return &userState{profile: profile}, nil
}

// Initialize creates the user's profile.  It fails with ErrUserExists if
// the user was initialized before.
func (u *Users) Initialize(ctx context.Context, key, name, surname string) (string, error) {
	err := u.reg.Invoke(ctx, key, func(ctx context.Context, s *userState) error {
		u.log.InfoContext(ctx, "initializing user", "user", key)
		if s.profile.Initialized {
			return ErrUserExists
		}
		profile := model.UserProfile{Name: name, Surname: surname, Initialized: true}
		if err := u.store.Save(ctx, key, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		s.profile = profile
		s.reservations = nil
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Update replaces the user's name and surname.
func (u *Users) Update(ctx context.Context, key, name, surname string) error {
	return u.reg.Invoke(ctx, key, func(ctx context.Context, s *userState) error {
		u.log.InfoContext(ctx, "updating user", "user", key)
		if !s.profile.Initialized {
			return ErrUserNotFound
		}
		profile := s.profile
		profile.Name, profile.Surname = name, surname
		if err := u.store.Save(ctx, key, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		s.profile = profile
		return nil
	})
}

// AddReservation records a reservation key on the user.  The list is
// kept in memory only, but the profile is saved again so the write path
// matches every other mutation.
func (u *Users) AddReservation(ctx context.Context, key, reservationKey string) error {
	return u.reg.Invoke(ctx, key, func(ctx context.Context, s *userState) error {
		u.log.InfoContext(ctx, "adding reservation", "user", key, "reservation", reservationKey)
		if !s.profile.Initialized {
			return ErrUserNotFound
		}
		if err := u.store.Save(ctx, key, s.profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		s.reservations = append(s.reservations, reservationKey)
		return nil
	})
}

// Info returns the user's profile and the reservations recorded since
// activation.
func (u *Users) Info(ctx context.Context, key string) (model.UserDetails, error) {
	var out model.UserDetails
	err := u.reg.Invoke(ctx, key, func(_ context.Context, s *userState) error {
		if !s.profile.Initialized {
			return ErrUserNotFound
		}
		out = model.UserDetails{
			Key:          key,
			Name:         s.profile.Name,
			Surname:      s.profile.Surname,
			Reservations: slices.Clone(s.reservations),
		}
		return nil
	})
	return out, err
}

// IsInitialized reports whether the user exists.  It only fails when
// the profile cannot be loaded.
func (u *Users) IsInitialized(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := u.reg.Invoke(ctx, key, func(_ context.Context, s *userState) error {
		ok = s.profile.Initialized
		return nil
	})
	return ok, err
}
