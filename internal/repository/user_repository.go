// Package repository holds the user profile stores.  Every store
// implements ticketing.ProfileStore and indexes profiles by the
// normalized user key (lower-cased, trimmed email).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ProfileRepo stores user profiles in the `user_profiles` table.  Keys
// are normalized email addresses.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Load fetches the profile stored under key.  found is false when no row
// exists.
func (r *ProfileRepo) Load(ctx context.Context, key string) (model.UserProfile, bool, error) {
	var p model.UserProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT name,surname,initialized FROM user_profiles WHERE user_key=? LIMIT 1",
		normalizeKey(key)).Scan(&p.Name, &p.Surname, &p.Initialized)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserProfile{}, false, nil
	}
	if err != nil {
		return model.UserProfile{}, false, err
	}
	return p, true, nil
}

// Save upserts the profile under key.
func (r *ProfileRepo) Save(ctx context.Context, key string, p model.UserProfile) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_profiles (user_key, name, surname, initialized) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE name=VALUES(name), surname=VALUES(surname), initialized=VALUES(initialized)`,
		normalizeKey(key), p.Name, p.Surname, p.Initialized)
	return err
}
