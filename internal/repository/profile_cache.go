package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// RedisProfileRepo keeps user profiles in Redis hashes, one hash per
// user under "<prefix>:<key>".  It is used when no MySQL database is
// configured.
type RedisProfileRepo struct {
	client *redis.Client
	prefix string
}

func NewRedisProfileRepo(client *redis.Client, prefix string) *RedisProfileRepo {
	if prefix == "" {
		prefix = "user"
	}
	return &RedisProfileRepo{client: client, prefix: prefix}
}

func (r *RedisProfileRepo) hashKey(key string) string {
	return r.prefix + ":" + normalizeKey(key)
}

func (r *RedisProfileRepo) Load(ctx context.Context, key string) (model.UserProfile, bool, error) {
	vals, err := r.client.HGetAll(ctx, r.hashKey(key)).Result()
	if err != nil {
		return model.UserProfile{}, false, err
	}
	if len(vals) == 0 {
		return model.UserProfile{}, false, nil
	}
	initialized, _ := strconv.ParseBool(vals["initialized"])
	return model.UserProfile{
		Name:        vals["name"],
		Surname:     vals["surname"],
		Initialized: initialized,
	}, true, nil
}

func (r *RedisProfileRepo) Save(ctx context.Context, key string, p model.UserProfile) error {
	return r.client.HSet(ctx, r.hashKey(key),
		"name", p.Name,
		"surname", p.Surname,
		"initialized", strconv.FormatBool(p.Initialized),
	).Err()
}
