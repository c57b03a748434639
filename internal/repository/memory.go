package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// MemoryProfileRepo keeps profiles in process memory.  Profiles do not
// survive a restart; it backs local development and tests.
type MemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[string]model.UserProfile
}

func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{profiles: make(map[string]model.UserProfile)}
}

func (r *MemoryProfileRepo) Load(_ context.Context, key string) (model.UserProfile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[normalizeKey(key)]
	return p, ok, nil
}

func (r *MemoryProfileRepo) Save(_ context.Context, key string, p model.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[normalizeKey(key)] = p
	return nil
}
