// Package trigger keeps the registry of recurring time-based triggers and
// runs the handlers they name.
package trigger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/redis/go-redis/v9"
)

// Trigger is a recurring invocation of a named handler
type Trigger struct {
	Handler string
	Every   time.Duration
}

// Registry stores triggers by handler name
type Registry interface {
	Exists(ctx context.Context, handler string) (bool, error)
	// Create stores t unless a trigger for the same handler exists. It
	// reports whether t was stored.
	Create(ctx context.Context, t Trigger) (bool, error)
	List(ctx context.Context) ([]Trigger, error)
}

// Ensure creates t when no trigger for its handler exists yet.
func Ensure(ctx context.Context, reg Registry, t Trigger) (bool, error) {
	exists, err := reg.Exists(ctx, t.Handler)
	if err != nil {
		return false, fmt.Errorf("failed to check trigger %q: %w", t.Handler, err)
	}
	if exists {
		return false, nil
	}
	created, err := reg.Create(ctx, t)
	if err != nil {
		return false, fmt.Errorf("failed to create trigger %q: %w", t.Handler, err)
	}
	return created, nil
}

// MemoryRegistry is a process-local Registry
type MemoryRegistry struct {
	mu       sync.Mutex
	triggers map[string]time.Duration
}

// NewMemoryRegistry creates an empty MemoryRegistry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{triggers: make(map[string]time.Duration)}
}

// Exists reports whether handler has a trigger
func (m *MemoryRegistry) Exists(ctx context.Context, handler string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.triggers[handler]
	return ok, nil
}

// Create stores t if absent
func (m *MemoryRegistry) Create(ctx context.Context, t Trigger) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.triggers[t.Handler]; ok {
		return false, nil
	}
	m.triggers[t.Handler] = t.Every
	return true, nil
}

// List returns all triggers ordered by handler
func (m *MemoryRegistry) List(ctx context.Context) ([]Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Trigger, 0, len(m.triggers))
	for h, every := range m.triggers {
		out = append(out, Trigger{Handler: h, Every: every})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handler < out[j].Handler })
	return out, nil
}

const redisTriggersKey = "meetreminder:triggers"

// RedisRegistry stores triggers in a Redis hash so every process sees the
// same set. HSETNX makes concurrent creation converge on one entry.
type RedisRegistry struct {
	rdb *database.Redis
}

// NewRedisRegistry creates a RedisRegistry
func NewRedisRegistry(rdb *database.Redis) *RedisRegistry {
	return &RedisRegistry{rdb: rdb}
}

// Exists reports whether handler has a trigger
func (r *RedisRegistry) Exists(ctx context.Context, handler string) (bool, error) {
	return r.rdb.HExists(ctx, redisTriggersKey, handler).Result()
}

// Create stores t if absent
func (r *RedisRegistry) Create(ctx context.Context, t Trigger) (bool, error) {
	return r.rdb.HSetNX(ctx, redisTriggersKey, t.Handler, t.Every.String()).Result()
}

// List returns all triggers ordered by handler
func (r *RedisRegistry) List(ctx context.Context) ([]Trigger, error) {
	entries, err := r.rdb.HGetAll(ctx, redisTriggersKey).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	out := make([]Trigger, 0, len(entries))
	for h, raw := range entries {
		every, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("trigger %q has invalid interval %q: %w", h, raw, err)
		}
		out = append(out, Trigger{Handler: h, Every: every})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handler < out[j].Handler })
	return out, nil
}
