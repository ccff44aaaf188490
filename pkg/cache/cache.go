// cache/cache.go
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/henryktews/vue-storefront/pkg/manifest"
)

// Cache stores successful endpoint results keyed by
// integration/endpoint/params-hash. Misses are not errors.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// New builds the backend an integration's manifest block asks for.
// A nil spec means caching is off; callers get a nil Cache.
func New(spec *manifest.Cache) (Cache, error) {
	if spec == nil {
		return nil, nil
	}
	switch spec.Backend {
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(spec), nil
	default:
		return nil, fmt.Errorf("cache backend %q unsupported", spec.Backend)
	}
}

type memoryEntry struct {
	val []byte
	exp time.Time
}

// Memory is the in-process backend: a locked map with lazy expiry.
// Suitable for single-instance deployments; use redis otherwise.
type Memory struct {
	mu sync.RWMutex
	m  map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{m: map[string]memoryEntry{}}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.val, true, nil
}

func (c *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.m[key] = memoryEntry{val: val, exp: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}
