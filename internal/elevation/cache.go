package elevation

import (
	"context"
	"fmt"
	"sync"
)

// Cache maps rounded coordinate keys to elevations in meters.
// Entries are never evicted; writes for the same key always carry the same value.
type Cache interface {
	Lookup(ctx context.Context, keys []string) (map[string]float64, error)
	Store(ctx context.Context, values map[string]float64) error
}

// MemoryCache is an in-process Cache safe for concurrent use.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]float64)}
}

// Lookup returns the cached elevation for each known key. Unknown keys are absent from the result.
func (mc *MemoryCache) Lookup(_ context.Context, keys []string) (map[string]float64, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	found := make(map[string]float64, len(keys))
	for _, key := range keys {
		if v, ok := mc.values[key]; ok {
			found[key] = v
		}
	}

	return found, nil
}

// Store inserts the given values.
func (mc *MemoryCache) Store(_ context.Context, values map[string]float64) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for key, v := range values {
		mc.values[key] = v
	}

	return nil
}

// Len returns the number of cached points.
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return len(mc.values)
}

// TieredCache keeps a MemoryCache in front of a shared backing store (Postgres or Valkey).
// Backing hits are promoted into memory so repeated lookups stay in-process.
type TieredCache struct {
	memory  *MemoryCache
	backing Cache
}

// NewTieredCache wraps backing with an in-memory layer.
func NewTieredCache(backing Cache) *TieredCache {
	return &TieredCache{memory: NewMemoryCache(), backing: backing}
}

// Lookup serves keys from memory and asks the backing store only for the rest.
func (tc *TieredCache) Lookup(ctx context.Context, keys []string) (map[string]float64, error) {
	found, _ := tc.memory.Lookup(ctx, keys)
	if len(found) == len(keys) {
		return found, nil
	}

	missing := make([]string, 0, len(keys)-len(found))
	for _, key := range keys {
		if _, ok := found[key]; !ok {
			missing = append(missing, key)
		}
	}

	fromBacking, err := tc.backing.Lookup(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to look up backing elevation cache: %w", err)
	}

	if len(fromBacking) > 0 {
		_ = tc.memory.Store(ctx, fromBacking)
		for key, v := range fromBacking {
			found[key] = v
		}
	}

	return found, nil
}

// Store writes to memory first so a failing backing store still serves this process.
func (tc *TieredCache) Store(ctx context.Context, values map[string]float64) error {
	_ = tc.memory.Store(ctx, values)

	if err := tc.backing.Store(ctx, values); err != nil {
		return fmt.Errorf("failed to store elevations in backing cache: %w", err)
	}

	return nil
}
