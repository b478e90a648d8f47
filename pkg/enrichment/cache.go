package enrichment

import (
	"context"
	"errors"
	"sync"

	"github.com/sthamann/AXP/pkg/evidence"
)

// ErrCacheMiss is returned by Cache.Get when no entry exists for a key.
var ErrCacheMiss = errors.New("enrichment: cache miss")

// historyDepth bounds how many past payloads a cache retains per key.
const historyDepth = 20

// Cache stores evidence by source id and keeps a short payload history
// so anomaly detection can compare a fresh fetch against the last one.
// History is ordered newest first.
type Cache interface {
	Get(ctx context.Context, key string) (*evidence.Evidence, error)
	Put(ctx context.Context, key string, ev *evidence.Evidence) error
	History(ctx context.Context, key string) ([]map[string]interface{}, error)
	Close() error
}

// MemoryCache is the in-process cache used when no Redis URL is
// configured. All reads return deep clones.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*evidence.Evidence
	history map[string][]map[string]interface{}
}

// NewMemoryCache builds an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: map[string]*evidence.Evidence{},
		history: map[string][]map[string]interface{}{},
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*evidence.Evidence, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ev, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return ev.Clone(), nil
}

func (c *MemoryCache) Put(ctx context.Context, key string, ev *evidence.Evidence) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := ev.Clone()
	c.entries[key] = stored

	hist := append([]map[string]interface{}{ev.Clone().Data}, c.history[key]...)
	if len(hist) > historyDepth {
		hist = hist[:historyDepth]
	}
	c.history[key] = hist
	return nil
}

func (c *MemoryCache) History(ctx context.Context, key string) ([]map[string]interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hist := c.history[key]
	out := make([]map[string]interface{}, len(hist))
	copy(out, hist)
	return out, nil
}

func (c *MemoryCache) Close() error { return nil }
