package storage

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ConfigCache fronts a KV with an unbounded in-memory copy. Reads fill the
// cache on miss, writes go to the backing store first. Concurrent misses
// for one key share a single backing read.
type ConfigCache struct {
	backing KV
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	value   string
	present bool
}

func NewConfigCache(backing KV) *ConfigCache {
	return &ConfigCache{
		backing: backing,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(guildID, key string) string {
	return guildID + "\x00" + key
}

// Get returns the value and whether it exists.
func (c *ConfigCache) Get(ctx context.Context, guildID, key string) (string, bool, error) {
	ck := cacheKey(guildID, key)

	c.mu.RLock()
	entry, ok := c.entries[ck]
	c.mu.RUnlock()
	if ok {
		return entry.value, entry.present, nil
	}

	v, err, _ := c.group.Do(ck, func() (interface{}, error) {
		value, err := c.backing.GetConfig(ctx, guildID, key)
		var fresh cacheEntry
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return nil, err
		default:
			fresh = cacheEntry{value: value, present: true}
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		// a Set or Delete that landed during the read is newer
		if existing, ok := c.entries[ck]; ok {
			return existing, nil
		}
		c.entries[ck] = fresh
		return fresh, nil
	})
	if err != nil {
		return "", false, err
	}
	e := v.(cacheEntry)
	return e.value, e.present, nil
}

// Set writes through to the backing store, then updates the cache.
func (c *ConfigCache) Set(ctx context.Context, guildID, key, value string) error {
	if err := c.backing.SetConfig(ctx, guildID, key, value); err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[cacheKey(guildID, key)] = cacheEntry{value: value, present: true}
	c.mu.Unlock()
	return nil
}

func (c *ConfigCache) Delete(ctx context.Context, guildID, key string) error {
	if err := c.backing.DeleteConfig(ctx, guildID, key); err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[cacheKey(guildID, key)] = cacheEntry{}
	c.mu.Unlock()
	return nil
}

// Len reports the number of cached keys, including cached misses.
func (c *ConfigCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
