package repository

import (
	"context"
	"sort"
	"sync"
)

// memoryCache keeps slots in process memory
type memoryCache struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryCache creates an in-process draft cache
func NewMemoryCache() DraftCache {
	return &memoryCache{slots: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, slot string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	payload, ok := c.slots[slot]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (c *memoryCache) Put(ctx context.Context, slot string, payload []byte) error {
	stored := make([]byte, len(payload))
	copy(stored, payload)

	c.mu.Lock()
	c.slots[slot] = stored
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, slot string) error {
	c.mu.Lock()
	delete(c.slots, slot)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Slots(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.slots))
	for k := range c.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
