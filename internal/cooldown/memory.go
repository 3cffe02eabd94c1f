package cooldown

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu      sync.RWMutex
	expires map[string]int64
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		expires: make(map[string]int64),
		now:     time.Now,
	}
}

func (m *Memory) Remaining(ctx context.Context, key string) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expiry, exists := m.expires[key]
	if !exists {
		return 0, nil
	}

	remaining := expiry - m.now().UnixNano()
	if remaining < 0 {
		return 0, nil
	}
	return time.Duration(remaining), nil
}

func (m *Memory) Mark(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expires[key] = m.now().Add(ttl).UnixNano()
	return nil
}

func (m *Memory) Clear(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.expires, key)
	return nil
}
