package repositories

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memoryCacheRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCacheRepository returns an in-process CacheRepository used when
// Redis is not configured and in tests.
func NewMemoryCacheRepository() CacheRepository {
	return &memoryCacheRepository{entries: make(map[string]memoryEntry)}
}

func (m *memoryCacheRepository) Get(ctx context.Context, key string, out interface{}) error {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, out)
}

func (m *memoryCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *memoryCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
