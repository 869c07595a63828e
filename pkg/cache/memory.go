package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	appErrors "github.com/smartconstruct/course-admin-api/pkg/errors"
)

type memoryEntry struct {
	payload    []byte
	insertedAt time.Time
	ttl        time.Duration
}

// Memory is an in-process tag cache: each key maps to a JSON payload and
// its insertion time. Entries expire after their TTL (or the cache-wide
// maxAge when no TTL is given) and are dropped lazily on read. It is safe
// for concurrent use and satisfies the same contract as the Redis-backed
// cache repository, so deployments without Redis still get the bounded
// staleness window for listing reads.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	maxAge  time.Duration
	now     func() time.Time
}

// NewMemory builds an in-process cache with the given maxAge policy.
func NewMemory(maxAge time.Duration) *Memory {
	if maxAge <= 0 {
		maxAge = time.Second
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Get retrieves and unmarshals the cached value into dest. Expired or
// missing entries return ErrCacheMiss.
func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && m.expired(entry) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals the value and stores it with the given TTL.
func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{payload: payload, insertedAt: m.now(), ttl: ttl}
	m.mu.Unlock()
	return nil
}

// DeleteByPattern removes entries matching the pattern. A trailing '*'
// matches by prefix; anything else is an exact key.
func (m *Memory) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		for key := range m.entries {
			if strings.HasPrefix(key, prefix) {
				delete(m.entries, key)
			}
		}
		return nil
	}

	delete(m.entries, pattern)
	return nil
}

func (m *Memory) expired(entry memoryEntry) bool {
	ttl := entry.ttl
	if ttl <= 0 || ttl > m.maxAge {
		ttl = m.maxAge
	}
	return m.now().Sub(entry.insertedAt) >= ttl
}
