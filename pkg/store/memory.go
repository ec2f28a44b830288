package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	value    string
	expireAt time.Time // zero means no expiry
}

func (m *memoryItem) expired() bool {
	return !m.expireAt.IsZero() && time.Now().After(m.expireAt)
}

// MemoryStore implements Store with an in-process TTL map. It backs tests
// and local runs without a Redis instance; published messages are retained
// per channel so tests can assert on them.
type MemoryStore struct {
	mu        sync.RWMutex
	data      map[string]*memoryItem
	lists     map[string][]string
	published map[string][]string

	// FailGets forces every read to fail; used to exercise fail-closed paths.
	FailGets bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:      make(map[string]*memoryItem),
		lists:     make(map[string][]string),
		published: make(map[string][]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGets {
		return "", false, context.DeadlineExceeded
	}

	item, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	if item.expired() {
		delete(m.data, key)
		return "", false, nil
	}
	return item.value, true, nil
}

func (m *MemoryStore) SetWithTTL(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := &memoryItem{value: value}
	if ttl > 0 {
		item.expireAt = time.Now().Add(ttl)
	}
	m.data[key] = item
	return nil
}

func (m *MemoryStore) ListPush(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[key] = append([]string{value}, m.lists[key]...)
	return nil
}

func (m *MemoryStore) ListRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailGets {
		return nil, context.DeadlineExceeded
	}

	list := m.lists[key]
	n := int64(len(list))
	if n == 0 {
		return nil, nil
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *MemoryStore) ListTrim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.lists[key]
	n := int64(len(list))
	if n == 0 {
		return nil
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		m.lists[key] = nil
		return nil
	}
	m.lists[key] = list[start : stop+1]
	return nil
}

func (m *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, ok := m.data[key]; ok {
		item.expireAt = time.Now().Add(ttl)
	}
	return nil
}

func (m *MemoryStore) Publish(_ context.Context, channel, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.published[channel] = append(m.published[channel], message)
	return nil
}

func (m *MemoryStore) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	for key := range m.lists {
		if strings.HasPrefix(key, prefix) {
			delete(m.lists, key)
		}
	}
	return nil
}

// Published returns messages published on channel, oldest first.
func (m *MemoryStore) Published(channel string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.published[channel]))
	copy(out, m.published[channel])
	return out
}

// ListLen returns the current length of the list at key.
func (m *MemoryStore) ListLen(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lists[key])
}

func (m *MemoryStore) Close() error {
	return nil
}
