package services

import "sync"

// memo caches view results for the lifetime of one set of artifacts.
// Failed computations are never stored.
type memo struct {
	mu      sync.Mutex
	enabled bool
	scope   string
	entries map[string]any
}

func newMemo(enabled bool, scope string) *memo {
	return &memo{enabled: enabled, scope: scope, entries: make(map[string]any)}
}

func (m *memo) get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[m.scope+"/"+key]
	return v, ok
}

func (m *memo) put(key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.scope+"/"+key] = v
}

func (m *memo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// memoized runs compute outside the lock, so two concurrent misses may both
// compute. Results are pure functions of the artifacts, so either copy is fine.
func memoized[T any](m *memo, key string, compute func() (T, error)) (T, error) {
	if m == nil || !m.enabled {
		return compute()
	}
	if v, ok := m.get(key); ok {
		return v.(T), nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	m.put(key, v)
	return v, nil
}
