package page

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo caches successful computations for the lifetime of one request.
// Concurrent fragments sharing a dependency collapse onto a single
// execution; failures are not remembered, so a retry within the same
// request runs again.
type Memo struct {
	group  singleflight.Group
	mu     sync.Mutex
	values map[string]any
}

func NewMemo() *Memo {
	return &Memo{values: map[string]any{}}
}

// Do returns the memoized value for key, computing it at most once across
// concurrent callers.
func (m *Memo) Do(key string, compute func() (any, error)) (any, error) {
	m.mu.Lock()
	if value, ok := m.values[key]; ok {
		m.mu.Unlock()
		return value, nil
	}
	m.mu.Unlock()

	value, err, _ := m.group.Do(key, func() (any, error) {
		m.mu.Lock()
		if cached, ok := m.values[key]; ok {
			m.mu.Unlock()
			return cached, nil
		}
		m.mu.Unlock()

		value, err := compute()
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.values[key] = value
		m.mu.Unlock()
		return value, nil
	})
	return value, err
}
