package lock

import (
	"context"
	"sync"
	"time"
)

// KeyedMutex is the in-process TicketLocker: a map of key to semaphore.
// Entries are reference counted and removed when the last waiter leaves,
// so the map does not grow with the contact population.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*mutexEntry
	timeout time.Duration
}

type mutexEntry struct {
	sem  chan struct{}
	refs int
}

// NewKeyedMutex creates a keyed mutex with the given acquisition timeout.
func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KeyedMutex{
		entries: make(map[string]*mutexEntry),
		timeout: timeout,
	}
}

// Acquire blocks until the key is free, the timeout elapses, or the context
// is cancelled.
func (m *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &mutexEntry{sem: make(chan struct{}, 1)}
		e.sem <- struct{}{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-e.sem:
		var once sync.Once
		release := func() {
			once.Do(func() {
				e.sem <- struct{}{}
				m.unref(key, e)
			})
		}
		return release, nil
	case <-timer.C:
		m.unref(key, e)
		return nil, ErrLockTimeout
	case <-ctx.Done():
		m.unref(key, e)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) unref(key string, e *mutexEntry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()
}
