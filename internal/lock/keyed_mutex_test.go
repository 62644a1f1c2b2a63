package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	m := NewKeyedMutex(2 * time.Second)

	const workers = 50
	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(context.Background(), "ticket:1:2:3:lead")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "critical section must be exclusive per key")
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := NewKeyedMutex(time.Second)

	releaseA, err := m.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	// A held lock on one key must not block another key.
	releaseB, err := m.Acquire(context.Background(), "b")
	require.NoError(t, err)
	releaseB()
}

func TestKeyedMutexTimeout(t *testing.T) {
	m := NewKeyedMutex(50 * time.Millisecond)

	release, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	_, err = m.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestKeyedMutexContextCancel(t *testing.T) {
	m := NewKeyedMutex(5 * time.Second)

	release, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err = m.Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyedMutexReleaseIdempotent(t *testing.T) {
	m := NewKeyedMutex(time.Second)

	release, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()
	release() // must not double-free

	release2, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release2()
}

func TestKeyedMutexEntriesAreReclaimed(t *testing.T) {
	m := NewKeyedMutex(time.Second)

	release, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.entries)
}

func TestTicketKey(t *testing.T) {
	assert.Equal(t, "ticket:1:2:3:lead", TicketKey(1, 2, 3, "lead"))
}
