package showlock

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "Revue.lock")

	release, err := Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.NoError(t, release())

	release, err = Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Revue.lock")

	release, err := Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = Acquire(context.Background(), path, 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAcquire_Serializes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Revue.lock")

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := Acquire(context.Background(), path, 5*time.Second)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			assert.NoError(t, release())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
