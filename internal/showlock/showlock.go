// Package showlock serializes writers of the same show across goroutines
// and processes with an advisory file lock.
//
// The CLI and the terminal editor may run side by side; both take the lock
// before saving a document or resolving an asset name collision.
package showlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// RetryDelay is how often a busy lock is polled.
const RetryDelay = 25 * time.Millisecond

// ErrTimeout is returned when the lock stays busy for the whole timeout.
var ErrTimeout = errors.New("show is locked by another writer")

// Release unlocks a lock obtained from Acquire.
type Release func() error

// Acquire takes the lock file at path, creating its directory if needed.
//
// A zero timeout waits until ctx is done.
func Acquire(ctx context.Context, path string, timeout time.Duration) (Release, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, RetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire %s: %w", path, ErrTimeout)
		}
		return nil, fmt.Errorf("acquire %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire %s: %w", path, ErrTimeout)
	}

	return func() error {
		if err := lock.Unlock(); err != nil {
			return fmt.Errorf("release %s: %w", path, err)
		}
		return nil
	}, nil
}
