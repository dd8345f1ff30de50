package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/handiism/rehearsal-markers/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 19, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSaver struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (s *recordingSaver) Save(_ context.Context, show *model.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, show.Name())
	return s.err
}

func (s *recordingSaver) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func newShow(t *testing.T, name string) *model.Show {
	t.Helper()
	show, err := model.NewShow(name)
	require.NoError(t, err)
	return show
}

func TestDebounceCoalescing(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	saver := &recordingSaver{}
	co := New(saver, WithInterval(time.Second), WithClock(clock))
	show := newShow(t, "Revue")

	for i := 0; i < 10; i++ {
		co.NotifyChanged(show)
		clock.Advance(900 * time.Millisecond)
		assert.False(t, co.Tick(ctx), "tick %d fired before the interval elapsed", i)
	}
	assert.Zero(t, saver.count())
	assert.Equal(t, Pending, co.State())

	clock.Advance(100 * time.Millisecond)
	assert.True(t, co.Tick(ctx))
	assert.Equal(t, 1, saver.count())
	assert.Equal(t, Idle, co.State())

	clock.Advance(10 * time.Second)
	assert.False(t, co.Tick(ctx))
	assert.Equal(t, 1, saver.count())
}

func TestNotifyChanged_RestartsDeadline(t *testing.T) {
	clock := newFakeClock()
	co := New(&recordingSaver{}, WithInterval(2*time.Second), WithClock(clock))

	_, ok := co.Deadline()
	assert.False(t, ok)

	co.NotifyChanged(newShow(t, "A"))
	first, ok := co.Deadline()
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(2*time.Second), first)

	clock.Advance(1500 * time.Millisecond)
	co.NotifyChanged(newShow(t, "A"))
	second, _ := co.Deadline()
	assert.Equal(t, first.Add(1500*time.Millisecond), second)
}

func TestNotifyChanged_LatestSnapshotWins(t *testing.T) {
	clock := newFakeClock()
	saver := &recordingSaver{}
	co := New(saver, WithInterval(time.Second), WithClock(clock))

	co.NotifyChanged(newShow(t, "Old"))
	co.NotifyChanged(newShow(t, "New"))
	clock.Advance(time.Second)
	co.Tick(context.Background())

	assert.Equal(t, []string{"New"}, saver.saved)
}

func TestFlush(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	saver := &recordingSaver{}
	co := New(saver, WithInterval(time.Minute), WithClock(clock))

	assert.False(t, co.Flush(ctx))

	co.NotifyChanged(newShow(t, "Revue"))
	assert.True(t, co.Flush(ctx))
	assert.Equal(t, 1, saver.count())
	assert.Equal(t, Idle, co.State())

	// The flushed edit is not saved a second time when the old deadline passes.
	clock.Advance(time.Hour)
	assert.False(t, co.Tick(ctx))
	assert.Equal(t, 1, saver.count())
}

func TestFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	clock := newFakeClock()
	saver := &recordingSaver{err: errors.New("disk full")}

	var commits []Commit
	co := New(saver,
		WithInterval(time.Second),
		WithClock(clock),
		WithLogger(zap.New(core)),
		WithOnCommit(func(c Commit) { commits = append(commits, c) }))

	co.NotifyChanged(newShow(t, "Revue"))
	clock.Advance(time.Second)
	assert.True(t, co.Tick(context.Background()))

	assert.Equal(t, Idle, co.State())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "autosave failed", logs.All()[0].Message)
	require.Len(t, commits, 1)
	assert.Equal(t, "Revue", commits[0].Show)
	assert.EqualError(t, commits[0].Err, "disk full")
	assert.False(t, commits[0].Flush)

	// The next edit retries.
	saver.err = nil
	co.NotifyChanged(newShow(t, "Revue"))
	co.Flush(context.Background())
	require.Len(t, commits, 2)
	assert.NoError(t, commits[1].Err)
	assert.True(t, commits[1].Flush)
}

func TestRun_FlushesOnCancel(t *testing.T) {
	saver := &recordingSaver{}
	co := New(saver, WithInterval(time.Hour))
	co.NotifyChanged(newShow(t, "Revue"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		co.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, saver.count())
}

func TestRun_TicksWithWallClock(t *testing.T) {
	saver := &recordingSaver{}
	co := New(saver, WithInterval(20*time.Millisecond))
	co.NotifyChanged(newShow(t, "Revue"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go co.Run(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return saver.count() == 1 }, 5*time.Second, 5*time.Millisecond)
}
