// Package autosave coalesces bursts of show edits into one deferred save.
//
// The coordinator is a two-state machine. NotifyChanged arms (or re-arms)
// a deadline one interval from now; the host calls Tick periodically and the
// save happens on the first Tick at or after the deadline. Flush saves at
// once. Save failures are logged and never returned, so background
// persistence cannot interrupt an interactive caller.
//
//	co := autosave.New(repo, autosave.WithInterval(2*time.Second), autosave.WithLogger(logger))
//	co.NotifyChanged(show)  // after each edit
//	co.Tick(ctx)            // from the host's event loop
//	co.Flush(ctx)           // before quitting
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/rehearsal-markers/internal/model"
)

// DefaultInterval is the debounce interval used when none is configured.
const DefaultInterval = 2 * time.Second

// Saver persists a show.
type Saver interface {
	Save(ctx context.Context, show *model.Show) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is the coordinator state.
type State int

const (
	// Idle means no edits are waiting to be saved.
	Idle State = iota
	// Pending means a save is scheduled for the current deadline.
	Pending
)

// String returns the state name.
func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Commit describes one save attempt.
type Commit struct {
	Show  string
	Err   error
	Flush bool
}

// Coordinator debounces saves of a single show at a time.
type Coordinator struct {
	saver    Saver
	clock    Clock
	interval time.Duration
	logger   *zap.Logger
	onCommit func(Commit)

	mu       sync.Mutex
	state    State
	show     *model.Show
	deadline time.Time

	// commitMu keeps saves strictly sequential.
	commitMu sync.Mutex
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithInterval sets the debounce interval.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger that receives save failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnCommit registers a callback invoked after every save attempt.
func WithOnCommit(fn func(Commit)) Option {
	return func(c *Coordinator) {
		c.onCommit = fn
	}
}

// New creates an idle Coordinator.
func New(saver Saver, opts ...Option) *Coordinator {
	c := &Coordinator{
		saver:    saver,
		clock:    systemClock{},
		interval: DefaultInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interval returns the debounce interval.
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// NotifyChanged records that show was edited. The deadline restarts from
// now on every call and the latest show replaces any earlier one.
func (c *Coordinator) NotifyChanged(show *model.Show) {
	if show == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Pending
	c.show = show
	c.deadline = c.clock.Now().Add(c.interval)
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Deadline returns the pending deadline, or false when idle.
func (c *Coordinator) Deadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline, c.state == Pending
}

// Tick saves the pending show if its deadline has passed. It reports
// whether a save was attempted.
func (c *Coordinator) Tick(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != Pending || c.clock.Now().Before(c.deadline) {
		c.mu.Unlock()
		return false
	}
	show := c.take()
	c.mu.Unlock()

	c.commit(ctx, show, false)
	return true
}

// Flush saves the pending show immediately and returns to Idle. It reports
// whether a save was attempted.
func (c *Coordinator) Flush(ctx context.Context) bool {
	c.mu.Lock()
	if c.state != Pending {
		c.mu.Unlock()
		return false
	}
	show := c.take()
	c.mu.Unlock()

	c.commit(ctx, show, true)
	return true
}

// Run calls Tick every period until ctx is done, then flushes with a fresh
// context so the last edits are not lost.
func (c *Coordinator) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = c.interval / 4
		if every <= 0 {
			every = time.Second
		}
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Flush(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			c.Tick(ctx)
		}
	}
}

// take clears the pending state. c.mu must be held.
func (c *Coordinator) take() *model.Show {
	show := c.show
	c.state = Idle
	c.show = nil
	c.deadline = time.Time{}
	return show
}

func (c *Coordinator) commit(ctx context.Context, show *model.Show, flush bool) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	err := c.saver.Save(ctx, show)
	if err != nil {
		c.logger.Error("autosave failed", zap.String("show", show.Name()), zap.Bool("flush", flush), zap.Error(err))
	} else {
		c.logger.Debug("autosaved", zap.String("show", show.Name()), zap.Bool("flush", flush))
	}

	if c.onCommit != nil {
		c.onCommit(Commit{Show: show.Name(), Err: err, Flush: flush})
	}
}
