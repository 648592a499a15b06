// Package timegate guards named recurring tasks so each runs at most once
// per local calendar day.
//
// The default backing store lives in memory, so a process restart clears
// every guard. A Redis-backed store can be plugged in when several
// processes must share the same guards.
package timegate

import (
	"context"
	"time"

	"github.com/wonny/analyst/internal/calendar"
	"github.com/wonny/analyst/pkg/logger"
)

// Clock returns the current instant
type Clock func() time.Time

// Store persists which tasks ran on which day
type Store interface {
	HasRun(ctx context.Context, day, task string) (bool, error)
	MarkRun(ctx context.Context, day, task string) error
	// TryMark atomically marks task for day. It reports true only for the
	// caller that created the mark.
	TryMark(ctx context.Context, day, task string) (bool, error)
}

// Gate is a calendar-day-scoped, named once-only execution guard
type Gate struct {
	loc      *time.Location
	now      Clock
	store    Store
	fallback *MemoryStore
	logger   *logger.Logger
}

// Option configures a Gate
type Option func(*Gate)

// WithClock injects the clock (tests simulate day rollover with it)
func WithClock(c Clock) Option {
	return func(g *Gate) { g.now = c }
}

// WithStore replaces the in-memory backing store
func WithStore(s Store) Option {
	return func(g *Gate) { g.store = s }
}

// WithLogger sets the logger used for store failures
func WithLogger(l *logger.Logger) Option {
	return func(g *Gate) { g.logger = l.Component("timegate") }
}

// New creates a gate for the given timezone
func New(loc *time.Location, opts ...Option) *Gate {
	if loc == nil {
		loc = time.UTC
	}
	fallback := NewMemoryStore()
	g := &Gate{
		loc:      loc,
		now:      time.Now,
		store:    fallback,
		fallback: fallback,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Today returns the current local calendar date
func (g *Gate) Today() string {
	return calendar.Today(g.now(), g.loc)
}

// Now returns the current instant in the gate's timezone
func (g *Gate) Now() time.Time {
	return g.now().In(g.loc)
}

// Location returns the gate's timezone
func (g *Gate) Location() *time.Location {
	return g.loc
}

// HasRun reports whether task was marked during the current local day.
// When the backing store fails, the in-memory fallback answers instead.
func (g *Gate) HasRun(task string) bool {
	day := g.Today()
	ctx := context.Background()

	ran, err := g.store.HasRun(ctx, day, task)
	if err != nil {
		g.logger.WithError(err).WithField("task", task).Warn("Guard store read failed, using local guard")
		ran, _ = g.fallback.HasRun(ctx, day, task)
		return ran
	}
	if ran {
		return true
	}
	if g.store != Store(g.fallback) {
		// A write that failed earlier today only landed in the fallback.
		ran, _ = g.fallback.HasRun(ctx, day, task)
	}
	return ran
}

// MarkRun records task as run for the current local day
func (g *Gate) MarkRun(task string) {
	day := g.Today()
	ctx := context.Background()

	if err := g.store.MarkRun(ctx, day, task); err != nil {
		g.logger.WithError(err).WithField("task", task).Warn("Guard store write failed, using local guard")
		_ = g.fallback.MarkRun(ctx, day, task)
	}
}

// TryMark checks and marks in one atomic step against the backing store.
// It returns true when the caller should run the task. Gates in different
// processes sharing one store never both get true for the same day.
func (g *Gate) TryMark(task string) bool {
	day := g.Today()
	ctx := context.Background()

	if g.store == Store(g.fallback) {
		ok, _ := g.fallback.TryMark(ctx, day, task)
		return ok
	}

	// A write that failed earlier today only landed in the fallback.
	if ran, _ := g.fallback.HasRun(ctx, day, task); ran {
		return false
	}

	ok, err := g.store.TryMark(ctx, day, task)
	if err != nil {
		g.logger.WithError(err).WithField("task", task).Warn("Guard store claim failed, using local guard")
		ok, _ = g.fallback.TryMark(ctx, day, task)
	}
	return ok
}
