package timegate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/analyst/pkg/config"
	"github.com/wonny/analyst/pkg/redis"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestGate_Today(t *testing.T) {
	loc := newYork(t)

	// 03:30 UTC on Jan 3 is still Jan 2 in New York
	instant := time.Date(2024, 1, 3, 3, 30, 0, 0, time.UTC)
	gate := New(loc, WithClock(func() time.Time { return instant }))

	assert.Equal(t, "2024-01-02", gate.Today())
	assert.Equal(t, 22, gate.Now().Hour())
}

func TestGate_HasRunLifecycle(t *testing.T) {
	loc := newYork(t)
	clock := &fakeClock{t: time.Date(2024, 1, 2, 20, 1, 0, 0, loc)}
	gate := New(loc, WithClock(clock.Now))

	assert.False(t, gate.HasRun("x"), "not run before MarkRun")

	gate.MarkRun("x")
	assert.True(t, gate.HasRun("x"), "run immediately after MarkRun")
	assert.False(t, gate.HasRun("y"), "other tasks unaffected")

	clock.t = clock.t.Add(3 * time.Hour) // 23:01 same day
	assert.True(t, gate.HasRun("x"))

	clock.t = time.Date(2024, 1, 3, 0, 0, 1, 0, loc)
	assert.False(t, gate.HasRun("x"), "guard clears once the local date advances")
}

func TestGate_DayBoundaryFollowsTimezone(t *testing.T) {
	loc := newYork(t)
	clock := &fakeClock{t: time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)} // 18:00 NY
	gate := New(loc, WithClock(clock.Now))

	gate.MarkRun("eod_scan")

	// 01:00 UTC next day is 20:00 NY, still the same local day
	clock.t = time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC)
	assert.True(t, gate.HasRun("eod_scan"))
	assert.Equal(t, "2024-01-02", gate.Today())
}

func TestGate_TryMark(t *testing.T) {
	gate := New(time.UTC, WithClock(func() time.Time {
		return time.Date(2024, 1, 5, 20, 30, 0, 0, time.UTC)
	}))

	assert.True(t, gate.TryMark("weekly_review"))
	assert.False(t, gate.TryMark("weekly_review"))
}

type failingStore struct{}

func (failingStore) HasRun(context.Context, string, string) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) MarkRun(context.Context, string, string) error {
	return errors.New("store down")
}

func (failingStore) TryMark(context.Context, string, string) (bool, error) {
	return false, errors.New("store down")
}

func TestGate_FallsBackWhenStoreFails(t *testing.T) {
	gate := New(time.UTC, WithStore(failingStore{}))

	assert.False(t, gate.HasRun("nightly_review"))
	gate.MarkRun("nightly_review")
	assert.True(t, gate.HasRun("nightly_review"), "local guard still prevents a second dispatch")
}

func TestGate_TryMarkFallsBackWhenStoreFails(t *testing.T) {
	gate := New(time.UTC, WithStore(failingStore{}))

	assert.True(t, gate.TryMark("nightly_review"))
	assert.False(t, gate.TryMark("nightly_review"), "local guard still prevents a second dispatch")
}

func TestGate_SharedStoreDispatchesOnce(t *testing.T) {
	shared := NewMemoryStore()
	clock := func() time.Time { return time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC) }

	gateA := New(time.UTC, WithClock(clock), WithStore(shared))
	gateB := New(time.UTC, WithClock(clock), WithStore(shared))

	// both processes poll in the same tick and see nothing yet
	require.False(t, gateA.HasRun("nightly_review"))
	require.False(t, gateB.HasRun("nightly_review"))

	dispatchedA := gateA.TryMark("nightly_review")
	dispatchedB := gateB.TryMark("nightly_review")
	assert.True(t, dispatchedA != dispatchedB, "exactly one process dispatches")
	assert.True(t, gateB.HasRun("nightly_review"))
}

func TestGate_SharedStoreConcurrentClaims(t *testing.T) {
	shared := NewMemoryStore()
	clock := func() time.Time { return time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC) }

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		gate := New(time.UTC, WithClock(clock), WithStore(shared))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if gate.TryMark("weekly_review") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMemoryStore_TryMark(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ok, err := store.TryMark(ctx, "2024-01-02", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.TryMark(ctx, "2024-01-02", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.TryMark(ctx, "2024-01-03", "a")
	require.NoError(t, err)
	assert.True(t, ok, "a new day clears the guard")
}

func TestRedisStore_DisabledClaimFallsBack(t *testing.T) {
	client, err := redis.New(context.Background(), &config.Config{})
	require.NoError(t, err)

	store := NewRedisStore(client)
	_, err = store.TryMark(context.Background(), "2024-01-02", "a")
	assert.ErrorIs(t, err, ErrStoreDisabled)

	gate := New(time.UTC, WithStore(store))
	assert.True(t, gate.TryMark("a"))
	assert.False(t, gate.TryMark("a"))
}

func TestMemoryStore_DropsPreviousDays(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.MarkRun(ctx, "2024-01-02", "a"))
	require.NoError(t, store.MarkRun(ctx, "2024-01-03", "b"))

	ran, err := store.HasRun(ctx, "2024-01-02", "a")
	require.NoError(t, err)
	assert.False(t, ran)

	ran, err = store.HasRun(ctx, "2024-01-03", "b")
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestGuardKey(t *testing.T) {
	assert.Equal(t, "analyst:timegate:2024-01-02:morning_scan", guardKey("2024-01-02", "morning_scan"))
}
