package quota

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, defaultQuota int) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewEngine(store, defaultQuota), store
}

func TestEngine_FirstConsume(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	ctx := context.Background()

	d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Quota.Used)
	assert.Equal(t, 100, d.Quota.Total)
	assert.Equal(t, 99, d.Quota.Remaining)
	assert.False(t, d.Quota.ResetAt.IsZero())
}

func TestEngine_ExhaustionAtTotal(t *testing.T) {
	e, _ := newTestEngine(t, 5)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "consume %d should be allowed", i)
		assert.Equal(t, i, d.Quota.Used)
		assert.Equal(t, 5-i, d.Quota.Remaining)
	}

	// The (total+1)-th consume is denied with remaining=0.
	d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 5, d.Quota.Used)
	assert.Equal(t, 0, d.Quota.Remaining)
}

func TestEngine_DenialWritesNothing(t *testing.T) {
	e, store := newTestEngine(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := e.Consume(ctx, "caller-1", "caller1@example.com")
		require.NoError(t, err)
	}
	before, err := store.Read(ctx, "caller-1")
	require.NoError(t, err)

	d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	after, err := store.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, *before, *after, "a same-day denial must leave the record untouched")
	assert.Equal(t, before.ResetAt, d.Quota.ResetAt, "denial reports the stored resetAt")
}

func TestEngine_DayRollover(t *testing.T) {
	e, store := newTestEngine(t, 10)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)
	e.now = func() time.Time { return day1 }

	for i := 0; i < 10; i++ {
		d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// Next day: the stored usedToday is stale and counts as zero.
	day2 := day1.AddDate(0, 0, 1)
	e.now = func() time.Time { return day2 }

	v, err := e.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Used)
	assert.Equal(t, 10, v.Remaining)
	assert.Equal(t, NextReset(day2), v.ResetAt, "stale record reports a fresh reset instant")

	d, err = e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Quota.Used)
	assert.Equal(t, 9, d.Quota.Remaining)

	rec, err := store.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, DayKey(day2), rec.LastUsageDate)
	assert.Equal(t, 1, rec.UsedToday)
}

func TestEngine_StaleReadDoesNotPersistFreshReset(t *testing.T) {
	e, store := newTestEngine(t, 10)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return day1 }
	_, err := e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)

	day2 := day1.AddDate(0, 0, 3)
	e.now = func() time.Time { return day2 }
	_, err = e.Read(ctx, "caller-1")
	require.NoError(t, err)

	rec, err := store.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, NextReset(day1), rec.ResetAt, "read must not rewrite the stored resetAt")
	assert.Equal(t, DayKey(day1), rec.LastUsageDate)
}

func TestEngine_ReadIsIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, 100)
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	_, err := e.Consume(ctx, "caller-1", "caller1@example.com")
	require.NoError(t, err)

	v1, err := e.Read(ctx, "caller-1")
	require.NoError(t, err)
	v2, err := e.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestEngine_UnknownCallerDefaults(t *testing.T) {
	e, _ := newTestEngine(t, 100)

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	v, err := e.Read(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, View{Used: 0, Total: 100, Remaining: 100, ResetAt: NextReset(now)}, v)
}

func TestEngine_PerCallerOverride(t *testing.T) {
	e, store := newTestEngine(t, 100)
	ctx := context.Background()

	// A record with an explicit total overrides the configured default.
	_, err := store.Update(ctx, "vip", func(cur *Record) (*Record, Decision) {
		return &Record{CallerID: "vip", TotalQuota: 500}, Decision{}
	})
	require.NoError(t, err)

	v, err := e.Read(ctx, "vip")
	require.NoError(t, err)
	assert.Equal(t, 500, v.Total)
	assert.Equal(t, 500, v.Remaining)

	d, err := e.Consume(ctx, "vip", "vip@example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 500, d.Quota.Total)
	assert.Equal(t, 499, d.Quota.Remaining)
}

func TestEngine_ConcurrentConsumeNeverOverGrants(t *testing.T) {
	const (
		total   = 100
		callers = 150
	)
	e, store := newTestEngine(t, total)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		denied  int
		errs    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := e.Consume(ctx, "caller-1", "caller1@example.com")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if d.Allowed {
				granted++
			} else {
				denied++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, total, granted)
	assert.Equal(t, callers-total, denied)

	rec, err := store.Read(ctx, "caller-1")
	require.NoError(t, err)
	assert.Equal(t, total, rec.UsedToday)
}

func TestEngine_CallersAreIndependent(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	ctx := context.Background()

	d, err := e.Consume(ctx, "caller-1", "a@example.com")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = e.Consume(ctx, "caller-1", "a@example.com")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = e.Consume(ctx, "caller-2", "b@example.com")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "caller-2 has their own allowance")
}
