package calibration

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/databirdlab/densitycal/internal/testutil"
)

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := openTestStore(t)
	defer func() { require.NoError(t, store.Close()) }()
	load(t, store, scenario("2024-01-05"))
	engine, _ := newTestEngine(t, store)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var runs atomic.Int32
	scheduler := NewScheduler(engine, DefaultRebuildOptions(), 10*time.Millisecond, true)
	scheduler.OnRebuild = func(result *RebuildResult, err error) {
		assert.NoError(t, err)
		if result != nil {
			assert.Equal(t, 1, result.CreatedWindows)
		}
		if runs.Add(1) == 3 {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() { done <- scheduler.Run(ctx) }()

	require.NoError(t, testutil.WaitForResult(t, done, testutil.LongTestTimeout, "scheduler did not stop"))
	assert.GreaterOrEqual(t, runs.Load(), int32(3))

	count, err := store.Windows().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestScheduler_DisabledIntervalWaitsForCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := openTestStore(t)
	defer func() { require.NoError(t, store.Close()) }()
	engine, _ := newTestEngine(t, store)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	ran := make(chan struct{}, 1)
	scheduler := NewScheduler(engine, DefaultRebuildOptions(), 0, false)
	scheduler.OnRebuild = func(*RebuildResult, error) { ran <- struct{}{} }

	require.NoError(t, scheduler.Run(ctx))
	testutil.RequireNoSignal(t, ran, 10*time.Millisecond, "disabled scheduler rebuilt windows")
}

func TestScheduler_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t, newTestStore(t))

	scheduler := NewScheduler(engine, RebuildOptions{MaxDaysApart: -1}, time.Minute, true)
	require.Error(t, scheduler.Run(t.Context()))
}
