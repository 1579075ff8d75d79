package scheduler_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domharness/domharness/internal/scheduler"
)

func TestMicrotasksDrainBeforeTasksOrTimers(t *testing.T) {
	s := scheduler.New()
	var order []string
	s.SetTimeout(func() { order = append(order, "timer") }, 0)
	s.QueueMicrotask(func() { order = append(order, "micro1") })
	s.QueueMicrotask(func() { order = append(order, "micro2") })
	s.DrainMicrotasks()
	assert.Equal(t, []string{"micro1", "micro2"}, order)

	s.RunDueTimers()
	assert.Equal(t, []string{"micro1", "micro2", "timer"}, order)
}

func TestMicrotaskQueuedDuringDrainAlsoRuns(t *testing.T) {
	s := scheduler.New()
	var order []string
	s.QueueMicrotask(func() {
		order = append(order, "first")
		s.QueueMicrotask(func() { order = append(order, "nested") })
	})
	s.DrainMicrotasks()
	assert.Equal(t, []string{"first", "nested"}, order)
}

func TestTimersFireInDueTimeThenInsertionOrder(t *testing.T) {
	s := scheduler.New()
	var order []string
	s.SetTimeout(func() { order = append(order, "b-at-10") }, 10)
	s.SetTimeout(func() { order = append(order, "a-at-5") }, 5)
	s.SetTimeout(func() { order = append(order, "c-at-10-later") }, 10)

	s.AdvanceTime(10)
	fired := s.RunDueTimers()
	require.Equal(t, 3, fired)
	assert.Equal(t, []string{"a-at-5", "b-at-10", "c-at-10-later"}, order)
}

func TestAdvanceTimeNeverRunsCallbacks(t *testing.T) {
	s := scheduler.New()
	ran := false
	s.SetTimeout(func() { ran = true }, 5)
	s.AdvanceTime(100)
	assert.False(t, ran)
	assert.Len(t, s.PendingTimers(), 1)
}

func TestIntervalFiresAtMostOncePerRunDueTimersCall(t *testing.T) {
	s := scheduler.New()
	count := 0
	s.SetInterval(func() { count++ }, 10)

	s.AdvanceTime(35) // three periods elapsed, but only one firing per call
	fired := s.RunDueTimers()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, count)

	pending := s.PendingTimers()
	require.Len(t, pending, 1)
	assert.Equal(t, int64(45), pending[0].DueAt)
}

func TestClearTimeoutPreventsFiring(t *testing.T) {
	s := scheduler.New()
	ran := false
	id := s.SetTimeout(func() { ran = true }, 0)
	s.ClearTimeout(id)
	s.RunDueTimers()
	assert.False(t, ran)
	assert.Empty(t, s.PendingTimers())
}

func TestClearIntervalStopsFutureFirings(t *testing.T) {
	s := scheduler.New()
	count := 0
	id := s.SetInterval(func() { count++ }, 10)
	s.AdvanceTime(10)
	s.RunDueTimers()
	assert.Equal(t, 1, count)

	s.ClearInterval(id)
	s.AdvanceTime(10)
	s.RunDueTimers()
	assert.Equal(t, 1, count, "interval must not re-enqueue after being cleared")
}

func TestRequestAnimationFrameFiresOnNextDrainAtCurrentTime(t *testing.T) {
	s := scheduler.New()
	ran := false
	s.RequestAnimationFrame(func() { ran = true })
	fired := s.RunDueTimers()
	assert.Equal(t, 1, fired)
	assert.True(t, ran)
}

func TestIntervalAtSaturatedClockFiresOnceInsteadOfHanging(t *testing.T) {
	s := scheduler.New()
	s.AdvanceTime(math.MaxInt64)

	count := 0
	s.SetInterval(func() { count++ }, 1)
	s.SetTimeout(func() {}, 1)

	require.Len(t, s.PendingTimers(), 2)

	fired := s.RunDueTimers()
	assert.Equal(t, 2, fired, "both the interval and the timeout fire exactly once, even though the interval's re-enqueued due_at collapses back onto the saturated clock")
	assert.Equal(t, 1, count)

	// The interval is still pending for a future call; it was held back,
	// not dropped.
	pending := s.PendingTimers()
	require.Len(t, pending, 1)
	assert.Equal(t, int64(math.MaxInt64), pending[0].DueAt)
	assert.Equal(t, scheduler.KindInterval, pending[0].Kind)

	fired = s.RunDueTimers()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 2, count)
}

func TestSchedulingTimersAtMaxNowDoesNotOverflow(t *testing.T) {
	s := scheduler.New()
	s.AdvanceTime(1<<62 - 1)
	s.AdvanceTime(1<<62 - 1)
	s.AdvanceTime(1 << 62) // pushes well past any int64 bound via repeated saturating adds

	ran := false
	s.SetTimeout(func() { ran = true }, 1000)
	fired := s.RunDueTimers()
	assert.Equal(t, 0, fired, "timer due in the future must not fire yet")
	assert.False(t, ran)

	pending := s.PendingTimers()
	require.Len(t, pending, 1)
	assert.GreaterOrEqual(t, pending[0].DueAt, s.NowMs())
}

func TestPendingTimersSnapshotDoesNotMutateQueue(t *testing.T) {
	s := scheduler.New()
	s.SetTimeout(func() {}, 5)
	s.SetTimeout(func() {}, 1)
	first := s.PendingTimers()
	second := s.PendingTimers()
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), first[0].DueAt)
}
