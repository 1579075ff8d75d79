// Package scheduler implements the single-threaded cooperative event loop:
// a microtask FIFO, a task FIFO, and a timer queue ordered by (due_at,
// insertion order), all driven by a deterministic virtual clock. Nothing
// here touches an OS thread or goroutine — every method runs to completion
// on the caller's goroutine, which is what lets the harness reproduce the
// same ordering on every run.
package scheduler

import "container/heap"

// Callback is any zero-argument unit of scheduled work: a microtask, a
// queued task, or a timer/interval body.
type Callback func()

// TimerKind distinguishes the three things that land in the timer queue,
// for reporting via PendingTimers.
type TimerKind int

const (
	KindTimeout TimerKind = iota
	KindInterval
	KindAnimationFrame
)

func (k TimerKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindInterval:
		return "interval"
	case KindAnimationFrame:
		return "animation-frame"
	default:
		return "unknown"
	}
}

// TimerHandle is the read-only snapshot shape exposed by PendingTimers.
type TimerHandle struct {
	ID    int64
	DueAt int64
	Kind  TimerKind
}

type timer struct {
	id        int64
	dueAt     int64
	kind      TimerKind
	period    int64 // >0 for intervals
	cb        Callback
	cancelled bool
	seq       int64 // insertion order, tie-breaks equal dueAt
	epoch     int64 // set to the RunDueTimers call that re-enqueued this timer when saturation kept due_at from advancing
}

// Scheduler owns the virtual clock and the three queues. The zero value is
// not usable; construct with New.
type Scheduler struct {
	nowMs      int64
	microtasks []Callback
	tasks      []Callback
	timers     timerHeap
	nextID     int64
	nextSeq    int64
	runEpoch   int64
	byID       map[int64]*timer
}

// New returns a scheduler with the virtual clock at 0.
func New() *Scheduler {
	return &Scheduler{byID: make(map[int64]*timer)}
}

// NowMs returns the current virtual clock reading.
func (s *Scheduler) NowMs() int64 { return s.nowMs }

// QueueMicrotask appends cb to the microtask queue.
func (s *Scheduler) QueueMicrotask(cb Callback) {
	s.microtasks = append(s.microtasks, cb)
}

// QueueTask appends cb to the task queue (used for queueMicrotask-adjacent
// macrotasks such as promise-bridging hooks, not for timers).
func (s *Scheduler) QueueTask(cb Callback) {
	s.tasks = append(s.tasks, cb)
}

const maxDueAt = int64(1)<<63 - 1 // i64::MAX equivalent

func saturatingAdd(a, b int64) int64 {
	if b <= 0 {
		return a
	}
	if maxDueAt-a < b {
		return maxDueAt
	}
	return a + b
}

// SetTimeout schedules cb to fire once at now + max(ms, 0), saturating at
// the maximum representable due time rather than overflowing. Returns the
// id usable with ClearTimeout.
func (s *Scheduler) SetTimeout(cb Callback, ms int64) int64 {
	if ms < 0 {
		ms = 0
	}
	return s.addTimer(cb, saturatingAdd(s.nowMs, ms), KindTimeout, 0)
}

// SetInterval schedules cb to fire repeatedly every max(ms, 1) virtual
// milliseconds, starting at the first due time. Returns the id usable with
// ClearInterval.
func (s *Scheduler) SetInterval(cb Callback, ms int64) int64 {
	if ms < 1 {
		ms = 1
	}
	return s.addTimer(cb, saturatingAdd(s.nowMs, ms), KindInterval, ms)
}

// RequestAnimationFrame schedules cb to fire on the next drain, behaving
// like a zero-delay timeout.
func (s *Scheduler) RequestAnimationFrame(cb Callback) int64 {
	return s.addTimer(cb, s.nowMs, KindAnimationFrame, 0)
}

func (s *Scheduler) addTimer(cb Callback, dueAt int64, kind TimerKind, period int64) int64 {
	s.nextID++
	id := s.nextID
	s.nextSeq++
	t := &timer{id: id, dueAt: dueAt, kind: kind, period: period, cb: cb, seq: s.nextSeq}
	s.byID[id] = t
	heap.Push(&s.timers, t)
	return id
}

// ClearTimeout cancels a pending timeout. Best-effort: a no-op if the
// timer already fired, was already cleared, or is mid-callback.
func (s *Scheduler) ClearTimeout(id int64) { s.cancel(id) }

// ClearInterval cancels a pending interval. Same best-effort semantics as
// ClearTimeout.
func (s *Scheduler) ClearInterval(id int64) { s.cancel(id) }

func (s *Scheduler) cancel(id int64) {
	if t, ok := s.byID[id]; ok {
		t.cancelled = true
		delete(s.byID, id)
	}
}

// DrainMicrotasks runs every microtask in FIFO order, including ones
// queued by earlier microtasks in the same drain, until the queue is
// empty. This is the "after every synchronous host-driven step" contract:
// callers invoke it once at the end of click, script evaluation, and each
// timer callback.
func (s *Scheduler) DrainMicrotasks() {
	for len(s.microtasks) > 0 {
		cb := s.microtasks[0]
		s.microtasks = s.microtasks[1:]
		cb()
	}
}

// AdvanceTime moves the virtual clock forward by ms (saturating). It never
// runs callbacks.
func (s *Scheduler) AdvanceTime(ms int64) {
	if ms < 0 {
		ms = 0
	}
	s.nowMs = saturatingAdd(s.nowMs, ms)
}

// RunDueTimers fires every timer whose due_at <= now_ms, in (due_at,
// insertion order), draining microtasks after each callback. An interval
// fires at most once per call: it is re-enqueued at now_ms + period, which
// is normally strictly in the future. Near the saturation ceiling,
// saturatingAdd(now_ms, period) can collapse back onto now_ms itself —
// without a guard the re-enqueued interval would be immediately due again
// and fire forever inside this single call. deadline pins the due_at
// ceiling to the clock reading at entry, and any timer re-enqueued this
// call whose new due_at didn't advance past deadline is held back for the
// next call instead of being fired again now. Returns the number of
// timers fired.
func (s *Scheduler) RunDueTimers() int {
	deadline := s.nowMs
	s.runEpoch++
	epoch := s.runEpoch
	fired := 0
	var heldBack []*timer
	for s.timers.Len() > 0 {
		next := s.timers[0]
		if next.dueAt > deadline {
			break
		}
		if next.epoch == epoch {
			// Re-enqueued earlier in this same call; its saturated due_at
			// didn't advance past deadline. Hold it out of this round.
			heldBack = append(heldBack, heap.Pop(&s.timers).(*timer))
			continue
		}
		t := heap.Pop(&s.timers).(*timer)
		if t.cancelled {
			continue
		}
		delete(s.byID, t.id)
		if t.kind == KindInterval {
			// Re-enqueue the same timer under its original id, so
			// ClearInterval(id) keeps working after the first firing.
			t.dueAt = saturatingAdd(deadline, t.period)
			s.nextSeq++
			t.seq = s.nextSeq
			if t.dueAt <= deadline {
				t.epoch = epoch
			}
			s.byID[t.id] = t
			heap.Push(&s.timers, t)
		}
		t.cb()
		fired++
		s.DrainMicrotasks()
	}
	for _, t := range heldBack {
		heap.Push(&s.timers, t)
	}
	return fired
}

// PendingTimers returns a snapshot of every not-yet-fired, not-cancelled
// timer, ordered the same way the timer heap would pop them. Cheap and
// non-mutating.
func (s *Scheduler) PendingTimers() []TimerHandle {
	out := make([]TimerHandle, 0, len(s.timers))
	snapshot := append(timerHeap(nil), s.timers...)
	for snapshot.Len() > 0 {
		t := heap.Pop(&snapshot).(*timer)
		out = append(out, TimerHandle{ID: t.id, DueAt: t.dueAt, Kind: t.kind})
	}
	return out
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].dueAt != h[j].dueAt {
		return h[i].dueAt < h[j].dueAt
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
