package sim

import (
	"container/heap"
	"sync"
	"time"
)

// An AdvanceStrategy decides how much real time passes when the simulated
// clock moves forward. The fast strategy advances purely logically, the
// real-time strategy advances in lockstep with the wall clock.
type AdvanceStrategy interface {
	// Wait blocks until the simulated time may move from `from` to `to`.
	// It returns false if the wait was cut short by the interrupt channel,
	// in which case the clock must not advance.
	Wait(from, to VTimeInSec, interrupt <-chan struct{}) bool
}

// FastAdvance advances the clock logically, without any real-time sleep.
type FastAdvance struct{}

// Wait returns immediately.
func (FastAdvance) Wait(_, _ VTimeInSec, _ <-chan struct{}) bool {
	return true
}

// RealTimeAdvance advances the clock in lockstep with the wall clock, which
// is useful for human-paced observation through the monitor. It anchors the
// simulated origin to the wall clock on first use, so that interrupted
// waits resume from the wall time already elapsed instead of restarting the
// full interval.
type RealTimeAdvance struct {
	mu    sync.Mutex
	epoch time.Time
}

// NewRealTimeAdvance creates a wall-clock advance strategy.
func NewRealTimeAdvance() *RealTimeAdvance {
	return &RealTimeAdvance{}
}

// Wait sleeps until the wall-clock deadline of the target simulated time.
func (a *RealTimeAdvance) Wait(
	from, to VTimeInSec,
	interrupt <-chan struct{},
) bool {
	a.mu.Lock()
	if a.epoch.IsZero() {
		a.epoch = time.Now().
			Add(-time.Duration(float64(from) * float64(time.Second)))
	}
	deadline := a.epoch.
		Add(time.Duration(float64(to) * float64(time.Second)))
	a.mu.Unlock()

	d := time.Until(deadline)
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-interrupt:
		return false
	}
}

// A Clock owns the current simulated time of a run. It advances
// monotonically and is only moved by the scheduler. Apps never consult the
// wall clock for causal decisions.
type Clock struct {
	mu       sync.RWMutex
	now      VTimeInSec
	wakeups  timeHeap
	strategy AdvanceStrategy
}

// NewClock creates a clock that advances logically between ticks.
func NewClock() *Clock {
	return NewClockWithStrategy(FastAdvance{})
}

// NewClockWithStrategy creates a clock with an explicit advance strategy.
func NewClockWithStrategy(strategy AdvanceStrategy) *Clock {
	c := &Clock{strategy: strategy}
	heap.Init(&c.wakeups)
	return c
}

// Now returns the current simulated time.
func (c *Clock) Now() VTimeInSec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// AdvanceTo moves the simulated time forward to t. Moving backward is an
// invariant violation and returns a ClockRegressionError.
func (c *Clock) AdvanceTo(t VTimeInSec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t < c.now {
		return &ClockRegressionError{Now: c.now, Target: t}
	}

	c.now = t
	for c.wakeups.Len() > 0 && c.wakeups[0] <= t {
		heap.Pop(&c.wakeups)
	}

	return nil
}

// ScheduleWakeup registers t as a future tick boundary. The scheduler uses
// wakeups to find the next interesting time without busy-polling. Wakeups
// in the past are ignored.
func (c *Clock) ScheduleWakeup(t VTimeInSec) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t < c.now {
		return
	}
	heap.Push(&c.wakeups, t)
}

// NextWakeup returns the earliest scheduled wakeup that is still in the
// future, if any.
func (c *Clock) NextWakeup() (VTimeInSec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.wakeups.Len() == 0 {
		return 0, false
	}
	return c.wakeups[0], true
}

// Strategy returns the advance strategy of the clock.
func (c *Clock) Strategy() AdvanceStrategy {
	return c.strategy
}

type timeHeap []VTimeInSec

func (h timeHeap) Len() int {
	return len(h)
}

func (h timeHeap) Less(i, j int) bool {
	return h[i] < h[j]
}

func (h timeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *timeHeap) Push(x interface{}) {
	*h = append(*h, x.(VTimeInSec))
}

func (h *timeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[0 : n-1]
	return t
}
