package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Manual is a virtual clock. Time only moves through Advance and
// RunUntilIdle; due callbacks run on the caller's goroutine in deadline
// order, ties in scheduling order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers timerHeap
}

// NewManual returns a clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{clock: m, at: m.now.Add(d), seq: m.seq, fn: f}
	heap.Push(&m.timers, t)
	return t
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Next returns the deadline of the earliest scheduled callback.
func (m *Manual) Next() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) == 0 {
		return time.Time{}, false
	}
	return m.timers[0].at, true
}

// Advance moves the clock forward by d, running every callback due on the
// way, including callbacks scheduled by those callbacks. It returns the
// number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	fired := 0
	for {
		m.mu.Lock()
		if len(m.timers) == 0 || m.timers[0].at.After(target) {
			m.now = target
			m.mu.Unlock()
			return fired
		}
		t := heap.Pop(&m.timers).(*manualTimer)
		m.now = t.at
		m.mu.Unlock()
		t.fn()
		fired++
	}
}

// RunUntilIdle runs callbacks in order, jumping the clock to each deadline,
// until nothing is scheduled or limit callbacks have run. A limit <= 0 means
// no limit.
func (m *Manual) RunUntilIdle(limit int) int {
	fired := 0
	for limit <= 0 || fired < limit {
		m.mu.Lock()
		if len(m.timers) == 0 {
			m.mu.Unlock()
			break
		}
		t := heap.Pop(&m.timers).(*manualTimer)
		m.now = t.at
		m.mu.Unlock()
		t.fn()
		fired++
	}
	return fired
}

type manualTimer struct {
	clock *Manual
	at    time.Time
	seq   uint64
	fn    func()
	index int
}

func (t *manualTimer) Stop() bool {
	m := t.clock
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.index < 0 || t.index >= len(m.timers) || m.timers[t.index] != t {
		return false
	}
	heap.Remove(&m.timers, t.index)
	return true
}

type timerHeap []*manualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*manualTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
