package clock

import (
	"sort"
	"time"
)

// Manual is a virtual-time scheduler. Time only moves when Advance is
// called, and due callbacks run on the caller's goroutine.
type Manual struct {
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	m    *Manual
	due  time.Duration
	seq  uint64
	fn   func()
	done bool
}

func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration { return m.now }

// Pending returns the number of armed callbacks.
func (m *Manual) Pending() int { return len(m.pending) }

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{m: m, due: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves time forward by d, firing every callback that falls due in
// order of due time, then arming order. Callbacks armed while advancing fire
// in the same call if they fall due before the target time.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.popDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		next.done = true
		next.fn()
	}
	m.now = target
}

func (m *Manual) popDue(target time.Duration) *manualTimer {
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due != m.pending[j].due {
			return m.pending[i].due < m.pending[j].due
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	head := m.pending[0]
	if head.due > target {
		return nil
	}
	m.pending = m.pending[1:]
	return head
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			break
		}
	}
	return true
}
