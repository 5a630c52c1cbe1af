package clock

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Loop runs posted work and timer callbacks one at a time on the goroutine
// that calls Run. It plays the role of the host's main update loop.
type Loop struct {
	work    chan func()
	started time.Time
	log     *slog.Logger
	armed   atomic.Int64
}

const (
	timerArmed int32 = iota
	timerFired
	timerStopped
)

type loopTimer struct {
	state atomic.Int32
	timer *time.Timer
	loop  *Loop
}

// NewLoop creates a loop with room for backlog queued callbacks before
// Post blocks. A nil log falls back to slog.Default.
func NewLoop(backlog int, log *slog.Logger) *Loop {
	if backlog <= 0 {
		backlog = 64
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{work: make(chan func(), backlog), started: time.Now(), log: log}
}

// Now returns the wall time elapsed since the loop was created.
func (l *Loop) Now() time.Duration { return time.Since(l.started) }

// Pending reports timers that are armed and have neither run nor been
// stopped.
func (l *Loop) Pending() int { return int(l.armed.Load()) }

// Post queues fn to run on the loop goroutine. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.work <- fn
}

// AfterFunc arms fn to run on the loop after d. The real timer only hands
// the callback to the loop; a Stop issued before the loop picks it up still
// suppresses it.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{loop: l}
	l.armed.Add(1)
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if !t.state.CompareAndSwap(timerArmed, timerFired) {
				return
			}
			l.armed.Add(-1)
			fn()
		})
	})
	return t
}

// Run processes work until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Debug("loop started")
	defer func() { l.log.Debug("loop stopped", "uptime", l.Now(), "pending", l.Pending()) }()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.work:
			fn()
		}
	}
}

func (t *loopTimer) Stop() bool {
	if !t.state.CompareAndSwap(timerArmed, timerStopped) {
		return false
	}
	t.timer.Stop()
	t.loop.armed.Add(-1)
	return true
}
