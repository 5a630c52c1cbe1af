// Package clock provides cancellable delayed callbacks that run on a single
// logical thread, either in virtual time (Manual) or in real time (Loop).
package clock

import "time"

// Timer is a pending delayed callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler arms delayed callbacks. Callbacks never run concurrently with
// each other or with work posted to the same scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Stop cancels t when it is non-nil.
func Stop(t Timer) {
	if t != nil {
		t.Stop()
	}
}
