// Package clock provides deferred actions with explicit cancel handles.
package clock

import "time"

// Timer is a cancel handle for a pending deferred action.
type Timer interface {
	// Stop cancels the action. It returns false if the action already ran
	// or was already stopped.
	Stop() bool
}

// Clock schedules deferred actions.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Loop is a Clock whose actions are delivered on C instead of being run
// directly, so the event loop that drains C runs them on its own goroutine.
type Loop struct {
	C    chan func()
	done chan struct{}
}

// NewLoop creates a Loop with the given channel buffer.
func NewLoop(buffer int) *Loop {
	return &Loop{
		C:    make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

// AfterFunc queues f on C after d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() {
		select {
		case l.C <- f:
		case <-l.done:
		}
	})
}

// Close drops actions that expire after the loop has stopped.
func (l *Loop) Close() {
	close(l.done)
}
