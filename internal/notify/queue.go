// Package notify buffers server info messages and holds the current
// server error for display.
package notify

import (
	"time"

	"github.com/sweeney/lambda-display/internal/clock"
)

// IdleFlush is how long queued info messages stay on screen.
const IdleFlush = 5 * time.Second

// InfoDisplay renders the joined info queue. An empty slice hides it.
type InfoDisplay interface {
	ShowInfos(lines []string)
}

// InfoQueue is an append-only list of messages that is cleared
// unconditionally IdleFlush after the first unflushed message arrived.
// Later messages join the pending batch without re-arming the timer.
// Not safe for concurrent use.
type InfoQueue struct {
	clock   clock.Clock
	display InfoDisplay
	idle    time.Duration
	msgs    []string
	timer   clock.Timer
	gen     uint64
}

// NewInfoQueue creates a queue flushed after IdleFlush.
func NewInfoQueue(c clock.Clock, display InfoDisplay) *InfoQueue {
	return &InfoQueue{clock: c, display: display, idle: IdleFlush}
}

// Enqueue appends msg and shows the whole queue.
func (q *InfoQueue) Enqueue(msg string) {
	q.msgs = append(q.msgs, msg)
	q.display.ShowInfos(q.Messages())

	if q.timer == nil {
		gen := q.gen
		q.timer = q.clock.AfterFunc(q.idle, func() { q.expire(gen) })
	}
}

// Messages returns a copy of the queued messages.
func (q *InfoQueue) Messages() []string {
	out := make([]string, len(q.msgs))
	copy(out, q.msgs)
	return out
}

// Len returns the number of queued messages.
func (q *InfoQueue) Len() int {
	return len(q.msgs)
}

// Flush clears the queue now and cancels the pending idle timer.
func (q *InfoQueue) Flush() {
	q.gen++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.msgs = nil
	q.display.ShowInfos(nil)
}

func (q *InfoQueue) expire(gen uint64) {
	if gen != q.gen {
		return
	}
	q.timer = nil
	q.gen++
	q.msgs = nil
	q.display.ShowInfos(nil)
}

// MultiInfoDisplay fans out to several displays in order.
type MultiInfoDisplay []InfoDisplay

// ShowInfos forwards lines to every display.
func (m MultiInfoDisplay) ShowInfos(lines []string) {
	for _, d := range m {
		d.ShowInfos(lines)
	}
}
