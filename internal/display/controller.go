package display

import (
	"time"

	"github.com/sweeney/lambda-display/internal/clock"
)

// Controller renders each update cycle to a sink and then schedules the
// blinks derived from it, so colors are settled before blinking starts.
type Controller struct {
	sink      Sink
	scheduler *Scheduler
	interval  time.Duration
}

// NewController creates a Controller. interval is the device update
// interval; a blink stays hidden for half of it.
func NewController(sink Sink, c clock.Clock, interval time.Duration) *Controller {
	return &Controller{
		sink:      sink,
		scheduler: NewScheduler(c, sink),
		interval:  interval,
	}
}

// Update processes one snapshot and returns the applied frame.
func (c *Controller) Update(s Snapshot, prefs Preferences) Frame {
	frame := FormatDisplay(s, prefs)
	c.sink.Apply(frame)
	c.scheduler.ScheduleFrame(frame, prefs.BlinkingEnabled, c.interval)
	return frame
}

// Scheduler exposes the blink scheduler for state queries.
func (c *Controller) Scheduler() *Scheduler {
	return c.scheduler
}

// Stop cancels all pending blink transitions.
func (c *Controller) Stop() {
	c.scheduler.Stop()
}
