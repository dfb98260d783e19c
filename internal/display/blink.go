package display

import (
	"time"

	"github.com/sweeney/lambda-display/internal/clock"
)

// Visibility is the blink state of a channel.
type Visibility string

const (
	Visible Visibility = "VISIBLE"
	Hidden  Visibility = "HIDDEN"
)

type blinkState struct {
	hidden bool
	timer  clock.Timer
	// gen invalidates expiry callbacks that were already queued when the
	// timer was stopped.
	gen uint64
}

// Scheduler runs the one-shot Visible→Hidden→Visible blink per channel.
// It is not a persistent oscillator: each Schedule call triggers at most
// one Hidden period. Not safe for concurrent use.
type Scheduler struct {
	clock    clock.Clock
	sink     Sink
	channels map[ChannelID]*blinkState
}

// NewScheduler creates a Scheduler reporting visibility changes to sink.
func NewScheduler(c clock.Clock, sink Sink) *Scheduler {
	return &Scheduler{
		clock:    c,
		sink:     sink,
		channels: make(map[ChannelID]*blinkState),
	}
}

// Schedule evaluates one update cycle for ch. Any stale pending transition is
// cancelled first. The channel goes Hidden only when critical and enabled are
// both true, and returns to Visible exactly interval/2 later without
// re-checking severity. It reports whether a blink was started.
func (s *Scheduler) Schedule(ch ChannelID, critical, enabled bool, interval time.Duration) bool {
	s.Cancel(ch)
	if !critical || !enabled || interval <= 0 {
		return false
	}

	st := s.state(ch)
	st.hidden = true
	gen := st.gen
	s.sink.SetVisible(ch, false)
	st.timer = s.clock.AfterFunc(interval/2, func() { s.expire(ch, gen) })
	return true
}

// ScheduleFrame schedules the lambda channels of a frame that was already
// applied to the sink. It returns the channels that started blinking.
func (s *Scheduler) ScheduleFrame(frame Frame, enabled bool, interval time.Duration) []ChannelID {
	var started []ChannelID
	for _, ch := range []ChannelID{Lambda1, Lambda2} {
		if s.Schedule(ch, containsChannel(frame.Blink, ch), enabled, interval) {
			started = append(started, ch)
		}
	}
	return started
}

// Cancel stops a pending transition for ch and restores Visible.
func (s *Scheduler) Cancel(ch ChannelID) {
	st, ok := s.channels[ch]
	if !ok {
		return
	}
	st.gen++
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	if st.hidden {
		st.hidden = false
		s.sink.SetVisible(ch, true)
	}
}

// Stop cancels every pending transition.
func (s *Scheduler) Stop() {
	for ch := range s.channels {
		s.Cancel(ch)
	}
}

// State returns the current visibility of ch.
func (s *Scheduler) State(ch ChannelID) Visibility {
	if st, ok := s.channels[ch]; ok && st.hidden {
		return Hidden
	}
	return Visible
}

// Pending reports whether ch has a Hidden→Visible transition scheduled.
func (s *Scheduler) Pending(ch ChannelID) bool {
	st, ok := s.channels[ch]
	return ok && st.timer != nil
}

func (s *Scheduler) expire(ch ChannelID, gen uint64) {
	st := s.channels[ch]
	if st == nil || st.gen != gen {
		return
	}
	st.timer = nil
	st.hidden = false
	s.sink.SetVisible(ch, true)
}

func (s *Scheduler) state(ch ChannelID) *blinkState {
	st, ok := s.channels[ch]
	if !ok {
		st = &blinkState{}
		s.channels[ch] = st
	}
	return st
}

func containsChannel(list []ChannelID, ch ChannelID) bool {
	for _, c := range list {
		if c == ch {
			return true
		}
	}
	return false
}
