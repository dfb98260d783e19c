// Package status provides a thread-safe view of the display state for
// the HTTP page and other readers outside the event loop.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/notify"
)

// Config contains daemon configuration for display.
type Config struct {
	Broker           string
	TopicPrefix      string
	HTTPAddr         string
	UpdateIntervalMs int64
	LEDPin           int // 0 = no LED
}

// Counts tracks what the daemon has processed since startup.
type Counts struct {
	Frames     int
	Blinks     int
	Infos      int
	Errors     int
	Reconnects int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Frame         display.Frame
	LastUpdate    time.Time
	Hidden        map[display.ChannelID]bool
	Preferences   display.Preferences
	Infos         []string
	Error         *notify.ErrorNotice
	MQTTConnected bool
	Recording     bool
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. It is a
// display.Sink and the notify displays, so the event loop writes to it
// like to any other screen.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time, config and
// initial preferences.
func NewTracker(startTime time.Time, cfg Config, prefs display.Preferences) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:   startTime,
			Config:      cfg,
			Preferences: prefs.Normalized(),
			Hidden:      make(map[display.ChannelID]bool),
		},
		now: time.Now,
	}
}

// Apply stores the latest frame.
func (t *Tracker) Apply(frame display.Frame) {
	t.mu.Lock()
	t.snap.Frame = frame
	t.snap.LastUpdate = t.now()
	t.snap.Counts.Frames++
	t.mu.Unlock()
}

// SetVisible records a blink visibility change.
func (t *Tracker) SetVisible(ch display.ChannelID, visible bool) {
	t.mu.Lock()
	if visible {
		delete(t.snap.Hidden, ch)
	} else {
		t.snap.Hidden[ch] = true
		t.snap.Counts.Blinks++
	}
	t.mu.Unlock()
}

// ShowInfos stores the current info queue.
func (t *Tracker) ShowInfos(lines []string) {
	t.mu.Lock()
	if len(lines) > len(t.snap.Infos) {
		t.snap.Counts.Infos += len(lines) - len(t.snap.Infos)
	}
	t.snap.Infos = lines
	t.mu.Unlock()
}

// ShowError stores the current server error. nil clears it.
func (t *Tracker) ShowError(n *notify.ErrorNotice) {
	t.mu.Lock()
	if n != nil {
		c := *n
		t.snap.Error = &c
		t.snap.Counts.Errors++
	} else {
		t.snap.Error = nil
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// CountReconnect records a server-requested reconnect.
func (t *Tracker) CountReconnect() {
	t.mu.Lock()
	t.snap.Counts.Reconnects++
	t.mu.Unlock()
}

// Preferences returns the current display preferences.
func (t *Tracker) Preferences() display.Preferences {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Preferences
}

// SetPreferences replaces the display preferences. Decimal places are
// forced into the supported range.
func (t *Tracker) SetPreferences(p display.Preferences) display.Preferences {
	p = p.Normalized()
	t.mu.Lock()
	t.snap.Preferences = p
	t.mu.Unlock()
	return p
}

// Recording reports whether lambda values are being stored.
func (t *Tracker) Recording() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Recording
}

// SetRecording turns lambda recording on or off.
func (t *Tracker) SetRecording(on bool) {
	t.mu.Lock()
	t.snap.Recording = on
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Hidden = make(map[display.ChannelID]bool, len(t.snap.Hidden))
	for k, v := range t.snap.Hidden {
		s.Hidden[k] = v
	}
	s.Frame.Channels = make(map[display.ChannelID]display.Render, len(t.snap.Frame.Channels))
	for k, v := range t.snap.Frame.Channels {
		s.Frame.Channels[k] = v
	}
	s.Frame.Blink = append([]display.ChannelID(nil), t.snap.Frame.Blink...)
	s.Infos = append([]string(nil), t.snap.Infos...)
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
