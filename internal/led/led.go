// Package led drives a single alert LED from display frames.
// The real implementation uses a Linux GPIO character device output line.
// The fake implementation allows testing without hardware.
package led

import (
	"log"

	"github.com/sweeney/lambda-display/internal/display"
)

// Writer sets the state of one output line.
type Writer interface {
	// Set drives the LED on or off.
	Set(on bool) error

	// Close turns the LED off and releases resources.
	Close() error
}

// DefaultPin is the alert LED line (BCM numbering).
const DefaultPin = 21

// Binding is a display.Sink that lights the LED while any critical tier
// is displayed or any channel is hidden mid-blink. Not safe for
// concurrent use; it lives on the event loop.
type Binding struct {
	w        Writer
	critical bool
	hidden   map[display.ChannelID]bool
	on       bool
	started  bool
}

// NewBinding wraps w.
func NewBinding(w Writer) *Binding {
	return &Binding{w: w, hidden: make(map[display.ChannelID]bool)}
}

// Apply records whether the frame shows a critical tier.
func (b *Binding) Apply(frame display.Frame) {
	b.critical = false
	for _, r := range frame.Channels {
		if r.Tier == display.TierCritical {
			b.critical = true
			break
		}
	}
	b.update()
}

// SetVisible tracks blink visibility.
func (b *Binding) SetVisible(ch display.ChannelID, visible bool) {
	if visible {
		delete(b.hidden, ch)
	} else {
		b.hidden[ch] = true
	}
	b.update()
}

// On reports the last state written.
func (b *Binding) On() bool {
	return b.on
}

func (b *Binding) update() {
	want := b.critical || len(b.hidden) > 0
	if b.started && want == b.on {
		return
	}
	if err := b.w.Set(want); err != nil {
		log.Printf("led: set %v: %v", want, err)
		return
	}
	b.on = want
	b.started = true
}

// Nop is a Writer that does nothing. It stands in when no LED is wired.
type Nop struct{}

// Set does nothing.
func (Nop) Set(bool) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
