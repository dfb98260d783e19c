package channel

import (
	"time"

	"github.com/sweeney/lambda-display/internal/display"
)

// FakeChannel records outbound traffic and lets tests inject events.
type FakeChannel struct {
	events chan Event

	// Acks contains the times passed to Acknowledge.
	Acks []time.Time

	// Frames contains all published frames.
	Frames []display.Frame

	// FramePayloads contains the JSON payloads of published frames.
	FramePayloads [][]byte

	// Visibility contains all published blink visibility changes.
	Visibility []BlinkPayload

	// Reconnects counts Reconnect calls.
	Reconnects int

	// PublishError, if set, will be returned by PublishFrame and PublishVisibility.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeChannel creates a FakeChannel with room for buffer queued events.
func NewFakeChannel(buffer int) *FakeChannel {
	return &FakeChannel{events: make(chan Event, buffer)}
}

// Send injects an inbound event. It blocks when the buffer is full.
func (f *FakeChannel) Send(e Event) {
	f.events <- e
}

// Events delivers injected events.
func (f *FakeChannel) Events() <-chan Event {
	return f.events
}

// IsConnected reports whether the fake channel is "connected".
func (f *FakeChannel) IsConnected() bool {
	return f.Connected
}

// Acknowledge records the ack time.
func (f *FakeChannel) Acknowledge(at time.Time) error {
	f.Acks = append(f.Acks, at)
	return nil
}

// PublishFrame records the frame.
func (f *FakeChannel) PublishFrame(frame display.Frame, at time.Time) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatFrame(frame, at)
	if err != nil {
		return err
	}
	f.Frames = append(f.Frames, frame)
	f.FramePayloads = append(f.FramePayloads, payload)
	return nil
}

// PublishVisibility records the visibility change.
func (f *FakeChannel) PublishVisibility(ch display.ChannelID, visible bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Visibility = append(f.Visibility, BlinkPayload{Channel: string(ch), Visible: visible})
	return nil
}

// Reconnect counts the call and marks the channel connected.
func (f *FakeChannel) Reconnect() error {
	f.Reconnects++
	f.Connected = true
	return nil
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.Closed = true
	f.Connected = false
	return nil
}

// Reset clears recorded traffic.
func (f *FakeChannel) Reset() {
	f.Acks = nil
	f.Frames = nil
	f.FramePayloads = nil
	f.Visibility = nil
	f.Reconnects = 0
	f.PublishError = nil
	f.Closed = false
	f.Connected = false
}
