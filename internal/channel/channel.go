// Package channel is the push-event channel between the device and the
// display, carried over MQTT, with an abstraction for testing.
package channel

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/notify"
)

// DefaultPrefix is the topic prefix the device publishes under.
const DefaultPrefix = "mama"

// ServerDisconnect is the reason sent when the device drops the client on
// purpose. The client must reconnect by itself in that case.
const ServerDisconnect = "io server disconnect"

// UserDisconnected is the payload of the legacy client disconnect ack.
const UserDisconnected = "User Disconnected"

// Topics holds the concrete topic names for one prefix.
type Topics struct {
	NewValues        string
	Error            string
	Info             string
	Disconnect       string
	Connected        string
	ClientDisconnect string
	Display          string
	Blink            string
}

// NewTopics derives all topic names from prefix.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimSuffix(prefix, "/")
	return Topics{
		NewValues:        prefix + "/newValues",
		Error:            prefix + "/error",
		Info:             prefix + "/info",
		Disconnect:       prefix + "/disconnect",
		Connected:        prefix + "/connected",
		ClientDisconnect: prefix + "/client/disconnect",
		Display:          prefix + "/display",
		Blink:            prefix + "/display/blink",
	}
}

// Inbound returns the topics the display subscribes to.
func (t Topics) Inbound() []string {
	return []string{t.NewValues, t.Error, t.Info, t.Disconnect}
}

// EventType identifies an inbound event.
type EventType string

const (
	EventConnect      EventType = "connect"
	EventConnectError EventType = "connect_error"
	EventDisconnect   EventType = "disconnect"
	EventNewValues    EventType = "newValues"
	EventError        EventType = "error"
	EventInfo         EventType = "info"
)

// Event is one inbound event. Only the field matching Type is set.
type Event struct {
	Type   EventType
	Time   time.Time
	Values display.Snapshot
	Error  notify.ServerError
	Info   string
	Reason string
	Err    error
}

// Channel is the push-event channel.
type Channel interface {
	// Events delivers inbound and lifecycle events.
	Events() <-chan Event

	// Acknowledge announces the client to the device with the given time.
	Acknowledge(at time.Time) error

	// PublishFrame hands a rendered frame to remote displays.
	PublishFrame(frame display.Frame, at time.Time) error

	// PublishVisibility hands a blink visibility change to remote displays.
	PublishVisibility(ch display.ChannelID, visible bool) error

	// Reconnect re-establishes a connection the device closed on purpose.
	Reconnect() error

	// Close sends the disconnect ack and disconnects.
	Close() error
}

// ConnectionStatus reports whether the channel is connected.
type ConnectionStatus interface {
	IsConnected() bool
}

// ValuesPayload is the newValues payload. The misspelt lambda keys are
// what the device sends.
type ValuesPayload struct {
	Lamda1 *float64 `json:"lamda1"`
	Lamda2 *float64 `json:"lamda2"`
	AFR1   *float64 `json:"afr1"`
	AFR2   *float64 `json:"afr2"`
	Temp1  *float64 `json:"temp1,omitempty"`
	Temp2  *float64 `json:"temp2,omitempty"`
	Volt1  *float64 `json:"volt1,omitempty"`
	Volt2  *float64 `json:"volt2,omitempty"`
}

// ErrorPayload is the error payload.
type ErrorPayload struct {
	Type      string `json:"type"`
	Exc       string `json:"exc"`
	Traceback string `json:"traceback"`
}

// InfoPayload is the info payload.
type InfoPayload struct {
	Msg string `json:"msg"`
}

// DisconnectPayload is the server-initiated disconnect payload.
type DisconnectPayload struct {
	Reason string `json:"reason"`
}

// AckPayload is used for the connected and client disconnect acks.
type AckPayload struct {
	Data string `json:"data"`
}

// FramePayload is the JSON form of a rendered frame.
type FramePayload struct {
	Timestamp string           `json:"timestamp"`
	Channels  []ChannelPayload `json:"channels"`
	Blink     []string         `json:"blink"`
}

// ChannelPayload is one channel within a FramePayload.
type ChannelPayload struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Tier  string `json:"tier"`
}

// BlinkPayload is a visibility change.
type BlinkPayload struct {
	Channel string `json:"channel"`
	Visible bool   `json:"visible"`
}

// Decode turns a message on topic into an Event.
func Decode(topics Topics, topic string, payload []byte, now time.Time) (Event, error) {
	switch topic {
	case topics.NewValues:
		var p ValuesPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Event{}, fmt.Errorf("decode newValues: %w", err)
		}
		if p.Lamda1 == nil || p.Lamda2 == nil || p.AFR1 == nil || p.AFR2 == nil {
			return Event{}, fmt.Errorf("decode newValues: missing lamda/afr field")
		}
		return Event{
			Type: EventNewValues,
			Time: now,
			Values: display.Snapshot{
				Lambda1: *p.Lamda1,
				Lambda2: *p.Lamda2,
				AFR1:    *p.AFR1,
				AFR2:    *p.AFR2,
				Temp1:   p.Temp1,
				Temp2:   p.Temp2,
				Volt1:   p.Volt1,
				Volt2:   p.Volt2,
			},
		}, nil

	case topics.Error:
		var p ErrorPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Event{}, fmt.Errorf("decode error: %w", err)
		}
		return Event{
			Type:  EventError,
			Time:  now,
			Error: notify.ServerError{Type: p.Type, Exc: p.Exc, Traceback: p.Traceback},
		}, nil

	case topics.Info:
		var p InfoPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Event{}, fmt.Errorf("decode info: %w", err)
		}
		return Event{Type: EventInfo, Time: now, Info: p.Msg}, nil

	case topics.Disconnect:
		var p DisconnectPayload
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &p); err != nil {
				return Event{}, fmt.Errorf("decode disconnect: %w", err)
			}
		}
		return Event{Type: EventDisconnect, Time: now, Reason: p.Reason}, nil
	}
	return Event{}, fmt.Errorf("unexpected topic %q", topic)
}

// FormatAck creates the payload of the connected ack.
func FormatAck(at time.Time) ([]byte, error) {
	return json.Marshal(AckPayload{Data: at.UTC().Format(time.RFC3339Nano)})
}

// FormatClientDisconnect creates the payload of the legacy disconnect ack.
func FormatClientDisconnect() []byte {
	data, _ := json.Marshal(AckPayload{Data: UserDisconnected})
	return data
}

// FormatFrame creates the JSON payload for a frame. Channels follow
// display.ChannelOrder; absent channels are skipped.
func FormatFrame(frame display.Frame, at time.Time) ([]byte, error) {
	p := FramePayload{
		Timestamp: at.UTC().Format(time.RFC3339),
		Channels:  make([]ChannelPayload, 0, len(frame.Channels)),
		Blink:     make([]string, 0, len(frame.Blink)),
	}
	for _, id := range display.ChannelOrder {
		r, ok := frame.Channels[id]
		if !ok {
			continue
		}
		p.Channels = append(p.Channels, ChannelPayload{
			ID:    string(id),
			Text:  r.Text,
			Color: string(r.Color),
			Tier:  r.Tier.String(),
		})
	}
	for _, id := range frame.Blink {
		p.Blink = append(p.Blink, string(id))
	}
	return json.Marshal(p)
}

// FormatVisibility creates the JSON payload for a blink visibility change.
func FormatVisibility(ch display.ChannelID, visible bool) ([]byte, error) {
	return json.Marshal(BlinkPayload{Channel: string(ch), Visible: visible})
}
