package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/lambda-display/internal/display"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Channels      []ChannelJSON   `json:"channels"`
	Blinking      []string        `json:"blinking"`
	LastUpdate    string          `json:"last_update,omitempty"`
	Preferences   PreferencesJSON `json:"preferences"`
	Recording     bool            `json:"recording"`
	Infos         []string        `json:"infos"`
	Error         *ErrorJSON      `json:"error,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	StartTime     string          `json:"start_time"`
	Timestamp     string          `json:"timestamp"`
	MQTT          MQTTStatus      `json:"mqtt"`
	Counts        CountsJSON      `json:"counts"`
	Config        ConfigJSON      `json:"config"`
}

// ChannelJSON is one rendered channel.
type ChannelJSON struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Color   string `json:"color"`
	Tier    string `json:"tier"`
	Visible bool   `json:"visible"`
}

// PreferencesJSON is the JSON representation of display preferences.
type PreferencesJSON struct {
	DecimalPlaces int  `json:"decimal_places"`
	Blinking      bool `json:"blinking"`
}

// ErrorJSON is the server error currently shown.
type ErrorJSON struct {
	Type      string `json:"type"`
	Exc       string `json:"exc"`
	Traceback string `json:"traceback"`
	Hint      string `json:"hint,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of processing counts.
type CountsJSON struct {
	Frames     int `json:"frames"`
	Blinks     int `json:"blinks"`
	Infos      int `json:"infos"`
	Errors     int `json:"errors"`
	Reconnects int `json:"reconnects"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker           string `json:"broker"`
	TopicPrefix      string `json:"topic_prefix"`
	HTTPAddr         string `json:"http_addr"`
	UpdateIntervalMs int64  `json:"update_interval_ms"`
	LEDPin           int    `json:"led_pin,omitempty"`
}

// Channels returns the rendered channels in display order with their
// current visibility.
func (s Snapshot) Channels() []ChannelJSON {
	out := make([]ChannelJSON, 0, len(s.Frame.Channels))
	for _, id := range display.ChannelOrder {
		r, ok := s.Frame.Channels[id]
		if !ok {
			continue
		}
		out = append(out, ChannelJSON{
			ID:      string(id),
			Text:    r.Text,
			Color:   string(r.Color),
			Tier:    r.Tier.String(),
			Visible: !s.Hidden[id],
		})
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Channels: snap.Channels(),
		Blinking: make([]string, 0, len(snap.Hidden)),
		Preferences: PreferencesJSON{
			DecimalPlaces: snap.Preferences.DecimalPlaces,
			Blinking:      snap.Preferences.BlinkingEnabled,
		},
		Recording:     snap.Recording,
		Infos:         append([]string{}, snap.Infos...),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Frames:     snap.Counts.Frames,
			Blinks:     snap.Counts.Blinks,
			Infos:      snap.Counts.Infos,
			Errors:     snap.Counts.Errors,
			Reconnects: snap.Counts.Reconnects,
		},
		Config: ConfigJSON{
			Broker:           snap.Config.Broker,
			TopicPrefix:      snap.Config.TopicPrefix,
			HTTPAddr:         snap.Config.HTTPAddr,
			UpdateIntervalMs: snap.Config.UpdateIntervalMs,
			LEDPin:           snap.Config.LEDPin,
		},
	}
	for _, id := range display.ChannelOrder {
		if snap.Hidden[id] {
			inner.Blinking = append(inner.Blinking, string(id))
		}
	}
	if !snap.LastUpdate.IsZero() {
		inner.LastUpdate = snap.LastUpdate.UTC().Format(time.RFC3339)
	}
	if snap.Error != nil {
		inner.Error = &ErrorJSON{
			Type:      snap.Error.Type,
			Exc:       snap.Error.Exc,
			Traceback: snap.Error.Traceback,
			Hint:      snap.Error.Hint,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
