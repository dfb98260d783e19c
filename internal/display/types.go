// Package display turns sensor snapshots into renderable channel states.
// This package has NO external dependencies (no MQTT, GPIO, HTTP or OS).
// Deferred actions go through the injectable clock used by the blink Scheduler.
package display

// Tier is the severity classification of a single channel value.
type Tier int

const (
	TierNormal Tier = iota
	TierWarning
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierWarning:
		return "WARNING"
	case TierCritical:
		return "CRITICAL"
	default:
		return "NORMAL"
	}
}

// Kind selects the clamping band of a channel.
type Kind int

const (
	KindLambda Kind = iota
	KindAFR
)

// Fault is the heater-voltage condition of a bank.
type Fault int

const (
	FaultNone Fault = iota
	FaultWarmUp
	FaultError
)

// Color is a CSS color value.
type Color string

const (
	ColorBlack  Color = "rgb(0, 0, 0)"
	ColorOrange Color = "rgb(227, 111, 39)"
	ColorRed    Color = "rgb(179, 0, 0)"
)

// ChannelID names an on-screen element.
type ChannelID string

const (
	Lambda1 ChannelID = "lamda1"
	Lambda2 ChannelID = "lamda2"
	AFR1    ChannelID = "afr1"
	AFR2    ChannelID = "afr2"
	Temp1   ChannelID = "temp1"
	Temp2   ChannelID = "temp2"
	Bank1   ChannelID = "bank1"
	Bank2   ChannelID = "bank2"
)

// ChannelOrder is the fixed render order of all channels.
var ChannelOrder = []ChannelID{Bank1, Lambda1, AFR1, Temp1, Bank2, Lambda2, AFR2, Temp2}

// Snapshot is one update cycle's readings. Optional channels are nil
// when the device does not report them.
type Snapshot struct {
	Lambda1 float64
	Lambda2 float64
	AFR1    float64
	AFR2    float64
	Temp1   *float64
	Temp2   *float64
	Volt1   *float64
	Volt2   *float64
}

// Preferences holds the user-controlled display settings.
type Preferences struct {
	DecimalPlaces   int
	BlinkingEnabled bool
}

// Normalized returns p with DecimalPlaces forced into [0, 3].
func (p Preferences) Normalized() Preferences {
	if p.DecimalPlaces < 0 {
		p.DecimalPlaces = 0
	}
	if p.DecimalPlaces > MaxDecimalPlaces {
		p.DecimalPlaces = MaxDecimalPlaces
	}
	return p
}

// MaxDecimalPlaces is the largest supported lambda precision.
const MaxDecimalPlaces = 3

// DefaultPreferences matches the device's factory settings.
var DefaultPreferences = Preferences{DecimalPlaces: 2, BlinkingEnabled: true}

// Render is the display state of one channel.
type Render struct {
	Text  string
	Color Color
	Tier  Tier
}

// Frame is the output of one update cycle.
type Frame struct {
	Channels map[ChannelID]Render
	// Blink lists channels that should start a blink this cycle.
	Blink []ChannelID
}

// Sink receives rendered frames and blink visibility changes.
type Sink interface {
	Apply(frame Frame)
	SetVisible(ch ChannelID, visible bool)
}

// MultiSink fans out to several sinks in order.
type MultiSink []Sink

// Apply forwards the frame to every sink.
func (m MultiSink) Apply(frame Frame) {
	for _, s := range m {
		s.Apply(frame)
	}
}

// SetVisible forwards the visibility change to every sink.
func (m MultiSink) SetVisible(ch ChannelID, visible bool) {
	for _, s := range m {
		s.SetVisible(ch, visible)
	}
}
