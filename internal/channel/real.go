package channel

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/lambda-display/internal/display"
)

// Options configures a RealChannel.
type Options struct {
	Broker     string
	ClientID   string
	Prefix     string
	BufferSize int
}

// RealChannel talks to an actual MQTT broker. Reconnection after transport
// loss is left entirely to the paho client.
type RealChannel struct {
	client paho.Client
	topics Topics
	events chan Event

	mu     sync.Mutex
	outbox *outbox
}

// NewRealChannel creates a channel and starts connecting to the broker.
// A broker that is not reachable yet is retried in the background.
func NewRealChannel(o Options) (*RealChannel, error) {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.ClientID == "" {
		o.ClientID = "lambda-display"
	}

	c := &RealChannel{
		topics: NewTopics(o.Prefix),
		events: make(chan Event, 64),
		outbox: newOutbox(o.BufferSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(c.topics.ClientDisconnect, string(FormatClientDisconnect()), 1, false).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetReconnectingHandler(func(paho.Client, *paho.ClientOptions) {
			log.Printf("mqtt: reconnecting to %s", o.Broker)
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", o.Broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

// Events delivers inbound and lifecycle events.
func (c *RealChannel) Events() <-chan Event {
	return c.events
}

// IsConnected reports whether the broker connection is currently up.
func (c *RealChannel) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Acknowledge publishes the connected ack.
func (c *RealChannel) Acknowledge(at time.Time) error {
	payload, err := FormatAck(at)
	if err != nil {
		return fmt.Errorf("format ack: %w", err)
	}
	// Not buffered: a stale ack means nothing after the next connect.
	return c.send(outboundMsg{topic: c.topics.Connected, payload: payload, qos: 1})
}

// PublishFrame publishes a rendered frame as the retained display state.
func (c *RealChannel) PublishFrame(frame display.Frame, at time.Time) error {
	payload, err := FormatFrame(frame, at)
	if err != nil {
		return fmt.Errorf("format frame: %w", err)
	}
	return c.publish(outboundMsg{topic: c.topics.Display, payload: payload, retained: true})
}

// PublishVisibility publishes a blink visibility change.
func (c *RealChannel) PublishVisibility(ch display.ChannelID, visible bool) error {
	payload, err := FormatVisibility(ch, visible)
	if err != nil {
		return fmt.Errorf("format visibility: %w", err)
	}
	return c.publish(outboundMsg{topic: c.topics.Blink, payload: payload})
}

// Reconnect drops the current session and connects again. Completion is
// reported on Events.
func (c *RealChannel) Reconnect() error {
	if c.client.IsConnectionOpen() {
		c.client.Disconnect(250)
	}
	token := c.client.Connect()
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.emit(Event{Type: EventConnectError, Time: time.Now(), Err: err})
		}
	}()
	return nil
}

// Close sends the disconnect ack and disconnects from the broker.
func (c *RealChannel) Close() error {
	if c.client.IsConnectionOpen() {
		if err := c.send(outboundMsg{topic: c.topics.ClientDisconnect, payload: FormatClientDisconnect(), qos: 1}); err != nil {
			log.Printf("mqtt: disconnect ack: %v", err)
		}
	}
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (c *RealChannel) onConnect(client paho.Client) {
	filters := make(map[string]byte)
	for _, t := range c.topics.Inbound() {
		filters[t] = 1
	}
	token := client.SubscribeMultiple(filters, c.onMessage)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("mqtt: subscribe: %v", token.Error())
		c.emit(Event{Type: EventConnectError, Time: time.Now(), Err: token.Error()})
	}

	c.mu.Lock()
	pending := c.outbox.drain()
	c.mu.Unlock()
	for _, m := range pending {
		if err := c.send(m); err != nil {
			log.Printf("mqtt: replay %s: %v", m.topic, err)
		}
	}

	c.emit(Event{Type: EventConnect, Time: time.Now()})
}

func (c *RealChannel) onConnectionLost(_ paho.Client, err error) {
	log.Printf("mqtt: connection lost: %v", err)
	c.emit(Event{Type: EventDisconnect, Time: time.Now(), Reason: "transport close", Err: err})
}

func (c *RealChannel) onMessage(_ paho.Client, msg paho.Message) {
	event, err := Decode(c.topics, msg.Topic(), msg.Payload(), time.Now())
	if err != nil {
		log.Printf("mqtt: drop message on %s: %v", msg.Topic(), err)
		return
	}
	c.emit(event)
}

func (c *RealChannel) emit(e Event) {
	select {
	case c.events <- e:
	default:
		log.Printf("mqtt: event queue full, dropping %s", e.Type)
	}
}

// publish sends m, or holds it in the outbox while disconnected.
func (c *RealChannel) publish(m outboundMsg) error {
	c.mu.Lock()
	if !c.client.IsConnectionOpen() {
		c.outbox.push(m)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.send(m)
}

func (c *RealChannel) send(m outboundMsg) error {
	token := c.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}
