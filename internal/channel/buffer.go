package channel

import "log"

// outboundMsg is a serialized message waiting for the broker.
type outboundMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while disconnected, oldest first.
// A retained message replaces any earlier retained message on the same
// topic, since subscribers only ever see the last retained state.
// Not safe for concurrent use; caller must synchronize.
type outbox struct {
	msgs     []outboundMsg
	capacity int
	dropped  int // messages lost to overflow since last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{capacity: capacity}
}

func (o *outbox) push(msg outboundMsg) {
	if msg.retained {
		for i, m := range o.msgs {
			if m.retained && m.topic == msg.topic {
				o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
				break
			}
		}
	}
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Printf("channel: outbox full (%d messages), dropping oldest", o.capacity)
		}
		o.dropped++
		o.msgs = o.msgs[1:]
	}
	o.msgs = append(o.msgs, msg)
}

// drain returns all held messages in publish order and empties the outbox.
func (o *outbox) drain() []outboundMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := o.msgs
	o.msgs = nil
	if o.dropped > 0 {
		log.Printf("channel: replaying %d messages, %d dropped while offline", len(out), o.dropped)
		o.dropped = 0
	}
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
