/*
PubSub mode. Once a connection subscribes, the server no longer honors
FIFO request/response order: message events arrive unsolicited, so there
is no outstanding queue to correlate against. Every inbound Reply must
be an Array whose first element names the event kind; the dispatcher
translates each into a PubSubEvent and broadcasts it to every listener.

Outbound traffic is limited to the six commands Redis accepts inside
subscribed state (SUBSCRIBE, UNSUBSCRIBE, PSUBSCRIBE, PUNSUBSCRIBE,
PING, QUIT). The surface only offers those six; the dispatcher itself
does not police the limitation.
*/
package redwire

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
)

// PubSubEventKind labels the event variants of the subscribed state.
type PubSubEventKind int

const (
	// EventSubscription confirms a subscription change and carries the
	// connection's current subscription count.
	EventSubscription PubSubEventKind = iota
	// EventMessage is a channel message.
	EventMessage
	// EventPatternMessage is a message delivered through a pattern
	// subscription.
	EventPatternMessage
	// EventPong answers an in-PubSub PING.
	EventPong
)

// PubSubEvent is one event from the subscribed connection.
type PubSubEvent struct {
	Kind PubSubEventKind

	// Command is the confirmed subscription command ("subscribe",
	// "unsubscribe", "psubscribe", "punsubscribe") for
	// EventSubscription.
	Command string
	// Channel is the subscribed or publishing channel. For
	// EventSubscription on a pattern command it carries the pattern.
	Channel string
	// Pattern is the matching pattern for EventPatternMessage.
	Pattern string
	// Payload is the message body, or the PING echo for EventPong.
	Payload []byte
	// SubscriptionCount is the connection's subscription total after
	// an EventSubscription.
	SubscriptionCount int64
}

// PubSub is a connection in subscribed state.
type PubSub struct {
	conn   *Connection
	enc    *Encoders
	logger *zap.Logger

	decoder Decoder

	mu        sync.Mutex
	listeners []chan PubSubEvent
	closed    bool
}

// DialPubSub connects to uri and returns a PubSub handle with no
// subscriptions yet.
func DialPubSub(uri string, opts Options) (*PubSub, error) {
	conn, err := Dial(uri, opts)
	if err != nil {
		return nil, err
	}
	return NewPubSub(conn, opts), nil
}

// NewPubSub rebinds an existing connection into PubSub mode. This is
// the documented handoff path: authenticate through an Online client
// first, then pass its Connection here. Bytes that arrived while no
// callbacks were bound are replayed into the PubSub reply stream; bytes
// the previous mode already received stay with that mode.
func NewPubSub(conn *Connection, opts Options) *PubSub {
	p := &PubSub{
		conn:   conn,
		enc:    opts.encoders(),
		logger: opts.logger(),
	}
	conn.Listen(p.onData, p.onTransportNotice, p.onConnDone)
	return p
}

// Connection exposes the underlying transport.
func (p *PubSub) Connection() *Connection { return p.conn }

// Events registers and returns a listener. Every listener receives
// every event; the channel closes when the connection terminates.
func (p *PubSub) Events() <-chan PubSubEvent {
	ch := make(chan PubSubEvent, 64)
	p.mu.Lock()
	if p.closed {
		close(ch)
	} else {
		p.listeners = append(p.listeners, ch)
	}
	p.mu.Unlock()
	return ch
}

func (p *PubSub) send(args ...any) error {
	var buf bytes.Buffer
	if err := WriteLine(&buf, p.enc, args); err != nil {
		return err
	}
	return p.conn.Send(buf.Bytes())
}

// Subscribe starts listening on the named channels. Confirmations
// arrive as EventSubscription events, one per channel in the order the
// channels were enumerated.
func (p *PubSub) Subscribe(channels ...string) error {
	args := make([]any, 0, len(channels)+1)
	args = append(args, SUBSCRIBE)
	for _, ch := range channels {
		args = append(args, ch)
	}
	return p.send(args...)
}

// Unsubscribe stops listening on the named channels, or on every
// channel when none are given.
func (p *PubSub) Unsubscribe(channels ...string) error {
	args := make([]any, 0, len(channels)+1)
	args = append(args, UNSUBSCRIBE)
	for _, ch := range channels {
		args = append(args, ch)
	}
	return p.send(args...)
}

// PSubscribe starts listening on the given patterns.
func (p *PubSub) PSubscribe(patterns ...string) error {
	args := make([]any, 0, len(patterns)+1)
	args = append(args, PSUBSCRIBE)
	for _, pat := range patterns {
		args = append(args, pat)
	}
	return p.send(args...)
}

// PUnsubscribe stops listening on the given patterns, or on every
// pattern when none are given.
func (p *PubSub) PUnsubscribe(patterns ...string) error {
	args := make([]any, 0, len(patterns)+1)
	args = append(args, PUNSUBSCRIBE)
	for _, pat := range patterns {
		args = append(args, pat)
	}
	return p.send(args...)
}

// Ping checks the connection; the answer arrives as an EventPong.
func (p *PubSub) Ping(message string) error {
	args := []any{PING}
	if message != "" {
		args = append(args, message)
	}
	return p.send(args...)
}

// Quit asks the server to close the connection.
func (p *PubSub) Quit() error {
	return p.send(QUIT)
}

// Close disconnects and closes every listener.
func (p *PubSub) Close() error {
	return p.conn.Disconnect()
}

func (p *PubSub) onData(chunk []byte) {
	replies, err := p.decoder.Feed(chunk)
	for _, r := range replies {
		if perr := p.onReply(r); perr != nil {
			p.poison(perr)
			return
		}
	}
	if err != nil {
		p.poison(err)
	}
}

func (p *PubSub) onReply(r Reply) error {
	if r.Kind != KindArray || len(r.Array) == 0 {
		return protocolErrorf("pubsub reply must be a non-empty array, got %s", r)
	}
	tag := string(r.Array[0].Bytes)
	switch tag {
	case "subscribe", "unsubscribe", "psubscribe", "punsubscribe":
		if len(r.Array) != 3 {
			return protocolErrorf("%s event must have 3 elements, got %d", tag, len(r.Array))
		}
		count, err := parseLength(r.Array[2].Bytes)
		if err != nil {
			return protocolErrorf("%s subscription count: %v", tag, err)
		}
		p.broadcast(PubSubEvent{
			Kind:              EventSubscription,
			Command:           tag,
			Channel:           string(r.Array[1].Bytes),
			SubscriptionCount: int64(count),
		})
	case "message":
		if len(r.Array) != 3 {
			return protocolErrorf("message event must have 3 elements, got %d", len(r.Array))
		}
		p.broadcast(PubSubEvent{
			Kind:    EventMessage,
			Channel: string(r.Array[1].Bytes),
			Payload: r.Array[2].Bytes,
		})
	case "pmessage":
		if len(r.Array) != 4 {
			return protocolErrorf("pmessage event must have 4 elements, got %d", len(r.Array))
		}
		p.broadcast(PubSubEvent{
			Kind:    EventPatternMessage,
			Pattern: string(r.Array[1].Bytes),
			Channel: string(r.Array[2].Bytes),
			Payload: r.Array[3].Bytes,
		})
	case "pong":
		var payload []byte
		if len(r.Array) > 1 {
			payload = r.Array[1].Bytes
		}
		p.broadcast(PubSubEvent{Kind: EventPong, Payload: payload})
	default:
		return protocolErrorf("unknown pubsub event tag %q", tag)
	}
	return nil
}

func (p *PubSub) broadcast(ev PubSubEvent) {
	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()
	for _, ch := range listeners {
		ch <- ev
	}
}

func (p *PubSub) poison(err error) {
	p.logger.Error("pubsub protocol error, poisoning connection", zap.Error(err))
	p.conn.fail(err)
}

func (p *PubSub) onTransportNotice(err error) {
	p.logger.Warn("pubsub observed transport error", zap.Error(err))
}

func (p *PubSub) onConnDone(error) {
	p.mu.Lock()
	listeners := p.listeners
	p.listeners = nil
	p.closed = true
	p.mu.Unlock()
	for _, ch := range listeners {
		close(ch)
	}
}
