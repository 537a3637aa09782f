// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vici

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/go-vici/vici/internal/fingerprint"
)

// DefaultSocketPath is the daemon's well-known VICI control socket.
const DefaultSocketPath = "/var/run/charon.vici"

// Logger is the structured-logging collaborator a Client optionally
// reports protocol diagnostics to. github.com/go-vici/vici/logger.Logger
// satisfies this interface; a nil Logger disables diagnostics silently.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// Option configures a Client at Connect time.
type Option func(*Client)

// WithMaxFrameSize overrides the 512 KiB default cap on accepted frame
// payloads (§4.2).
func WithMaxFrameSize(n uint32) Option {
	return func(c *Client) { c.maxFrameSize = n }
}

// WithDialTimeout bounds how long Connect waits for the UNIX socket to
// accept. Zero (the default) blocks indefinitely, matching §5: the core
// protocol imposes no timeout of its own.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithLogger attaches a structured logger for protocol diagnostics.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.SetLogger(l) }
}

// SetLogger attaches or replaces the structured logger used for protocol
// diagnostics after Connect. A nil Logger silences diagnostics again.
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	c.log = l
}

// pendingEvent is one buffered EVENT packet received for an
// already-subscribed name while a call/register/unregister was in
// flight (§4.3.2's buffering rule).
type pendingEvent struct {
	name    string
	payload *Message
}

// Client owns one exclusive connection to a VICI daemon: a single
// UNIX-domain byte stream plus the set of currently-subscribed event
// names (§3). It is not safe for concurrent use — every operation
// requires the caller to hold the sole *Client value, matching the
// single in-flight-command design (§5).
type Client struct {
	conn net.Conn

	maxFrameSize uint32
	dialTimeout  time.Duration
	log          Logger

	subscribed map[string]struct{}
	events     []pendingEvent

	broken error
}

// Connect opens a UNIX-domain stream to path and returns a ready Client.
// An empty path uses DefaultSocketPath.
func Connect(path string, opts ...Option) (*Client, error) {
	if path == "" {
		path = DefaultSocketPath
	}

	c := &Client{
		maxFrameSize: DefaultMaxFrameSize,
		log:          nopLogger{},
		subscribed:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	var conn net.Conn
	var err error
	if c.dialTimeout > 0 {
		conn, err = net.DialTimeout("unix", path, c.dialTimeout)
	} else {
		conn, err = net.Dial("unix", path)
	}
	if err != nil {
		return nil, newTransportIoErr(err)
	}

	c.conn = conn
	metricConnectsTotal.Inc()
	return c, nil
}

// Close closes the underlying socket. Per §3's lifecycle, any still-
// registered event subscriptions simply end when the daemon observes the
// disconnection — Close does not attempt to Unregister them first.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) brokenError() error {
	return &ClientError{Kind: ErrClientBroken}
}

func (c *Client) markBroken(err error) error {
	if c.broken == nil {
		c.broken = err
	}
	return err
}

func (c *Client) sendPacket(p Packet) error {
	body, err := EncodePacket(p)
	if err != nil {
		return c.markBroken(err)
	}
	if err := writeFrame(c.conn, body); err != nil {
		return c.markBroken(err)
	}
	return nil
}

func (c *Client) recvPacket() (Packet, error) {
	body, err := readFrame(c.conn, c.maxFrameSize)
	if err != nil {
		return Packet{}, c.markBroken(err)
	}
	p, err := DecodePacket(body)
	if err != nil {
		return Packet{}, c.markBroken(err)
	}
	return p, nil
}

// bufferEvent appends an EVENT packet to the FIFO queue ReadEvent later
// drains, preserving daemon send order (§5's ordering guarantee).
func (c *Client) bufferEvent(p Packet) {
	c.events = append(c.events, pendingEvent{name: p.Name, payload: p.Payload})
	metricEventsBufferedTotal.Inc()
	c.log.Debugf("vici: buffered event %q while awaiting a reply", p.Name)
}

// handleInterleavedEvent processes an EVENT packet seen while awaiting a
// command/register/unregister reply: buffer it if the name is
// subscribed, otherwise it is a protocol violation (§4.3).
func (c *Client) handleInterleavedEvent(p Packet) error {
	if _, ok := c.subscribed[p.Name]; !ok {
		return c.markBroken(&ClientError{Kind: ErrUnexpectedEvent, Name: p.Name})
	}
	c.bufferEvent(p)
	return nil
}

// Call issues command with the given request payload and blocks until
// the terminal CMD_RESPONSE (or CMD_UNKNOWN) arrives, buffering any
// interleaved EVENT packets for already-subscribed names along the way
// (§4.3).
func (c *Client) Call(command string, req *Message) (*Message, error) {
	if c.broken != nil {
		return nil, c.brokenError()
	}
	if req == nil {
		req = NewMessage()
	}

	callID := uuid.New().String()
	metricCallsTotal.Inc()

	if reqBody, err := req.Encode(); err != nil {
		c.log.Debugf("vici: call %s id=%s payload encode failed: %v", command, callID, err)
	} else {
		c.log.Debugf("vici: call %s id=%s payload_fp=%x", command, callID, fingerprint.Of([]byte(command), reqBody))
	}

	if err := c.sendPacket(Packet{Kind: KindCmdRequest, Name: command, Payload: req}); err != nil {
		metricCallErrorsTotal.WithLabelValues("transport").Inc()
		return nil, err
	}

	for {
		p, err := c.recvPacket()
		if err != nil {
			metricCallErrorsTotal.WithLabelValues("transport").Inc()
			return nil, err
		}

		switch p.Kind {
		case KindEvent:
			if err := c.handleInterleavedEvent(p); err != nil {
				metricCallErrorsTotal.WithLabelValues("protocol").Inc()
				return nil, err
			}
			continue

		case KindCmdResponse:
			payload := p.Payload
			if payload == nil {
				payload = NewMessage()
			}
			c.log.Debugf("vici: call %s id=%s completed", command, callID)
			return payload, nil

		case KindCmdUnknown:
			metricCallErrorsTotal.WithLabelValues("unknown_command").Inc()
			return nil, &ClientError{Kind: ErrUnknownCommand}

		default:
			err := c.markBroken(&ClientError{Kind: ErrUnexpectedPacket, Got: p.Kind, Expected: KindCmdResponse})
			metricCallErrorsTotal.WithLabelValues("protocol").Inc()
			return nil, err
		}
	}
}

// Register subscribes to event, blocking until the daemon confirms or
// rejects the subscription (§4.3).
func (c *Client) Register(event string) error {
	return c.changeSubscription(KindEventRegister, event)
}

// Unregister removes event from the subscribed set, blocking until the
// daemon confirms (§4.3).
func (c *Client) Unregister(event string) error {
	return c.changeSubscription(KindEventUnregister, event)
}

func (c *Client) changeSubscription(kind PacketKind, event string) error {
	if c.broken != nil {
		return c.brokenError()
	}

	if err := c.sendPacket(Packet{Kind: kind, Name: event}); err != nil {
		return err
	}

	for {
		p, err := c.recvPacket()
		if err != nil {
			return err
		}

		switch p.Kind {
		case KindEvent:
			if err := c.handleInterleavedEvent(p); err != nil {
				return err
			}
			continue

		case KindEventConfirm:
			if kind == KindEventRegister {
				c.subscribed[event] = struct{}{}
			} else {
				delete(c.subscribed, event)
			}
			metricSubscriptionsActive.Set(float64(len(c.subscribed)))
			c.log.Infof("vici: %s %q confirmed", subscriptionVerb(kind), event)
			return nil

		case KindEventUnknown:
			return &ClientError{Kind: ErrUnknownEvent, Name: event}

		default:
			return c.markBroken(&ClientError{Kind: ErrUnexpectedPacket, Got: p.Kind, Expected: KindEventConfirm})
		}
	}
}

func subscriptionVerb(kind PacketKind) string {
	if kind == KindEventRegister {
		return "register"
	}
	return "unregister"
}

// ReadEvent drains one buffered event if available, otherwise blocks
// until the next EVENT packet arrives on the wire (§4.3).
func (c *Client) ReadEvent() (string, *Message, error) {
	if c.broken != nil {
		return "", nil, c.brokenError()
	}

	if len(c.events) > 0 {
		ev := c.events[0]
		c.events = c.events[1:]
		metricEventsReceivedTotal.Inc()
		return ev.name, ev.payload, nil
	}

	for {
		p, err := c.recvPacket()
		if err != nil {
			return "", nil, err
		}

		switch p.Kind {
		case KindEvent:
			if _, ok := c.subscribed[p.Name]; !ok {
				return "", nil, c.markBroken(&ClientError{Kind: ErrUnexpectedEvent, Name: p.Name})
			}
			payload := p.Payload
			if payload == nil {
				payload = NewMessage()
			}
			metricEventsReceivedTotal.Inc()
			return p.Name, payload, nil

		default:
			return "", nil, c.markBroken(&ClientError{Kind: ErrUnexpectedPacket, Got: p.Kind, Expected: KindEvent})
		}
	}
}

// Subscribed reports the event names currently subscribed, in no
// particular order.
func (c *Client) Subscribed() []string {
	out := make([]string, 0, len(c.subscribed))
	for name := range c.subscribed {
		out = append(out, name)
	}
	return out
}
