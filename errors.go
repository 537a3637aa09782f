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
	"fmt"

	"github.com/pkg/errors"
)

// CodecError is returned by the message and packet codecs.
//
// Kind identifies which boundary invariant failed; Byte carries the
// offending tag or opcode and Have the offending length or trailing byte
// count, where applicable.
type CodecError struct {
	Kind string
	Byte byte
	Have int
	Want int
}

const (
	ErrTruncated           = "truncated"
	ErrUnknownTag          = "unknown_tag"
	ErrUnknownPacketType   = "unknown_packet_type"
	ErrNestingMismatch     = "nesting_mismatch"
	ErrListContainsSection = "list_contains_section"
	ErrUnterminated        = "unterminated"
	ErrNameLength          = "name_length"
	ErrValueLength         = "value_length"
	ErrTrailing            = "trailing"
)

func (e *CodecError) Error() string {
	switch e.Kind {
	case ErrUnknownTag:
		return fmt.Sprintf("vici: unknown element tag 0x%02x", e.Byte)
	case ErrUnknownPacketType:
		return fmt.Sprintf("vici: unknown packet type 0x%02x", e.Byte)
	case ErrNameLength:
		return fmt.Sprintf("vici: name length %d out of range [1,255]", e.Have)
	case ErrValueLength:
		return fmt.Sprintf("vici: value length %d out of range [0,65535]", e.Have)
	case ErrTrailing:
		return fmt.Sprintf("vici: %d trailing byte(s) after message", e.Have)
	default:
		return "vici: " + e.Kind
	}
}

func newCodecErr(kind string) error {
	return &CodecError{Kind: kind}
}

func newCodecErrByte(kind string, b byte) error {
	return &CodecError{Kind: kind, Byte: b}
}

func newCodecErrLen(kind string, have int) error {
	return &CodecError{Kind: kind, Have: have}
}

// TransportError is returned by frame-level reads and writes.
type TransportError struct {
	Kind string
	Len  uint32
	Cap  uint32
	Err  error
}

const (
	ErrEof            = "eof"
	ErrOversizedFrame = "oversized_frame"
	ErrIo             = "io"
)

func (e *TransportError) Error() string {
	switch e.Kind {
	case ErrOversizedFrame:
		return fmt.Sprintf("vici: frame length %d exceeds cap %d", e.Len, e.Cap)
	case ErrEof:
		return "vici: unexpected eof reading frame"
	default:
		return errors.Wrap(e.Err, "vici: transport").Error()
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportIoErr(err error) error {
	return &TransportError{Kind: ErrIo, Err: err}
}

// ClientError is returned by Client operations that violate the VICI
// command/event protocol, or that observe a daemon-reported failure.
type ClientError struct {
	Kind     string
	Got      PacketKind
	Expected PacketKind
	Name     string
}

const (
	ErrUnknownCommand    = "unknown_command"
	ErrUnknownEvent      = "unknown_event"
	ErrUnexpectedPacket  = "unexpected_packet"
	ErrUnexpectedEvent   = "unexpected_event"
	ErrClientBroken      = "broken"
)

func (e *ClientError) Error() string {
	switch e.Kind {
	case ErrUnknownCommand:
		return "vici: daemon does not recognize the command"
	case ErrUnknownEvent:
		return "vici: daemon does not recognize the event"
	case ErrUnexpectedPacket:
		return fmt.Sprintf("vici: unexpected packet %s while awaiting %s", e.Got, e.Expected)
	case ErrUnexpectedEvent:
		return fmt.Sprintf("vici: received event %q for an unsubscribed name", e.Name)
	case ErrClientBroken:
		return "vici: client is broken by a prior transport or protocol error"
	default:
		return "vici: " + e.Kind
	}
}

// IsBroken reports whether err permanently disables a Client.
//
// UnknownCommand and UnknownEvent are the two recoverable ClientErrors;
// every other error (codec, transport, or any other ClientError) leaves
// the client Broken per the protocol's error-handling design.
func IsBroken(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind != ErrUnknownCommand && ce.Kind != ErrUnknownEvent
	}
	return true
}
