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

// PacketKind is the one-byte opcode leading every VICI packet.
type PacketKind byte

const (
	KindCmdRequest      PacketKind = 0
	KindCmdResponse     PacketKind = 1
	KindCmdUnknown      PacketKind = 2
	KindEventRegister   PacketKind = 3
	KindEventUnregister PacketKind = 4
	KindEventConfirm    PacketKind = 5
	KindEventUnknown    PacketKind = 6
	KindEvent           PacketKind = 7
)

func (k PacketKind) String() string {
	switch k {
	case KindCmdRequest:
		return "CMD_REQUEST"
	case KindCmdResponse:
		return "CMD_RESPONSE"
	case KindCmdUnknown:
		return "CMD_UNKNOWN"
	case KindEventRegister:
		return "EVENT_REGISTER"
	case KindEventUnregister:
		return "EVENT_UNREGISTER"
	case KindEventConfirm:
		return "EVENT_CONFIRM"
	case KindEventUnknown:
		return "EVENT_UNKNOWN"
	case KindEvent:
		return "EVENT"
	default:
		return "UNKNOWN"
	}
}

// Packet is a single VICI wire packet: a Kind discriminant plus the
// subset of Name/Payload that kind actually carries, per §3's packet
// table. Unused fields for a given Kind are simply left zero — this
// mirrors the single discriminated-struct style this module's lineage
// uses for tagged wire records rather than one Go type per packet kind.
type Packet struct {
	Kind    PacketKind
	Name    string   // CMD_REQUEST, EVENT_REGISTER, EVENT_UNREGISTER, EVENT
	Payload *Message // CMD_REQUEST, CMD_RESPONSE, EVENT
}

// EncodePacket serializes p to its wire bytes, not including the 4-byte
// transport length frame (see writeFrame/readFrame for that).
func EncodePacket(p Packet) ([]byte, error) {
	buf := []byte{byte(p.Kind)}

	switch p.Kind {
	case KindCmdRequest, KindEventRegister, KindEventUnregister, KindEvent:
		if err := checkNameLen(p.Name); err != nil {
			return nil, err
		}
		buf = appendName(buf, p.Name)
	}

	switch p.Kind {
	case KindCmdRequest, KindEvent:
		payload := p.Payload
		if payload == nil {
			payload = NewMessage()
		}
		body, err := payload.Encode()
		if err != nil {
			return nil, err
		}
		buf = append(buf, body...)

	case KindCmdResponse:
		payload := p.Payload
		if payload == nil {
			payload = NewMessage()
		}
		body, err := payload.Encode()
		if err != nil {
			return nil, err
		}
		buf = append(buf, body...)
	}

	return buf, nil
}

// DecodePacket is the inverse of EncodePacket over b, which must be
// exactly one packet's payload (the 4-byte length frame already
// stripped by the transport layer).
func DecodePacket(b []byte) (Packet, error) {
	if len(b) == 0 {
		return Packet{}, newCodecErr(ErrTruncated)
	}
	kind := PacketKind(b[0])
	i := 1

	var p Packet
	p.Kind = kind

	switch kind {
	case KindCmdRequest, KindEventRegister, KindEventUnregister, KindEvent:
		name, ni, err := readName(b, i)
		if err != nil {
			return Packet{}, err
		}
		p.Name = name
		i = ni

	case KindCmdResponse, KindCmdUnknown, KindEventConfirm, KindEventUnknown:
		// no name field

	default:
		return Packet{}, newCodecErrByte(ErrUnknownPacketType, b[0])
	}

	switch kind {
	case KindCmdRequest, KindCmdResponse, KindEvent:
		msg, err := DecodeMessage(b[i:])
		if err != nil {
			return Packet{}, err
		}
		p.Payload = msg

	case KindCmdUnknown, KindEventConfirm, KindEventUnknown:
		if i != len(b) {
			return Packet{}, newCodecErrLen(ErrTrailing, len(b)-i)
		}

	case KindEventRegister, KindEventUnregister:
		if i != len(b) {
			return Packet{}, newCodecErrLen(ErrTrailing, len(b)-i)
		}
	}

	return p, nil
}
