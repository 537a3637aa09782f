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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePacketEmptyRequest(t *testing.T) {
	p := Packet{Kind: KindCmdRequest, Name: "list-sas", Payload: NewMessage()}
	got, err := EncodePacket(p)
	require.NoError(t, err)

	want := []byte{0x00, 0x08, 'l', 'i', 's', 't', '-', 's', 'a', 's'}
	assert.Equal(t, want, got)
}

func TestEncodePacketEmptyResponse(t *testing.T) {
	p := Packet{Kind: KindCmdResponse, Payload: NewMessage()}
	got, err := EncodePacket(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, got)
}

func TestDecodePacketEmptyResponse(t *testing.T) {
	p, err := DecodePacket([]byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, KindCmdResponse, p.Kind)
	require.NotNil(t, p.Payload)
	assert.Equal(t, 0, p.Payload.Len())
}

func TestPacketRoundTrip(t *testing.T) {
	cases := []Packet{
		{Kind: KindCmdRequest, Name: "list-sas", Payload: NewMessage()},
		{Kind: KindCmdResponse, Payload: func() *Message {
			m := NewMessage()
			m.AddKVString("version", "1")
			return m
		}()},
		{Kind: KindCmdUnknown},
		{Kind: KindEventRegister, Name: "ike-updown"},
		{Kind: KindEventUnregister, Name: "ike-updown"},
		{Kind: KindEventConfirm},
		{Kind: KindEventUnknown},
		{Kind: KindEvent, Name: "ike-updown", Payload: NewMessage()},
	}

	for _, p := range cases {
		encoded, err := EncodePacket(p)
		require.NoError(t, err)

		decoded, err := DecodePacket(encoded)
		require.NoError(t, err, "kind %s", p.Kind)

		assert.Equal(t, p.Kind, decoded.Kind)
		assert.Equal(t, p.Name, decoded.Name)
		if p.Payload != nil {
			require.NotNil(t, decoded.Payload)
			assert.True(t, p.Payload.Equal(decoded.Payload))
		}
	}
}

func TestDecodePacketUnknownType(t *testing.T) {
	_, err := DecodePacket([]byte{0x42})
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUnknownPacketType, ce.Kind)
}

func TestDecodePacketTrailingAfterNoPayloadKind(t *testing.T) {
	_, err := DecodePacket([]byte{byte(KindCmdUnknown), 0xFF})
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTrailing, ce.Kind)
}

func TestDecodePacketEmptyInput(t *testing.T) {
	_, err := DecodePacket(nil)
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTruncated, ce.Kind)
}
