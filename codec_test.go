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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKeyValue(t *testing.T) {
	m := NewMessage()
	m.AddKVString("version", "1")

	got, err := m.Encode()
	require.NoError(t, err)
	want := []byte{
		0x03, 0x07, 'v', 'e', 'r', 's', 'i', 'o', 'n', 0x00, 0x01, '1',
	}
	assert.Equal(t, want, got)
}

func TestEncodeSingleItemList(t *testing.T) {
	m := NewMessage()
	m.AddList("pools", [][]byte{[]byte("mypool")})

	got, err := m.Encode()
	require.NoError(t, err)
	want := []byte{
		0x04, 0x05, 'p', 'o', 'o', 'l', 's',
		0x05, 0x00, 0x06, 'm', 'y', 'p', 'o', 'o', 'l',
		0x06,
	}
	assert.Equal(t, want, got)
}

func TestEncodeNestedSection(t *testing.T) {
	child1 := NewMessage()
	child1.AddKVString("state", "INSTALLED")
	childSAs := NewMessage()
	childSAs.AddSection("child1", child1)
	m := NewMessage()
	m.AddSection("child-sas", childSAs)

	got, err := m.Encode()
	require.NoError(t, err)
	want := []byte{
		0x01, 0x09, 'c', 'h', 'i', 'l', 'd', '-', 's', 'a', 's',
		0x01, 0x06, 'c', 'h', 'i', 'l', 'd', '1',
		0x03, 0x05, 's', 't', 'a', 't', 'e', 0x00, 0x09, 'I', 'N', 'S', 'T', 'A', 'L', 'L', 'E', 'D',
		0x02,
		0x02,
	}
	assert.Equal(t, want, got)
}

func TestDecodeEmptyMessage(t *testing.T) {
	m, err := DecodeMessage(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestRoundTripMessages(t *testing.T) {
	cases := []*Message{
		NewMessage(),
		func() *Message {
			m := NewMessage()
			m.AddKVString("version", "1")
			return m
		}(),
		func() *Message {
			m := NewMessage()
			m.AddList("pools", [][]byte{[]byte("mypool")})
			return m
		}(),
		func() *Message {
			child1 := NewMessage()
			child1.AddKVString("state", "INSTALLED")
			childSAs := NewMessage()
			childSAs.AddSection("child1", child1)
			m := NewMessage()
			m.AddSection("child-sas", childSAs)
			m.AddKVString("version", "2")
			m.AddList("protocols", [][]byte{[]byte("ikev1"), []byte("ikev2")})
			return m
		}(),
	}

	for i, m := range cases {
		encoded, err := m.Encode()
		require.NoError(t, err)

		decoded, err := DecodeMessage(encoded)
		require.NoError(t, err)
		assert.True(t, m.Equal(decoded), "case %d: round-trip mismatch", i)

		again, err := decoded.Encode()
		require.NoError(t, err)
		assert.Equal(t, encoded, again, "case %d: encode must be deterministic", i)
	}
}

func TestEncodeNameLengthBoundary(t *testing.T) {
	m := NewMessage()
	m.AddKVString("", "x")
	_, err := m.Encode()
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrNameLength, ce.Kind)

	long256 := strings.Repeat("a", 256)
	m2 := NewMessage()
	m2.AddKVString(long256, "x")
	_, err = m2.Encode()
	require.Error(t, err)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrNameLength, ce.Kind)

	long255 := strings.Repeat("a", 255)
	m3 := NewMessage()
	m3.AddKVString(long255, "x")
	_, err = m3.Encode()
	require.NoError(t, err)
}

func TestEncodeValueLengthBoundary(t *testing.T) {
	ok := make([]byte, 65535)
	m := NewMessage()
	m.AddKV("v", ok)
	_, err := m.Encode()
	require.NoError(t, err)

	tooBig := make([]byte, 65536)
	m2 := NewMessage()
	m2.AddKV("v", tooBig)
	_, err = m2.Encode()
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrValueLength, ce.Kind)
}

func TestDecodeListContainsSection(t *testing.T) {
	b := []byte{
		tagListStart, 0x01, 'l',
		tagSectionStart, 0x01, 's',
	}
	_, err := DecodeMessage(b)
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrListContainsSection, ce.Kind)
}

func TestDecodeUnbalancedSectionEnd(t *testing.T) {
	b := []byte{tagSectionEnd}
	_, err := DecodeMessage(b)
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrNestingMismatch, ce.Kind)
}

func TestDecodeUnterminatedSection(t *testing.T) {
	b := []byte{tagSectionStart, 0x01, 's'}
	_, err := DecodeMessage(b)
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUnterminated, ce.Kind)
}

func TestDecodeUnknownTag(t *testing.T) {
	b := []byte{0x99}
	_, err := DecodeMessage(b)
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUnknownTag, ce.Kind)
}

func TestDecodeTruncated(t *testing.T) {
	b := []byte{tagKeyValue, 0x05, 'h', 'e'}
	_, err := DecodeMessage(b)
	require.Error(t, err)
	var ce *CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTruncated, ce.Kind)
}

// TestDecodeDuplicateNamedSiblingsRoundTrip exercises a daemon emitting
// two key/value elements with the same name at one nesting level: the
// grammar itself never forbids this, so the decoder must preserve both
// siblings (not silently drop the first) and re-encode byte-identically.
func TestDecodeDuplicateNamedSiblingsRoundTrip(t *testing.T) {
	b := []byte{
		tagKeyValue, 0x03, 'k', 'e', 'y', 0x00, 0x01, '1',
		tagKeyValue, 0x03, 'k', 'e', 'y', 0x00, 0x01, '2',
	}

	m, err := DecodeMessage(b)
	require.NoError(t, err)
	require.Equal(t, []string{"key", "key"}, m.Names())

	got, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

// TestDecodeDuplicateNamedSectionsRoundTrip is the same case one level
// deeper: two sibling sections sharing a name inside an outer section.
func TestDecodeDuplicateNamedSectionsRoundTrip(t *testing.T) {
	b := []byte{
		tagSectionStart, 0x05, 'o', 'u', 't', 'e', 'r',
		tagSectionStart, 0x03, 's', 'u', 'b',
		tagKeyValue, 0x01, 'a', 0x00, 0x01, '1',
		tagSectionEnd,
		tagSectionStart, 0x03, 's', 'u', 'b',
		tagKeyValue, 0x01, 'a', 0x00, 0x01, '2',
		tagSectionEnd,
		tagSectionEnd,
	}

	m, err := DecodeMessage(b)
	require.NoError(t, err)
	outer, ok := m.Section("outer")
	require.True(t, ok)
	require.Equal(t, []string{"sub", "sub"}, outer.Names())

	got, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, b, got)
}
