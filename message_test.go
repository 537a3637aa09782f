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

func TestMessageAddGetRoundTrip(t *testing.T) {
	m := NewMessage()
	m.AddKVString("version", "5.9.1")
	m.AddList("protocols", [][]byte{[]byte("ikev1"), []byte("ikev2")})

	sub := NewMessage()
	sub.AddKVString("state", "ESTABLISHED")
	m.AddSection("conn1", sub)

	v, ok := m.GetString("version")
	require.True(t, ok)
	assert.Equal(t, "5.9.1", v)

	list, ok := m.List("protocols")
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("ikev1"), []byte("ikev2")}, list)

	section, ok := m.Section("conn1")
	require.True(t, ok)
	state, ok := section.GetString("state")
	require.True(t, ok)
	assert.Equal(t, "ESTABLISHED", state)

	assert.Equal(t, []string{"version", "protocols", "conn1"}, m.Names())
	assert.Equal(t, 3, m.Len())
}

func TestMessageSetPreservesPosition(t *testing.T) {
	m := NewMessage()
	m.AddKVString("a", "1")
	m.AddKVString("b", "2")
	m.AddKVString("a", "3")

	assert.Equal(t, []string{"a", "b"}, m.Names())
	v, ok := m.GetString("a")
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestMessageGetWrongKind(t *testing.T) {
	m := NewMessage()
	m.AddKVString("a", "1")

	_, ok := m.Section("a")
	assert.False(t, ok)
	_, ok = m.List("a")
	assert.False(t, ok)
}

func TestMessageEqualOrderSensitive(t *testing.T) {
	a := NewMessage()
	a.AddKVString("x", "1")
	a.AddKVString("y", "2")

	b := NewMessage()
	b.AddKVString("y", "2")
	b.AddKVString("x", "1")

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b), "messages differing only in child order must not be Equal")
}

func TestMessageAddListCopiesInput(t *testing.T) {
	items := [][]byte{[]byte("one")}
	m := NewMessage()
	m.AddList("l", items)

	items[0][0] = 'X'

	got, ok := m.List("l")
	require.True(t, ok)
	assert.Equal(t, "one", string(got[0]), "AddList must not alias the caller's backing array")
}
