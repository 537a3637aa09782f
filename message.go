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

// Package vici implements the wire codec and client state machine for the
// VICI (Versatile IKE Configuration Interface) protocol spoken by the
// strongSwan IPsec daemon over a length-prefixed UNIX-domain control
// socket.
package vici

// elementKind discriminates the three leaf/branch kinds a Message's
// children can be. Modeled as a tagged field rather than separate
// interface implementations per kind, matching how this module's lineage
// decodes tagged wire records with a single discriminant and a
// type-switch-free dispatch loop (see DESIGN.md).
type elementKind uint8

const (
	kindSection elementKind = iota
	kindKeyValue
	kindList
)

// element is one named child of a section: either a nested section, a
// key/value leaf, or a named list of byte-string items.
type element struct {
	name  string
	kind  elementKind
	value []byte     // kindKeyValue
	items [][]byte   // kindList
	child *Message   // kindSection
}

// Message is an ordered tree of sections, key/value leaves, and named
// lists, as carried inside CMD_REQUEST, CMD_RESPONSE, and EVENT packets.
//
// Order of insertion is observable and preserved across encode/decode
// round-trips. The zero value is an empty, ready-to-use Message.
type Message struct {
	order []string
	index map[string]int
	elems []element
}

// NewMessage returns an empty Message.
func NewMessage() *Message {
	return &Message{index: make(map[string]int)}
}

func (m *Message) ensure() {
	if m.index == nil {
		m.index = make(map[string]int)
	}
}

func (m *Message) set(e element) {
	m.ensure()
	if i, ok := m.index[e.name]; ok {
		m.elems[i] = e
		return
	}
	m.index[e.name] = len(m.order)
	m.order = append(m.order, e.name)
	m.elems = append(m.elems, e)
}

// appendChild adds e as a new child even when its name duplicates an
// existing child's, instead of upserting in place. The decoder uses this
// to preserve duplicate-named siblings a daemon may legally emit at one
// nesting level (the grammar itself enforces no such uniqueness); the
// name index is left pointing at the most recently appended occurrence,
// so Get/Section/List resolve a duplicated name to its last sibling.
func (m *Message) appendChild(e element) {
	m.ensure()
	m.index[e.name] = len(m.order)
	m.order = append(m.order, e.name)
	m.elems = append(m.elems, e)
}

// AddKV sets a key/value leaf, overwriting any existing child of the
// same name while preserving its original position.
func (m *Message) AddKV(name string, value []byte) *Message {
	m.set(element{name: name, kind: kindKeyValue, value: value})
	return m
}

// AddKVString is a convenience wrapper over AddKV for string values.
func (m *Message) AddKVString(name, value string) *Message {
	return m.AddKV(name, []byte(value))
}

// AddSection sets a nested section, overwriting any existing child of
// the same name while preserving its original position.
func (m *Message) AddSection(name string, sub *Message) *Message {
	m.set(element{name: name, kind: kindSection, child: sub})
	return m
}

// AddList sets a named, ordered list of byte-string items. Each item is
// copied, so later mutation of the caller's slices does not affect the
// stored list.
func (m *Message) AddList(name string, items [][]byte) *Message {
	cp := make([][]byte, len(items))
	for i, it := range items {
		cp[i] = append([]byte(nil), it...)
	}
	m.set(element{name: name, kind: kindList, items: cp})
	return m
}

// AddListStrings is a convenience wrapper over AddList for string items.
func (m *Message) AddListStrings(name string, items []string) *Message {
	b := make([][]byte, len(items))
	for i, s := range items {
		b[i] = []byte(s)
	}
	return m.AddList(name, b)
}

// Names returns the child names in insertion order.
func (m *Message) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Get returns the raw value for a key/value leaf named name.
func (m *Message) Get(name string) ([]byte, bool) {
	i, ok := m.index[name]
	if !ok || m.elems[i].kind != kindKeyValue {
		return nil, false
	}
	return m.elems[i].value, true
}

// GetString is a convenience wrapper over Get.
func (m *Message) GetString(name string) (string, bool) {
	v, ok := m.Get(name)
	if !ok {
		return "", false
	}
	return string(v), true
}

// Section returns the nested Message named name.
func (m *Message) Section(name string) (*Message, bool) {
	i, ok := m.index[name]
	if !ok || m.elems[i].kind != kindSection {
		return nil, false
	}
	return m.elems[i].child, true
}

// List returns the byte-string items of the named list.
func (m *Message) List(name string) ([][]byte, bool) {
	i, ok := m.index[name]
	if !ok || m.elems[i].kind != kindList {
		return nil, false
	}
	return m.elems[i].items, true
}

// Len reports the number of direct children.
func (m *Message) Len() int {
	return len(m.order)
}

// Equal reports whether m and other encode to identical bytes, which in
// turn requires identical child ordering at every level (per spec: two
// otherwise-equal messages differing only in child order are not equal).
func (m *Message) Equal(other *Message) bool {
	a, err := m.Encode()
	if err != nil {
		return false
	}
	b, err := other.Encode()
	if err != nil {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
