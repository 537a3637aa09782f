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

import "encoding/binary"

// Wire tags for message elements, per the VICI message grammar.
const (
	tagSectionStart byte = 1
	tagSectionEnd   byte = 2
	tagKeyValue     byte = 3
	tagListStart    byte = 4
	tagListItem     byte = 5
	tagListEnd      byte = 6
)

const (
	maxNameLen  = 255
	maxValueLen = 65535
)

// Encode serializes m by a depth-first traversal in insertion order,
// emitting the tagged elements described in the message grammar.
//
// A section/key/list name of length 0 or > 255, or a value/list item of
// length > 65535, is a programming error reported as a *CodecError.
func (m *Message) Encode() ([]byte, error) {
	var buf []byte
	var err error
	buf, err = encodeChildren(buf, m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeChildren(buf []byte, m *Message) ([]byte, error) {
	for _, e := range m.elems {
		var err error
		buf, err = encodeElement(buf, e)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeElement(buf []byte, e element) ([]byte, error) {
	switch e.kind {
	case kindSection:
		if err := checkNameLen(e.name); err != nil {
			return nil, err
		}
		buf = append(buf, tagSectionStart)
		buf = appendName(buf, e.name)
		var err error
		buf, err = encodeChildren(buf, e.child)
		if err != nil {
			return nil, err
		}
		buf = append(buf, tagSectionEnd)
		return buf, nil

	case kindKeyValue:
		if err := checkNameLen(e.name); err != nil {
			return nil, err
		}
		if err := checkValueLen(len(e.value)); err != nil {
			return nil, err
		}
		buf = append(buf, tagKeyValue)
		buf = appendName(buf, e.name)
		buf = appendValue(buf, e.value)
		return buf, nil

	case kindList:
		if err := checkNameLen(e.name); err != nil {
			return nil, err
		}
		buf = append(buf, tagListStart)
		buf = appendName(buf, e.name)
		for _, item := range e.items {
			if err := checkValueLen(len(item)); err != nil {
				return nil, err
			}
			buf = append(buf, tagListItem)
			buf = appendValue(buf, item)
		}
		buf = append(buf, tagListEnd)
		return buf, nil

	default:
		return buf, newCodecErr(ErrUnknownTag)
	}
}

func checkNameLen(name string) error {
	if len(name) < 1 || len(name) > maxNameLen {
		return newCodecErrLen(ErrNameLength, len(name))
	}
	return nil
}

func checkValueLen(n int) error {
	if n > maxValueLen {
		return newCodecErrLen(ErrValueLength, n)
	}
	return nil
}

func appendName(buf []byte, name string) []byte {
	buf = append(buf, byte(len(name)))
	return append(buf, name...)
}

func appendValue(buf []byte, value []byte) []byte {
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(value)))
	buf = append(buf, l[:]...)
	return append(buf, value...)
}

// frameKind distinguishes the two stack-frame shapes the decoder tracks
// while walking a nested wire payload: an open section (builds into a
// *Message) or an open list (accumulates [][]byte items).
type frameKind uint8

const (
	frameSection frameKind = iota
	frameList
)

type frame struct {
	kind frameKind
	name string // the section's or list's name, needed when it closes
	msg  *Message
	list [][]byte
}

// DecodeMessage parses b as a top-level message payload (one that is not
// preceded by a list/section it belongs to) and returns the tree. The
// number of bytes consumed must equal len(b) — any remainder is
// ErrTrailing.
func DecodeMessage(b []byte) (*Message, error) {
	m, n, err := decodeMessage(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, newCodecErrLen(ErrTrailing, len(b)-n)
	}
	return m, nil
}

// decodeMessage parses a (possibly empty) sequence of top-level elements
// from b until input is exhausted, using an explicit stack of open
// sections/lists rather than recursion, so arbitrarily deep nesting never
// grows the Go call stack.
func decodeMessage(b []byte) (*Message, int, error) {
	root := NewMessage()
	stack := []frame{{kind: frameSection, msg: root}}
	i := 0

	for i < len(b) {
		tag := b[i]
		i++

		top := &stack[len(stack)-1]

		if top.kind == frameList && tag != tagListItem && tag != tagListEnd {
			return nil, 0, newCodecErr(ErrListContainsSection)
		}

		switch tag {
		case tagSectionStart:
			name, ni, err := readName(b, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			sub := NewMessage()
			stack = append(stack, frame{kind: frameSection, msg: sub})
			// record placement on the parent once closed; use name via
			// a synthetic element appended to parent at SECTION_END time
			stack[len(stack)-1].name = name

		case tagSectionEnd:
			if top.kind != frameSection || len(stack) < 2 {
				return nil, 0, newCodecErr(ErrNestingMismatch)
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			if parent.kind != frameSection {
				return nil, 0, newCodecErr(ErrNestingMismatch)
			}
			parent.msg.appendChild(element{name: closed.name, kind: kindSection, child: closed.msg})

		case tagKeyValue:
			name, ni, err := readName(b, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			value, vi, err := readValue(b, i)
			if err != nil {
				return nil, 0, err
			}
			i = vi
			// top.kind == frameSection is guaranteed here: the list-only
			// guard above already rejected tagKeyValue while inside a list.
			top.msg.appendChild(element{name: name, kind: kindKeyValue, value: value})

		case tagListStart:
			name, ni, err := readName(b, i)
			if err != nil {
				return nil, 0, err
			}
			i = ni
			stack = append(stack, frame{kind: frameList, name: name})

		case tagListItem:
			value, vi, err := readValue(b, i)
			if err != nil {
				return nil, 0, err
			}
			i = vi
			if top.kind != frameList {
				return nil, 0, newCodecErr(ErrNestingMismatch)
			}
			top.list = append(top.list, value)

		case tagListEnd:
			if top.kind != frameList {
				return nil, 0, newCodecErr(ErrNestingMismatch)
			}
			if len(stack) < 2 {
				return nil, 0, newCodecErr(ErrNestingMismatch)
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			if parent.kind != frameSection {
				return nil, 0, newCodecErr(ErrNestingMismatch)
			}
			parent.msg.appendChild(element{name: closed.name, kind: kindList, items: closed.list})

		default:
			return nil, 0, newCodecErrByte(ErrUnknownTag, tag)
		}
	}

	if len(stack) != 1 {
		return nil, 0, newCodecErr(ErrUnterminated)
	}
	return root, i, nil
}

func readName(b []byte, i int) (string, int, error) {
	if i >= len(b) {
		return "", 0, newCodecErr(ErrTruncated)
	}
	n := int(b[i])
	i++
	if n == 0 {
		return "", 0, newCodecErrLen(ErrNameLength, 0)
	}
	if i+n > len(b) {
		return "", 0, newCodecErr(ErrTruncated)
	}
	return string(b[i : i+n]), i + n, nil
}

func readValue(b []byte, i int) ([]byte, int, error) {
	if i+2 > len(b) {
		return nil, 0, newCodecErr(ErrTruncated)
	}
	n := int(binary.BigEndian.Uint16(b[i : i+2]))
	i += 2
	if i+n > len(b) {
		return nil, 0, newCodecErr(ErrTruncated)
	}
	return append([]byte(nil), b[i:i+n]...), i + n, nil
}
