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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	payload := []byte("hello vici")
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, payload))

	got, err := readFrame(&buf, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriteReadEmptyFramePayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, nil))

	_, err := readFrame(&buf, DefaultMaxFrameSize)
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrEof, te.Kind)
}

func TestReadFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 1024)
	buf.Write(lenBuf[:])

	_, err := readFrame(&buf, 512)
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrOversizedFrame, te.Kind)
	assert.Equal(t, uint32(1024), te.Len)
	assert.Equal(t, uint32(512), te.Cap)
}

func TestReadFrameEofOnEmptyReader(t *testing.T) {
	var buf bytes.Buffer
	_, err := readFrame(&buf, DefaultMaxFrameSize)
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrEof, te.Kind)
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], 10)
	buf.Write(lenBuf[:])
	buf.Write([]byte("abc"))

	_, err := readFrame(&buf, DefaultMaxFrameSize)
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrEof, te.Kind)
}
