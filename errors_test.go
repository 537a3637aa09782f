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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBrokenNil(t *testing.T) {
	assert.False(t, IsBroken(nil))
}

func TestIsBrokenRecoverableKinds(t *testing.T) {
	assert.False(t, IsBroken(&ClientError{Kind: ErrUnknownCommand}))
	assert.False(t, IsBroken(&ClientError{Kind: ErrUnknownEvent}))
}

func TestIsBrokenTerminalKinds(t *testing.T) {
	assert.True(t, IsBroken(&ClientError{Kind: ErrUnexpectedPacket}))
	assert.True(t, IsBroken(&ClientError{Kind: ErrUnexpectedEvent}))
	assert.True(t, IsBroken(&ClientError{Kind: ErrClientBroken}))
}

func TestIsBrokenNonClientError(t *testing.T) {
	assert.True(t, IsBroken(&CodecError{Kind: ErrTruncated}))
	assert.True(t, IsBroken(&TransportError{Kind: ErrEof}))
	assert.True(t, IsBroken(errors.New("some other error")))
}

func TestTransportErrorUnwrap(t *testing.T) {
	underlying := errors.New("boom")
	te := &TransportError{Kind: ErrIo, Err: underlying}
	assert.ErrorIs(t, te, underlying)
}
