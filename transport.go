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
	"encoding/binary"
	"io"

	"github.com/valyala/bytebufferpool"
)

// DefaultMaxFrameSize is the conventional upper bound on a single framed
// VICI packet (§4.2): 512 KiB.
const DefaultMaxFrameSize = 512 * 1024

// readFrame reads one length-prefixed frame from r, enforcing cap as the
// maximum accepted payload length. A length of 0, or a length exceeding
// cap, aborts before any payload bytes are read.
func readFrame(r io.Reader, cap uint32) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, &TransportError{Kind: ErrEof}
		}
		return nil, newTransportIoErr(err)
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, &TransportError{Kind: ErrEof}
	}
	if n > cap {
		return nil, &TransportError{Kind: ErrOversizedFrame, Len: n, Cap: cap}
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, &TransportError{Kind: ErrEof}
		}
		return nil, newTransportIoErr(err)
	}
	return payload, nil
}

// writeFrame writes payload to w prefixed by its 4-byte big-endian
// length. Prefix and payload are assembled into one buffer and written
// in a loop that retries short writes until the whole frame is written
// or w returns an error. No lock is taken: concurrent writers to the
// same w can interleave their frames.
//
// The frame is assembled in a pooled buffer, grounded on this module's
// lineage's use of bytebufferpool to avoid a per-call allocation for
// short-lived scratch buffers (see internal/fingerprint).
func writeFrame(w io.Writer, payload []byte) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)

	b := buf.Bytes()
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return newTransportIoErr(err)
		}
		b = b[n:]
	}
	return nil
}
