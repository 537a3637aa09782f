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

// Package fingerprint computes short, stable digests of encoded message
// bytes for use in debug-level log lines, so large payloads never need to
// be dumped verbatim just to correlate a request with its response.
package fingerprint

import (
	"github.com/cespare/xxhash/v2"
	"github.com/valyala/bytebufferpool"
)

// Of returns the xxhash digest of parts, each followed by a 0xFF
// separator byte, so moving a boundary between parts changes the digest
// as long as the parts themselves contain no 0xFF byte. Parts are opaque
// bytes and may contain 0xFF, in which case two different splits of the
// same bytes can produce the same digest.
func Of(parts ...[]byte) uint64 {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, p := range parts {
		buf.Write(p)
		buf.Write(sep)
	}
	return xxhash.Sum64(buf.Bytes())
}

var sep = []byte{'\xff'}
