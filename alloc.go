// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

// Allocator grows (or replaces) a ConfigData's backing buffer. It is called
// with the current buffer and the total size the caller needs and must
// return a buffer of at least newSize bytes whose first len(old) bytes are
// old's bytes (copy semantics), or a freshly zeroed buffer when old is nil.
//
// This is the Go-native reading of the spec's
// alloc(ud, old_ptr, old_size, new_size, file, line) contract: Go's
// garbage collector removes the need for a free call (old contract's
// new_size == 0 case) and the userdata parameter is unnecessary because a
// Go closure already captures whatever state a caller would otherwise thread
// through ud. The allocator contract promises success; relocfg never checks
// for a nil return and callers that cannot satisfy a request should panic,
// exactly as the spec's allocator contract assumes success.
type Allocator func(old []byte, newSize int) []byte

// DefaultAllocator grows buffers with make+copy, relying on the Go runtime
// heap. It is used whenever a caller does not supply its own Allocator.
func DefaultAllocator(old []byte, newSize int) []byte {
	buf := make([]byte, newSize)
	copy(buf, old)
	return buf
}
