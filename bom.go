// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// StripBOM strips a leading UTF-8, UTF-16LE or UTF-16BE byte-order mark from
// src, transcoding UTF-16 input to UTF-8 in the process, and returns
// ordinary UTF-8 bytes ready for Parse. Input with no recognizable BOM is
// returned unchanged, on the assumption it is already UTF-8. Config files
// edited on Windows are the common source of a BOM; relocfg's own Parse has
// no notion of byte order, so this is always a pre-pass, never automatic.
func StripBOM(src []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(src, []byte{0xEF, 0xBB, 0xBF}):
		return src[3:], nil
	case bytes.HasPrefix(src, []byte{0xFF, 0xFE}):
		return decodeUTF16(src, unicode.LittleEndian)
	case bytes.HasPrefix(src, []byte{0xFE, 0xFF}):
		return decodeUTF16(src, unicode.BigEndian)
	default:
		return src, nil
	}
}

func decodeUTF16(src []byte, endian unicode.Endianness) ([]byte, error) {
	dec := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(src)
	if err != nil {
		return nil, err
	}
	return out, nil
}
