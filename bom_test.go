// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"bytes"
	"testing"
)

func TestStripBOMUTF8(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":1}`)...)
	got, err := StripBOM(src)
	if err != nil {
		t.Fatalf("StripBOM() failed: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"a":1}`)) {
		t.Errorf("StripBOM(UTF-8 BOM) = %q, want %q", got, `{"a":1}`)
	}
}

func TestStripBOMNoneIsNoop(t *testing.T) {
	src := []byte(`{"a":1}`)
	got, err := StripBOM(src)
	if err != nil {
		t.Fatalf("StripBOM() failed: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Errorf("StripBOM(no BOM) = %q, want unchanged %q", got, src)
	}
}

func TestStripBOMUTF16LE(t *testing.T) {
	// "1" encoded as UTF-16LE, BOM-prefixed: FF FE 31 00
	src := []byte{0xFF, 0xFE, '1', 0x00}
	got, err := StripBOM(src)
	if err != nil {
		t.Fatalf("StripBOM() failed: %v", err)
	}
	if !bytes.Equal(got, []byte("1")) {
		t.Errorf("StripBOM(UTF-16LE BOM) = %q, want %q", got, "1")
	}
}
