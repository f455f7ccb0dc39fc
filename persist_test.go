// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadFileRoundTrip(t *testing.T) {
	d := mustMake(t)
	if err := Parse([]byte(`{"a":[1,2,3],"b":"hi"}`), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.rcf")
	if err := Save(d, path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	mf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	defer mf.Close()

	root := mf.Data.Root()
	if mf.Data.Type(root) != KindObject {
		t.Fatalf("Type(Root()) = %v, want KindObject", mf.Data.Type(root))
	}
	arr := mf.Data.ObjectLookup(root, "a")
	if got := mf.Data.ArraySize(arr); got != 3 {
		t.Errorf("ArraySize(a) = %d, want 3", got)
	}
	if got := mf.Data.ToStringValue(mf.Data.ObjectLookup(root, "b")); got != "hi" {
		t.Errorf("ObjectLookup(b) = %q, want hi", got)
	}
}

func TestLoadFileRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.rcf")
	if err := os.WriteFile(path, make([]byte, headerSize), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if _, err := LoadFile(path); err != ErrBadMagic {
		t.Errorf("LoadFile(bad magic) error = %v, want ErrBadMagic", err)
	}
}
