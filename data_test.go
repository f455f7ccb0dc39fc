// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import "testing"

func TestConfigDataNumberRoundTrip(t *testing.T) {
	tests := []float64{0, 1, -1, 3.14159, -2.5e10, 1e-300}

	d, err := Make(nil, 0, 0)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	for _, v := range tests {
		l := d.AddNumber(v)
		if d.Type(l) != KindNumber {
			t.Errorf("Type(AddNumber(%v)) = %v, want KindNumber", v, d.Type(l))
		}
		if got := d.ToNumber(l); got != v {
			t.Errorf("ToNumber(AddNumber(%v)) = %v, want %v", v, got, v)
		}
	}
}

func TestConfigDataStringInterning(t *testing.T) {
	d, err := Make(nil, 0, 0)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	a := d.AddString("shared")
	b := d.AddString("shared")
	if a != b {
		t.Errorf("AddString(shared) twice produced distinct Locs: %d != %d", a, b)
	}
	if got := d.ToStringValue(a); got != "shared" {
		t.Errorf("ToStringValue = %q, want shared", got)
	}
}

func TestConfigDataGrowsValueRegion(t *testing.T) {
	d, err := Make(nil, 64, 4096)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	var locs []Loc
	for i := 0; i < 200; i++ {
		locs = append(locs, d.AddNumber(float64(i)))
	}
	for i, l := range locs {
		if got := d.ToNumber(l); got != float64(i) {
			t.Errorf("after growth, ToNumber(locs[%d]) = %v, want %v", i, got, i)
		}
	}
	if len(d.Anomalies()) == 0 {
		t.Errorf("expected at least one growth anomaly to be recorded")
	}
}

func TestConfigDataGrowsStringRegion(t *testing.T) {
	d, err := Make(nil, 4096, 128)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	var locs []Loc
	for i := 0; i < 200; i++ {
		locs = append(locs, d.AddString(string(rune('a'+i%26))+string(rune('0'+i%10))))
	}
	for i, l := range locs {
		want := string(rune('a'+i%26)) + string(rune('0'+i%10))
		if got := d.ToStringValue(l); got != want {
			t.Errorf("after growth, ToStringValue(locs[%d]) = %q, want %q", i, got, want)
		}
	}
}

func TestConfigDataBytesRoundTrip(t *testing.T) {
	d, err := Make(nil, 0, 0)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	obj := d.AddObject(0)
	d.Set(obj, "key", d.AddNumber(42))
	d.SetRoot(obj)

	raw := append([]byte(nil), d.Bytes()...)
	reopened, err := Open(raw, nil)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	root := reopened.Root()
	if reopened.Type(root) != KindObject {
		t.Fatalf("Type(Root()) = %v, want KindObject", reopened.Type(root))
	}
	v := reopened.ObjectLookup(root, "key")
	if reopened.Type(v) != KindNumber || reopened.ToNumber(v) != 42 {
		t.Errorf("ObjectLookup(key) = %v (%v), want NUMBER 42", v, reopened.Type(v))
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	if _, err := Open(make([]byte, headerSize), nil); err != ErrBadMagic {
		t.Errorf("Open(zeroed buffer) error = %v, want ErrBadMagic", err)
	}
}

func TestOpenRejectsTruncatedBuffer(t *testing.T) {
	if _, err := Open(make([]byte, headerSize-1), nil); err != ErrTruncatedBuffer {
		t.Errorf("Open(short buffer) error = %v, want ErrTruncatedBuffer", err)
	}
}
