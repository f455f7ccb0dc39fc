// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import "testing"

func TestArrayPushAndGrowChain(t *testing.T) {
	d, err := Make(nil, 256, 4096)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	arr := d.AddArray(2)
	var want []float64
	for i := 0; i < 50; i++ {
		want = append(want, float64(i))
		d.Push(arr, d.AddNumber(float64(i)))
	}
	if got := d.ArraySize(arr); got != len(want) {
		t.Fatalf("ArraySize() = %d, want %d", got, len(want))
	}
	for i, w := range want {
		item := d.ArrayItem(arr, i)
		if d.Type(item) != KindNumber || d.ToNumber(item) != w {
			t.Errorf("ArrayItem(%d) = %v, want NUMBER %v", i, d.ToNumber(item), w)
		}
	}
}

func TestArrayItemOutOfRange(t *testing.T) {
	d, _ := Make(nil, 0, 0)
	arr := d.AddArray(0)
	d.Push(arr, d.AddNumber(1))
	if got := d.ArrayItem(arr, 5); got != Null {
		t.Errorf("ArrayItem(out of range) = %v, want Null", got)
	}
	if got := d.ArrayItem(arr, -1); got != Null {
		t.Errorf("ArrayItem(-1) = %v, want Null", got)
	}
}

func TestObjectSetAndLookup(t *testing.T) {
	d, err := Make(nil, 256, 4096)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	obj := d.AddObject(2)
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i, k := range keys {
		d.Set(obj, k, d.AddNumber(float64(i)))
	}
	if got := d.ObjectSize(obj); got != len(keys) {
		t.Fatalf("ObjectSize() = %d, want %d", got, len(keys))
	}
	for i, k := range keys {
		v := d.ObjectLookup(obj, k)
		if d.Type(v) != KindNumber || d.ToNumber(v) != float64(i) {
			t.Errorf("ObjectLookup(%q) = %v, want NUMBER %d", k, d.ToNumber(v), i)
		}
	}
}

func TestObjectSetOverwritesExistingKey(t *testing.T) {
	d, _ := Make(nil, 0, 0)
	obj := d.AddObject(0)
	d.Set(obj, "key", d.AddNumber(1))
	d.Set(obj, "key", d.AddNumber(2))

	if got := d.ObjectSize(obj); got != 1 {
		t.Fatalf("ObjectSize() = %d, want 1 (overwrite, not append)", got)
	}
	v := d.ObjectLookup(obj, "key")
	if d.ToNumber(v) != 2 {
		t.Errorf("ObjectLookup(key) = %v, want 2", d.ToNumber(v))
	}
}

func TestObjectLookupMissingKey(t *testing.T) {
	d, _ := Make(nil, 0, 0)
	obj := d.AddObject(0)
	d.Set(obj, "present", d.AddNumber(1))
	if got := d.ObjectLookup(obj, "absent"); got != Null {
		t.Errorf("ObjectLookup(absent) = %v, want Null", got)
	}
}

func TestObjectKeyAndKeyLoc(t *testing.T) {
	d, _ := Make(nil, 0, 0)
	obj := d.AddObject(0)
	d.Set(obj, "only", d.AddNumber(7))
	if got := d.ObjectKey(obj, 0); got != "only" {
		t.Errorf("ObjectKey(0) = %q, want only", got)
	}
	if d.Type(d.ObjectKeyLoc(obj, 0)) != KindString {
		t.Errorf("Type(ObjectKeyLoc(0)) = %v, want KindString", d.Type(d.ObjectKeyLoc(obj, 0)))
	}
}
