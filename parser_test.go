// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"math"
	"strings"
	"testing"
)

func mustMake(t *testing.T) *ConfigData {
	t.Helper()
	d, err := Make(nil, 0, 0)
	if err != nil {
		t.Fatalf("Make() failed: %v", err)
	}
	return d
}

func TestParseNull(t *testing.T) {
	d := mustMake(t)
	if err := Parse([]byte("null"), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse(null) failed: %v", err)
	}
	if d.Type(d.Root()) != KindNull {
		t.Errorf("Type(Root()) = %v, want KindNull", d.Type(d.Root()))
	}
}

func TestParseTypoLiteralReportsLineAndChar(t *testing.T) {
	d := mustMake(t)
	err := Parse([]byte("\n\nfulse"), d, ParseOptions{})
	if err == nil {
		t.Fatal("Parse(\\n\\nfulse) succeeded, want error")
	}
	if got, want := err.Error(), "3: Expected `a`, saw `u`"; got != want {
		t.Errorf("Parse(\\n\\nfulse) error = %q, want %q", got, want)
	}
}

func TestParseNegativeExponentNumber(t *testing.T) {
	d := mustMake(t)
	if err := Parse([]byte("-3.14e-1"), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse(-3.14e-1) failed: %v", err)
	}
	got := d.ToNumber(d.Root())
	if math.Abs(got-(-0.314)) > 1e-7 {
		t.Errorf("Parse(-3.14e-1) = %v, want -0.314 (within 1e-7)", got)
	}
}

func TestParseArrayWithLooseWhitespace(t *testing.T) {
	d := mustMake(t)
	if err := Parse([]byte("[1,2, 3 ,4 , 5 ]"), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse(array) failed: %v", err)
	}
	root := d.Root()
	if d.Type(root) != KindArray {
		t.Fatalf("Type(Root()) = %v, want KindArray", d.Type(root))
	}
	if got := d.ArraySize(root); got != 5 {
		t.Fatalf("ArraySize() = %d, want 5", got)
	}
	for i := 0; i < 5; i++ {
		if got := d.ToNumber(d.ArrayItem(root, i)); got != float64(i+1) {
			t.Errorf("ArrayItem(%d) = %v, want %v", i, got, i+1)
		}
	}
}

func TestParseObjectWithTwoMembers(t *testing.T) {
	d := mustMake(t)
	src := `{"name" : "Niklas", "age" : 41}`
	if err := Parse([]byte(src), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse(object) failed: %v", err)
	}
	root := d.Root()
	if got := d.ToStringValue(d.ObjectLookup(root, "name")); got != "Niklas" {
		t.Errorf("ObjectLookup(name) = %q, want Niklas", got)
	}
	if got := d.ToNumber(d.ObjectLookup(root, "age")); got != 41 {
		t.Errorf("ObjectLookup(age) = %v, want 41", got)
	}
	if got := d.ObjectKey(root, 1); got != "age" {
		t.Errorf("ObjectKey(obj, 1) = %q, want age", got)
	}
}

func TestParseUnicodeEscapesEncodeBMPCodepoints(t *testing.T) {
	d := mustMake(t)
	src := "\"\\u00e4\\u6176\""
	if err := Parse([]byte(src), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse(unicode escapes) failed: %v", err)
	}
	got := d.ToStringValue(d.Root())
	want := string([]byte{0xC3, 0xA4}) + string([]byte{0xE6, 0x85, 0xB6})
	if got != want {
		t.Errorf("Parse(unicode escapes) = %q (% X), want %q (% X)", got, []byte(got), want, []byte(want))
	}
}

func TestParseDialectCombination(t *testing.T) {
	d := mustMake(t)
	opts := ParseOptions{
		UnquotedKeys:       true,
		CComments:          true,
		ImplicitRootObject: true,
		OptionalCommas:     true,
		EqualsForColon:     true,
	}
	if err := Parse([]byte("// c\na=10 b=20"), d, opts); err != nil {
		t.Fatalf("Parse(dialect combo) failed: %v", err)
	}
	root := d.Root()
	if d.Type(root) != KindObject {
		t.Fatalf("Type(Root()) = %v, want KindObject", d.Type(root))
	}
	if got := d.ToNumber(d.ObjectLookup(root, "a")); got != 10 {
		t.Errorf("ObjectLookup(a) = %v, want 10", got)
	}
	if got := d.ToNumber(d.ObjectLookup(root, "b")); got != 20 {
		t.Errorf("ObjectLookup(b) = %v, want 20", got)
	}
}

func TestParsePythonMultilineString(t *testing.T) {
	d := mustMake(t)
	opts := ParseOptions{PythonMultilineStrings: true}
	src := `""" Bla " Bla """`
	if err := Parse([]byte(src), d, opts); err != nil {
		t.Fatalf("Parse(multiline string) failed: %v", err)
	}
	if got, want := d.ToStringValue(d.Root()), ` Bla " Bla `; got != want {
		t.Errorf("Parse(multiline string) = %q, want %q", got, want)
	}
}

func TestParseImplicitRootObjectEmptyInput(t *testing.T) {
	d := mustMake(t)
	if err := Parse([]byte(""), d, ParseOptions{ImplicitRootObject: true}); err != nil {
		t.Fatalf("Parse(empty, implicit root) failed: %v", err)
	}
	root := d.Root()
	if d.Type(root) != KindObject {
		t.Fatalf("Type(Root()) = %v, want KindObject", d.Type(root))
	}
	if got := d.ObjectSize(root); got != 0 {
		t.Errorf("ObjectSize(empty implicit root) = %d, want 0", got)
	}
}

func TestParseWhitespaceOnlyStrictIsAnError(t *testing.T) {
	d := mustMake(t)
	err := Parse([]byte("   \n  "), d, ParseOptions{})
	if err == nil {
		t.Fatal("Parse(whitespace only) succeeded, want error")
	}
	if d.Type(d.Root()) != KindObject || d.ObjectSize(d.Root()) != 0 {
		t.Errorf("Parse error did not leave root as an empty object")
	}
}

func TestParseIllegalNumberForms(t *testing.T) {
	tests := []string{"--1", ".1", "-.1", "00", "0e", "0.", "0.e1", "0.0ee"}
	for _, src := range tests {
		d := mustMake(t)
		err := Parse([]byte(src), d, ParseOptions{})
		if err == nil {
			t.Errorf("Parse(%q) succeeded, want Bad number format error", src)
			continue
		}
		pe, ok := err.(*ParseError)
		if !ok || pe.Message != "Bad number format" {
			t.Errorf("Parse(%q) error = %v, want \"Bad number format\"", src, err)
		}
	}
}

func TestParseRejectsControlCharacterByDefault(t *testing.T) {
	d := mustMake(t)
	src := "\"a\x01b\""
	if err := Parse([]byte(src), d, ParseOptions{}); err == nil {
		t.Fatal("Parse(raw control char) succeeded, want error")
	}
}

func TestParseAllowControlCharacters(t *testing.T) {
	d := mustMake(t)
	src := "\"a\x01b\""
	if err := Parse([]byte(src), d, ParseOptions{AllowControlCharacters: true}); err != nil {
		t.Fatalf("Parse(raw control char, allowed) failed: %v", err)
	}
	if got := d.ToStringValue(d.Root()); got != "a\x01b" {
		t.Errorf("Parse(raw control char, allowed) = %q, want %q", got, "a\x01b")
	}
}

func TestParseSkipEscapeSequences(t *testing.T) {
	d := mustMake(t)
	src := `"a\nb"`
	if err := Parse([]byte(src), d, ParseOptions{SkipEscapeSequences: true}); err != nil {
		t.Fatalf("Parse(skip escapes) failed: %v", err)
	}
	if got, want := d.ToStringValue(d.Root()), `a\nb`; got != want {
		t.Errorf("Parse(skip escapes) = %q, want %q (literal backslash)", got, want)
	}
}

func TestParseLongStringRoundTrips(t *testing.T) {
	d := mustMake(t)
	want := strings.Repeat("x", 200)
	src := `"` + want + `"`
	if err := Parse([]byte(src), d, ParseOptions{}); err != nil {
		t.Fatalf("Parse(200-byte string) failed: %v", err)
	}
	if got := d.ToStringValue(d.Root()); got != want {
		t.Errorf("Parse(200-byte string) length = %d, want %d", len(got), len(want))
	}
}

func TestParseTrailingGarbageIsAnError(t *testing.T) {
	d := mustMake(t)
	if err := Parse([]byte("1 2"), d, ParseOptions{}); err == nil {
		t.Fatal("Parse(\"1 2\") succeeded, want trailing-garbage error")
	}
}
