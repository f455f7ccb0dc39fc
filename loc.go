// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

// Kind is the closed set of value tags a Loc can carry.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindFalse
	KindTrue
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// locKindBits is the width of the tag field packed into the low bits of a Loc.
const locKindBits = 3

// locKindMask isolates the tag field.
const locKindMask = 1<<locKindBits - 1

// maxOffset is the largest offset a Loc can hold with locKindBits reserved
// for the tag: 2^29-1, an addressable range of 2^29 bytes, per spec.md's §9
// design note.
const maxOffset = 1<<(32-locKindBits) - 1

// Loc is a 32-bit opaque handle packing a Kind in its low locKindBits bits
// and a type-dependent offset in the remaining high bits. For NULL/FALSE/TRUE
// the offset is always zero. For NUMBER the offset addresses an 8-byte
// float64 inside a ConfigData's value region. For STRING the offset is a
// StringTable symbol id, not a byte offset into the ConfigData buffer. For
// ARRAY/OBJECT the offset addresses a block header inside the value region.
//
// A Loc remains valid for the lifetime of the ConfigData it was produced
// from, across any number of intervening reallocations: growth relocates the
// underlying buffer but never changes what a previously issued Loc's bits
// mean relative to the new buffer.
type Loc uint32

// Null, False and True are fixed singleton locations; they do not depend on
// any particular ConfigData instance. Null is the zero value of Loc, so a
// zero-valued Loc (e.g. an unset struct field) already reads as null.
const (
	Null  Loc = Loc(KindNull)
	False Loc = Loc(KindFalse)
	True  Loc = Loc(KindTrue)
)

func newLoc(kind Kind, offset uint32) Loc {
	if offset > maxOffset {
		panic("relocfg: offset exceeds addressable range")
	}
	return Loc(uint32(kind) | offset<<locKindBits)
}

// Kind returns the tag of the location.
func (l Loc) Kind() Kind {
	return Kind(uint32(l) & locKindMask)
}

// Offset returns the type-dependent payload of the location: a symbol id
// for STRING, a byte offset into the value region for NUMBER/ARRAY/OBJECT,
// and zero for NULL/FALSE/TRUE.
func (l Loc) Offset() uint32 {
	return uint32(l) >> locKindBits
}

// IsNull reports whether l is the Null singleton.
func (l Loc) IsNull() bool {
	return l == Null
}
