// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"encoding/binary"
	"errors"
)

// strtabHeaderSize is the fixed-size header at the front of a StringTable
// region: {total_bytes, count, slot_width_is_16 (+3 pad), num_slots,
// used_string_bytes}, all little-endian uint32 except the single flag byte.
const strtabHeaderSize = 20

// strtabSlotWidthBoundary is the total region size at or below which the
// StringTable uses 16-bit slots, per spec.md §4.1.
const strtabSlotWidthBoundary = 1 << 16

// ErrTableFull is returned by StringTable.ToSymbol when either the slot
// array or the string arena would need to exceed capacity to complete an
// insert, or when insertion would push a new symbol past the 16-bit bound
// while the table is in 16-bit mode. Callers are expected to grow the
// region and retry; relocfg's own ConfigData does this transparently.
var ErrTableFull = errors.New("relocfg: string table full")

// SymEmpty is the reserved symbol for the empty string. It is never written
// into a slot: slot value 0 already means "empty slot", which is safe
// precisely because the empty string never needs to be found by probing.
const SymEmpty uint32 = 0

// StringTable is a thin, stateless view over a byte region: an append-only
// string intern pool with open-addressed hashing. A symbol id is the byte
// offset of the string within the region's string arena, so ToString is a
// slice operation with no indirection table.
type StringTable struct {
	region []byte
}

// NewStringTable wraps region as a StringTable view. The region is expected
// to have already been laid out by Init, or to be a region sliced live out
// of a ConfigData's buffer by the ConfigData itself.
func NewStringTable(region []byte) *StringTable {
	return &StringTable{region: region}
}

// Region returns the backing bytes of the table, header included.
func (t *StringTable) Region() []byte { return t.region }

func (t *StringTable) totalBytes() uint32      { return binary.LittleEndian.Uint32(t.region[0:4]) }
func (t *StringTable) setTotalBytes(v uint32)  { binary.LittleEndian.PutUint32(t.region[0:4], v) }
func (t *StringTable) count() uint32           { return binary.LittleEndian.Uint32(t.region[4:8]) }
func (t *StringTable) setCount(v uint32)       { binary.LittleEndian.PutUint32(t.region[4:8], v) }
func (t *StringTable) slotWidthIs16() bool     { return t.region[8] != 0 }
func (t *StringTable) setSlotWidthIs16(b bool) {
	if b {
		t.region[8] = 1
	} else {
		t.region[8] = 0
	}
}
func (t *StringTable) numSlots() uint32          { return binary.LittleEndian.Uint32(t.region[12:16]) }
func (t *StringTable) setNumSlots(v uint32)      { binary.LittleEndian.PutUint32(t.region[12:16], v) }
func (t *StringTable) usedStringBytes() uint32   { return binary.LittleEndian.Uint32(t.region[16:20]) }
func (t *StringTable) setUsedStringBytes(v uint32) {
	binary.LittleEndian.PutUint32(t.region[16:20], v)
}

func (t *StringTable) slotWidth() int {
	if t.slotWidthIs16() {
		return 2
	}
	return 4
}

func (t *StringTable) slotArrayOffset() uint32 { return strtabHeaderSize }

func (t *StringTable) arenaOffset() uint32 {
	return t.slotArrayOffset() + t.numSlots()*uint32(t.slotWidth())
}

func (t *StringTable) slotArrayBytes() uint32 { return t.numSlots() * uint32(t.slotWidth()) }

// arenaCapacity is the number of bytes available to the string arena given
// the region's current total size and slot array size.
func (t *StringTable) arenaCapacity() uint32 {
	return uint32(len(t.region)) - t.arenaOffset()
}

func (t *StringTable) readSlot(i uint32) uint32 {
	off := t.slotArrayOffset() + i*uint32(t.slotWidth())
	if t.slotWidthIs16() {
		return uint32(binary.LittleEndian.Uint16(t.region[off : off+2]))
	}
	return binary.LittleEndian.Uint32(t.region[off : off+4])
}

func (t *StringTable) writeSlot(i uint32, sym uint32) {
	off := t.slotArrayOffset() + i*uint32(t.slotWidth())
	if t.slotWidthIs16() {
		binary.LittleEndian.PutUint16(t.region[off:off+2], uint16(sym))
		return
	}
	binary.LittleEndian.PutUint32(t.region[off:off+4], sym)
}

// hashString implements the xor-shift fold the spec attributes to the Lua
// 4.x string hash: h = h ^ ((h<<5) + (h>>2) + byte), walked once over every
// byte. Walking the string to hash it also yields its length for free.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h ^ ((h << 5) + (h >> 2) + uint32(s[i]))
	}
	return h
}

func nextPow2(n uint32) uint32 {
	if n < 1 {
		n = 1
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// minStrtabBytes is the smallest region size Init will lay out a table in:
// enough for the header, a minimal slot array, and the reserved empty
// string.
const minStrtabBytes = strtabHeaderSize + 8*4 + 1

// Init lays out an empty StringTable in region. bytes (len(region)) must be
// at least minStrtabBytes. avgStrlen estimates the typical interned string
// length and is used only to size the initial slot array relative to the
// arena capacity; it does not bound what can later be interned.
func (t *StringTable) Init(avgStrlen int) error {
	if len(t.region) < minStrtabBytes {
		return errors.New("relocfg: string table region too small")
	}
	if avgStrlen < 1 {
		avgStrlen = 8
	}
	total := uint32(len(t.region))
	slotWidthIs16 := total <= strtabSlotWidthBoundary

	w := uint32(4)
	if slotWidthIs16 {
		w = 2
	}
	remaining := total - strtabHeaderSize
	// Target load factor 2.0: numSlots >= 2*entries. Estimate entries from
	// how many (avgStrlen+1)-byte strings plus their 2-slot overhead fit in
	// the remaining bytes.
	estEntries := remaining / (uint32(avgStrlen) + 1 + 2*w)
	numSlots := nextPow2(estEntries * 2)
	if numSlots < 8 {
		numSlots = 8
	}
	for numSlots*w >= remaining && numSlots > 8 {
		numSlots /= 2
	}

	t.setTotalBytes(total)
	t.setCount(0)
	t.setSlotWidthIs16(slotWidthIs16)
	t.setNumSlots(numSlots)
	t.setUsedStringBytes(1) // the reserved empty string's NUL terminator

	// Zero the slot array.
	so := t.slotArrayOffset()
	for i := so; i < so+numSlots*w; i++ {
		t.region[i] = 0
	}
	// Reserved empty string at arena offset 0.
	t.region[t.arenaOffset()] = 0
	return nil
}

// stringAt reads the NUL-terminated string stored at arena byte offset sym.
func (t *StringTable) stringAt(sym uint32) string {
	start := t.arenaOffset() + sym
	end := start
	for t.region[end] != 0 {
		end++
	}
	return string(t.region[start:end])
}

// ToString returns the interned bytes for sym. Behavior is undefined if sym
// is not a symbol previously returned by ToSymbol/ToSymbolConst on this
// table (or its ancestors across growth).
func (t *StringTable) ToString(sym uint32) string {
	if sym == SymEmpty {
		return ""
	}
	return t.stringAt(sym)
}

// probe walks the open-addressed slot array for s, returning the slot index
// and, if an occupied slot holds s, its symbol and true.
func (t *StringTable) probe(s string) (slot uint32, sym uint32, found bool) {
	numSlots := t.numSlots()
	h := hashString(s)
	i := h % numSlots
	for {
		cur := t.readSlot(i)
		if cur == 0 {
			return i, 0, false
		}
		if t.stringAt(cur) == s {
			return i, cur, true
		}
		i = (i + 1) % numSlots
	}
}

// ToSymbolConst looks up s without inserting. ok is false if s has never
// been interned in this table.
func (t *StringTable) ToSymbolConst(s string) (sym uint32, ok bool) {
	if s == "" {
		return SymEmpty, true
	}
	_, sym, found := t.probe(s)
	return sym, found
}

// ToSymbol returns a symbol id for s, inserting it if absent. It returns
// ErrTableFull, without mutating any state, when the insert cannot be
// completed: the slot array has reached its load-factor limit, the arena
// lacks room for the new string, or (in 16-bit mode) the new string's
// offset would exceed the 16-bit addressable range. Callers are expected to
// grow the region and retry.
func (t *StringTable) ToSymbol(s string) (sym uint32, err error) {
	if s == "" {
		return SymEmpty, nil
	}
	slot, existing, found := t.probe(s)
	if found {
		return existing, nil
	}

	// Load-factor check: refuse to insert past the target 2.0 ratio.
	if (t.count()+1)*2 > t.numSlots() {
		return 0, ErrTableFull
	}

	newSym := t.usedStringBytes()
	newUsed := newSym + uint32(len(s)) + 1
	if newUsed > t.arenaCapacity() {
		return 0, ErrTableFull
	}
	if t.slotWidthIs16() && newSym > 0xFFFF {
		return 0, ErrTableFull
	}

	// All checks passed: commit. Order matters only in that nothing above
	// this point has mutated state, so a rejected insert never leaves
	// partial changes (spec.md §9 flags the source's check-after-commit
	// ordering as a bug; this fixes it).
	start := t.arenaOffset() + newSym
	copy(t.region[start:], s)
	t.region[start+uint32(len(s))] = 0
	t.setUsedStringBytes(newUsed)
	t.writeSlot(slot, newSym)
	t.setCount(t.count() + 1)
	return newSym, nil
}

// Stats reports basic occupancy for diagnostics and the relocfgdump stats
// subcommand.
type StringTableStats struct {
	TotalBytes      uint32
	Count           uint32
	NumSlots        uint32
	SlotWidthIs16   bool
	UsedStringBytes uint32
	LoadFactor      float64
}

// Stats returns a snapshot of the table's current occupancy.
func (t *StringTable) Stats() StringTableStats {
	n := t.numSlots()
	lf := 0.0
	if n > 0 {
		lf = float64(n) / float64(maxUint32(1, t.count()))
	}
	return StringTableStats{
		TotalBytes:      t.totalBytes(),
		Count:           t.count(),
		NumSlots:        n,
		SlotWidthIs16:   t.slotWidthIs16(),
		UsedStringBytes: t.usedStringBytes(),
		LoadFactor:      lf,
	}
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// Grow is called after the caller has already reallocated the region to a
// larger buffer, with the old region's bytes copied verbatim into the start
// of the new, larger one (so header/slots/arena are all still readable at
// their old relative offsets at the top of t.region). Grow updates header
// counts, chooses a new slot width if the buffer size crossed the 64 KiB
// boundary, relocates the string arena to its new position, and rebuilds
// the hash index by walking the arena and re-hashing each string.
func (t *StringTable) Grow(newBytes int) error {
	oldTotal := t.totalBytes()
	oldRegion := make([]byte, oldTotal)
	copy(oldRegion, t.region[:oldTotal])
	old := &StringTable{region: oldRegion}

	newTotal := uint32(newBytes)
	slotWidthIs16 := newTotal <= strtabSlotWidthBoundary
	w := uint32(4)
	if slotWidthIs16 {
		w = 2
	}

	count := old.count()
	// Size for count+1 entries so that ToSymbol's load-factor check passes
	// for the insert that is retried after an ErrTableFull.
	numSlots := nextPow2(maxUint32(8, (count+1)*2))
	for {
		arenaOff := strtabHeaderSize + numSlots*w
		if arenaOff+old.usedStringBytes() <= newTotal {
			break
		}
		if numSlots <= 8 {
			break
		}
		numSlots /= 2
	}

	t.setTotalBytes(newTotal)
	t.setCount(count)
	t.setSlotWidthIs16(slotWidthIs16)
	t.setNumSlots(numSlots)
	t.setUsedStringBytes(old.usedStringBytes())

	so := t.slotArrayOffset()
	for i := so; i < so+numSlots*w && i < uint32(len(t.region)); i++ {
		t.region[i] = 0
	}

	newArenaOff := t.arenaOffset()
	copy(t.region[newArenaOff:newArenaOff+old.usedStringBytes()], oldRegion[old.arenaOffset():old.arenaOffset()+old.usedStringBytes()])

	return t.rebuildIndex()
}

// Pack shrinks the slot count to the minimum that satisfies the load-factor
// target for the current entry count, moves the arena down to immediately
// follow the smaller slot array, rebuilds the index, updates total_bytes,
// and returns the new (tight) total size. The caller may then shrink the
// underlying buffer to that size.
func (t *StringTable) Pack() (int, error) {
	count := t.count()
	w := uint32(t.slotWidth())
	numSlots := nextPow2(maxUint32(8, count*2))
	used := t.usedStringBytes()

	oldArenaOff := t.arenaOffset()
	arena := make([]byte, used)
	copy(arena, t.region[oldArenaOff:oldArenaOff+used])

	newArenaOff := strtabHeaderSize + numSlots*w
	newTotal := newArenaOff + used
	if newTotal > uint32(len(t.region)) {
		return 0, errors.New("relocfg: pack would require growing the region")
	}

	so := t.slotArrayOffset()
	for i := so; i < so+numSlots*w; i++ {
		t.region[i] = 0
	}
	copy(t.region[newArenaOff:newArenaOff+used], arena)

	t.setNumSlots(numSlots)
	t.setTotalBytes(newTotal)
	t.setUsedStringBytes(used)

	if err := t.rebuildIndex(); err != nil {
		return 0, err
	}
	return int(newTotal), nil
}

// rebuildIndex walks the arena from its first non-reserved string and
// re-inserts every symbol into the (already zeroed) slot array.
func (t *StringTable) rebuildIndex() error {
	used := t.usedStringBytes()
	off := uint32(1) // skip the reserved empty string's NUL.
	numSlots := t.numSlots()
	for off < used {
		sym := off
		start := t.arenaOffset() + off
		end := start
		for t.region[end] != 0 {
			end++
		}
		s := string(t.region[start:end])
		off = end - t.arenaOffset() + 1

		h := hashString(s)
		i := h % numSlots
		for t.readSlot(i) != 0 {
			i = (i + 1) % numSlots
		}
		t.writeSlot(i, sym)
	}
	return nil
}
