// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import "encoding/binary"

// blockHeaderSize is the fixed header at the front of every array/object
// block: {allocated_capacity, used_count, next_block_loc}, three
// little-endian uint32 fields.
const blockHeaderSize = 12

// defaultBlockCapacity is used by AddArray/AddObject when the caller passes
// a non-positive capacity, per spec.md §4.2 "Concrete policies".
const defaultBlockCapacity = 16

const (
	arrayElemSize  = 4 // one Loc per array slot.
	objectElemSize = 8 // {key Loc, value Loc} per object slot.
)

func (d *ConfigData) blockCapacity(off uint32) uint32 {
	return binary.LittleEndian.Uint32(d.valueRegion()[off : off+4])
}
func (d *ConfigData) blockUsed(off uint32) uint32 {
	return binary.LittleEndian.Uint32(d.valueRegion()[off+4 : off+8])
}
func (d *ConfigData) setBlockUsed(off, v uint32) {
	binary.LittleEndian.PutUint32(d.valueRegion()[off+4:off+8], v)
}
func (d *ConfigData) blockNext(off uint32) uint32 {
	return binary.LittleEndian.Uint32(d.valueRegion()[off+8 : off+12])
}
func (d *ConfigData) setBlockNext(off, v uint32) {
	binary.LittleEndian.PutUint32(d.valueRegion()[off+8:off+12], v)
}

// allocBlock reserves a new block of the given capacity and element size,
// writes its header, and returns its offset.
func (d *ConfigData) allocBlock(capacity, elemSize uint32) uint32 {
	size := blockHeaderSize + capacity*elemSize
	off := d.reserve(int(size), 4)
	vr := d.valueRegion()
	binary.LittleEndian.PutUint32(vr[off:off+4], capacity)
	binary.LittleEndian.PutUint32(vr[off+4:off+8], 0)
	binary.LittleEndian.PutUint32(vr[off+8:off+12], 0)
	return off
}

// --- arrays ---

// AddArray appends a new ARRAY value with the given initial block capacity
// (16 if capacity <= 0) and returns its Loc.
func (d *ConfigData) AddArray(capacity int) Loc {
	if capacity <= 0 {
		capacity = defaultBlockCapacity
	}
	return newLoc(KindArray, d.allocBlock(uint32(capacity), arrayElemSize))
}

func (d *ConfigData) arrayItemOffset(blockOff, idx uint32) uint32 {
	return blockOff + blockHeaderSize + idx*arrayElemSize
}

func (d *ConfigData) readArrayItem(blockOff, idx uint32) Loc {
	off := d.arrayItemOffset(blockOff, idx)
	return Loc(binary.LittleEndian.Uint32(d.valueRegion()[off : off+4]))
}

func (d *ConfigData) writeArrayItem(blockOff, idx uint32, v Loc) {
	off := d.arrayItemOffset(blockOff, idx)
	binary.LittleEndian.PutUint32(d.valueRegion()[off:off+4], uint32(v))
}

// Push appends item to the last block of arr's chain, linking a new block
// of twice the prior capacity when the last block is full. Existing
// entries are never relocated, so outstanding Locs into earlier blocks stay
// valid. Returns arr unchanged (array Locs always address the first block).
func (d *ConfigData) Push(arr Loc, item Loc) Loc {
	blockOff := arr.Offset()
	for {
		capacity := d.blockCapacity(blockOff)
		used := d.blockUsed(blockOff)
		if used < capacity {
			d.writeArrayItem(blockOff, used, item)
			d.setBlockUsed(blockOff, used+1)
			return arr
		}
		next := d.blockNext(blockOff)
		if next == 0 {
			newOff := d.allocBlock(capacity*2, arrayElemSize)
			d.setBlockNext(blockOff, newOff)
			next = newOff
		}
		blockOff = next
	}
}

// ArraySize walks arr's block chain and sums used_count across every block.
func (d *ConfigData) ArraySize(arr Loc) int {
	n := 0
	off := arr.Offset()
	for {
		n += int(d.blockUsed(off))
		next := d.blockNext(off)
		if next == 0 {
			return n
		}
		off = next
	}
}

// ArrayItem walks arr's block chain until i falls within a block's used
// range and returns that entry, or Null if i is out of range.
func (d *ConfigData) ArrayItem(arr Loc, i int) Loc {
	if i < 0 {
		return Null
	}
	remaining := uint32(i)
	off := arr.Offset()
	for {
		used := d.blockUsed(off)
		if remaining < used {
			return d.readArrayItem(off, remaining)
		}
		remaining -= used
		next := d.blockNext(off)
		if next == 0 {
			return Null
		}
		off = next
	}
}

// --- objects ---

// AddObject appends a new OBJECT value with the given initial block
// capacity (16 if capacity <= 0) and returns its Loc.
func (d *ConfigData) AddObject(capacity int) Loc {
	if capacity <= 0 {
		capacity = defaultBlockCapacity
	}
	return newLoc(KindObject, d.allocBlock(uint32(capacity), objectElemSize))
}

func (d *ConfigData) objectEntryOffset(blockOff, idx uint32) uint32 {
	return blockOff + blockHeaderSize + idx*objectElemSize
}

func (d *ConfigData) readObjectKey(blockOff, idx uint32) Loc {
	off := d.objectEntryOffset(blockOff, idx)
	return Loc(binary.LittleEndian.Uint32(d.valueRegion()[off : off+4]))
}

func (d *ConfigData) readObjectValue(blockOff, idx uint32) Loc {
	off := d.objectEntryOffset(blockOff, idx)
	return Loc(binary.LittleEndian.Uint32(d.valueRegion()[off+4 : off+8]))
}

func (d *ConfigData) writeObjectEntry(blockOff, idx uint32, key, val Loc) {
	off := d.objectEntryOffset(blockOff, idx)
	vr := d.valueRegion()
	binary.LittleEndian.PutUint32(vr[off:off+4], uint32(key))
	binary.LittleEndian.PutUint32(vr[off+4:off+8], uint32(val))
}

func (d *ConfigData) setObjectValue(blockOff, idx uint32, val Loc) {
	off := d.objectEntryOffset(blockOff, idx)
	binary.LittleEndian.PutUint32(d.valueRegion()[off+4:off+8], uint32(val))
}

// ObjectSize walks obj's block chain and sums used_count across every block.
func (d *ConfigData) ObjectSize(obj Loc) int {
	n := 0
	off := obj.Offset()
	for {
		n += int(d.blockUsed(off))
		next := d.blockNext(off)
		if next == 0 {
			return n
		}
		off = next
	}
}

// ObjectKeyLoc returns the i'th key as a STRING-typed Loc.
func (d *ConfigData) ObjectKeyLoc(obj Loc, i int) Loc {
	if i < 0 {
		return Null
	}
	remaining := uint32(i)
	off := obj.Offset()
	for {
		used := d.blockUsed(off)
		if remaining < used {
			return d.readObjectKey(off, remaining)
		}
		remaining -= used
		next := d.blockNext(off)
		if next == 0 {
			return Null
		}
		off = next
	}
}

// ObjectKey returns the i'th key's string content.
func (d *ConfigData) ObjectKey(obj Loc, i int) string {
	return d.ToStringValue(d.ObjectKeyLoc(obj, i))
}

// ObjectValue returns the i'th value.
func (d *ConfigData) ObjectValue(obj Loc, i int) Loc {
	if i < 0 {
		return Null
	}
	remaining := uint32(i)
	off := obj.Offset()
	for {
		used := d.blockUsed(off)
		if remaining < used {
			return d.readObjectValue(off, remaining)
		}
		remaining -= used
		next := d.blockNext(off)
		if next == 0 {
			return Null
		}
		off = next
	}
}

// SetLoc walks obj's block chain: if any existing entry has key equal to
// keyLoc it overwrites that entry's value in place; otherwise it appends a
// new entry, chaining a doubled-capacity block as needed. Returns obj
// unchanged.
func (d *ConfigData) SetLoc(obj Loc, keyLoc Loc, value Loc) Loc {
	off := obj.Offset()
	for {
		used := d.blockUsed(off)
		for i := uint32(0); i < used; i++ {
			if d.readObjectKey(off, i) == keyLoc {
				d.setObjectValue(off, i, value)
				return obj
			}
		}
		capacity := d.blockCapacity(off)
		if used < capacity {
			d.writeObjectEntry(off, used, keyLoc, value)
			d.setBlockUsed(off, used+1)
			return obj
		}
		next := d.blockNext(off)
		if next == 0 {
			newOff := d.allocBlock(capacity*2, objectElemSize)
			d.setBlockNext(off, newOff)
			next = newOff
		}
		off = next
	}
}

// Set interns keyCstr and calls SetLoc.
func (d *ConfigData) Set(obj Loc, keyCstr string, value Loc) Loc {
	return d.SetLoc(obj, newLoc(KindString, d.intern(keyCstr)), value)
}

// ObjectLookup interns key via ToSymbolConst (never inserting) and linearly
// scans obj's chain for an equal key Loc. If key was never interned in this
// ConfigData's StringTable at all, the lookup cannot match and returns Null
// immediately without walking the chain.
func (d *ConfigData) ObjectLookup(obj Loc, key string) Loc {
	sym, ok := d.internConst(key)
	if !ok {
		return Null
	}
	keyLoc := newLoc(KindString, sym)
	off := obj.Offset()
	for {
		used := d.blockUsed(off)
		for i := uint32(0); i < used; i++ {
			if d.readObjectKey(off, i) == keyLoc {
				return d.readObjectValue(off, i)
			}
		}
		next := d.blockNext(off)
		if next == 0 {
			return Null
		}
		off = next
	}
}
