// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-kratos/kratos/v2/log"
)

// headerSize is the fixed ConfigData header: {magic, total_bytes,
// value_region_bytes, used_value_bytes, root_loc, reserved}, six
// little-endian uint32 fields, padded to a multiple of 8 so the value
// region that immediately follows starts 8-byte aligned (required for
// NUMBER storage).
const headerSize = 24

// configMagic tags a serialized ConfigData image so LoadFile can reject
// bytes that are not one of ours before trusting any offset inside them.
const configMagic = 0x31464352 // "RCF1", little endian.

// DefaultValueBytes and DefaultStringBytes are the region sizes Make uses
// when the caller passes 0, per spec.md §3 "Lifecycle".
const (
	DefaultValueBytes  = 8 * 1024
	DefaultStringBytes = 8 * 1024
)

// ErrBadMagic is returned by LoadFile/Open when a byte image does not begin
// with the ConfigData magic.
var ErrBadMagic = errors.New("relocfg: bad magic, not a ConfigData image")

// ErrTruncatedBuffer is returned when a ConfigData image's header claims a
// total size larger than the bytes actually available.
var ErrTruncatedBuffer = errors.New("relocfg: truncated ConfigData buffer")

// ConfigData is a tagged-union value store keyed by Locs that pack both a
// type tag and a byte offset, laid out as a single relocatable buffer: a
// header, a value region, and an embedded StringTable region. It exclusively
// owns its buffer; the only interface to the heap is the Allocator supplied
// to Make. ConfigData is not safe for concurrent mutation; concurrent
// readers of an otherwise-idle ConfigData are safe.
type ConfigData struct {
	buf    []byte
	alloc  Allocator
	logger *log.Helper

	// Anomalies records non-fatal, keep-going notices (growth of the value
	// or string region), mirroring the teacher's pe.File.Anomalies.
	anomalies []string
}

// Make allocates a combined value+string buffer through alloc, initializes
// the embedded StringTable, and sets the root to Null. A nil alloc uses
// DefaultAllocator; a non-positive valueBytes/stringBytes uses the package
// defaults.
func Make(alloc Allocator, valueBytes, stringBytes int) (*ConfigData, error) {
	if alloc == nil {
		alloc = DefaultAllocator
	}
	if valueBytes <= 0 {
		valueBytes = DefaultValueBytes
	}
	if stringBytes <= 0 {
		stringBytes = DefaultStringBytes
	}
	total := headerSize + valueBytes + stringBytes

	d := &ConfigData{
		buf:    alloc(nil, total),
		alloc:  alloc,
		logger: log.NewHelper(log.NewFilter(log.NewStdLogger(io.Discard), log.FilterLevel(log.LevelError))),
	}
	d.setMagic(configMagic)
	d.setTotalBytes(uint32(total))
	d.setValueRegionBytes(uint32(valueBytes))
	d.setUsedValueBytes(0)
	d.setRootLoc(Null)

	if err := d.stringTable().Init(8); err != nil {
		return nil, err
	}
	return d, nil
}

// SetLogger replaces the ConfigData's diagnostic logger.
func (d *ConfigData) SetLogger(l log.Logger) {
	d.logger = log.NewHelper(l)
}

// Anomalies returns the non-fatal notices accumulated so far.
func (d *ConfigData) Anomalies() []string {
	return append([]string(nil), d.anomalies...)
}

func (d *ConfigData) noteAnomaly(format string, args ...interface{}) {
	d.anomalies = append(d.anomalies, fmt.Sprintf(format, args...))
	d.logger.Debugf(format, args...)
}

// --- header accessors ---

func (d *ConfigData) magic() uint32             { return binary.LittleEndian.Uint32(d.buf[0:4]) }
func (d *ConfigData) setMagic(v uint32)         { binary.LittleEndian.PutUint32(d.buf[0:4], v) }
func (d *ConfigData) totalBytes() uint32        { return binary.LittleEndian.Uint32(d.buf[4:8]) }
func (d *ConfigData) setTotalBytes(v uint32)    { binary.LittleEndian.PutUint32(d.buf[4:8], v) }
func (d *ConfigData) valueRegionBytes() uint32  { return binary.LittleEndian.Uint32(d.buf[8:12]) }
func (d *ConfigData) setValueRegionBytes(v uint32) {
	binary.LittleEndian.PutUint32(d.buf[8:12], v)
}
func (d *ConfigData) usedValueBytes() uint32 { return binary.LittleEndian.Uint32(d.buf[12:16]) }
func (d *ConfigData) setUsedValueBytes(v uint32) {
	binary.LittleEndian.PutUint32(d.buf[12:16], v)
}
func (d *ConfigData) rootLocRaw() uint32     { return binary.LittleEndian.Uint32(d.buf[16:20]) }
func (d *ConfigData) setRootLocRaw(v uint32) { binary.LittleEndian.PutUint32(d.buf[16:20], v) }

func (d *ConfigData) setRootLoc(l Loc) { d.setRootLocRaw(uint32(l)) }

// SetRoot sets the root value of the document.
func (d *ConfigData) SetRoot(l Loc) { d.setRootLoc(l) }

// Root returns the root value of the document.
func (d *ConfigData) Root() Loc { return Loc(d.rootLocRaw()) }

func (d *ConfigData) valueRegion() []byte {
	return d.buf[headerSize : headerSize+d.valueRegionBytes()]
}

func (d *ConfigData) stringRegionOffset() uint32 {
	return headerSize + d.valueRegionBytes()
}

func (d *ConfigData) stringRegion() []byte {
	return d.buf[d.stringRegionOffset():d.totalBytes()]
}

func (d *ConfigData) stringTable() *StringTable {
	return NewStringTable(d.stringRegion())
}

// Bytes returns the raw, relocatable image of the ConfigData: a header,
// then the value region, then the embedded StringTable region. Copying
// these bytes (and keeping an Allocator) produces an equivalent ConfigData,
// per spec.md §6 "Persistent layout".
func (d *ConfigData) Bytes() []byte {
	return d.buf
}

// Open wraps a previously-serialized ConfigData image (as produced by
// Bytes) for navigation, without copying it. The allocator is used only if
// the wrapped ConfigData is subsequently mutated and needs to grow.
func Open(buf []byte, alloc Allocator) (*ConfigData, error) {
	if len(buf) < headerSize {
		return nil, ErrTruncatedBuffer
	}
	d := &ConfigData{buf: buf, alloc: alloc, logger: log.NewHelper(log.NewFilter(log.NewStdLogger(io.Discard), log.FilterLevel(log.LevelError)))}
	if d.magic() != configMagic {
		return nil, ErrBadMagic
	}
	if d.totalBytes() > uint32(len(buf)) {
		return nil, ErrTruncatedBuffer
	}
	if d.alloc == nil {
		d.alloc = DefaultAllocator
	}
	return d, nil
}

// --- growth ---

// reserve aligns the value-region write cursor to align bytes (1 disables
// alignment), growing the value region first if n bytes would not fit, and
// returns the (post-alignment) offset at which the caller should write n
// bytes. align must be a power of two.
func (d *ConfigData) reserve(n int, align int) uint32 {
	used := d.usedValueBytes()
	used = alignUp(used, uint32(align))
	need := used + uint32(n)
	if need > d.valueRegionBytes() {
		d.growValueRegion(need)
		used = alignUp(d.usedValueBytes(), uint32(align))
		need = used + uint32(n)
	}
	d.setUsedValueBytes(need)
	return used
}

func alignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// growValueRegion doubles the value region until it can hold minNeeded
// bytes, reallocates the whole buffer through the Allocator, and memmoves
// the embedded StringTable region to stay adjacent to the value region's
// new end, per spec.md §4.2 "Growth algorithm".
func (d *ConfigData) growValueRegion(minNeeded uint32) {
	oldValueBytes := d.valueRegionBytes()
	oldTotal := d.totalBytes()
	oldStringOff := headerSize + oldValueBytes
	oldStringBytes := oldTotal - oldStringOff

	newValueBytes := oldValueBytes
	if newValueBytes == 0 {
		newValueBytes = DefaultValueBytes
	}
	for newValueBytes < minNeeded {
		newValueBytes *= 2
	}
	newTotal := headerSize + newValueBytes + oldStringBytes

	newBuf := d.alloc(d.buf, int(newTotal))
	newStringOff := headerSize + newValueBytes
	copy(newBuf[newStringOff:newStringOff+oldStringBytes], newBuf[oldStringOff:oldStringOff+oldStringBytes])

	d.buf = newBuf
	d.setTotalBytes(newTotal)
	d.setValueRegionBytes(newValueBytes)
	d.noteAnomaly("value region grown to %d bytes", newValueBytes)
}

// growStringRegion doubles the string region only. Because the string
// region is always the last region in the buffer, no memmove is needed:
// the new capacity simply appears at the end of the reallocated buffer.
func (d *ConfigData) growStringRegion() {
	oldStringBytes := d.totalBytes() - headerSize - d.valueRegionBytes()
	newStringBytes := oldStringBytes * 2
	if newStringBytes == 0 {
		newStringBytes = DefaultStringBytes
	}
	newTotal := headerSize + d.valueRegionBytes() + newStringBytes

	newBuf := d.alloc(d.buf, int(newTotal))
	d.buf = newBuf
	d.setTotalBytes(newTotal)
	d.noteAnomaly("string region grown to %d bytes", newStringBytes)
}

// intern interns s, transparently growing and retrying the string region
// when the StringTable reports it is full.
func (d *ConfigData) intern(s string) uint32 {
	for {
		sym, err := d.stringTable().ToSymbol(s)
		if err == nil {
			return sym
		}
		d.growStringRegion()
		if gerr := d.stringTable().Grow(len(d.stringRegion())); gerr != nil {
			panic(gerr)
		}
	}
}

func (d *ConfigData) internConst(s string) (uint32, bool) {
	return d.stringTable().ToSymbolConst(s)
}

// --- typed constructors ---

// AddNumber appends a NUMBER value and returns its Loc.
func (d *ConfigData) AddNumber(v float64) Loc {
	off := d.reserve(8, 8)
	binary.LittleEndian.PutUint64(d.valueRegion()[off:off+8], math.Float64bits(v))
	return newLoc(KindNumber, off)
}

// AddString interns s and returns a STRING Loc for it.
func (d *ConfigData) AddString(s string) Loc {
	return newLoc(KindString, d.intern(s))
}

// --- typed accessors ---

// Type returns the Kind of a Loc.
func (d *ConfigData) Type(l Loc) Kind { return l.Kind() }

// ToNumber decodes a NUMBER Loc. Behavior is undefined for non-NUMBER Locs.
func (d *ConfigData) ToNumber(l Loc) float64 {
	off := l.Offset()
	bits := binary.LittleEndian.Uint64(d.valueRegion()[off : off+8])
	return math.Float64frombits(bits)
}

// ToStringValue decodes a STRING Loc. Behavior is undefined for non-STRING
// Locs. The returned string is a copy and remains valid regardless of
// subsequent ConfigData mutation.
func (d *ConfigData) ToStringValue(l Loc) string {
	return d.stringTable().ToString(l.Offset())
}

// Stats reports the embedded StringTable's current occupancy.
func (d *ConfigData) Stats() StringTableStats {
	return d.stringTable().Stats()
}

