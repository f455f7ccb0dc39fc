// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"errors"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/go-kratos/kratos/v2/log"
)

// ErrMappedReadOnly is returned by operations that would mutate a
// ConfigData backed by a read-only memory mapping.
var ErrMappedReadOnly = errors.New("relocfg: cannot grow a memory-mapped ConfigData")

// Save writes d's raw image to name, truncating any existing file.
func Save(d *ConfigData, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(d.Bytes()); err != nil {
		return err
	}
	return f.Sync()
}

// MappedFile is a ConfigData image memory-mapped read-only from disk. Its
// ConfigData is live for navigation (ObjectLookup, ArrayItem, ToNumber, ...)
// without copying the file into the heap; Close unmaps it.
type MappedFile struct {
	Data *ConfigData

	f   *os.File
	mm  mmap.MMap
	log *log.Helper
}

// mappedAllocator never grows in place: a mutation on a memory-mapped
// ConfigData falls back to an ordinary heap copy, same as the teacher's
// mmap.MMap being read-only by construction (mmap.RDONLY).
func mappedAllocator(old []byte, newSize int) []byte {
	return DefaultAllocator(old, newSize)
}

// LoadFile memory-maps name read-only and wraps it as a ConfigData, per
// spec.md §6's persistent, directly-navigable layout.
func LoadFile(name string) (*MappedFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	d, err := Open([]byte(data), mappedAllocator)
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, err
	}

	return &MappedFile{
		Data: d,
		f:    f,
		mm:   data,
		log:  log.NewHelper(log.NewFilter(log.NewStdLogger(io.Discard), log.FilterLevel(log.LevelError))),
	}, nil
}

// Close unmaps the file and releases the file descriptor.
func (m *MappedFile) Close() error {
	if err := m.mm.Unmap(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}
