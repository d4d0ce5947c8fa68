// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peaccess

import (
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/MaximumOverflow/clrmeta/clrlog"
)

// A File is the minimal PE/COFF accessor this module depends on as an
// external collaborator. It resolves RVAs to section bytes and exposes the
// CLR (COM+) data directory; it does not parse imports, exports, resources,
// relocations, TLS, load config, debug directories, certificates, or any
// other PE feature outside of what's needed to find and read CLI metadata.
type File struct {
	DOSHeader ImageDOSHeader
	NtHeader  ImageNtHeader
	Sections  []Section
	Is32      bool
	Is64      bool

	data   mmap.MMap
	size   uint32
	f      *os.File
	opts   *Options
	logger *clrlog.Helper
}

// Options for parsing.
type Options struct {
	// A custom logger.
	Logger clrlog.Logger
}

// New instantiates a file instance with options given a file name. The file
// is memory-mapped rather than read fully into memory.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	file.logger = clrlog.NewHelper(file.opts.Logger)

	file.data = data
	file.size = uint32(len(file.data))
	file.f = f
	return &file, nil
}

// NewBytes instantiates a file instance with options given an in-memory
// buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := File{}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	file.logger = clrlog.NewHelper(file.opts.Logger)

	file.data = data
	file.size = uint32(len(file.data))
	return &file, nil
}

// Close closes the File, unmapping the underlying memory region.
func (pe *File) Close() error {
	if pe.data != nil {
		_ = pe.data.Unmap()
	}
	if pe.f != nil {
		return pe.f.Close()
	}
	return nil
}

// Parse performs the minimal PE parsing needed to resolve RVAs: the DOS
// header, the NT header, and the section table.
func (pe *File) Parse() error {
	if len(pe.data) < TinyPESize {
		return ErrInvalidPESize
	}

	if err := pe.ParseDOSHeader(); err != nil {
		return err
	}

	if err := pe.ParseNTHeader(); err != nil {
		return err
	}

	return pe.ParseSectionHeader()
}

// CLRDataDirectory returns the virtual address and size of the 15th PE data
// directory (IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR), where the CLI header
// lives, or ok=false if the image carries no managed metadata.
func (pe *File) CLRDataDirectory() (rva, size uint32, ok bool) {
	var dir DataDirectory
	switch {
	case pe.Is64:
		oh := pe.NtHeader.OptionalHeader.(ImageOptionalHeader64)
		dir = oh.DataDirectory[ImageDirectoryEntryCLR]
	case pe.Is32:
		oh := pe.NtHeader.OptionalHeader.(ImageOptionalHeader32)
		dir = oh.DataDirectory[ImageDirectoryEntryCLR]
	default:
		return 0, 0, false
	}
	if dir.VirtualAddress == 0 {
		return 0, 0, false
	}
	return dir.VirtualAddress, dir.Size, true
}

// ResolveRVA implements the external RVAResolver collaborator required by
// the clrmeta package: it maps a relative virtual address to the section
// that contains it and the byte offset of that address within that section.
func (pe *File) ResolveRVA(rva uint32) (section []byte, offset uint32, err error) {
	for i := range pe.Sections {
		s := &pe.Sections[i]
		if !s.Contains(rva, pe) {
			continue
		}
		start := s.Header.PointerToRawData
		end := start + s.Header.SizeOfRawData
		if end > pe.size {
			end = pe.size
		}
		if start > pe.size {
			return nil, 0, ErrOutsideBoundary
		}
		return pe.data[start:end], rva - s.Header.VirtualAddress, nil
	}
	return nil, 0, errors.New("peaccess: rva not contained in any section")
}
