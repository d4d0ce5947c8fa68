// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peaccess

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	// TinyPESize is the smallest possible PE executable (97 bytes, the
	// Windows XP x32 minimum); anything shorter can't be a PE file.
	TinyPESize = 97

	// FileAlignmentHardcodedValue is the value PointerToRawData must be at
	// least equal to, or it is rounded down to zero. See
	// http://corkami.blogspot.com/2010/01/parce-que-la-planche-aura-brule.html.
	FileAlignmentHardcodedValue = 0x200
)

// Errors returned while parsing the subset of the PE format this package
// decodes.
var (
	ErrInvalidPESize                      = errors.New("not a PE file, smaller than tiny PE")
	ErrDOSMagicNotFound                   = errors.New("DOS Header magic not found")
	ErrInvalidElfanewValue                = errors.New("invalid e_lfanew value, probably not a PE file")
	ErrInvalidNtHeaderOffset              = errors.New("invalid NT Header offset, NT Header signature not found")
	ErrImageNtSignatureNotFound           = errors.New("not a valid PE signature, magic not found")
	ErrImageNtOptionalHeaderMagicNotFound = errors.New("not a valid PE signature, optional header magic not found")
	ErrOutsideBoundary                    = errors.New("reading data outside boundary")
)

// Max returns the larger of x or y.
func Max(x, y uint32) uint32 {
	if x < y {
		return y
	}
	return x
}

// Min returns the smallest value in a slice.
func Min(values []uint32) uint32 {
	min := values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
	}
	return min
}

// ReadUint32 reads a little-endian uint32 from a buffer.
func (pe *File) ReadUint32(offset uint32) (uint32, error) {
	if offset > pe.size-4 {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(pe.data[offset:]), nil
}

// ReadUint16 reads a little-endian uint16 from a buffer.
func (pe *File) ReadUint16(offset uint32) (uint16, error) {
	if offset > pe.size-2 {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(pe.data[offset:]), nil
}

func (pe *File) structUnpack(iface interface{}, offset, size uint32) (err error) {
	totalSize := offset + size

	// Integer overflow.
	if (totalSize > offset) != (size > 0) {
		return ErrOutsideBoundary
	}
	if offset >= pe.size || totalSize > pe.size {
		return ErrOutsideBoundary
	}

	buf := bytes.NewReader(pe.data[offset : offset+size])
	return binary.Read(buf, binary.LittleEndian, iface)
}

// The alignment factor (in bytes) used to align the raw data of sections in
// the image file. The value should be a power of 2 between 512 and 64K; the
// default is 512. If SectionAlignment is less than the architecture's page
// size, FileAlignment must match SectionAlignment.
func (pe *File) adjustFileAlignment(va uint32) uint32 {
	var fileAlignment uint32
	switch pe.Is64 {
	case true:
		fileAlignment = pe.NtHeader.OptionalHeader.(ImageOptionalHeader64).FileAlignment
	case false:
		fileAlignment = pe.NtHeader.OptionalHeader.(ImageOptionalHeader32).FileAlignment
	}

	if fileAlignment < FileAlignmentHardcodedValue {
		return va
	}

	// Round down to a multiple of 0x200. A PointerToRawData less than
	// 0x200 is rounded to zero by the Windows loader; reproduce that here.
	return (va / 0x200) * 0x200
}

// The alignment (in bytes) of sections when loaded into memory. Must be
// greater than or equal to FileAlignment; the default is the architecture's
// page size.
func (pe *File) adjustSectionAlignment(va uint32) uint32 {
	var fileAlignment, sectionAlignment uint32
	switch pe.Is64 {
	case true:
		fileAlignment = pe.NtHeader.OptionalHeader.(ImageOptionalHeader64).FileAlignment
		sectionAlignment = pe.NtHeader.OptionalHeader.(ImageOptionalHeader64).SectionAlignment
	case false:
		fileAlignment = pe.NtHeader.OptionalHeader.(ImageOptionalHeader32).FileAlignment
		sectionAlignment = pe.NtHeader.OptionalHeader.(ImageOptionalHeader32).SectionAlignment
	}

	if sectionAlignment < 0x1000 { // page size
		sectionAlignment = fileAlignment
	}

	if sectionAlignment != 0 && va%sectionAlignment != 0 {
		return sectionAlignment * (va / sectionAlignment)
	}
	return va
}
