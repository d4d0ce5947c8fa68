// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peaccess

import (
	"encoding/binary"
	"sort"
)

// ImageSectionHeader is one 40-byte row of the section table. Only the
// fields RVA→file-offset translation needs are named (virtual size/address
// locate a section in memory, raw size/pointer locate it on disk); the
// trailing relocation/line-number/characteristics fields are padding.
type ImageSectionHeader struct {
	Name             [8]uint8
	VirtualSize      uint32
	VirtualAddress   uint32
	SizeOfRawData    uint32
	PointerToRawData uint32
	_                [16]byte // PointerToRelocations, PointerToLineNumbers, NumberOfRelocations, NumberOfLineNumbers, Characteristics
}

// Section is a parsed section table entry.
type Section struct {
	Header ImageSectionHeader
}

// ParseSectionHeader parses the section table, which immediately follows
// the optional header.
func (pe *File) ParseSectionHeader() (err error) {
	optionalHeaderOffset := pe.DOSHeader.AddressOfNewEXEHeader + 4 +
		uint32(binary.Size(pe.NtHeader.FileHeader))
	offset := optionalHeaderOffset +
		uint32(pe.NtHeader.FileHeader.SizeOfOptionalHeader)

	secHeader := ImageSectionHeader{}
	numberOfSections := pe.NtHeader.FileHeader.NumberOfSections
	secHeaderSize := uint32(binary.Size(secHeader))

	// The section header indexing in the table is one-based, with the order
	// of the sections defined by the linker. The sections follow one
	// another contiguously in the order defined by the section header
	// table, with starting RVAs aligned by SectionAlignment.
	for i := uint16(0); i < numberOfSections; i++ {
		if err := pe.structUnpack(&secHeader, offset, secHeaderSize); err != nil {
			return err
		}

		pe.Sections = append(pe.Sections, Section{Header: secHeader})
		offset += secHeaderSize
	}

	// Sort by VirtualAddress so Section.Contains can clip a section against
	// the one that follows it in memory, catching overlapping sections in
	// badly constructed images.
	sort.Sort(byVirtualAddress(pe.Sections))

	return nil
}

// NextHeaderAddr returns the VirtualAddress of the section following this
// one in memory order, or 0 if it is the last.
func (section *Section) NextHeaderAddr(pe *File) uint32 {
	for i, current := range pe.Sections {
		if current.Header.VirtualAddress != section.Header.VirtualAddress {
			continue
		}
		if i == len(pe.Sections)-1 {
			return 0
		}
		return pe.Sections[i+1].Header.VirtualAddress
	}
	return 0
}

// Contains reports whether the section contains rva once loaded into
// memory.
func (section *Section) Contains(rva uint32, pe *File) bool {
	// If SizeOfRawData is unrealistic (bigger than what's left of the file
	// from the section's start), fall back to VirtualSize.
	var size uint32
	adjustedPointer := pe.adjustFileAlignment(section.Header.PointerToRawData)
	if uint32(len(pe.data))-adjustedPointer < section.Header.SizeOfRawData {
		size = section.Header.VirtualSize
	} else {
		size = Max(section.Header.SizeOfRawData, section.Header.VirtualSize)
	}
	vaAdj := pe.adjustSectionAlignment(section.Header.VirtualAddress)

	// Clip against the next section if this one's computed size would
	// otherwise overlap it.
	if next := section.NextHeaderAddr(pe); next != 0 &&
		next > section.Header.VirtualAddress && vaAdj+size > next {
		size = next - vaAdj
	}

	return vaAdj <= rva && rva < vaAdj+size
}

// byVirtualAddress sorts sections by VirtualAddress.
type byVirtualAddress []Section

func (s byVirtualAddress) Len() int      { return len(s) }
func (s byVirtualAddress) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s byVirtualAddress) Less(i, j int) bool {
	return s[i].Header.VirtualAddress < s[j].Header.VirtualAddress
}
