// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package peaccess

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMinimalPE32 assembles a synthetic, minimal PE32 image with a single
// section and a populated CLR data directory, entirely in memory. No sample
// binaries are checked into the repository; the fixture is built from the
// structs this package already defines.
func buildMinimalPE32(t *testing.T, clrRVA, clrSize uint32) []byte {
	t.Helper()

	const (
		dosHeaderSize = 64
		lfanew        = dosHeaderSize
		sectionRVA    = 0x2000
		sectionSize   = 0x200
		sectionOffset = 0x400
	)

	var buf bytes.Buffer

	dos := ImageDOSHeader{Magic: ImageDOSSignature, AddressOfNewEXEHeader: lfanew}
	binary.Write(&buf, binary.LittleEndian, dos)

	fh := ImageFileHeader{
		NumberOfSections:     1,
		SizeOfOptionalHeader: 224,
	}
	oh := ImageOptionalHeader32{
		Magic:            ImageNtOptionalHeader32Magic,
		SectionAlignment: 0x1000,
		FileAlignment:    0x200,
	}
	oh.DataDirectory[ImageDirectoryEntryCLR] = DataDirectory{VirtualAddress: clrRVA, Size: clrSize}

	binary.Write(&buf, binary.LittleEndian, uint32(ImageNTSignature))
	binary.Write(&buf, binary.LittleEndian, fh)
	binary.Write(&buf, binary.LittleEndian, oh)

	// The section table immediately follows the optional header; the
	// section's raw data, at PointerToRawData, follows later once the rest
	// of the (here empty) header region has been padded out.
	sec := ImageSectionHeader{
		VirtualSize:      sectionSize,
		VirtualAddress:   sectionRVA,
		SizeOfRawData:    sectionSize,
		PointerToRawData: sectionOffset,
	}
	copy(sec.Name[:], ".text")
	binary.Write(&buf, binary.LittleEndian, sec)

	for buf.Len() < sectionOffset {
		buf.WriteByte(0)
	}
	buf.Write(make([]byte, sectionSize))

	return buf.Bytes()
}

func TestParseMinimalImage(t *testing.T) {
	data := buildMinimalPE32(t, 0x2010, 0x48)

	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}

	if err := f.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !f.Is32 || f.Is64 {
		t.Fatalf("expected PE32, got Is32=%v Is64=%v", f.Is32, f.Is64)
	}
	if len(f.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(f.Sections))
	}

	rva, size, ok := f.CLRDataDirectory()
	if !ok {
		t.Fatal("expected a CLR data directory")
	}
	if rva != 0x2010 || size != 0x48 {
		t.Fatalf("got rva=%#x size=%#x", rva, size)
	}

	section, offset, err := f.ResolveRVA(rva)
	if err != nil {
		t.Fatalf("ResolveRVA: %v", err)
	}
	if offset != 0x10 {
		t.Fatalf("expected offset 0x10 into the section, got %#x", offset)
	}
	if len(section) == 0 {
		t.Fatal("expected non-empty section bytes")
	}
}

func TestResolveRVAOutOfRange(t *testing.T) {
	data := buildMinimalPE32(t, 0, 0)
	f, err := NewBytes(data, nil)
	if err != nil {
		t.Fatalf("NewBytes: %v", err)
	}
	if err := f.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, _, ok := f.CLRDataDirectory(); ok {
		t.Fatal("expected no CLR data directory")
	}

	if _, _, err := f.ResolveRVA(0xFFFFFF); err == nil {
		t.Fatal("expected an error resolving an RVA outside every section")
	}
}
