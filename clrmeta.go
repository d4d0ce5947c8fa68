// Package clrmeta ties the raw metadata layer to the structured object
// model: locating the CLI header and metadata root within a PE image,
// dispatching its heaps, and loading a fully populated Assembly from them
// (ECMA-335 §II.25.3.3, §II.24.2).
package clrmeta

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/MaximumOverflow/clrmeta/clrmodel"
	"github.com/MaximumOverflow/clrmeta/metadata"
)

// RVAResolver is the external PE/COFF collaborator this module depends on:
// given a relative virtual address, yield the bytes of the section that
// contains it and the byte offset of that address within those bytes.
// *peaccess.File satisfies this structurally.
type RVAResolver interface {
	ResolveRVA(rva uint32) (section []byte, offset uint32, err error)
}

// DataDirectory is a PE data directory entry: a relative virtual address
// and a size in bytes.
type DataDirectory struct {
	RVA  uint32
	Size uint32
}

// Runtime flag bits of CLIHeader.Flags (ECMA-335 §II.25.3.3.1).
const (
	RuntimeFlagILOnly       = 0x00000001
	RuntimeFlagRequire32Bit = 0x00000002
	RuntimeFlagILLibrary    = 0x00000004
	RuntimeFlagStrongName   = 0x00000008
	RuntimeFlagPrefer32Bit  = 0x00020000
)

// CLIHeader is the COM+ 2.0 header found via the 15th PE data directory
// entry (IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR), bit-exact with
// ECMA-335 §II.25.3.3.
type CLIHeader struct {
	Cb                      uint32
	MajorRuntimeVersion     uint16
	MinorRuntimeVersion     uint16
	MetaData                DataDirectory
	Flags                   uint32
	EntryPointToken         uint32
	Resources               DataDirectory
	StrongNameSignature     DataDirectory
	CodeManagerTable        DataDirectory
	VTableFixups            DataDirectory
	ExportAddressTableJumps DataDirectory
	ManagedNativeHeader     DataDirectory
}

var ErrTruncatedHeader = errors.New("clrmeta: truncated CLI header")

// ReadCLIHeader decodes the 72-byte CLI header starting at rva, resolved
// through acc.
func ReadCLIHeader(acc RVAResolver, rva uint32) (CLIHeader, error) {
	section, offset, err := acc.ResolveRVA(rva)
	if err != nil {
		return CLIHeader{}, fmt.Errorf("clrmeta: resolving CLI header RVA: %w", err)
	}
	const size = 4 + 2 + 2 + 8 + 4 + 4 + 8*6
	if uint64(offset)+size > uint64(len(section)) {
		return CLIHeader{}, ErrTruncatedHeader
	}
	b := section[offset:]
	readDir := func(off int) DataDirectory {
		return DataDirectory{
			RVA:  binary.LittleEndian.Uint32(b[off:]),
			Size: binary.LittleEndian.Uint32(b[off+4:]),
		}
	}
	return CLIHeader{
		Cb:                      binary.LittleEndian.Uint32(b[0:]),
		MajorRuntimeVersion:     binary.LittleEndian.Uint16(b[4:]),
		MinorRuntimeVersion:     binary.LittleEndian.Uint16(b[6:]),
		MetaData:                readDir(8),
		Flags:                   binary.LittleEndian.Uint32(b[16:]),
		EntryPointToken:         binary.LittleEndian.Uint32(b[20:]),
		Resources:               readDir(24),
		StrongNameSignature:     readDir(32),
		CodeManagerTable:        readDir(40),
		VTableFixups:            readDir(48),
		ExportAddressTableJumps: readDir(56),
		ManagedNativeHeader:     readDir(64),
	}, nil
}

// StreamHeader records one metadata-root stream's location and name
// (ECMA-335 §II.24.2.2).
type StreamHeader struct {
	Offset uint32
	Size   uint32
	Name   string
}

// MetadataRootSignature is the fixed "BSJB" magic at the start of the
// metadata root (ECMA-335 §II.24.2.1).
const MetadataRootSignature = 0x424A5342

var (
	ErrBadMetadataSignature = errors.New("clrmeta: metadata root signature mismatch")
	ErrTruncatedMetadata    = errors.New("clrmeta: truncated metadata root")
)

// MetadataRoot is the decoded metadata root header: version string and the
// stream directory (ECMA-335 §II.24.2.1).
type MetadataRoot struct {
	MajorVersion uint16
	MinorVersion uint16
	Version      string
	Flags        uint16
	Streams      []StreamHeader
}

// Stream looks up a stream by its recognized name (#Strings, #US, #Blob,
// #GUID, #~, #-), returning ok=false if the root carries none by that name.
func (r MetadataRoot) Stream(name string) (StreamHeader, bool) {
	for _, s := range r.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return StreamHeader{}, false
}

// ReadMetadataRoot decodes the metadata root at rva/size, resolved through
// acc, returning the header plus the raw bytes of the whole metadata blob
// (stream offsets in the returned header are relative to the start of
// these bytes).
func ReadMetadataRoot(acc RVAResolver, rva, size uint32) (MetadataRoot, []byte, error) {
	section, offset, err := acc.ResolveRVA(rva)
	if err != nil {
		return MetadataRoot{}, nil, fmt.Errorf("clrmeta: resolving metadata root RVA: %w", err)
	}
	if uint64(offset)+uint64(size) > uint64(len(section)) {
		return MetadataRoot{}, nil, ErrTruncatedMetadata
	}
	data := section[offset : offset+size]

	c := metadata.NewCursor(data)
	sig, err := c.U32()
	if err != nil {
		return MetadataRoot{}, nil, err
	}
	if sig != MetadataRootSignature {
		return MetadataRoot{}, nil, ErrBadMetadataSignature
	}
	major, err := c.U16()
	if err != nil {
		return MetadataRoot{}, nil, err
	}
	minor, err := c.U16()
	if err != nil {
		return MetadataRoot{}, nil, err
	}
	if _, err := c.Bytes(4); err != nil { // Reserved, always 0
		return MetadataRoot{}, nil, err
	}
	verLen, err := c.U32()
	if err != nil {
		return MetadataRoot{}, nil, err
	}
	verBytes, err := c.Bytes(verLen)
	if err != nil {
		return MetadataRoot{}, nil, err
	}
	version := cStringOf(verBytes)
	// Version string (and each stream name below) is padded to a 4-byte
	// boundary (ECMA-335 §II.24.2.1, §II.24.2.2).
	if err := padTo4(c); err != nil {
		return MetadataRoot{}, nil, err
	}
	flags, err := c.U16()
	if err != nil {
		return MetadataRoot{}, nil, err
	}
	streamCount, err := c.U16()
	if err != nil {
		return MetadataRoot{}, nil, err
	}

	streams := make([]StreamHeader, 0, streamCount)
	for i := uint16(0); i < streamCount; i++ {
		streamOffset, err := c.U32()
		if err != nil {
			return MetadataRoot{}, nil, err
		}
		streamSize, err := c.U32()
		if err != nil {
			return MetadataRoot{}, nil, err
		}
		name, err := readCString(c)
		if err != nil {
			return MetadataRoot{}, nil, err
		}
		if err := padTo4(c); err != nil {
			return MetadataRoot{}, nil, err
		}
		streams = append(streams, StreamHeader{Offset: streamOffset, Size: streamSize, Name: name})
	}

	return MetadataRoot{
		MajorVersion: major, MinorVersion: minor,
		Version: version, Flags: flags, Streams: streams,
	}, data, nil
}

func cStringOf(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// readCString reads bytes from c up to and including the next NUL,
// returning the bytes before it decoded as a string.
func readCString(c *metadata.Cursor) (string, error) {
	var out []byte
	for {
		b, err := c.U8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(out), nil
		}
		out = append(out, b)
	}
}

// padTo4 advances c to the next 4-byte boundary relative to its start.
func padTo4(c *metadata.Cursor) error {
	pad := (4 - c.Pos()%4) % 4
	return c.Skip(pad)
}

// OpenTableHeapAt resolves the CLI header, metadata root, and heap streams
// reachable through acc. It takes the CLR data directory's RVA directly
// (as reported by the PE optional header's 15th data directory entry),
// since an RVAResolver alone cannot name that directory — only the PE
// layer knows where it is.
func OpenTableHeapAt(acc RVAResolver, clrDirRVA uint32) (*metadata.TableHeap, error) {
	hdr, err := ReadCLIHeader(acc, clrDirRVA)
	if err != nil {
		return nil, err
	}
	root, data, err := ReadMetadataRoot(acc, hdr.MetaData.RVA, hdr.MetaData.Size)
	if err != nil {
		return nil, err
	}

	heaps := metadata.Heaps{}
	if s, ok := root.Stream("#Strings"); ok {
		heaps.Strings = metadata.NewStringsHeap(streamBytes(data, s))
	}
	if s, ok := root.Stream("#US"); ok {
		heaps.US = metadata.NewUserStringHeap(streamBytes(data, s))
	}
	if s, ok := root.Stream("#Blob"); ok {
		heaps.Blob = metadata.NewBlobHeap(streamBytes(data, s))
	}
	if s, ok := root.Stream("#GUID"); ok {
		heaps.GUID = metadata.NewGUIDHeap(streamBytes(data, s))
	}

	tableStream, ok := root.Stream("#~")
	if !ok {
		tableStream, ok = root.Stream("#-")
	}
	if !ok {
		return nil, errors.New("clrmeta: metadata root has no #~/#- stream")
	}

	return metadata.ParseTableHeap(streamBytes(data, tableStream), heaps)
}

func streamBytes(data []byte, s StreamHeader) []byte {
	end := s.Offset + s.Size
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	if s.Offset > uint32(len(data)) {
		return nil
	}
	return data[s.Offset:end]
}

// LoadAssembly resolves the CLI header and metadata root through acc,
// builds the table heap, and populates a structured Assembly from it —
// the Go analogue of the original's `raw::assembly::Assembly` combined
// with `structured::assembly::Assembly::new`, minus cross-assembly
// reference resolution (performed by resolver.Context.LoadAssembly, which
// wraps this function).
func LoadAssembly(acc RVAResolver, clrDirRVA uint32) (*clrmodel.Assembly, error) {
	th, err := OpenTableHeapAt(acc, clrDirRVA)
	if err != nil {
		return nil, fmt.Errorf("clrmeta: opening table heap: %w", err)
	}
	assembly, err := clrmodel.PopulateShell(th, acc)
	if err != nil {
		return nil, fmt.Errorf("clrmeta: populating assembly: %w", err)
	}
	return assembly, nil
}

// ReadAssemblyName is the cheap probe used by the resolver: it opens the
// table heap through acc and extracts only the defining Assembly row,
// without populating any types.
func ReadAssemblyName(acc RVAResolver, clrDirRVA uint32) (clrmodel.AssemblyName, error) {
	th, err := OpenTableHeapAt(acc, clrDirRVA)
	if err != nil {
		return clrmodel.AssemblyName{}, err
	}
	return clrmodel.ReadAssemblyName(th)
}
