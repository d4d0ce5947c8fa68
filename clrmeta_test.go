package clrmeta

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// flatResolver is the simplest possible RVAResolver: a single section
// starting at RVA 0, covering the whole buffer.
type flatResolver []byte

func (f flatResolver) ResolveRVA(rva uint32) ([]byte, uint32, error) {
	return f, rva, nil
}

func buildCLIHeader() []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, uint32(72))         // Cb
	binary.Write(&b, binary.LittleEndian, uint16(2))           // MajorRuntimeVersion
	binary.Write(&b, binary.LittleEndian, uint16(5))           // MinorRuntimeVersion
	binary.Write(&b, binary.LittleEndian, uint32(0x2050))      // MetaData.RVA
	binary.Write(&b, binary.LittleEndian, uint32(0x100))       // MetaData.Size
	binary.Write(&b, binary.LittleEndian, uint32(RuntimeFlagILOnly))
	binary.Write(&b, binary.LittleEndian, uint32(0)) // EntryPointToken
	for i := 0; i < 6; i++ {                         // Resources .. ManagedNativeHeader
		binary.Write(&b, binary.LittleEndian, uint32(0))
		binary.Write(&b, binary.LittleEndian, uint32(0))
	}
	return b.Bytes()
}

func TestReadCLIHeader(t *testing.T) {
	data := buildCLIHeader()
	hdr, err := ReadCLIHeader(flatResolver(data), 0)
	if err != nil {
		t.Fatalf("ReadCLIHeader: %v", err)
	}
	if hdr.Cb != 72 {
		t.Fatalf("Cb = %d, want 72", hdr.Cb)
	}
	if hdr.MajorRuntimeVersion != 2 || hdr.MinorRuntimeVersion != 5 {
		t.Fatalf("runtime version = %d.%d, want 2.5", hdr.MajorRuntimeVersion, hdr.MinorRuntimeVersion)
	}
	if hdr.MetaData.RVA != 0x2050 || hdr.MetaData.Size != 0x100 {
		t.Fatalf("MetaData dir = %+v, want {0x2050 0x100}", hdr.MetaData)
	}
	if hdr.Flags != RuntimeFlagILOnly {
		t.Fatalf("Flags = %#x, want ILOnly", hdr.Flags)
	}
}

func TestReadCLIHeaderTruncated(t *testing.T) {
	_, err := ReadCLIHeader(flatResolver(make([]byte, 10)), 0)
	if err != ErrTruncatedHeader {
		t.Fatalf("err = %v, want ErrTruncatedHeader", err)
	}
}

func padName(name string) []byte {
	b := append([]byte(name), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// buildMetadataRootSimple lays out a metadata root with a fixed two-stream
// directory (#Strings, #Blob) whose bodies are appended immediately after
// the directory, computing offsets relative to the root's own start (as
// ECMA-335 §II.24.2.2 requires).
func buildMetadataRootSimple(stringsHeap, blobHeap []byte) []byte {
	type streamSpec struct {
		name string
		data []byte
	}
	specs := []streamSpec{
		{"#Strings", stringsHeap},
		{"#Blob", blobHeap},
	}

	var header bytes.Buffer
	binary.Write(&header, binary.LittleEndian, uint32(MetadataRootSignature))
	binary.Write(&header, binary.LittleEndian, uint16(1))
	binary.Write(&header, binary.LittleEndian, uint16(1))
	binary.Write(&header, binary.LittleEndian, uint32(0))
	version := padName("v4.0.30319")
	binary.Write(&header, binary.LittleEndian, uint32(len(version)))
	header.Write(version)
	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint16(len(specs)))

	// Compute directory size first so stream offsets can be made absolute.
	dirSize := 0
	for _, s := range specs {
		dirSize += 8 + len(padName(s.name))
	}
	directoryStart := header.Len()
	bodyStart := directoryStart + dirSize

	var directory bytes.Buffer
	var bodies bytes.Buffer
	cursor := bodyStart
	for _, s := range specs {
		binary.Write(&directory, binary.LittleEndian, uint32(cursor))
		binary.Write(&directory, binary.LittleEndian, uint32(len(s.data)))
		directory.Write(padName(s.name))
		bodies.Write(s.data)
		cursor += len(s.data)
	}

	header.Write(directory.Bytes())
	header.Write(bodies.Bytes())
	return header.Bytes()
}

func TestReadMetadataRoot(t *testing.T) {
	strs := []byte{0x00, 'H', 'i', 0x00}
	blobs := []byte{0x00}
	data := buildMetadataRootSimple(strs, blobs)

	root, raw, err := ReadMetadataRoot(flatResolver(data), 0, uint32(len(data)))
	if err != nil {
		t.Fatalf("ReadMetadataRoot: %v", err)
	}
	if root.Version != "v4.0.30319" {
		t.Fatalf("version = %q", root.Version)
	}
	if len(root.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(root.Streams))
	}
	sh, ok := root.Stream("#Strings")
	if !ok {
		t.Fatalf("missing #Strings stream")
	}
	got := streamBytes(raw, sh)
	if !bytes.Equal(got, strs) {
		t.Fatalf("#Strings bytes = %v, want %v", got, strs)
	}
}

func TestReadMetadataRootBadSignature(t *testing.T) {
	data := make([]byte, 16)
	_, _, err := ReadMetadataRoot(flatResolver(data), 0, uint32(len(data)))
	if err != ErrBadMetadataSignature {
		t.Fatalf("err = %v, want ErrBadMetadataSignature", err)
	}
}
