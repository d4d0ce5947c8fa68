package metadata

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildStringsHeap lays out a #Strings heap starting with the mandatory
// empty string at offset 0, returning the heap bytes and each string's
// offset in insertion order.
func buildStringsHeap(strs ...string) ([]byte, []uint32) {
	buf := []byte{0x00}
	offsets := make([]uint32, len(strs))
	for i, s := range strs {
		offsets[i] = uint32(len(buf))
		buf = append(buf, []byte(s)...)
		buf = append(buf, 0x00)
	}
	return buf, offsets
}

func TestParseTableHeapModuleAndTypeDef(t *testing.T) {
	strings, off := buildStringsHeap("Mod.dll", "MyNamespace", "MyType")

	var header bytes.Buffer
	binary.Write(&header, binary.LittleEndian, uint32(0)) // Reserved
	header.WriteByte(2)                                    // Major
	header.WriteByte(0)                                    // Minor
	header.WriteByte(0)                                    // HeapSizes (all narrow)
	header.WriteByte(1)                                    // Reserved2
	binary.Write(&header, binary.LittleEndian, uint64(1<<Module|1<<TypeDef))
	binary.Write(&header, binary.LittleEndian, uint64(0)) // Sorted
	binary.Write(&header, binary.LittleEndian, uint32(1)) // Module row count
	binary.Write(&header, binary.LittleEndian, uint32(1)) // TypeDef row count

	// Module row: Generation, Name(string), Mvid/EncId/EncBaseId (GUID, all null)
	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint16(off[0]))
	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint16(0))

	// TypeDef row: Flags, TypeName, TypeNamespace, Extends(coded, null), FieldList, MethodList
	binary.Write(&header, binary.LittleEndian, uint32(0x100001)) // Public, Class
	binary.Write(&header, binary.LittleEndian, uint16(off[2]))
	binary.Write(&header, binary.LittleEndian, uint16(off[1]))
	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint16(1))
	binary.Write(&header, binary.LittleEndian, uint16(1))

	heaps := Heaps{Strings: NewStringsHeap(strings)}
	th, err := ParseTableHeap(header.Bytes(), heaps)
	if err != nil {
		t.Fatalf("ParseTableHeap: %v", err)
	}

	if got := th.RowCount(Module); got != 1 {
		t.Fatalf("Module row count = %d, want 1", got)
	}
	if got := th.RowCount(TypeDef); got != 1 {
		t.Fatalf("TypeDef row count = %d, want 1", got)
	}
	if got := th.RowCount(TypeRef); got != 0 {
		t.Fatalf("TypeRef row count = %d, want 0", got)
	}

	mod, err := th.ModuleRow(1)
	if err != nil {
		t.Fatalf("ModuleRow(1): %v", err)
	}
	name, err := th.ResolveString(mod.Name)
	if err != nil || name != "Mod.dll" {
		t.Fatalf("module name = %q, err %v, want Mod.dll", name, err)
	}

	td, err := th.TypeDefRow(1)
	if err != nil {
		t.Fatalf("TypeDefRow(1): %v", err)
	}
	typeName, err := th.ResolveString(td.TypeName)
	if err != nil || typeName != "MyType" {
		t.Fatalf("type name = %q, err %v, want MyType", typeName, err)
	}
	ns, err := th.ResolveString(td.TypeNamespace)
	if err != nil || ns != "MyNamespace" {
		t.Fatalf("type namespace = %q, err %v, want MyNamespace", ns, err)
	}

	if _, err := th.rawRow(TypeDef, 2); err != ErrRowOutOfRange {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
	if _, err := th.rawRow(TypeRef, 1); err != ErrRowOutOfRange {
		t.Fatalf("expected ErrRowOutOfRange for a table absent from the Valid mask, got %v", err)
	}
	if _, err := th.rawRow(TableKind(0x50), 1); err != ErrUnknownTable {
		t.Fatalf("expected ErrUnknownTable for a table with no schema, got %v", err)
	}
}

// TestConstantRowU8Columns exercises the Constant table's two colU8 columns
// (Type, Padding) end to end, guarding against UintN rejecting a 1-byte
// index width: with that bug, ConstantRow errors on every row.
func TestConstantRowU8Columns(t *testing.T) {
	var blob bytes.Buffer
	blob.WriteByte(0x00) // the mandatory empty blob at offset 0
	valueOff := uint32(blob.Len())
	blob.Write(WriteCompressedUint(1))
	blob.WriteByte(0x2A) // I4-tagged constant value, single byte for brevity

	const fieldTag = 0 // Field is tag 0 of HasConstant's {Field, Param, Property}
	parentRaw := (uint32(1) << HasConstant.tagBits()) | fieldTag

	var header bytes.Buffer
	binary.Write(&header, binary.LittleEndian, uint32(0)) // Reserved
	header.WriteByte(2)
	header.WriteByte(0)
	header.WriteByte(HeapSizeWideBlob) // force a wide blob index so Value isn't mistaken for width 1
	header.WriteByte(1)
	binary.Write(&header, binary.LittleEndian, uint64(1<<Field|1<<Constant))
	binary.Write(&header, binary.LittleEndian, uint64(0))
	binary.Write(&header, binary.LittleEndian, uint32(1)) // Field row count
	binary.Write(&header, binary.LittleEndian, uint32(1)) // Constant row count

	// Field row: Flags(u16), Name(string, narrow), Signature(blob, wide)
	binary.Write(&header, binary.LittleEndian, uint16(0x0006)) // Public | Static
	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint32(0))

	// Constant row: Type(u8), Padding(u8), Parent(coded, narrow), Value(blob, wide)
	header.WriteByte(0x08) // ELEMENT_TYPE_I4
	header.WriteByte(0x00)
	binary.Write(&header, binary.LittleEndian, uint16(parentRaw))
	binary.Write(&header, binary.LittleEndian, uint32(valueOff))

	heaps := Heaps{Strings: NewStringsHeap([]byte{0}), Blob: NewBlobHeap(blob.Bytes())}
	th, err := ParseTableHeap(header.Bytes(), heaps)
	if err != nil {
		t.Fatalf("ParseTableHeap: %v", err)
	}

	row, err := th.ConstantRow(1)
	if err != nil {
		t.Fatalf("ConstantRow(1): %v", err)
	}
	if row.Type != 0x08 {
		t.Fatalf("Type = %#x, want 0x08", row.Type)
	}
	if row.Parent.Kind() != Field || row.Parent.RID() != 1 {
		t.Fatalf("Parent = %v, want Field(1)", row.Parent)
	}
	value, err := th.ResolveBlob(row.Value)
	if err != nil {
		t.Fatalf("ResolveBlob(Value): %v", err)
	}
	if len(value) != 1 || value[0] != 0x2A {
		t.Fatalf("Value = %v, want [0x2A]", value)
	}
}
