package sig

import (
	"testing"

	"github.com/MaximumOverflow/clrmeta/metadata"
)

func TestReadPrimitiveType(t *testing.T) {
	c := metadata.NewCursor([]byte{0x08}) // I4
	ty, err := ReadType(c)
	if err != nil {
		t.Fatalf("ReadType: %v", err)
	}
	if ty.Tag != TagInt4 {
		t.Fatalf("Tag = %v, want TagInt4", ty.Tag)
	}
}

func TestUInt1AndUInt2AreDistinctFromOriginal(t *testing.T) {
	// Tag 0x05 must decode as UInt1, and 0x07 as UInt2 - the upstream
	// reference implementation maps both to UInt2, which this module
	// corrects per the ECMA-335 element-type table (§II.23.1.16).
	c1 := metadata.NewCursor([]byte{0x05})
	ty1, err := ReadType(c1)
	if err != nil || ty1.Tag != TagUInt1 {
		t.Fatalf("tag 0x05 = %v, %v, want TagUInt1", ty1.Tag, err)
	}
	c2 := metadata.NewCursor([]byte{0x07})
	ty2, err := ReadType(c2)
	if err != nil || ty2.Tag != TagUInt2 {
		t.Fatalf("tag 0x07 = %v, %v, want TagUInt2", ty2.Tag, err)
	}
}

func TestReadSzArrayOfClass(t *testing.T) {
	// SzArray(Class(TypeDef row 1))
	data := []byte{0x1D, 0x12, 0x04} // 0x04 = (1<<2)|0 -> tag 0 (TypeDef), rid 1
	c := metadata.NewCursor(data)
	ty, err := ReadType(c)
	if err != nil {
		t.Fatalf("ReadType: %v", err)
	}
	if ty.Tag != TagSzArray || ty.Elem == nil || ty.Elem.Tag != TagClass {
		t.Fatalf("got %+v", ty)
	}
	if ty.Elem.Token.Kind() != metadata.TypeDef || ty.Elem.Token.RID() != 1 {
		t.Fatalf("class token = %v, want TypeDef[1]", ty.Elem.Token)
	}
}

func TestReadArrayShape(t *testing.T) {
	// Array(I4, rank=2, sizes=[3], bounds=[])
	data := []byte{
		0x14,       // Array
		0x08,       // element type I4
		0x02,       // rank
		0x01, 0x03, // 1 size entry, value 3
		0x00, // 0 bounds
	}
	c := metadata.NewCursor(data)
	ty, err := ReadType(c)
	if err != nil {
		t.Fatalf("ReadType: %v", err)
	}
	if ty.Tag != TagArray || ty.Array.Rank != 2 {
		t.Fatalf("got %+v", ty)
	}
	if len(ty.Array.Sizes) != 1 || ty.Array.Sizes[0] != 3 {
		t.Fatalf("sizes = %v", ty.Array.Sizes)
	}
	if len(ty.Array.LowerBounds) != 0 {
		t.Fatalf("bounds = %v", ty.Array.LowerBounds)
	}
}

func TestReadCModReqConsumesModifiedType(t *testing.T) {
	// CModReq(TypeDef[1]) I4 - the upstream reference implementation never
	// implements this tag; this module reads the full token + modified type.
	data := []byte{0x1F, 0x04, 0x08}
	c := metadata.NewCursor(data)
	ty, err := ReadType(c)
	if err != nil {
		t.Fatalf("ReadType: %v", err)
	}
	if ty.Tag != TagCModReq || ty.Token.Kind() != metadata.TypeDef || ty.Token.RID() != 1 {
		t.Fatalf("got %+v", ty)
	}
	if ty.Elem == nil || ty.Elem.Tag != TagInt4 {
		t.Fatalf("modified type = %+v, want TagInt4", ty.Elem)
	}
}

func TestReadMethodSignatureWithSentinel(t *testing.T) {
	// DEFAULT, 2 params, return void, param1 I4, sentinel, param2 I8
	data := []byte{
		0x00,       // calling convention
		0x02,       // param count
		0x01,       // return type: Void
		0x08,       // param 1: I4
		0x41,       // sentinel
		0x0A,       // param 2 (vararg tail): I8
	}
	c := metadata.NewCursor(data)
	ms, err := ReadMethodSignature(c)
	if err != nil {
		t.Fatalf("ReadMethodSignature: %v", err)
	}
	if ms.ReturnType.Tag != TagVoid {
		t.Fatalf("return type = %v, want TagVoid", ms.ReturnType.Tag)
	}
	if len(ms.ParameterTypes) != 2 {
		t.Fatalf("got %d params, want 2", len(ms.ParameterTypes))
	}
	if ms.SentinelIndex != 1 {
		t.Fatalf("SentinelIndex = %d, want 1", ms.SentinelIndex)
	}
	if ms.ParameterTypes[0].Tag != TagInt4 || ms.ParameterTypes[1].Tag != TagInt8 {
		t.Fatalf("params = %+v", ms.ParameterTypes)
	}
}

func TestReadLocalVarSignature(t *testing.T) {
	data := []byte{0x07, 0x02, 0x08, 0x0A} // marker, count=2, I4, I8
	c := metadata.NewCursor(data)
	lvs, err := ReadLocalVarSignature(c)
	if err != nil {
		t.Fatalf("ReadLocalVarSignature: %v", err)
	}
	if len(lvs.Locals) != 2 || lvs.Locals[0].Tag != TagInt4 || lvs.Locals[1].Tag != TagInt8 {
		t.Fatalf("locals = %+v", lvs.Locals)
	}
}

func TestReadFieldSignature(t *testing.T) {
	data := []byte{0x06, 0x0E} // FIELD, String
	c := metadata.NewCursor(data)
	fs, err := ReadFieldSignature(c)
	if err != nil {
		t.Fatalf("ReadFieldSignature: %v", err)
	}
	if fs.Type.Tag != TagString {
		t.Fatalf("field type = %v, want TagString", fs.Type.Tag)
	}
}
