package metadata

import "testing"

func TestCodedIndexTagBits(t *testing.T) {
	// TypeDefOrRef has 3 candidates -> 2 tag bits.
	if got := TypeDefOrRef.tagBits(); got != 2 {
		t.Errorf("TypeDefOrRef.tagBits() = %d, want 2", got)
	}
	// ResolutionScope has 4 candidates -> 2 tag bits.
	if got := ResolutionScope.tagBits(); got != 2 {
		t.Errorf("ResolutionScope.tagBits() = %d, want 2", got)
	}
	// HasCustomAttribute has 22 candidates -> 5 tag bits.
	if got := HasCustomAttribute.tagBits(); got != 5 {
		t.Errorf("HasCustomAttribute.tagBits() = %d, want 5", got)
	}
	// CustomAttributeType is special-cased to 3 bits.
	if got := CustomAttributeType.tagBits(); got != 3 {
		t.Errorf("CustomAttributeType.tagBits() = %d, want 3", got)
	}
}

func TestCodedIndexDecode(t *testing.T) {
	// tag 1 (TypeRef), rid 5, 2 tag bits -> raw = (5<<2)|1
	raw := uint32(5<<2) | 1
	table, rid, ok := TypeDefOrRef.Decode(raw)
	if !ok || table != TypeRef || rid != 5 {
		t.Errorf("Decode(%#x) = (%v, %d, %v), want (TypeRef, 5, true)", raw, table, rid, ok)
	}
}

func TestCodedIndexEncode(t *testing.T) {
	raw, ok := TypeDefOrRef.Encode(NewToken(TypeRef, 5))
	if !ok || raw != uint32(5<<2)|1 {
		t.Errorf("Encode(TypeRef,5) = (%#x, %v), want (%#x, true)", raw, ok, uint32(5<<2)|1)
	}

	if _, ok := TypeDefOrRef.Encode(NewToken(MethodDef, 1)); ok {
		t.Error("Encode should reject a table that isn't one of the kind's candidates")
	}
}

func TestCodedIndexEncodeDecodeRoundTrip(t *testing.T) {
	for _, tok := range []Token{
		NewToken(TypeDef, 1), NewToken(TypeRef, 9), NewToken(TypeSpec, 42),
	} {
		raw, ok := TypeDefOrRef.Encode(tok)
		if !ok {
			t.Fatalf("Encode(%v) failed", tok)
		}
		table, rid, ok := TypeDefOrRef.Decode(raw)
		if !ok || NewToken(table, rid) != tok {
			t.Errorf("Decode(Encode(%v)) = (%v, %d, %v), want the original token back", tok, table, rid, ok)
		}
	}
}

func TestCustomAttributeTypeSparseTags(t *testing.T) {
	// tag 2 -> MethodDef, tag 3 -> MemberRef; tags 0/1 invalid.
	if table, ok := CustomAttributeType.TableForTag(2); !ok || table != MethodDef {
		t.Errorf("tag 2 = (%v, %v), want (MethodDef, true)", table, ok)
	}
	if table, ok := CustomAttributeType.TableForTag(3); !ok || table != MemberRef {
		t.Errorf("tag 3 = (%v, %v), want (MemberRef, true)", table, ok)
	}
	if _, ok := CustomAttributeType.TableForTag(0); ok {
		t.Error("tag 0 should be invalid for CustomAttributeType")
	}
	if _, ok := CustomAttributeType.TableForTag(1); ok {
		t.Error("tag 1 should be invalid for CustomAttributeType")
	}
}

func TestCodedIndexSizeWidensOnLargeTable(t *testing.T) {
	small := func(TableKind) uint32 { return 10 }
	if got := TypeDefOrRef.Size(small); got != 2 {
		t.Errorf("Size with small tables = %d, want 2", got)
	}

	large := func(t TableKind) uint32 {
		if t == TypeDef {
			return 1 << 20
		}
		return 10
	}
	if got := TypeDefOrRef.Size(large); got != 4 {
		t.Errorf("Size with a large candidate table = %d, want 4", got)
	}
}

func TestImplementationIncludesFile(t *testing.T) {
	found := false
	for _, tk := range codedIndexTables[Implementation] {
		if tk == File {
			found = true
		}
	}
	if !found {
		t.Error("Implementation coded index must include File")
	}
}

func TestHasCustomAttributeHasAllVariants(t *testing.T) {
	if got := len(codedIndexTables[HasCustomAttribute]); got != 22 {
		t.Errorf("HasCustomAttribute has %d variants, want 22", got)
	}
}
