package metadata

// CodedIndexKind identifies one of the fourteen coded-index shapes ECMA-335
// uses to let a single column reference rows in more than one table
// (§II.24.2.6). Each kind packs a small tag identifying which of its
// candidate tables a row belongs to into the low bits of the value, with
// the remaining bits holding a 1-based row index into that table.
type CodedIndexKind int

const (
	TypeDefOrRef CodedIndexKind = iota
	HasConstant
	HasCustomAttribute
	HasFieldMarshal
	HasDeclSecurity
	MemberRefParent
	HasSemantics
	MethodDefOrRef
	MemberForwarded
	Implementation
	CustomAttributeType
	ResolutionScope
	TypeOrMethodDef
	HasCustomDebugInformation
	numCodedIndexKinds
)

// codedIndexTables lists, for each coded-index kind, the candidate tables in
// tag order (tag 0 is the first entry). Ported from cilium's macro-generated
// variant lists (raw/indices.rs), completing two gaps found there:
//   - HasCustomAttribute must list all 22 ECMA-335 variants, not 17.
//   - Implementation must include File, not just AssemblyRef/ExportedType.
var codedIndexTables = [numCodedIndexKinds][]TableKind{
	TypeDefOrRef: {TypeDef, TypeRef, TypeSpec},
	HasConstant:  {Field, Param, Property},
	HasCustomAttribute: {
		MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
		Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
		TypeSpec, Assembly, AssemblyRef, File, ExportedType, ManifestResource,
		GenericParam, GenericParamConstraint, MethodSpec,
	},
	HasFieldMarshal: {Field, Param},
	HasDeclSecurity: {TypeDef, MethodDef, Assembly},
	MemberRefParent: {TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec},
	HasSemantics:    {Event, Property},
	MethodDefOrRef:  {MethodDef, MemberRef},
	MemberForwarded: {Field, MethodDef},
	Implementation:  {File, AssemblyRef, ExportedType},
	// CustomAttributeType is special-cased below: only tags 2 and 3 (MethodDef,
	// MemberRef) are valid, but the tag occupies 3 bits regardless (ECMA-335
	// §II.24.2.6 note), so the table list here is positional padding.
	CustomAttributeType: {TableKind(0xFF), TableKind(0xFF), MethodDef, MemberRef},
	ResolutionScope:     {Module, ModuleRef, AssemblyRef, TypeRef},
	TypeOrMethodDef:     {TypeDef, MethodDef},
	HasCustomDebugInformation: {
		MethodDef, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef,
		Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef,
		TypeSpec, Assembly, AssemblyRef, File, ExportedType, ManifestResource,
		GenericParam, GenericParamConstraint, MethodSpec, Document, LocalScope,
		LocalVariable, LocalConstant, ImportScope,
	},
}

// tagBits returns the number of bits this coded index reserves for its table
// tag: ceil(log2(len(candidates))), with CustomAttributeType special-cased
// to 3 bits even though only 2 of its 8 possible tag values are valid.
func (k CodedIndexKind) tagBits() uint {
	if k == CustomAttributeType {
		return 3
	}
	n := len(codedIndexTables[k])
	bits := uint(0)
	for (1 << bits) < n {
		bits++
	}
	return bits
}

// tagMask returns the bitmask covering tagBits low bits.
func (k CodedIndexKind) tagMask() uint32 {
	return (1 << k.tagBits()) - 1
}

// TableForTag returns the table kind associated with a coded index's tag
// value, or false if the tag is out of range (or, for CustomAttributeType,
// not one of the two valid sparse values).
func (k CodedIndexKind) TableForTag(tag uint32) (TableKind, bool) {
	tables := codedIndexTables[k]
	if uint32(len(tables)) <= tag {
		return 0, false
	}
	t := tables[tag]
	if t == TableKind(0xFF) {
		return 0, false
	}
	return t, true
}

// Size computes the coded index's byte width — 2 unless the row count of any
// candidate table would overflow the bits left over after the tag, in which
// case 4 (ECMA-335 §II.24.2.6, "the index is 4 bytes wide if rows>2^(16-tagbits)
// in any of the tables it can reference").
func (k CodedIndexKind) Size(rowCounts func(TableKind) uint32) uint32 {
	limit := uint32(1) << (16 - k.tagBits())
	for _, t := range codedIndexTables[k] {
		if t == TableKind(0xFF) {
			continue
		}
		if rowCounts(t) > limit {
			return 4
		}
	}
	return 2
}

// Decode splits a coded index's raw value into its target table kind and
// 1-based row index.
func (k CodedIndexKind) Decode(raw uint32) (TableKind, uint32, bool) {
	tag := raw & k.tagMask()
	rid := raw >> k.tagBits()
	table, ok := k.TableForTag(tag)
	return table, rid, ok
}

// Token converts a coded index's raw value directly into a metadata token,
// for callers that only care about the referenced row's identity.
func (k CodedIndexKind) Token(raw uint32) (Token, bool) {
	table, rid, ok := k.Decode(raw)
	if !ok {
		return 0, false
	}
	return NewToken(table, rid), true
}

// Encode inverts Decode: given a token, it locates the token's table among
// k's candidates and packs the candidate's tag into the low tagBits() bits
// with the token's RID shifted above them. It reports false if the token's
// table is not one of k's candidates.
func (k CodedIndexKind) Encode(t Token) (uint32, bool) {
	table := t.Kind()
	for tag, candidate := range codedIndexTables[k] {
		if candidate == table {
			return (t.RID() << k.tagBits()) | uint32(tag), true
		}
	}
	return 0, false
}
