package metadata

import "fmt"

// TableKind identifies one of the 45 metadata tables (plus the #US heap,
// which is addressed the same way tokens address a table). Discriminants
// match ECMA-335 §II.22 and the Portable PDB debug tables used alongside
// them (0x30-0x37).
type TableKind byte

// Table kind discriminants, matching the top byte of a MetadataToken.
const (
	Module                 TableKind = 0x00
	TypeRef                TableKind = 0x01
	TypeDef                TableKind = 0x02
	FieldPtr               TableKind = 0x03
	Field                   TableKind = 0x04
	MethodPtr              TableKind = 0x05
	MethodDef              TableKind = 0x06
	ParamPtr               TableKind = 0x07
	Param                  TableKind = 0x08
	InterfaceImpl          TableKind = 0x09
	MemberRef              TableKind = 0x0A
	Constant               TableKind = 0x0B
	CustomAttribute        TableKind = 0x0C
	FieldMarshal           TableKind = 0x0D
	DeclSecurity           TableKind = 0x0E
	ClassLayout            TableKind = 0x0F
	FieldLayout            TableKind = 0x10
	StandAloneSig          TableKind = 0x11
	EventMap               TableKind = 0x12
	EventPtr               TableKind = 0x13
	Event                  TableKind = 0x14
	PropertyMap            TableKind = 0x15
	PropertyPtr            TableKind = 0x16
	Property               TableKind = 0x17
	MethodSemantics        TableKind = 0x18
	MethodImpl             TableKind = 0x19
	ModuleRef              TableKind = 0x1A
	TypeSpec               TableKind = 0x1B
	ImplMap                TableKind = 0x1C
	FieldRVA               TableKind = 0x1D
	ENCLog                 TableKind = 0x1E
	ENCMap                 TableKind = 0x1F
	Assembly               TableKind = 0x20
	AssemblyProcessor      TableKind = 0x21
	AssemblyOS             TableKind = 0x22
	AssemblyRef            TableKind = 0x23
	AssemblyRefProcessor   TableKind = 0x24
	AssemblyRefOS          TableKind = 0x25
	File                   TableKind = 0x26
	ExportedType           TableKind = 0x27
	ManifestResource       TableKind = 0x28
	NestedClass            TableKind = 0x29
	GenericParam           TableKind = 0x2A
	MethodSpec             TableKind = 0x2B
	GenericParamConstraint TableKind = 0x2C

	// Portable PDB debug tables; this module enumerates their kind but does
	// not decode their row contents (spec Non-goal: debug heap content).
	Document              TableKind = 0x30
	MethodDebugInformation TableKind = 0x31
	LocalScope             TableKind = 0x32
	LocalVariable          TableKind = 0x33
	LocalConstant          TableKind = 0x34
	ImportScope            TableKind = 0x35
	StateMachineMethod     TableKind = 0x36
	CustomDebugInformation TableKind = 0x37

	// UserString addresses the #US heap via the same token shape as a table
	// row, with kind 0x70 (ECMA-335 §II.24.2.4).
	UserString TableKind = 0x70
)

var tableKindNames = map[TableKind]string{
	Module: "Module", TypeRef: "TypeRef", TypeDef: "TypeDef", FieldPtr: "FieldPtr",
	Field: "Field", MethodPtr: "MethodPtr", MethodDef: "MethodDef", ParamPtr: "ParamPtr",
	Param: "Param", InterfaceImpl: "InterfaceImpl", MemberRef: "MemberRef", Constant: "Constant",
	CustomAttribute: "CustomAttribute", FieldMarshal: "FieldMarshal", DeclSecurity: "DeclSecurity",
	ClassLayout: "ClassLayout", FieldLayout: "FieldLayout", StandAloneSig: "StandAloneSig",
	EventMap: "EventMap", EventPtr: "EventPtr", Event: "Event", PropertyMap: "PropertyMap",
	PropertyPtr: "PropertyPtr", Property: "Property", MethodSemantics: "MethodSemantics",
	MethodImpl: "MethodImpl", ModuleRef: "ModuleRef", TypeSpec: "TypeSpec", ImplMap: "ImplMap",
	FieldRVA: "FieldRVA", ENCLog: "ENCLog", ENCMap: "ENCMap", Assembly: "Assembly",
	AssemblyProcessor: "AssemblyProcessor", AssemblyOS: "AssemblyOS", AssemblyRef: "AssemblyRef",
	AssemblyRefProcessor: "AssemblyRefProcessor", AssemblyRefOS: "AssemblyRefOS", File: "File",
	ExportedType: "ExportedType", ManifestResource: "ManifestResource", NestedClass: "NestedClass",
	GenericParam: "GenericParam", MethodSpec: "MethodSpec", GenericParamConstraint: "GenericParamConstraint",
	Document: "Document", MethodDebugInformation: "MethodDebugInformation", LocalScope: "LocalScope",
	LocalVariable: "LocalVariable", LocalConstant: "LocalConstant", ImportScope: "ImportScope",
	StateMachineMethod: "StateMachineMethod", CustomDebugInformation: "CustomDebugInformation",
	UserString: "UserString",
}

func (k TableKind) String() string {
	if name, ok := tableKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TableKind(%#x)", byte(k))
}

// Token is a 4-byte metadata token: a 1-byte table-kind discriminant in the
// top byte and a 1-based row index in the low 24 bits (ECMA-335 §II.22.2,
// §I.9.2). A zero token denotes "no entry" (RID 0 is never a valid row).
type Token uint32

// NewToken builds a token from a kind and a 1-based row index. The index
// must fit in 24 bits; callers in this module only ever build tokens from
// row counts that have already been bounds-checked against the table heap.
func NewToken(kind TableKind, rid uint32) Token {
	return Token(uint32(kind)<<24 | (rid & 0x00FFFFFF))
}

// Kind returns the token's table-kind discriminant.
func (t Token) Kind() TableKind { return TableKind(t >> 24) }

// RID returns the token's 1-based row index (0 means "null").
func (t Token) RID() uint32 { return uint32(t) & 0x00FFFFFF }

// IsNil reports whether the token's RID is zero.
func (t Token) IsNil() bool { return t.RID() == 0 }

func (t Token) String() string {
	return fmt.Sprintf("%s[%#x]", t.Kind(), t.RID())
}
