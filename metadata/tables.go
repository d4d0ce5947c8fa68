package metadata

// The row types below mirror the handful of ECMA-335 tables (§II.22) this
// module's callers actually decode: object-model population (clrmodel),
// method body decoding (methodbody), and assembly identity probing. Every
// other table still participates in row-count bookkeeping and coded-index
// sizing via the schemas map in tableheap.go — rawRow can decode any of
// them — but has no typed wrapper here because nothing in this codebase
// reads one. Heap-backed columns (name, signature, ...) are kept as heap
// offsets rather than eagerly resolved strings/blobs — callers resolve them
// through TableHeap.ResolveString/ResolveBlob/ResolveGUID, so a caller that
// only needs tokens never pays for string decoding.

type ModuleRow struct {
	Generation uint16
	Name       uint32 // #Strings offset
	Mvid       uint32 // #GUID index
	EncId      uint32 // #GUID index
	EncBaseId  uint32 // #GUID index
}

type TypeDefRow struct {
	Flags         uint32
	TypeName      uint32
	TypeNamespace uint32
	Extends       Token
	FieldList     Token
	MethodList    Token
}

type FieldRow struct {
	Flags     uint16
	Name      uint32
	Signature uint32
}

type MethodDefRow struct {
	RVA       uint32
	ImplFlags uint16
	Flags     uint16
	Name      uint32
	Signature uint32
	ParamList Token
}

type ConstantRow struct {
	Type   uint8
	Parent Token
	Value  uint32
}

type StandAloneSigRow struct{ Signature uint32 }

type AssemblyRow struct {
	HashAlgId      uint32
	MajorVersion   uint16
	MinorVersion   uint16
	BuildNumber    uint16
	RevisionNumber uint16
	Flags          uint32
	PublicKey      uint32
	Name           uint32
	Culture        uint32
}

type AssemblyRefRow struct {
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Flags            uint32
	PublicKeyOrToken uint32
	Name             uint32
	Culture          uint32
	HashValue        uint32
}

// Per-table accessors. Each decodes the row with TableHeap.rawRow and maps
// the positional values onto the named struct above; the mapping order
// always matches the column order declared in schemas (tableheap.go).

func (th *TableHeap) ModuleRow(rid uint32) (ModuleRow, error) {
	v, err := th.rawRow(Module, rid)
	if err != nil {
		return ModuleRow{}, err
	}
	return ModuleRow{uint16(v[0]), v[1], v[2], v[3], v[4]}, nil
}

func (th *TableHeap) TypeDefRow(rid uint32) (TypeDefRow, error) {
	v, err := th.rawRow(TypeDef, rid)
	if err != nil {
		return TypeDefRow{}, err
	}
	return TypeDefRow{v[0], v[1], v[2], Token(v[3]), Token(v[4]), Token(v[5])}, nil
}

func (th *TableHeap) FieldRow(rid uint32) (FieldRow, error) {
	v, err := th.rawRow(Field, rid)
	if err != nil {
		return FieldRow{}, err
	}
	return FieldRow{uint16(v[0]), v[1], v[2]}, nil
}

func (th *TableHeap) MethodDefRow(rid uint32) (MethodDefRow, error) {
	v, err := th.rawRow(MethodDef, rid)
	if err != nil {
		return MethodDefRow{}, err
	}
	return MethodDefRow{v[0], uint16(v[1]), uint16(v[2]), v[3], v[4], Token(v[5])}, nil
}

func (th *TableHeap) ConstantRow(rid uint32) (ConstantRow, error) {
	v, err := th.rawRow(Constant, rid)
	if err != nil {
		return ConstantRow{}, err
	}
	return ConstantRow{uint8(v[0]), Token(v[2]), v[3]}, nil
}

func (th *TableHeap) StandAloneSigRow(rid uint32) (StandAloneSigRow, error) {
	v, err := th.rawRow(StandAloneSig, rid)
	if err != nil {
		return StandAloneSigRow{}, err
	}
	return StandAloneSigRow{v[0]}, nil
}

func (th *TableHeap) AssemblyRow(rid uint32) (AssemblyRow, error) {
	v, err := th.rawRow(Assembly, rid)
	if err != nil {
		return AssemblyRow{}, err
	}
	return AssemblyRow{
		HashAlgId: v[0], MajorVersion: uint16(v[1]), MinorVersion: uint16(v[2]),
		BuildNumber: uint16(v[3]), RevisionNumber: uint16(v[4]), Flags: v[5],
		PublicKey: v[6], Name: v[7], Culture: v[8],
	}, nil
}

func (th *TableHeap) AssemblyRefRow(rid uint32) (AssemblyRefRow, error) {
	v, err := th.rawRow(AssemblyRef, rid)
	if err != nil {
		return AssemblyRefRow{}, err
	}
	return AssemblyRefRow{
		MajorVersion: uint16(v[0]), MinorVersion: uint16(v[1]), BuildNumber: uint16(v[2]),
		RevisionNumber: uint16(v[3]), Flags: v[4], PublicKeyOrToken: v[5],
		Name: v[6], Culture: v[7], HashValue: v[8],
	}, nil
}
