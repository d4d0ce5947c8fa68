package metadata

import (
	"errors"
)

// ErrUnknownTable is returned when a row is requested from a table kind that
// has no row layout in schemas. A table with a layout that the Valid bitmask
// did not mark present has zero rows, so asking for a row of it yields
// ErrRowOutOfRange instead.
var ErrUnknownTable = errors.New("metadata: table not present")

// ErrRowOutOfRange is returned when a 1-based row index falls outside a
// table's row count.
var ErrRowOutOfRange = errors.New("metadata: row index out of range")

// columnKind identifies the shape of one column within a table row layout.
type columnKind int

const (
	colU8 columnKind = iota
	colU16
	colU32
	colString
	colGUID
	colBlob
	colTableIndex  // a plain row index into a single named table
	colCodedIndex  // a coded index spanning several candidate tables
)

type column struct {
	kind  columnKind
	table TableKind      // valid when kind == colTableIndex
	coded CodedIndexKind // valid when kind == colCodedIndex
}

func (c column) width(sizes *IndexSizes) uint32 {
	switch c.kind {
	case colU8:
		return 1
	case colU16:
		return 2
	case colU32:
		return 4
	case colString:
		return sizes.StringIndexSize
	case colGUID:
		return sizes.GUIDIndexSize
	case colBlob:
		return sizes.BlobIndexSize
	case colTableIndex:
		return sizes.TableIndexSize(c.table)
	case colCodedIndex:
		return sizes.CodedIndexSize(c.coded)
	default:
		return 0
	}
}

// schemas maps every table kind carrying row data to its ordered column
// layout (ECMA-335 §II.22). Ptr tables and ENCLog/ENCMap are included for
// completeness of row-count bookkeeping. The Portable PDB debug tables
// (0x30-0x37) have no entry: ParseTableHeap gives them no byte span and
// rawRow reports ErrUnknownTable for them.
var schemas = map[TableKind][]column{
	Module:      {{kind: colU16}, {kind: colString}, {kind: colGUID}, {kind: colGUID}, {kind: colGUID}},
	TypeRef:     {{kind: colCodedIndex, coded: ResolutionScope}, {kind: colString}, {kind: colString}},
	TypeDef:     {{kind: colU32}, {kind: colString}, {kind: colString}, {kind: colCodedIndex, coded: TypeDefOrRef}, {kind: colTableIndex, table: Field}, {kind: colTableIndex, table: MethodDef}},
	FieldPtr:    {{kind: colTableIndex, table: Field}},
	Field:       {{kind: colU16}, {kind: colString}, {kind: colBlob}},
	MethodPtr:   {{kind: colTableIndex, table: MethodDef}},
	MethodDef:   {{kind: colU32}, {kind: colU16}, {kind: colU16}, {kind: colString}, {kind: colBlob}, {kind: colTableIndex, table: Param}},
	ParamPtr:    {{kind: colTableIndex, table: Param}},
	Param:       {{kind: colU16}, {kind: colU16}, {kind: colString}},
	InterfaceImpl: {{kind: colTableIndex, table: TypeDef}, {kind: colCodedIndex, coded: TypeDefOrRef}},
	MemberRef:   {{kind: colCodedIndex, coded: MemberRefParent}, {kind: colString}, {kind: colBlob}},
	Constant:    {{kind: colU8}, {kind: colU8}, {kind: colCodedIndex, coded: HasConstant}, {kind: colBlob}},
	CustomAttribute: {{kind: colCodedIndex, coded: HasCustomAttribute}, {kind: colCodedIndex, coded: CustomAttributeType}, {kind: colBlob}},
	FieldMarshal: {{kind: colCodedIndex, coded: HasFieldMarshal}, {kind: colBlob}},
	DeclSecurity: {{kind: colU16}, {kind: colCodedIndex, coded: HasDeclSecurity}, {kind: colBlob}},
	ClassLayout:  {{kind: colU16}, {kind: colU32}, {kind: colTableIndex, table: TypeDef}},
	FieldLayout:  {{kind: colU32}, {kind: colTableIndex, table: Field}},
	StandAloneSig: {{kind: colBlob}},
	EventMap:    {{kind: colTableIndex, table: TypeDef}, {kind: colTableIndex, table: Event}},
	EventPtr:    {{kind: colTableIndex, table: Event}},
	Event:       {{kind: colU16}, {kind: colString}, {kind: colCodedIndex, coded: TypeDefOrRef}},
	PropertyMap: {{kind: colTableIndex, table: TypeDef}, {kind: colTableIndex, table: Property}},
	PropertyPtr: {{kind: colTableIndex, table: Property}},
	Property:    {{kind: colU16}, {kind: colString}, {kind: colBlob}},
	MethodSemantics: {{kind: colU16}, {kind: colTableIndex, table: MethodDef}, {kind: colCodedIndex, coded: HasSemantics}},
	MethodImpl:  {{kind: colTableIndex, table: TypeDef}, {kind: colCodedIndex, coded: MethodDefOrRef}, {kind: colCodedIndex, coded: MethodDefOrRef}},
	ModuleRef:   {{kind: colString}},
	TypeSpec:    {{kind: colBlob}},
	ImplMap:     {{kind: colU16}, {kind: colCodedIndex, coded: MemberForwarded}, {kind: colString}, {kind: colTableIndex, table: ModuleRef}},
	FieldRVA:    {{kind: colU32}, {kind: colTableIndex, table: Field}},
	ENCLog:      {{kind: colU32}, {kind: colU32}},
	ENCMap:      {{kind: colU32}},
	Assembly:    {{kind: colU32}, {kind: colU16}, {kind: colU16}, {kind: colU16}, {kind: colU16}, {kind: colU32}, {kind: colBlob}, {kind: colString}, {kind: colString}},
	AssemblyProcessor: {{kind: colU32}},
	AssemblyOS:        {{kind: colU32}, {kind: colU32}, {kind: colU32}},
	AssemblyRef:       {{kind: colU16}, {kind: colU16}, {kind: colU16}, {kind: colU16}, {kind: colU32}, {kind: colBlob}, {kind: colString}, {kind: colString}, {kind: colBlob}},
	AssemblyRefProcessor: {{kind: colU32}, {kind: colTableIndex, table: AssemblyRef}},
	AssemblyRefOS:        {{kind: colU32}, {kind: colU32}, {kind: colU32}, {kind: colTableIndex, table: AssemblyRef}},
	File:             {{kind: colU32}, {kind: colString}, {kind: colBlob}},
	ExportedType:     {{kind: colU32}, {kind: colU32}, {kind: colString}, {kind: colString}, {kind: colCodedIndex, coded: Implementation}},
	ManifestResource: {{kind: colU32}, {kind: colU32}, {kind: colString}, {kind: colCodedIndex, coded: Implementation}},
	NestedClass:      {{kind: colTableIndex, table: TypeDef}, {kind: colTableIndex, table: TypeDef}},
	GenericParam:     {{kind: colU16}, {kind: colU16}, {kind: colCodedIndex, coded: TypeOrMethodDef}, {kind: colString}},
	MethodSpec:       {{kind: colCodedIndex, coded: MethodDefOrRef}, {kind: colBlob}},
	GenericParamConstraint: {{kind: colTableIndex, table: GenericParam}, {kind: colCodedIndex, coded: TypeDefOrRef}},
}

// TableHeap is the decoded #~/#- stream: row counts for every present
// table, the computed IndexSizes, and byte offsets of each table's row
// region within the metadata blob, ready for random-access row decoding.
type TableHeap struct {
	data      []byte
	Heaps     Heaps
	Sizes     *IndexSizes
	MajorVersion, MinorVersion byte
	rowCounts  [64]uint32
	tableStart [64]uint32 // byte offset of each table's first row
	rowSize    [64]uint32
}

// StreamHeaderSize is the fixed portion of the #~/#- stream header, before
// the variable-length row-count array (ECMA-335 §II.24.2.6).
const StreamHeaderSize = 24

// ParseTableHeap decodes the #~/#- stream header and computes every table's
// row count, row size, and start offset, without decoding individual rows
// (those are decoded lazily by rawRow and the typed accessors in tables.go).
func ParseTableHeap(data []byte, heaps Heaps) (*TableHeap, error) {
	c := NewCursor(data)
	if _, err := c.U32(); err != nil { // Reserved, always 0
		return nil, err
	}
	major, err := c.U8()
	if err != nil {
		return nil, err
	}
	minor, err := c.U8()
	if err != nil {
		return nil, err
	}
	heapSizes, err := c.U8()
	if err != nil {
		return nil, err
	}
	if _, err := c.U8(); err != nil { // Reserved2, always 1
		return nil, err
	}
	valid, err := c.U64()
	if err != nil {
		return nil, err
	}
	if _, err := c.U64(); err != nil { // Sorted bitvector; row layout does not depend on it
		return nil, err
	}

	var rowCounts [64]uint32
	for i := TableKind(0); i < 64; i++ {
		if valid&(1<<i) == 0 {
			continue
		}
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		rowCounts[i] = n
	}

	sizes := NewIndexSizes(heapSizes, rowCounts)

	th := &TableHeap{
		data:         data,
		Heaps:        heaps,
		Sizes:        sizes,
		MajorVersion: major,
		MinorVersion: minor,
		rowCounts:    rowCounts,
	}

	offset := c.Pos()
	for i := TableKind(0); i < 64; i++ {
		if rowCounts[i] == 0 {
			continue
		}
		cols, ok := schemas[i]
		if !ok {
			continue
		}
		var rowSize uint32
		for _, col := range cols {
			rowSize += col.width(sizes)
		}
		th.rowSize[i] = rowSize
		th.tableStart[i] = offset
		offset += rowSize * rowCounts[i]
	}

	return th, nil
}

// RowCount returns the number of rows table t has.
func (th *TableHeap) RowCount(t TableKind) uint32 { return th.rowCounts[t] }

// rawRow decodes the 1-based rid'th row of table t into one uint32 per
// column, in schema order. Coded-index and table-index columns are decoded
// to the metadata token of the row they point to; 0 means "no reference".
func (th *TableHeap) rawRow(t TableKind, rid uint32) ([]uint32, error) {
	cols, ok := schemas[t]
	if !ok {
		return nil, ErrUnknownTable
	}
	if rid == 0 || rid > th.rowCounts[t] {
		return nil, ErrRowOutOfRange
	}

	offset := th.tableStart[t] + (rid-1)*th.rowSize[t]
	c := NewCursor(th.data)
	if err := c.Seek(offset); err != nil {
		return nil, err
	}

	out := make([]uint32, len(cols))
	for i, col := range cols {
		v, err := c.UintN(col.width(th.Sizes))
		if err != nil {
			return nil, err
		}
		switch col.kind {
		case colTableIndex:
			if v == 0 {
				out[i] = 0
			} else {
				out[i] = uint32(NewToken(col.table, v))
			}
		case colCodedIndex:
			if tok, ok := col.coded.Token(v); ok {
				out[i] = uint32(tok)
			} else {
				out[i] = 0
			}
		default:
			out[i] = v
		}
	}
	return out, nil
}

// ResolveString resolves a #Strings heap offset to its Go string.
func (th *TableHeap) ResolveString(offset uint32) (string, error) {
	return th.Heaps.Strings.String(offset)
}

// ResolveBlob resolves a #Blob heap offset to its raw bytes.
func (th *TableHeap) ResolveBlob(offset uint32) ([]byte, error) {
	return th.Heaps.Blob.Blob(offset)
}

// ResolveGUID resolves a #GUID heap 1-based index to its GUID value.
func (th *TableHeap) ResolveGUID(index uint32) (GUID, error) {
	return th.Heaps.GUID.GUID(index)
}
