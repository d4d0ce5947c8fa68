package metadata

// HeapSizes are the bit flags carried by the #~/#- stream header's
// HeapSizes byte, each selecting a wide (4-byte) index into the
// correspondingly named heap instead of the default narrow (2-byte) one
// (ECMA-335 §II.24.2.6).
const (
	HeapSizeWideStrings = 0x01
	HeapSizeWideGUID    = 0x02
	HeapSizeWideBlob    = 0x04
)

// IndexSizes is the component that computes every variable column width a
// table row layout depends on: the three heap index widths, the 45 table
// row-index widths, and the fourteen coded-index widths. It is computed
// once per table heap and then consulted on every subsequent row decode.
type IndexSizes struct {
	StringIndexSize uint32
	GUIDIndexSize   uint32
	BlobIndexSize   uint32

	tableRows [64]uint32
	coded     [numCodedIndexKinds]uint32
}

// NewIndexSizes computes index widths from the stream header's HeapSizes
// byte and a slice of per-table row counts indexed by TableKind.
func NewIndexSizes(heapSizes byte, rowCounts [64]uint32) *IndexSizes {
	s := &IndexSizes{
		StringIndexSize: heapIndexSize(heapSizes, HeapSizeWideStrings),
		GUIDIndexSize:   heapIndexSize(heapSizes, HeapSizeWideGUID),
		BlobIndexSize:   heapIndexSize(heapSizes, HeapSizeWideBlob),
		tableRows:       rowCounts,
	}

	rc := func(t TableKind) uint32 { return rowCounts[t] }
	for k := CodedIndexKind(0); k < numCodedIndexKinds; k++ {
		s.coded[k] = k.Size(rc)
	}
	return s
}

func heapIndexSize(heapSizes byte, bit byte) uint32 {
	if heapSizes&bit != 0 {
		return 4
	}
	return 2
}

// TableIndexSize returns the width (2 or 4 bytes) of a plain row-index
// column into t: 2 bytes unless t has more than 65536 rows, matching the
// coded-index boundary at tagBits=0 (CodedIndexKind.Size).
func (s *IndexSizes) TableIndexSize(t TableKind) uint32 {
	if s.tableRows[t] > 0x10000 {
		return 4
	}
	return 2
}

// CodedIndexSize returns the precomputed width of a coded index column.
func (s *IndexSizes) CodedIndexSize(k CodedIndexKind) uint32 {
	return s.coded[k]
}

// RowCount returns the number of rows in table t.
func (s *IndexSizes) RowCount(t TableKind) uint32 {
	return s.tableRows[t]
}
