package metadata

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidHeap is returned when a heap index points past the end of its
// heap, or a string heap entry is not NUL-terminated within bounds.
var ErrInvalidHeap = errors.New("metadata: invalid heap index")

// StringsHeap is the #Strings stream: a flat byte blob of UTF-8,
// NUL-terminated strings, addressed by byte offset (ECMA-335 §II.24.2.3).
type StringsHeap struct {
	data []byte
}

// NewStringsHeap wraps the raw #Strings stream bytes.
func NewStringsHeap(data []byte) *StringsHeap { return &StringsHeap{data: data} }

// String returns the NUL-terminated string starting at offset. Offset 0
// always yields the empty string (the heap's first byte is a NUL).
func (h *StringsHeap) String(offset uint32) (string, error) {
	if h == nil || offset >= uint32(len(h.data)) {
		if offset == 0 {
			return "", nil
		}
		return "", ErrInvalidHeap
	}
	end := offset
	for end < uint32(len(h.data)) && h.data[end] != 0 {
		end++
	}
	if end >= uint32(len(h.data)) {
		return "", ErrInvalidHeap
	}
	return string(h.data[offset:end]), nil
}

// BlobHeap is the #Blob stream: length-prefixed (compressed-uint) binary
// blobs, addressed by byte offset (ECMA-335 §II.24.2.4).
type BlobHeap struct {
	data []byte
}

// NewBlobHeap wraps the raw #Blob stream bytes.
func NewBlobHeap(data []byte) *BlobHeap { return &BlobHeap{data: data} }

// Blob returns the blob at offset: a compressed-uint length, followed by
// that many bytes.
func (h *BlobHeap) Blob(offset uint32) ([]byte, error) {
	if h == nil || offset >= uint32(len(h.data)) {
		if offset == 0 {
			return nil, nil
		}
		return nil, ErrInvalidHeap
	}
	c := NewCursor(h.data)
	if err := c.Seek(offset); err != nil {
		return nil, err
	}
	length, err := c.CompressedUint()
	if err != nil {
		return nil, err
	}
	return c.Bytes(length)
}

// Cursor returns a Cursor positioned at offset into the blob heap, for
// decoders (sig, methodbody) that need to keep reading past a single blob's
// declared length (e.g. a sequence of type signatures).
func (h *BlobHeap) Cursor(offset uint32) (*Cursor, error) {
	if offset > uint32(len(h.data)) {
		return nil, ErrInvalidHeap
	}
	c := NewCursor(h.data)
	if err := c.Seek(offset); err != nil {
		return nil, err
	}
	return c, nil
}

// GUID is a 16-byte ECMA-335 GUID record (#GUID heap entries, §II.24.2.5).
// No third-party UUID library is grounded in the retrieval pack, so this
// type formats the mixed-endian layout by hand rather than reaching for one.
type GUID [16]byte

// String renders the GUID in the canonical
// {xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx} hyphenated hex form. The first
// three fields are little-endian; the last two are big-endian, matching
// the .NET/COM GUID wire layout.
func (g GUID) String() string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 36)
	put := func(pos int, b byte) {
		buf[pos] = hex[b>>4]
		buf[pos+1] = hex[b&0xF]
	}
	// Data1 (LE), Data2 (LE), Data3 (LE)
	put(0, g[3])
	put(2, g[2])
	put(4, g[1])
	put(6, g[0])
	buf[8] = '-'
	put(9, g[5])
	put(11, g[4])
	buf[13] = '-'
	put(14, g[7])
	put(16, g[6])
	buf[18] = '-'
	// Data4 (BE, split 2+6)
	put(19, g[8])
	put(21, g[9])
	buf[23] = '-'
	for i, b := range g[10:16] {
		put(24+i*2, b)
	}
	return string(buf)
}

// GUIDHeap is the #GUID stream: a flat array of 16-byte GUIDs, addressed by
// a 1-based index (ECMA-335 §II.24.2.5).
type GUIDHeap struct {
	data []byte
}

// NewGUIDHeap wraps the raw #GUID stream bytes.
func NewGUIDHeap(data []byte) *GUIDHeap { return &GUIDHeap{data: data} }

// GUID returns the 1-based index'th GUID. Index 0 means "no GUID" and
// returns the zero GUID.
func (h *GUIDHeap) GUID(index uint32) (GUID, error) {
	var g GUID
	if index == 0 {
		return g, nil
	}
	start := (index - 1) * 16
	if h == nil || start+16 > uint32(len(h.data)) {
		return g, ErrInvalidHeap
	}
	copy(g[:], h.data[start:start+16])
	return g, nil
}

// UserStringHeap is the #US stream: length-prefixed UTF-16LE strings plus a
// trailing single byte, addressed by byte offset and by the synthetic
// "String" token kind (ECMA-335 §II.24.2.4). Per-entry decoding into Go
// strings is an opt-in helper, not on the hot decode path: the core model
// keeps #US entries as raw bytes (see metadata.TableHeap), matching the
// spec's choice to leave encoding policy to the caller.
type UserStringHeap struct {
	data []byte
}

// NewUserStringHeap wraps the raw #US stream bytes.
func NewUserStringHeap(data []byte) *UserStringHeap { return &UserStringHeap{data: data} }

// Raw returns the raw blob at offset: a compressed-uint byte length
// (including the trailing marker byte) followed by that many bytes.
func (h *UserStringHeap) Raw(offset uint32) ([]byte, error) {
	if h == nil || offset >= uint32(len(h.data)) {
		if offset == 0 {
			return nil, nil
		}
		return nil, ErrInvalidHeap
	}
	c := NewCursor(h.data)
	if err := c.Seek(offset); err != nil {
		return nil, err
	}
	length, err := c.CompressedUint()
	if err != nil {
		return nil, err
	}
	return c.Bytes(length)
}

// DecodeUTF16 decodes the UTF-16LE payload of a #US entry (the raw blob
// minus its trailing single-byte marker) into a Go string.
func (h *UserStringHeap) DecodeUTF16(offset uint32) (string, error) {
	raw, err := h.Raw(offset)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	payload := raw
	if len(payload)%2 == 1 {
		payload = payload[:len(payload)-1]
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Heaps bundles the four heap streams a metadata root carries.
type Heaps struct {
	Strings *StringsHeap
	US      *UserStringHeap
	Blob    *BlobHeap
	GUID    *GUIDHeap
}
