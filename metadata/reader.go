// Package metadata decodes the ECMA-335 CLI metadata tables, heaps, tokens,
// and coded indices. It depends only on a raw byte region handed to it by an
// external collaborator (see clrmeta.RVAResolver / peaccess.File) — it knows
// nothing about sections, RVAs, or the PE container.
package metadata

import (
	"encoding/binary"
	"errors"
)

// ErrOutsideBoundary is returned when a read would cross the end of the
// underlying byte region.
var ErrOutsideBoundary = errors.New("metadata: read outside boundary")

// ErrInvalidCompressedInt is returned when a compressed unsigned integer's
// lead byte does not match any of the three valid encodings (ECMA-335 §II.23.2).
var ErrInvalidCompressedInt = errors.New("metadata: invalid compressed integer")

// Cursor is a small bounds-checked byte reader shared by every decoder in
// this module. It never panics; every read reports ErrOutsideBoundary
// instead of slicing out of range.
type Cursor struct {
	data []byte
	pos  uint32
}

// NewCursor wraps data starting at offset 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() uint32 { return c.pos }

// Len returns the total number of bytes backing the cursor.
func (c *Cursor) Len() uint32 { return uint32(len(c.data)) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() uint32 { return c.Len() - c.pos }

// Seek repositions the cursor to an absolute offset.
func (c *Cursor) Seek(pos uint32) error {
	if pos > c.Len() {
		return ErrOutsideBoundary
	}
	c.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n uint32) error {
	return c.Seek(c.pos + n)
}

// Bytes returns the next n bytes without copying, advancing the cursor.
func (c *Cursor) Bytes(n uint32) ([]byte, error) {
	if n > c.Remaining() {
		return nil, ErrOutsideBoundary
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I8, I32, I64 read signed immediates — used by the cil package, which
// embeds a *Cursor over the same byte region. Floating-point immediates are
// read with U32/U64 and converted by the caller.

func (c *Cursor) I8() (int8, error) {
	u, err := c.U8()
	return int8(u), err
}

func (c *Cursor) I32() (int32, error) {
	u, err := c.U32()
	return int32(u), err
}

func (c *Cursor) I64() (int64, error) {
	u, err := c.U64()
	return int64(u), err
}

// UintN reads a 1-, 2-, or 4-byte little-endian index, as used throughout
// the table heap for heap and table indices (width depends on IndexSizes)
// and for the fixed single-byte columns of tables like Constant.
func (c *Cursor) UintN(n uint32) (uint32, error) {
	switch n {
	case 1:
		v, err := c.U8()
		return uint32(v), err
	case 2:
		v, err := c.U16()
		return uint32(v), err
	case 4:
		return c.U32()
	default:
		return 0, errors.New("metadata: invalid index width")
	}
}

// CompressedUint decodes a compressed unsigned integer per ECMA-335 §II.23.2:
//   - if the high bit of the first byte is 0, the value is that byte (7 bits).
//   - if the top two bits are 10, the value is 14 bits held across 2 bytes.
//   - if the top three bits are 110, the value is 29 bits held across 4 bytes.
//   - 111xxxxx is not a valid lead byte.
func (c *Cursor) CompressedUint() (uint32, error) {
	b0, err := c.U8()
	if err != nil {
		return 0, err
	}

	switch {
	case b0&0x80 == 0:
		return uint32(b0), nil
	case b0&0xC0 == 0x80:
		b1, err := c.U8()
		if err != nil {
			return 0, err
		}
		return (uint32(b0&0x3F) << 8) | uint32(b1), nil
	case b0&0xE0 == 0xC0:
		b1, err := c.U8()
		if err != nil {
			return 0, err
		}
		b2, err := c.U8()
		if err != nil {
			return 0, err
		}
		b3, err := c.U8()
		if err != nil {
			return 0, err
		}
		return (uint32(b0&0x1F) << 24) | (uint32(b1) << 16) | (uint32(b2) << 8) | uint32(b3), nil
	default:
		return 0, ErrInvalidCompressedInt
	}
}

// CompressedInt decodes a compressed *signed* integer per ECMA-335 §II.23.2,
// used by the array lower-bound encoding: the value is first decoded as an
// unsigned compressed integer of the implied width, the low bit is the sign
// flag, and the magnitude is obtained by a rotate-right-by-one of the
// remaining bits.
func (c *Cursor) CompressedInt() (int32, error) {
	start := c.pos
	u, err := c.CompressedUint()
	if err != nil {
		return 0, err
	}
	width := c.pos - start

	var bits uint32
	switch width {
	case 1:
		bits = 7
	case 2:
		bits = 14
	case 4:
		bits = 29
	}

	negative := u&1 != 0
	magnitude := u >> 1
	if !negative {
		return int32(magnitude), nil
	}
	// Rotate back: ECMA-335 encodes negative n as ((n << 1) | 1) rotated
	// right by one within the field width, so recover n by sign-extending
	// the top bit of the field into the result.
	signExtended := magnitude | (^uint32(0) << (bits - 1))
	return int32(signExtended), nil
}

// WriteCompressedUint encodes v into its shortest compressed form. Used by
// tests to build synthetic blob fixtures.
func WriteCompressedUint(v uint32) []byte {
	switch {
	case v <= 0x7F:
		return []byte{byte(v)}
	case v <= 0x3FFF:
		return []byte{byte(v>>8) | 0x80, byte(v)}
	default:
		return []byte{
			byte(v>>24) | 0xC0,
			byte(v >> 16),
			byte(v >> 8),
			byte(v),
		}
	}
}
