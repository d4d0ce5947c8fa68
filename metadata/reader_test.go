package metadata

import "testing"

func TestCompressedUint(t *testing.T) {
	cases := []struct {
		data []byte
		want uint32
	}{
		{[]byte{0x03}, 0x03},
		{[]byte{0x7F}, 0x7F},
		{[]byte{0x80, 0x80}, 0x80},
		{[]byte{0xAE, 0x57}, 0x2E57},
		{[]byte{0xBF, 0xFF}, 0x3FFF},
		{[]byte{0xC0, 0x00, 0x40, 0x00}, 0x4000},
		{[]byte{0xDF, 0xFF, 0xFF, 0xFF}, 0x1FFFFFFF},
	}
	for _, tc := range cases {
		c := NewCursor(tc.data)
		got, err := c.CompressedUint()
		if err != nil {
			t.Fatalf("CompressedUint(%x): %v", tc.data, err)
		}
		if got != tc.want {
			t.Errorf("CompressedUint(%x) = %#x, want %#x", tc.data, got, tc.want)
		}
	}
}

func TestCompressedUintInvalidLeadByte(t *testing.T) {
	c := NewCursor([]byte{0xFF})
	if _, err := c.CompressedUint(); err != ErrInvalidCompressedInt {
		t.Fatalf("expected ErrInvalidCompressedInt, got %v", err)
	}
}

func TestCompressedIntDecode(t *testing.T) {
	cases := []struct {
		data []byte
		want int32
	}{
		{[]byte{0x06}, 3},
		{[]byte{0x7B}, -3},
		{[]byte{0x80, 0x80}, 64},
		{[]byte{0x01}, -64},
	}
	for _, tc := range cases {
		c := NewCursor(tc.data)
		got, err := c.CompressedInt()
		if err != nil {
			t.Fatalf("CompressedInt(%x): %v", tc.data, err)
		}
		if got != tc.want {
			t.Errorf("CompressedInt(%x) = %d, want %d", tc.data, got, tc.want)
		}
	}
}

func TestCursorOutOfBounds(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	if _, err := c.Bytes(3); err != ErrOutsideBoundary {
		t.Fatalf("expected ErrOutsideBoundary, got %v", err)
	}
	if err := c.Seek(10); err != ErrOutsideBoundary {
		t.Fatalf("expected ErrOutsideBoundary on Seek, got %v", err)
	}
}

func TestWriteCompressedUintRoundTrips(t *testing.T) {
	for _, v := range []uint32{0, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFFFF} {
		encoded := WriteCompressedUint(v)
		c := NewCursor(encoded)
		got, err := c.CompressedUint()
		if err != nil {
			t.Fatalf("WriteCompressedUint(%#x) -> decode error: %v", v, err)
		}
		if got != v {
			t.Errorf("WriteCompressedUint(%#x) round-trip = %#x", v, got)
		}
	}
}
