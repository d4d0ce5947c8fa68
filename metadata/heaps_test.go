package metadata

import "testing"

func TestStringsHeap(t *testing.T) {
	h := NewStringsHeap([]byte{0x00, 'H', 'i', 0x00, 'X', 0x00})
	if s, err := h.String(0); err != nil || s != "" {
		t.Fatalf("String(0) = %q, %v", s, err)
	}
	if s, err := h.String(1); err != nil || s != "Hi" {
		t.Fatalf("String(1) = %q, %v", s, err)
	}
	if s, err := h.String(4); err != nil || s != "X" {
		t.Fatalf("String(4) = %q, %v", s, err)
	}
}

func TestBlobHeap(t *testing.T) {
	data := append(WriteCompressedUint(3), []byte{0xAA, 0xBB, 0xCC}...)
	h := NewBlobHeap(data)
	b, err := h.Blob(0)
	if err != nil {
		t.Fatalf("Blob(0): %v", err)
	}
	if len(b) != 3 || b[0] != 0xAA || b[2] != 0xCC {
		t.Fatalf("Blob(0) = %x", b)
	}
	if b, err := h.Blob(0xFFFF); err == nil {
		t.Fatalf("expected error for out-of-range offset, got %x", b)
	}
}

func TestGUIDHeapAndFormatting(t *testing.T) {
	raw := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
	}
	h := NewGUIDHeap(raw)
	g, err := h.GUID(1)
	if err != nil {
		t.Fatalf("GUID(1): %v", err)
	}
	want := "04030201-0605-0807-090a-0b0c0d0e0f10"
	if got := g.String(); got != want {
		t.Fatalf("GUID.String() = %q, want %q", got, want)
	}
}

func TestGUIDHeapNullIndex(t *testing.T) {
	h := NewGUIDHeap(nil)
	g, err := h.GUID(0)
	if err != nil {
		t.Fatalf("GUID(0): %v", err)
	}
	if g.String() != "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("null GUID formatted as %q", g.String())
	}
}

func TestUserStringHeapDecode(t *testing.T) {
	payload := []byte{'H', 0, 'i', 0}
	entry := append(WriteCompressedUint(uint32(len(payload)+1)), payload...)
	entry = append(entry, 0x00) // trailing marker byte
	h := NewUserStringHeap(entry)
	s, err := h.DecodeUTF16(0)
	if err != nil {
		t.Fatalf("DecodeUTF16: %v", err)
	}
	if s != "Hi" {
		t.Fatalf("DecodeUTF16 = %q, want Hi", s)
	}
}
