package dnswire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestNameRoundTrip(t *testing.T) {
	names := []string{
		"example.com",
		"www.example.com",
		"a.b.c.d.e.f",
		"xn--bcher-kva.example",
	}
	for _, name := range names {
		wire := EncodeName(name)
		decoded, end, err := DecodeName(wire, 0)
		if err != nil {
			t.Fatalf("DecodeName(%q) failed: %v", name, err)
		}
		if decoded != name {
			t.Errorf("round trip mismatch: wrote %q, read %q", name, decoded)
		}
		if end != len(wire) {
			t.Errorf("end offset = %d, want %d", end, len(wire))
		}
	}
}

func TestEncodeNameDropsEmptyLabels(t *testing.T) {
	if !bytes.Equal(EncodeName("example.com."), EncodeName("example.com")) {
		t.Errorf("trailing dot should not change the encoding")
	}
	if !bytes.Equal(EncodeName("a..b"), EncodeName("a.b")) {
		t.Errorf("empty interior label should be dropped")
	}
}

func TestEncodeNameTruncatesLongLabel(t *testing.T) {
	long := strings.Repeat("x", 64)
	wire := EncodeName(long + ".com")
	if wire[0] != 63 {
		t.Fatalf("expected label truncated to 63 bytes, got length %d", wire[0])
	}
	decoded, _, err := DecodeName(wire, 0)
	if err != nil {
		t.Fatalf("DecodeName failed: %v", err)
	}
	if decoded != strings.Repeat("x", 63)+".com" {
		t.Errorf("unexpected decoded name %q", decoded)
	}
}

func TestDecodeNameEmpty(t *testing.T) {
	name, end, err := DecodeName([]byte{0}, 0)
	if err != nil {
		t.Fatalf("DecodeName failed: %v", err)
	}
	if name != "." {
		t.Errorf("expected root dot, got %q", name)
	}
	if end != 1 {
		t.Errorf("end offset = %d, want 1", end)
	}
}

func TestDecodeNameMalformed(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"empty buffer", []byte{}},
		{"offset past end", []byte{0}},
		{"label past end", []byte{3, 'a', 'b'}},
		{"missing terminator", []byte{1, 'a'}},
		{"oversized label", append([]byte{64}, bytes.Repeat([]byte{'a'}, 64)...)},
		{"truncated pointer", []byte{0xC0}},
		{"self pointer", []byte{0xC0, 0x00}},
	}
	for _, tt := range tests {
		off := 0
		if tt.name == "offset past end" {
			off = 1
		}
		_, _, err := DecodeName(tt.wire, off)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", tt.name, err)
		}
	}
}

// pointerChain builds count pointers each redirecting to the next, followed
// by the label "a".
func pointerChain(count int) []byte {
	wire := make([]byte, 0, count*2+3)
	for i := 1; i <= count; i++ {
		wire = append(wire, 0xC0, byte(i*2))
	}
	return append(wire, 1, 'a', 0)
}

func TestDecodeNameJumpLimit(t *testing.T) {
	name, end, err := DecodeName(pointerChain(10), 0)
	if err != nil {
		t.Fatalf("10 jumps should be allowed: %v", err)
	}
	if name != "a" {
		t.Errorf("expected %q, got %q", "a", name)
	}
	// The caller's cursor advances past the first pointer only.
	if end != 2 {
		t.Errorf("end offset = %d, want 2", end)
	}

	_, _, err = DecodeName(pointerChain(11), 0)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("11 jumps should be malformed, got %v", err)
	}
}

func TestDecodeNameCompressed(t *testing.T) {
	// "example.com" at 0, then "www" + pointer back to 0.
	wire := EncodeName("example.com")
	start := len(wire)
	wire = append(wire, 3, 'w', 'w', 'w', 0xC0, 0x00)

	name, end, err := DecodeName(wire, start)
	if err != nil {
		t.Fatalf("DecodeName failed: %v", err)
	}
	if name != "www.example.com" {
		t.Errorf("expected www.example.com, got %q", name)
	}
	if end != start+6 {
		t.Errorf("end offset = %d, want %d", end, start+6)
	}
}

func TestDecodeNameBarePointer(t *testing.T) {
	// A name that is nothing but a pointer behaves exactly like one with
	// leading labels: the cursor advances past the two pointer bytes.
	wire := EncodeName("example.com")
	start := len(wire)
	wire = append(wire, 0xC0, 0x00)

	name, end, err := DecodeName(wire, start)
	if err != nil {
		t.Fatalf("DecodeName failed: %v", err)
	}
	if name != "example.com" {
		t.Errorf("expected example.com, got %q", name)
	}
	if end != start+2 {
		t.Errorf("end offset = %d, want %d", end, start+2)
	}
}
