package identity

import "testing"

func TestForROM_DeterministicAndSensitiveToContent(t *testing.T) {
	a := make([]byte, 32*1024)
	b := append([]byte(nil), a...)
	b[0x150] = 1

	if ForROM(a) != ForROM(append([]byte(nil), a...)) {
		t.Fatal("hash must be deterministic for identical content")
	}
	if ForROM(a) == ForROM(b) {
		t.Fatal("hash must differ for differing content")
	}
}

func TestID_String_FixedWidth(t *testing.T) {
	id := ForROM(make([]byte, 32*1024))
	s := id.String()
	if len(s) != 16 {
		t.Fatalf("expected 16 hex chars, got %d (%q)", len(s), s)
	}
}
