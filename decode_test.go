package scef

import "testing"

func TestDecodeAnsi(t *testing.T) {
	dec := NewDecoder(newTestInput([]byte{0x41, 0xFF}), EncodingAnsi, false)
	c, status := dec.GetChar()
	if status != StatusOK || c != 'A' {
		t.Fatalf("got %v/%v want 'A'/ok", c, status)
	}
	c, status = dec.GetChar()
	if status != StatusOK || c != 0xFF {
		t.Fatalf("got %v/%v want 0xFF/ok", c, status)
	}
	_, status = dec.GetChar()
	if status != StatusEndOfStream {
		t.Fatalf("got %v want EndOfStream", status)
	}
}

func TestDecodeUtf8Multibyte(t *testing.T) {
	// U+00E9 (é) = 0xC3 0xA9; U+1F600 = 0xF0 0x9F 0x98 0x80
	dec := NewDecoder(newTestInput([]byte{0xC3, 0xA9, 0xF0, 0x9F, 0x98, 0x80}), EncodingUtf8, true)
	c, status := dec.GetChar()
	if status != StatusOK || c != 0xE9 {
		t.Fatalf("got %v/%v want 0xE9/ok", c, status)
	}
	c, status = dec.GetChar()
	if status != StatusOK || c != 0x1F600 {
		t.Fatalf("got %v/%v want 0x1F600/ok", c, status)
	}
}

func TestDecodeUtf8StrictRejectsOverlong(t *testing.T) {
	// 0xC0 0x80 is an overlong encoding of NUL.
	dec := NewDecoder(newTestInput([]byte{0xC0, 0x80}), EncodingUtf8, true)
	_, status := dec.GetChar()
	if status != StatusBadEncoding {
		t.Fatalf("got %v want BadEncoding", status)
	}
}

func TestDecodeUtf8RewindsOnMissingContinuation(t *testing.T) {
	dec := NewDecoder(newTestInput([]byte{0xC3, 0x41}), EncodingUtf8, false)
	_, status := dec.GetChar()
	if status != StatusBadEncoding {
		t.Fatalf("got %v want BadEncoding", status)
	}
	c, status := dec.GetChar()
	if status != StatusOK || c != 'A' {
		t.Fatalf("rewind failed: got %v/%v want 'A'/ok", c, status)
	}
}

func TestDecodeUtf16SurrogatePair(t *testing.T) {
	// U+1F600 = surrogate pair D83D DE00, little-endian bytes.
	dec := NewDecoder(newTestInput([]byte{0x3D, 0xD8, 0x00, 0xDE}), EncodingUtf16Le, true)
	c, status := dec.GetChar()
	if status != StatusOK || c != 0x1F600 {
		t.Fatalf("got %v/%v want 0x1F600/ok", c, status)
	}
}

func TestDecodeUtf16LoneLowSurrogateFails(t *testing.T) {
	dec := NewDecoder(newTestInput([]byte{0x00, 0xDC}), EncodingUtf16Le, true)
	_, status := dec.GetChar()
	if status != StatusBadEncoding {
		t.Fatalf("got %v want BadEncoding", status)
	}
}

func TestDecodeLineColumnTracking(t *testing.T) {
	dec := NewDecoder(newTestInput([]byte("ab\ncd")), EncodingUtf8, true)
	want := []struct {
		line, col uint64
	}{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}}
	for i, w := range want {
		c, status := dec.GetChar()
		if status != StatusOK {
			t.Fatalf("char %d: unexpected status %v", i, status)
		}
		if dec.Line() != w.line || dec.Column() != w.col {
			t.Fatalf("char %d (%q): got %d:%d want %d:%d", i, rune(c), dec.Line(), dec.Column(), w.line, w.col)
		}
	}
}
