package scef

// Scalar is a decoded Unicode scalar value. It is unsigned, unlike rune,
// because a laxed UCS-4 stream may legally carry any 32-bit value,
// including values above U+10FFFF.
type Scalar uint32

// Decoder pulls Unicode scalar values out of a byte stream, one of seven
// encoding variants selected at construction time, tracking line/column
// position the same way every token produced by this codebase's parsers
// carries its own position: column resets to 0 when the line advances and
// is post-incremented after each scalar; the line advances lazily, on the
// next call, whenever the previously returned scalar was '\n'.
type Decoder struct {
	in             InputStream
	kind           EncodingKind
	strict         bool
	line           uint64
	column         uint64
	lastChar       Scalar
	pendingNewline bool
}

// NewDecoder returns a Decoder for kind reading from in. strict only
// affects Utf8, Ucs4Le and Ucs4Be: it rejects non-Unicode-compliant input
// (surrogates, overlong encodings, code points above U+10FFFF) instead of
// passing it through.
func NewDecoder(in InputStream, kind EncodingKind, strict bool) *Decoder {
	return &Decoder{in: in, kind: kind, strict: strict, line: 1}
}

// Line returns the 1-based line of the most recently returned scalar.
func (d *Decoder) Line() uint64 { return d.line }

// Column returns the 1-based column of the most recently returned scalar.
func (d *Decoder) Column() uint64 { return d.column }

// LastChar returns the most recently returned scalar, letting callers
// branch on "the current character" without re-reading the stream.
func (d *Decoder) LastChar() Scalar { return d.lastChar }

// GetChar decodes and returns the next scalar, advancing position.
func (d *Decoder) GetChar() (Scalar, StreamStatus) {
	if d.pendingNewline {
		d.line++
		d.column = 0
		d.pendingNewline = false
	}
	scalar, status := d.nextScalar()
	if status != StatusOK {
		return 0, status
	}
	d.column++
	d.lastChar = scalar
	if scalar == '\n' {
		d.pendingNewline = true
	}
	return scalar, StatusOK
}

// ReadWhile consumes scalars while pred returns true, stopping as soon as
// pred returns false or an error occurs. The stopping scalar (if any) has
// already been consumed and is available via LastChar.
func (d *Decoder) ReadWhile(pred func(Scalar) bool) StreamStatus {
	for {
		scalar, status := d.GetChar()
		if status != StatusOK {
			return status
		}
		if !pred(scalar) {
			return StatusOK
		}
	}
}

func (d *Decoder) nextScalar() (Scalar, StreamStatus) {
	switch d.kind {
	case EncodingAnsi:
		return d.nextAnsi()
	case EncodingUtf16Le:
		return d.nextUtf16(true)
	case EncodingUtf16Be:
		return d.nextUtf16(false)
	case EncodingUcs4Le:
		return d.nextUcs4(true)
	case EncodingUcs4Be:
		return d.nextUcs4(false)
	default: // EncodingUtf8 and EncodingUnspecified (resolved to UTF-8 by the caller)
		return d.nextUtf8()
	}
}

// readBytes reads exactly n bytes, or reports why it couldn't: a clean
// boundary (StatusEndOfStream, zero bytes consumed) or a short read in the
// middle of a fixed-width code unit (StatusBadEncoding).
func (d *Decoder) readBytes(n int) ([]byte, StreamStatus) {
	buf := make([]byte, n)
	got := d.in.Read(buf, n)
	if got == n {
		return buf, StatusOK
	}
	if got == 0 {
		if d.in.Status() == StatusEndOfStream {
			return nil, StatusEndOfStream
		}
		return nil, StatusCannotRead
	}
	return buf[:got], StatusBadEncoding
}

func (d *Decoder) nextAnsi() (Scalar, StreamStatus) {
	b, status := d.readBytes(1)
	if status != StatusOK {
		return 0, status
	}
	return Scalar(b[0]), StatusOK
}

var utf8OverlongMin = [5]uint32{0, 0, 0x80, 0x800, 0x10000}

func (d *Decoder) nextUtf8() (Scalar, StreamStatus) {
	lead, status := d.readBytes(1)
	if status != StatusOK {
		return 0, status
	}
	b0 := lead[0]
	if b0 < 0x80 {
		return Scalar(b0), StatusOK
	}

	var length int
	var codepoint uint32
	switch {
	case b0&0xE0 == 0xC0:
		length, codepoint = 2, uint32(b0&0x1F)
	case b0&0xF0 == 0xE0:
		length, codepoint = 3, uint32(b0&0x0F)
	case b0&0xF8 == 0xF0:
		length, codepoint = 4, uint32(b0&0x07)
	case b0&0xFC == 0xF8:
		length, codepoint = 5, uint32(b0&0x03)
	case b0&0xFE == 0xFC:
		length, codepoint = 6, uint32(b0&0x01)
	default:
		return 0, StatusBadEncoding
	}
	if d.strict && length > 4 {
		return 0, StatusBadEncoding
	}

	for i := 0; i < length-1; i++ {
		cont, status := d.readBytes(1)
		if status != StatusOK {
			// Not even one more byte arrived; nothing to rewind past.
			return 0, StatusBadEncoding
		}
		if cont[0]&0xC0 != 0x80 {
			// Missing continuation byte: rewind so the byte we just
			// consumed (which starts something else) is re-read cleanly.
			d.in.Seek(d.in.Position() - 1)
			return 0, StatusBadEncoding
		}
		codepoint = codepoint<<6 | uint32(cont[0]&0x3F)
	}

	if d.strict {
		if length <= 4 && codepoint < utf8OverlongMin[length] {
			return 0, StatusBadEncoding
		}
		if codepoint >= 0xD800 && codepoint <= 0xDFFF {
			return 0, StatusBadEncoding
		}
		if codepoint > 0x10FFFF {
			return 0, StatusBadEncoding
		}
	}
	return Scalar(codepoint), StatusOK
}

func (d *Decoder) nextUtf16(le bool) (Scalar, StreamStatus) {
	unit, status := d.readUtf16Unit(le)
	if status != StatusOK {
		return 0, status
	}

	if unit >= 0xD800 && unit <= 0xDBFF {
		low, status := d.readUtf16Unit(le)
		if status != StatusOK {
			return 0, StatusBadEncoding
		}
		if low < 0xDC00 || low > 0xDFFF {
			return 0, StatusBadEncoding
		}
		cp := 0x10000 + (uint32(unit)-0xD800)*0x400 + (uint32(low) - 0xDC00)
		return Scalar(cp), StatusOK
	}
	if unit >= 0xDC00 && unit <= 0xDFFF {
		return 0, StatusBadEncoding // lone low surrogate
	}
	return Scalar(unit), StatusOK
}

func (d *Decoder) readUtf16Unit(le bool) (uint16, StreamStatus) {
	b, status := d.readBytes(2)
	if status != StatusOK {
		return 0, status
	}
	if le {
		return uint16(b[0]) | uint16(b[1])<<8, StatusOK
	}
	return uint16(b[1]) | uint16(b[0])<<8, StatusOK
}

func (d *Decoder) nextUcs4(le bool) (Scalar, StreamStatus) {
	b, status := d.readBytes(4)
	if status != StatusOK {
		return 0, status
	}
	var cp uint32
	if le {
		cp = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	} else {
		cp = uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
	}
	if d.strict {
		if cp >= 0xD800 && cp <= 0xDFFF {
			return 0, StatusBadEncoding
		}
		if cp > 0x10FFFF {
			return 0, StatusBadEncoding
		}
	}
	return Scalar(cp), StatusOK
}
