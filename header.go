package scef

import "strconv"

// isHSpace reports whether c is horizontal spacing: HT, VT, FF, CR or
// space. LF is deliberately excluded; it is vertical and ends a header
// line rather than separating tokens within it.
func isHSpace(c Scalar) bool {
	switch c {
	case 0x09, 0x0B, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

func isDigit(c Scalar) bool { return c >= '0' && c <= '9' }

func toLowerScalar(c Scalar) Scalar {
	if c >= 'A' && c <= 'Z' {
		return c + 32
	}
	return c
}

// ParseHeader attempts to read the optional "! SCEF : V = <digits>" header
// line from dec. hasHeader is false, with no error, when the first
// non-horizontal-whitespace character isn't '!' (or the stream is empty):
// callers must then rewind the underlying stream and parse from its
// original start, since the skipped leading whitespace is itself part of
// the document. Any other deviation is a fatal BadFormat/UnsupportedVersion.
func ParseHeader(dec *Decoder) (version uint16, hasHeader bool, errCtx *ErrorContext) {
	c, status := skipHSpaceHeader(dec)
	if status != StatusOK {
		return 0, false, nil
	}
	if c != '!' {
		return 0, false, nil
	}

	match := [4]Scalar{'s', 'c', 'e', 'f'}
	for i := 0; i < 4; i++ {
		var cc Scalar
		var st StreamStatus
		if i == 0 {
			cc, st = skipHSpaceHeader(dec)
		} else {
			cc, st = dec.GetChar()
		}
		if st != StatusOK || toLowerScalar(cc) != match[i] {
			return 0, true, headerError(dec, ErrBadFormat, "expected SCEF")
		}
	}

	c, status = skipHSpaceHeader(dec)
	if status != StatusOK || c != ':' {
		return 0, true, headerError(dec, ErrBadFormat, "expected ':'")
	}

	c, status = skipHSpaceHeader(dec)
	if status != StatusOK || toLowerScalar(c) != 'v' {
		return 0, true, headerError(dec, ErrBadFormat, "expected 'V'")
	}

	c, status = skipHSpaceHeader(dec)
	if status != StatusOK || c != '=' {
		return 0, true, headerError(dec, ErrBadFormat, "expected '='")
	}

	c, status = skipHSpaceHeader(dec)
	if status != StatusOK {
		return 0, true, headerError(dec, ErrBadFormat, "expected version digits")
	}

	var digits []byte
	for isDigit(c) {
		digits = append(digits, byte(c))
		c, status = dec.GetChar()
		if status != StatusOK {
			break
		}
	}
	if len(digits) == 0 {
		return 0, true, headerError(dec, ErrBadFormat, "expected version digits")
	}
	if digits[0] == '0' {
		return 0, true, headerError(dec, ErrUnsupportedVersion, "leading zero in version")
	}
	if len(digits) > 5 {
		return 0, true, headerError(dec, ErrUnsupportedVersion, "version too long")
	}

	for status == StatusOK && isHSpace(c) {
		c, status = dec.GetChar()
	}
	if status != StatusOK || c != '\n' {
		return 0, true, headerError(dec, ErrBadFormat, "header must end with newline")
	}

	val, err := strconv.ParseUint(string(digits), 10, 32)
	if err != nil || val > 65535 {
		return 0, true, headerError(dec, ErrUnsupportedVersion, "version out of range")
	}
	return uint16(val), true, nil
}

func skipHSpaceHeader(dec *Decoder) (Scalar, StreamStatus) {
	for {
		c, status := dec.GetChar()
		if status != StatusOK {
			return 0, status
		}
		if !isHSpace(c) {
			return c, StatusOK
		}
	}
}

func headerError(dec *Decoder, kind ErrorKind, detail string) *ErrorContext {
	return &ErrorContext{Code: kind, Line: dec.Line(), Column: dec.Column(), Extra: FormatInfo{Detail: detail}}
}
