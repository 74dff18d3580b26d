package scef

import (
	"fmt"
	"strconv"
	"strings"
)

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// decodeEscape reads one '^'-introduced escape sequence from dec, whose
// leading '^' has already been consumed by the caller. It returns the
// decoded value (for a hex form cut short by a non-hex character, the value
// of the digits read before it; otherwise nil if malformed), the raw source
// characters consumed including the leading '^' (for WarnContinue to reuse
// verbatim), whether the sequence was malformed, and whether it was
// truncated by end-of-stream.
//
// The longest escape this grammar defines is "^UXXXXXXXX": at most 8 hex
// digits are collected, 10 runes of raw source including '^' and 'U'.
func decodeEscape(dec *Decoder) (value []rune, raw []rune, malformed bool, eof bool) {
	raw = append(raw, '^')
	c, status := dec.GetChar()
	if status != StatusOK {
		return nil, raw, true, true
	}
	raw = append(raw, rune(c))

	switch rune(c) {
	case '\'':
		return []rune{'\''}, raw, false, false
	case '"':
		return []rune{'"'}, raw, false, false
	case '^':
		return []rune{'^'}, raw, false, false
	case 'n':
		return []rune{'\n'}, raw, false, false
	case 't':
		return []rune{'\t'}, raw, false, false
	case 'r':
		return []rune{'\r'}, raw, false, false
	case 'u':
		value, malformed, eof = decodeHexDigits(dec, &raw, nil, 4)
		return value, raw, malformed, eof
	case 'U':
		value, malformed, eof = decodeHexDigits(dec, &raw, nil, 8)
		return value, raw, malformed, eof
	default:
		if isHexDigit(rune(c)) {
			value, malformed, eof = decodeHexDigits(dec, &raw, []rune{rune(c)}, 2)
			return value, raw, malformed, eof
		}
		return nil, raw, true, false
	}
}

// decodeHexDigits collects n hex digits (seed already holds any digits
// read by the caller before dispatch) and returns the single decoded
// scalar. malformed is set, and eof only if the stream ended mid-escape,
// when fewer than n valid hex digits are available. When a non-hex
// character cuts the digits short, value holds the scalar decoded from the
// digits read so far (nil if there were none).
func decodeHexDigits(dec *Decoder, raw *[]rune, seed []rune, n int) (value []rune, malformed bool, eof bool) {
	digits := append([]rune{}, seed...)
	for len(digits) < n {
		c, status := dec.GetChar()
		if status != StatusOK {
			return nil, true, true
		}
		if !isHexDigit(rune(c)) {
			*raw = append(*raw, rune(c))
			if len(digits) == 0 {
				return nil, true, false
			}
			partial, _ := strconv.ParseUint(string(digits), 16, 32)
			return []rune{rune(partial)}, true, false
		}
		digits = append(digits, rune(c))
		*raw = append(*raw, rune(c))
	}
	val, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil {
		return nil, true, false
	}
	return []rune{rune(val)}, false, false
}

// bareWordSafe reports whether s can be written as an unquoted bare word:
// non-empty, with no character from the exclusion set (the punctuation
// the grammar reserves, plus every control character below U+0020,
// including the space-class ones that silently terminate a bare word).
func bareWordSafe(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if isBareExcluded(r) {
			return false
		}
	}
	return true
}

func isBareExcluded(r rune) bool {
	if r < 0x20 {
		return true
	}
	return strings.ContainsRune(" \"#',:;<=>", r)
}

// needsQuotedEscaping reports whether s, already decided to need quoting,
// also needs at least one escape sequence once written inside quoteChar.
func needsQuotedEscaping(s string, quoteChar rune) bool {
	for _, r := range s {
		if runeNeedsEscape(r, quoteChar) {
			return true
		}
	}
	return false
}

func runeNeedsEscape(r rune, quoteChar rune) bool {
	switch r {
	case '\n', '\r', '^':
		return true
	}
	if quoteChar == '\'' && r == '\'' {
		return true
	}
	if quoteChar == '"' && r == '"' {
		return true
	}
	if r == '\t' {
		return quoteChar == '"'
	}
	if r < 0x20 {
		return true
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return true
	}
	return false
}

// writeEscaped appends r to sb, escaping it if runeNeedsEscape(r, quoteChar).
func writeEscaped(sb *strings.Builder, r rune, quoteChar rune) {
	switch {
	case r == '\n':
		sb.WriteString("^n")
	case r == '\r':
		sb.WriteString("^r")
	case r == '^':
		sb.WriteString("^^")
	case quoteChar == '\'' && r == '\'':
		sb.WriteString("^'")
	case quoteChar == '"' && r == '"':
		sb.WriteString("^\"")
	case r == '\t' && quoteChar == '"':
		sb.WriteString("^t")
	case r == '\t':
		sb.WriteRune(r)
	case r < 0x20:
		fmt.Fprintf(sb, "^%02X", r)
	case r >= 0xD800 && r <= 0xDFFF:
		fmt.Fprintf(sb, "^u%04X", r)
	default:
		sb.WriteRune(r)
	}
}

// writeQuoted writes s inside quoteChar quotes, escaping as needed.
func writeQuoted(sb *strings.Builder, s string, quoteChar rune) {
	sb.WriteRune(quoteChar)
	for _, r := range s {
		writeEscaped(sb, r, quoteChar)
	}
	sb.WriteRune(quoteChar)
}
