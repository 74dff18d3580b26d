package scef

// parser is the single-pass, character-driven grammar state machine. Its
// "current character" is always the scalar most recently pulled off dec,
// either fresh or replayed from the one-slot pushback buffer left by a
// lookahead that turned out to belong to the next item.
type parser struct {
	dec   *Decoder
	flags Flags
	warn  WarnCallback
	ud    any

	stack   []*Item
	errCtx  *ErrorContext
	pending Scalar
	pendSt  StreamStatus
	havePend bool
}

// Parse runs the grammar over dec and returns the resulting item list, the
// most recent error/warning context (nil if none occurred), and whether the
// parse was aborted by the warning callback or a fatal error.
func Parse(dec *Decoder, flags Flags, warn WarnCallback, ud any) (*ItemList, *ErrorContext, bool) {
	p := &parser{dec: dec, flags: flags, warn: warn, ud: ud}
	list, aborted := p.parseList(false)
	return list, p.errCtx, aborted
}

func (p *parser) pos() Position { return Position{p.dec.Line(), p.dec.Column()} }

func (p *parser) nextChar() (Scalar, StreamStatus) {
	if p.havePend {
		p.havePend = false
		return p.pending, p.pendSt
	}
	return p.dec.GetChar()
}

func (p *parser) pushBack(c Scalar, status StreamStatus) {
	p.pending, p.pendSt, p.havePend = c, status, true
}

// eofExpected names the rune a premature-end diagnostic should report as
// missing when end-of-stream is hit with no terminator-specific expectation
// of its own: the open group still wants its '>', or 0 at the root.
func (p *parser) eofExpected() rune {
	if len(p.stack) > 0 {
		return '>'
	}
	return 0
}

func (p *parser) snapshotStack() []*Item {
	if len(p.stack) == 0 {
		return nil
	}
	return append([]*Item{}, p.stack...)
}

func (p *parser) reportWarn(kind ErrorKind, extra ErrorExtra) WarnAction {
	ctx := &ErrorContext{Code: kind, Line: p.dec.Line(), Column: p.dec.Column(), Extra: extra, Stack: p.snapshotStack()}
	if n := len(p.stack); n > 0 {
		ctx.CriticalItem = p.stack[n-1]
	}
	p.errCtx = ctx
	return invokeWarn(p.warn, p.ud, ctx)
}

func (p *parser) fatal(kind ErrorKind, extra ErrorExtra) {
	ctx := &ErrorContext{Code: kind, Line: p.dec.Line(), Column: p.dec.Column(), Extra: extra, Stack: p.snapshotStack()}
	if n := len(p.stack); n > 0 {
		ctx.CriticalItem = p.stack[n-1]
	}
	p.errCtx = ctx
}

func isSpaceClass(c Scalar) bool {
	switch c {
	case 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

// isDangerCode reports whether c is a control character below U+0020 that
// isn't part of the space class: 0x00..0x08 or 0x0E..0x1F.
func isDangerCode(c Scalar) bool {
	return c <= 0x08 || (c >= 0x0E && c <= 0x1F)
}

// parseList consumes items until '>' (insideGroup) or end of stream (root).
func (p *parser) parseList(insideGroup bool) (*ItemList, bool) {
	list := NewItemList()
	for {
		c, status := p.nextChar()
		if status != StatusOK {
			if insideGroup {
				action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: '>'})
				return list, action == WarnAbort || action == WarnDefault
			}
			return list, false
		}

		switch {
		case c == '#':
			list.PushBack(p.parseComment())

		case c == '<':
			pos := p.pos()
			child, aborted := p.parseGroup(pos)
			list.PushBack(child)
			if aborted {
				return list, true
			}

		case c == '>':
			if insideGroup {
				return list, false
			}
			if p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: '>'}) == WarnAbort {
				return list, true
			}

		case isSpaceClass(c):
			item := p.parseSpacer(c)
			if !p.flags.Has(DisableSpacers) {
				list.PushBack(item)
			}

		case c == ',' || c == ';':
			action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: rune(c)})
			if action == WarnAbort {
				return list, true
			}
			if action == WarnAccept || action == WarnDefault {
				list.PushBack(&Item{Kind: KindSinglet, Position: p.pos()})
			}

		case c == '=':
			action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: '='})
			if action == WarnAbort {
				return list, true
			}
			if action == WarnAccept || action == WarnDefault {
				pos := p.pos()
				item, aborted := p.parseKeyedValue(pos, "", QuoteStandard, "")
				list.PushBack(item)
				if aborted {
					return list, true
				}
			}

		case c == ':':
			if p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: ':'}) == WarnAbort {
				return list, true
			}

		case isDangerCode(c):
			p.fatal(ErrBadFormat, InvalidCharInfo{Found: rune(c)})
			return list, true

		default:
			pos := p.pos()
			item, aborted := p.parseNameStarting(pos, c)
			list.PushBack(item)
			if aborted {
				return list, true
			}
		}
	}
}

func (p *parser) parseComment() *Item {
	pos := p.pos()
	var text []rune
	for {
		c, status := p.nextChar()
		if status != StatusOK || c == '\n' {
			break
		}
		text = append(text, rune(c))
	}
	item := NewComment(string(text))
	item.Position = pos
	return item
}

func (p *parser) parseSpacer(first Scalar) *Item {
	pos := p.pos()
	var lines uint64
	var flat []byte
	c := first
	for {
		if c == '\n' {
			lines++
			flat = flat[:0]
		} else {
			flat = append(flat, byte(c))
		}
		nc, status := p.nextChar()
		if status != StatusOK || !isSpaceClass(nc) {
			if status == StatusOK {
				p.pushBack(nc, status)
			}
			break
		}
		c = nc
	}
	item := NewSpacer(lines)
	item.FlatSpacing = flat
	item.Position = pos
	return item
}

// captureInlineSpace consumes a run of horizontal spacing and returns it
// along with the first non-spacing character seen (already consumed).
func (p *parser) captureInlineSpace() (InlineSpace, Scalar, StreamStatus) {
	var buf []byte
	for {
		c, status := p.nextChar()
		if status != StatusOK {
			return InlineSpace(buf), 0, status
		}
		if !isHSpace(c) {
			return InlineSpace(buf), c, StatusOK
		}
		buf = append(buf, byte(c))
	}
}

func (p *parser) readName(start Scalar) (string, QuoteMode, bool) {
	switch start {
	case '\'':
		return p.readQuoted('\'')
	case '"':
		return p.readQuoted('"')
	default:
		return p.readBareWord(start)
	}
}

func (p *parser) readBareWord(start Scalar) (string, QuoteMode, bool) {
	buf := []rune{rune(start)}
	for {
		c, status := p.nextChar()
		if status != StatusOK {
			break
		}
		if isBareExcluded(rune(c)) {
			p.pushBack(c, status)
			break
		}
		buf = append(buf, rune(c))
	}
	return string(buf), QuoteStandard, false
}

// readQuoted reads the body of a quote up to and including the closing
// quoteChar, decoding '^' escapes along the way per the warning policy.
func (p *parser) readQuoted(quoteChar Scalar) (string, QuoteMode, bool) {
	qm := QuoteSingle
	if quoteChar == '"' {
		qm = QuoteDouble
	}
	var buf []rune
	for {
		c, status := p.dec.GetChar()
		if status != StatusOK {
			action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: rune(quoteChar)})
			return string(buf), qm, action == WarnAbort || action == WarnDefault
		}
		if c == quoteChar {
			return string(buf), qm, false
		}
		if c == '\n' {
			action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: '\n', Expected: rune(quoteChar)})
			if action == WarnAbort || action == WarnDefault {
				return string(buf), qm, true
			}
			if action != WarnDiscard {
				buf = append(buf, '\n')
			}
			continue
		}
		if c == '^' {
			val, raw, malformed, eof := decodeEscape(p.dec)
			if eof {
				action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: rune(quoteChar)})
				return string(buf), qm, action == WarnAbort || action == WarnDefault
			}
			if malformed {
				action := p.reportWarn(ErrBadEscape, BadEscapeInfo{Sequence: raw, Length: len(raw)})
				switch action {
				case WarnAbort:
					return string(buf), qm, true
				case WarnContinue:
					buf = append(buf, raw...)
				case WarnDiscard:
					// dropped
				default: // Accept, Default
					buf = append(buf, val...)
				}
				continue
			}
			buf = append(buf, val...)
			continue
		}
		buf = append(buf, rune(c))
	}
}

// parseNameStarting reads a name at the top of an item and dispatches on
// whatever follows it to decide singlet vs. keyed value.
func (p *parser) parseNameStarting(pos Position, start Scalar) (*Item, bool) {
	name, quote, aborted := p.readName(start)
	if aborted {
		return &Item{Kind: KindSinglet, Position: pos, Name: name, NameQuote: quote}, true
	}

	spaceAfterName, c, status := p.captureInlineSpace()
	if status != StatusOK {
		action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: p.eofExpected()})
		item := &Item{Kind: KindSinglet, Position: pos, Name: name, NameQuote: quote, PostSpace: spaceAfterName}
		return item, action == WarnAbort || action == WarnDefault
	}

	switch c {
	case '=':
		return p.parseKeyedValue(pos, name, quote, spaceAfterName)

	case ',', ';':
		item := &Item{Kind: KindSinglet, Position: pos, Name: name, NameQuote: quote, PostSpace: spaceAfterName}
		return item, false

	case ':':
		action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: ':', Expected: ';'})
		item := &Item{Kind: KindSinglet, Position: pos, Name: name, NameQuote: quote, PostSpace: spaceAfterName}
		return item, action == WarnAbort

	case '\n':
		action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: '\n', Expected: ';'})
		p.pushBack(c, StatusOK)
		item := &Item{Kind: KindSinglet, Position: pos, Name: name, NameQuote: quote, PostSpace: spaceAfterName}
		return item, action == WarnAbort

	default:
		action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: rune(c)})
		if action != WarnAbort {
			p.pushBack(c, StatusOK)
		}
		item := &Item{Kind: KindSinglet, Position: pos, Name: name, NameQuote: quote, PostSpace: spaceAfterName}
		return item, action == WarnAbort
	}
}

// parseKeyedValue picks up after '=' has already been dispatched: preSpace
// is the spacing between the name and '=', already captured by the caller.
func (p *parser) parseKeyedValue(pos Position, name string, quote QuoteMode, preSpace InlineSpace) (*Item, bool) {
	item := &Item{Kind: KindKeyedValue, Position: pos, Name: name, NameQuote: quote, PreSpace: preSpace}

	midSpace, c, status := p.captureInlineSpace()
	item.MidSpace = midSpace
	if status != StatusOK {
		action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: p.eofExpected()})
		return item, action == WarnAbort || action == WarnDefault
	}

	item.ValueColumn = p.dec.Column()
	value, vquote, aborted := p.readName(c)
	item.Value = value
	item.ValueQuote = vquote
	if aborted {
		return item, true
	}

	postSpace, c2, status := p.captureInlineSpace()
	item.PostSpace = postSpace
	if status != StatusOK {
		action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: ';'})
		return item, action == WarnAbort || action == WarnDefault
	}

	switch c2 {
	case ';', ',':
		return item, false
	case ':':
		action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: ':', Expected: ';'})
		return item, action == WarnAbort
	default:
		action := p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: rune(c2)})
		if action != WarnAbort {
			p.pushBack(c2, StatusOK)
		}
		return item, action == WarnAbort
	}
}

// parseGroup picks up right after '<' has been consumed; pos is its position.
func (p *parser) parseGroup(pos Position) (*Item, bool) {
	item := &Item{Kind: KindGroup, Position: pos, Children: NewItemList()}
	p.stack = append(p.stack, item)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	preSpace, c, status := p.captureInlineSpace()
	item.PreSpace = preSpace
	if status != StatusOK {
		action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: ':'})
		return item, action == WarnAbort || action == WarnDefault
	}

	if c != ':' {
		name, quote, aborted := p.readName(c)
		item.Name = name
		item.NameQuote = quote
		if aborted {
			return item, true
		}
		postSpace, c2, status := p.captureInlineSpace()
		item.PostSpace = postSpace
		if status != StatusOK {
			action := p.reportWarn(ErrPrematureEnd, PrematureEndInfo{Expected: ':'})
			return item, action == WarnAbort || action == WarnDefault
		}
		c = c2
	}

	if c != ':' {
		if p.reportWarn(ErrInvalidChar, InvalidCharInfo{Found: rune(c), Expected: ':'}) == WarnAbort {
			return item, true
		}
		// Anything short of Abort recovers by treating the header as closed
		// here and letting the offending character start the group's body.
		p.pushBack(c, StatusOK)
	}

	children, aborted := p.parseList(true)
	item.Children = children
	if aborted {
		return item, true
	}
	return item, false
}
