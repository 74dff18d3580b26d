package scef

import "strings"

// serializer walks an ItemList and writes it through an Encoder, selecting
// one of six list-writing strategies from (DisableSpacers, DisableComments,
// AutoSpacing). AutoSpacing wins outright over DisableSpacers: there is no
// "auto-space but keep disabling spacers" hybrid, only AutoSpace/AutoNoComment.
type serializer struct {
	enc   *Encoder
	flags Flags
}

// Serialize writes list to out using kind/strict encoding, applying flags.
func Serialize(out OutputStream, kind EncodingKind, strict bool, list *ItemList, flags Flags) StreamStatus {
	s := &serializer{enc: NewEncoder(out, kind, strict), flags: flags}
	if flags.Has(AutoSpacing) {
		return s.writeAutoList(list, 0)
	}
	return s.writeVerbatimList(list)
}

func scalarsOf(s string) []Scalar {
	out := make([]Scalar, 0, len(s))
	for _, r := range s {
		out = append(out, Scalar(r))
	}
	return out
}

func (s *serializer) putRunes(text string) StreamStatus {
	return s.enc.PutSequence(scalarsOf(text))
}

func (s *serializer) putByte(b byte) StreamStatus {
	return s.enc.PutControl(b)
}

func (s *serializer) putFlat(sp InlineSpace) StreamStatus {
	if sp == "" {
		return StatusOK
	}
	return s.enc.PutFlat([]byte(sp))
}

// resolveQuote decides how name/value text is actually written, honoring
// AutoQuote and falling standard quoting back to single-quoted whenever the
// text can't be written bare.
func (s *serializer) resolveQuote(text string, stored QuoteMode) QuoteMode {
	if s.flags.Has(AutoQuote) {
		if bareWordSafe(text) {
			return QuoteStandard
		}
		return QuoteSingle
	}
	if stored == QuoteStandard && !bareWordSafe(text) {
		return QuoteSingle
	}
	return stored
}

func (s *serializer) writeToken(text string, stored QuoteMode) StreamStatus {
	quote := s.resolveQuote(text, stored)
	switch quote {
	case QuoteSingle:
		return s.writeQuotedToken(text, '\'')
	case QuoteDouble:
		return s.writeQuotedToken(text, '"')
	default:
		return s.putRunes(text)
	}
}

func (s *serializer) writeQuotedToken(text string, quoteChar rune) StreamStatus {
	var sb strings.Builder
	writeQuoted(&sb, text, quoteChar)
	return s.putRunes(sb.String())
}

// --- verbatim strategies: All, NoComment, NoSpace, Compact ---

func (s *serializer) writeVerbatimList(list *ItemList) StreamStatus {
	items := list.Slice()
	skipComments := s.flags.Has(DisableComments)
	skipSpacerItems := s.flags.Has(DisableSpacers)
	keepInline := !s.flags.Has(DisableSpacers)

	for i, it := range items {
		switch it.Kind {
		case KindComment:
			if skipComments {
				continue
			}
			if status := s.writeCommentVerbatim(it); status != StatusOK {
				return status
			}
		case KindSpacer:
			if skipSpacerItems {
				continue
			}
			next := nextSurvivingItem(items, i+1, skipComments)
			if status := s.writeSpacerVerbatim(it, next); status != StatusOK {
				return status
			}
		case KindGroup:
			if status := s.writeGroupVerbatim(it, keepInline); status != StatusOK {
				return status
			}
		case KindSinglet:
			if status := s.writeSingletVerbatim(it, keepInline); status != StatusOK {
				return status
			}
		case KindKeyedValue:
			if status := s.writeKeyedValueVerbatim(it, keepInline); status != StatusOK {
				return status
			}
		}
	}
	return StatusOK
}

func (s *serializer) writeCommentVerbatim(it *Item) StreamStatus {
	if status := s.putByte('#'); status != StatusOK {
		return status
	}
	if status := s.putRunes(it.Text); status != StatusOK {
		return status
	}
	return s.putByte('\n')
}

// nextSurvivingItem returns the first item at or after index i that
// writeVerbatimList will actually emit, skipping over comments that
// skipComments will drop. Used by the spacer-merge lookahead so a comment
// due to vanish doesn't hide an adjacent spacer from its neighbor.
func nextSurvivingItem(items []*Item, i int, skipComments bool) *Item {
	for ; i < len(items); i++ {
		if skipComments && items[i].Kind == KindComment {
			continue
		}
		return items[i]
	}
	return nil
}

func (s *serializer) writeSpacerVerbatim(it, next *Item) StreamStatus {
	for i := uint64(0); i < it.Lines; i++ {
		if status := s.putByte('\n'); status != StatusOK {
			return status
		}
	}
	if next != nil && next.Kind == KindSpacer {
		return StatusOK // tail merges into the following spacer
	}
	return s.enc.PutFlat(it.FlatSpacing)
}

func (s *serializer) writeGroupVerbatim(it *Item, keepInline bool) StreamStatus {
	if status := s.putByte('<'); status != StatusOK {
		return status
	}
	if keepInline {
		if status := s.putFlat(it.PreSpace); status != StatusOK {
			return status
		}
	}
	if it.Name != "" || it.NameQuote != QuoteStandard {
		if status := s.writeToken(it.Name, it.NameQuote); status != StatusOK {
			return status
		}
	}
	if keepInline {
		if status := s.putFlat(it.PostSpace); status != StatusOK {
			return status
		}
	}
	if status := s.putByte(':'); status != StatusOK {
		return status
	}
	if status := s.writeVerbatimList(it.Children); status != StatusOK {
		return status
	}
	return s.putByte('>')
}

func (s *serializer) writeSingletVerbatim(it *Item, keepInline bool) StreamStatus {
	if status := s.writeToken(it.Name, it.NameQuote); status != StatusOK {
		return status
	}
	if keepInline {
		if status := s.putFlat(it.PostSpace); status != StatusOK {
			return status
		}
	}
	return s.putByte(';')
}

func (s *serializer) writeKeyedValueVerbatim(it *Item, keepInline bool) StreamStatus {
	if status := s.writeToken(it.Name, it.NameQuote); status != StatusOK {
		return status
	}
	if keepInline {
		if status := s.putFlat(it.PreSpace); status != StatusOK {
			return status
		}
	}
	if status := s.putByte('='); status != StatusOK {
		return status
	}
	if keepInline {
		if status := s.putFlat(it.MidSpace); status != StatusOK {
			return status
		}
	}
	if status := s.writeToken(it.Value, it.ValueQuote); status != StatusOK {
		return status
	}
	if keepInline {
		if status := s.putFlat(it.PostSpace); status != StatusOK {
			return status
		}
	}
	return s.putByte(';')
}

// --- auto strategies: AutoSpace, AutoNoComment ---

const maxAutoIndent = 10

func (s *serializer) writeAutoIndent(depth int) StreamStatus {
	if status := s.putByte('\n'); status != StatusOK {
		return status
	}
	if depth > maxAutoIndent {
		depth = maxAutoIndent
	}
	for i := 0; i < depth; i++ {
		if status := s.putByte('\t'); status != StatusOK {
			return status
		}
	}
	return StatusOK
}

func prevPayloadLine(items []*Item, i int) (uint64, bool) {
	for j := i - 1; j >= 0; j-- {
		switch items[j].Kind {
		case KindGroup, KindSinglet, KindKeyedValue:
			return items[j].Position.Line, true
		case KindComment:
			return items[j].Position.Line, true
		}
	}
	return 0, false
}

func (s *serializer) writeAutoList(list *ItemList, depth int) StreamStatus {
	items := list.Slice()
	skipComments := s.flags.Has(DisableComments)

	for i, it := range items {
		switch it.Kind {
		case KindSpacer:
			continue // AutoSpace regenerates its own spacing unconditionally

		case KindComment:
			if skipComments {
				continue
			}
			if prevLine, ok := prevPayloadLine(items, i); ok && prevLine == it.Position.Line {
				if status := s.putByte(' '); status != StatusOK {
					return status
				}
			} else if status := s.writeAutoIndent(depth); status != StatusOK {
				return status
			}
			if status := s.putByte('#'); status != StatusOK {
				return status
			}
			if status := s.putRunes(it.Text); status != StatusOK {
				return status
			}

		case KindGroup:
			if status := s.writeAutoIndent(depth); status != StatusOK {
				return status
			}
			if status := s.putByte('<'); status != StatusOK {
				return status
			}
			if it.Name != "" || it.NameQuote != QuoteStandard {
				if status := s.writeToken(it.Name, it.NameQuote); status != StatusOK {
					return status
				}
			}
			if status := s.putByte(':'); status != StatusOK {
				return status
			}
			if status := s.writeAutoList(it.Children, depth+1); status != StatusOK {
				return status
			}
			if status := s.writeAutoIndent(depth); status != StatusOK {
				return status
			}
			if status := s.putByte('>'); status != StatusOK {
				return status
			}

		case KindSinglet:
			if status := s.writeAutoIndent(depth); status != StatusOK {
				return status
			}
			if status := s.writeToken(it.Name, it.NameQuote); status != StatusOK {
				return status
			}
			if status := s.putByte(';'); status != StatusOK {
				return status
			}

		case KindKeyedValue:
			if status := s.writeAutoIndent(depth); status != StatusOK {
				return status
			}
			if status := s.writeToken(it.Name, it.NameQuote); status != StatusOK {
				return status
			}
			if status := s.putByte(' '); status != StatusOK {
				return status
			}
			if status := s.putByte('='); status != StatusOK {
				return status
			}
			if status := s.putByte(' '); status != StatusOK {
				return status
			}
			if status := s.writeToken(it.Value, it.ValueQuote); status != StatusOK {
				return status
			}
			if status := s.putByte(';'); status != StatusOK {
				return status
			}
		}
	}
	return StatusOK
}
