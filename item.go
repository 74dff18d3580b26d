package scef

import "iter"

// Position is the 1-based line/column of the character that opened an item.
type Position struct {
	Line   uint64
	Column uint64
}

// QuoteMode records, or requests, how a name or value was (or should be)
// quoted in source text.
type QuoteMode int

const (
	QuoteStandard QuoteMode = iota
	QuoteSingle
	QuoteDouble
)

// InlineSpace is a captured run of horizontal spacing characters, stored
// verbatim so round-tripping can reproduce it exactly.
type InlineSpace string

// EncodingKind identifies one of the seven text encodings SCEF understands.
type EncodingKind int

const (
	EncodingUnspecified EncodingKind = iota
	EncodingAnsi
	EncodingUtf8
	EncodingUtf16Le
	EncodingUtf16Be
	EncodingUcs4Le
	EncodingUcs4Be
)

func (e EncodingKind) String() string {
	switch e {
	case EncodingAnsi:
		return "ansi"
	case EncodingUtf8:
		return "utf8"
	case EncodingUtf16Le:
		return "utf16le"
	case EncodingUtf16Be:
		return "utf16be"
	case EncodingUcs4Le:
		return "ucs4le"
	case EncodingUcs4Be:
		return "ucs4be"
	default:
		return "unspecified"
	}
}

// CodeUnitWidth returns the fixed byte width of one code unit for
// fixed-width encodings, or 0 for variable-width/unspecified encodings.
func (e EncodingKind) CodeUnitWidth() int {
	switch e {
	case EncodingUtf16Le, EncodingUtf16Be:
		return 2
	case EncodingUcs4Le, EncodingUcs4Be:
		return 4
	case EncodingAnsi:
		return 1
	default:
		return 0
	}
}

// Flags is the bitset of load/save behavior switches.
type Flags uint16

const (
	DisableSpacers Flags = 1 << iota
	DisableComments
	LaxedEncoding
	AutoSpacing
	AutoQuote
	ForceHeader
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// ItemKind discriminates the tagged Item union.
type ItemKind int

const (
	KindGroup ItemKind = iota
	KindSinglet
	KindKeyedValue
	KindSpacer
	KindComment
)

func (k ItemKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindSinglet:
		return "singlet"
	case KindKeyedValue:
		return "keyed_value"
	case KindSpacer:
		return "spacer"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// ItemMask selects item kinds for ItemList.Items filtered iteration.
type ItemMask int

const (
	MaskGroup ItemMask = 1 << iota
	MaskSinglet
	MaskKeyedValue
	MaskSpacer
	MaskComment

	// MaskBasic covers the three payload kinds: Group, Singlet, KeyedValue.
	MaskBasic = MaskGroup | MaskSinglet | MaskKeyedValue
	MaskAll   = MaskBasic | MaskSpacer | MaskComment
)

func maskFor(k ItemKind) ItemMask {
	switch k {
	case KindGroup:
		return MaskGroup
	case KindSinglet:
		return MaskSinglet
	case KindKeyedValue:
		return MaskKeyedValue
	case KindSpacer:
		return MaskSpacer
	case KindComment:
		return MaskComment
	default:
		return 0
	}
}

// Item is a single node of the document tree. It is a tagged union: Kind
// selects which of the fields below are meaningful, mirroring the single
// flat struct-with-type-tag shape used for tokens throughout this codebase
// rather than an interface-per-variant hierarchy.
type Item struct {
	Kind     ItemKind
	Position Position

	// Group, Singlet, KeyedValue share Name/NameQuote.
	Name      string
	NameQuote QuoteMode

	// Group and KeyedValue use PreSpace/PostSpace; Singlet uses PostSpace
	// only; KeyedValue also uses MidSpace (the spacing between '=' and the
	// value).
	PreSpace  InlineSpace
	PostSpace InlineSpace
	MidSpace  InlineSpace

	// Group only.
	Children *ItemList

	// KeyedValue only.
	Value       string
	ValueQuote  QuoteMode
	ValueColumn uint64

	// Spacer only.
	Lines       uint64
	FlatSpacing []byte

	// Comment only.
	Text string
}

// NewGroup returns a Group item ready to attach children to.
func NewGroup(name string) *Item {
	return &Item{Kind: KindGroup, Name: name, Children: NewItemList()}
}

// NewSinglet returns a Singlet item.
func NewSinglet(name string) *Item {
	return &Item{Kind: KindSinglet, Name: name}
}

// NewKeyedValue returns a KeyedValue item.
func NewKeyedValue(name, value string) *Item {
	return &Item{Kind: KindKeyedValue, Name: name, Value: value}
}

// NewSpacer returns a Spacer item with the given newline count.
func NewSpacer(lines uint64) *Item {
	return &Item{Kind: KindSpacer, Lines: lines}
}

// NewComment returns a Comment item. text must not contain '\n'; callers
// that have a multi-line comment should split it and push one Comment item
// per line, per the document tree's invariant.
func NewComment(text string) *Item {
	return &Item{Kind: KindComment, Text: text}
}

// ItemList is an ordered, owned sequence of items. Insertion order is
// document order.
type ItemList struct {
	items []*Item
}

// NewItemList returns an empty ItemList.
func NewItemList() *ItemList { return &ItemList{} }

// Len returns the number of items.
func (l *ItemList) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *ItemList) At(i int) *Item { return l.items[i] }

// PushBack appends item to the list.
func (l *ItemList) PushBack(item *Item) { l.items = append(l.items, item) }

// Slice returns the underlying items as a read-only-by-convention slice.
func (l *ItemList) Slice() []*Item { return l.items }

// Items returns an iterator over items whose kind is in mask, in document
// order.
func (l *ItemList) Items(mask ItemMask) iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, it := range l.items {
			if maskFor(it.Kind)&mask == 0 {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

// FindGroupByName returns the first Group item named name.
func (l *ItemList) FindGroupByName(name string) (*Item, bool) {
	return l.findByName(MaskGroup, name)
}

// FindSingletByName returns the first Singlet item named name.
func (l *ItemList) FindSingletByName(name string) (*Item, bool) {
	return l.findByName(MaskSinglet, name)
}

// FindKeyByName returns the first KeyedValue item named name.
func (l *ItemList) FindKeyByName(name string) (*Item, bool) {
	return l.findByName(MaskKeyedValue, name)
}

func (l *ItemList) findByName(mask ItemMask, name string) (*Item, bool) {
	for it := range l.Items(mask) {
		if it.Name == name {
			return it, true
		}
	}
	return nil, false
}
