package scef

import "testing"

func serializeToString(t *testing.T, list *ItemList, flags Flags) string {
	t.Helper()
	out := newTestOutput()
	if status := Serialize(out, EncodingUtf8, true, list, flags); status != StatusOK {
		t.Fatalf("unexpected status %v", status)
	}
	return string(out.buf)
}

func sampleList() *ItemList {
	l := NewItemList()
	a := NewSinglet("a")
	a.PostSpace = " "
	l.PushBack(a)
	l.PushBack(NewSpacer(1))
	kv := NewKeyedValue("k", "v")
	kv.PreSpace, kv.MidSpace, kv.PostSpace = " ", " ", " "
	l.PushBack(kv)
	return l
}

func TestSerializeAllKeepsInlineSpacingAndSpacers(t *testing.T) {
	got := serializeToString(t, sampleList(), 0)
	if want := "a ;\nk = v ;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeNoCommentDropsComments(t *testing.T) {
	l := sampleList()
	l.PushBack(NewComment(" hi"))
	got := serializeToString(t, l, DisableComments)
	if want := "a ;\nk = v ;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeNoSpaceDropsSpacersAndInlineSpacing(t *testing.T) {
	got := serializeToString(t, sampleList(), DisableSpacers)
	if want := "a;k=v;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeCompactDropsCommentsSpacersAndInlineSpacing(t *testing.T) {
	l := sampleList()
	l.PushBack(NewComment(" hi"))
	got := serializeToString(t, l, DisableSpacers|DisableComments)
	if want := "a;k=v;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeAutoSpaceIgnoresStoredSpacingAndIndents(t *testing.T) {
	g := NewGroup("g")
	g.Children.PushBack(NewSinglet("x"))
	kv := NewKeyedValue("k", "v")
	g.Children.PushBack(kv)
	l := NewItemList()
	l.PushBack(g)

	got := serializeToString(t, l, AutoSpacing)
	want := "\n<g:\n\tx;\n\tk = v;\n>"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeSpacerMergeSuppressesInnerFlat(t *testing.T) {
	l := NewItemList()
	s1 := NewSpacer(1)
	s1.FlatSpacing = []byte("AAA")
	s2 := NewSpacer(2)
	s2.FlatSpacing = []byte("BB")
	l.PushBack(s1)
	l.PushBack(s2)
	l.PushBack(NewSinglet("x"))

	got := serializeToString(t, l, 0)
	if want := "\n\n\nBBx;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeSpacerMergeSeesThroughDroppedComment(t *testing.T) {
	l := NewItemList()
	s1 := NewSpacer(1)
	s1.FlatSpacing = []byte("AAA")
	l.PushBack(s1)
	l.PushBack(NewComment(" hi"))
	s2 := NewSpacer(2)
	s2.FlatSpacing = []byte("BB")
	l.PushBack(s2)
	l.PushBack(NewSinglet("x"))

	got := serializeToString(t, l, DisableComments)
	if want := "\n\n\nBBx;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeAutoQuoteQuotesUnsafeBareWord(t *testing.T) {
	l := NewItemList()
	l.PushBack(NewSinglet("two words"))
	got := serializeToString(t, l, AutoQuote)
	if want := "'two words';"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSerializeFallsBackToSingleQuoteWithoutAutoQuote(t *testing.T) {
	l := NewItemList()
	l.PushBack(NewSinglet("two words"))
	got := serializeToString(t, l, 0)
	if want := "'two words';"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
