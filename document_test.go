package scef

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDocumentLoadSaveRoundTrip(t *testing.T) {
	convey.Convey("a document loaded from source saves back to an equivalent form", t, func() {
		src := "!SCEF:V=1\n<app: name = demo; <db: host = localhost; port = 5432;>>"
		doc := NewDocument()
		err := doc.Load(newTestInput([]byte(src)), 0, nil, nil)
		convey.So(err, convey.ShouldBeNil)

		app, ok := doc.Root().FindGroupByName("app")
		convey.So(ok, convey.ShouldBeTrue)
		kv, ok := app.Children.FindKeyByName("name")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kv.Value, convey.ShouldEqual, "demo")

		db, ok := app.Children.FindGroupByName("db")
		convey.So(ok, convey.ShouldBeTrue)
		host, ok := db.Children.FindKeyByName("host")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(host.Value, convey.ShouldEqual, "localhost")

		out := newTestOutput()
		convey.So(doc.Save(out, AutoSpacing|AutoQuote, 1, EncodingUtf8), convey.ShouldBeNil)

		reloaded := NewDocument()
		err = reloaded.Load(newTestInput(out.buf), 0, nil, nil)
		convey.So(err, convey.ShouldBeNil)
		app2, ok := reloaded.Root().FindGroupByName("app")
		convey.So(ok, convey.ShouldBeTrue)
		kv2, ok := app2.Children.FindKeyByName("name")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kv2.Value, convey.ShouldEqual, "demo")
	})
}

func TestDocumentClearInvalidatesRoot(t *testing.T) {
	convey.Convey("Clear resets a document to empty", t, func() {
		doc := NewDocument()
		err := doc.Load(newTestInput([]byte("!SCEF:V=1\n<g: x;>")), 0, nil, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(doc.Root().Len(), convey.ShouldBeGreaterThan, 0)

		doc.Clear()
		convey.So(doc.Root().Len(), convey.ShouldEqual, 0)
		convey.So(doc.LastError(), convey.ShouldBeNil)
		convey.So(doc.Properties(), convey.ShouldResemble, Properties{})
	})
}

func TestDocumentFingerprintIgnoresCosmeticSpacing(t *testing.T) {
	convey.Convey("Fingerprint is stable across cosmetic differences", t, func() {
		a := NewDocument()
		convey.So(a.Load(newTestInput([]byte("!SCEF:V=1\n<g: x=1;y=2;>")), 0, nil, nil), convey.ShouldBeNil)

		b := NewDocument()
		convey.So(b.Load(newTestInput([]byte("!SCEF:V=1\n<g:   x = 1 ;   y = 2 ;  >")), 0, nil, nil), convey.ShouldBeNil)

		convey.So(a.Fingerprint(), convey.ShouldResemble, b.Fingerprint())
	})
}

func TestDocumentFingerprintDiffersOnContentChange(t *testing.T) {
	convey.Convey("Fingerprint changes when content changes", t, func() {
		a := NewDocument()
		convey.So(a.Load(newTestInput([]byte("!SCEF:V=1\n<g: x=1;>")), 0, nil, nil), convey.ShouldBeNil)

		b := NewDocument()
		convey.So(b.Load(newTestInput([]byte("!SCEF:V=1\n<g: x=2;>")), 0, nil, nil), convey.ShouldBeNil)

		convey.So(a.Fingerprint(), convey.ShouldNotResemble, b.Fingerprint())
	})
}

func TestDocumentStringProducesReparsableBody(t *testing.T) {
	convey.Convey("String renders a body that reparses to the same tree", t, func() {
		doc := NewDocument()
		convey.So(doc.Load(newTestInput([]byte("!SCEF:V=1\n<g: k = v;>")), 0, nil, nil), convey.ShouldBeNil)

		body := doc.String()
		reloaded := NewDocument()
		err := reloaded.Load(newTestInput([]byte("!SCEF:V=1\n"+body)), 0, nil, nil)
		convey.So(err, convey.ShouldBeNil)
		g, ok := reloaded.Root().FindGroupByName("g")
		convey.So(ok, convey.ShouldBeTrue)
		kv, ok := g.Children.FindKeyByName("k")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(kv.Value, convey.ShouldEqual, "v")
	})
}

func TestDocumentDetectsUtf8Bom(t *testing.T) {
	convey.Convey("a UTF-8 BOM is detected and stripped before parsing", t, func() {
		src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("!SCEF:V=1\n<g: x;>")...)
		doc := NewDocument()
		err := doc.Load(newTestInput(src), 0, nil, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(doc.Properties().Encoding, convey.ShouldEqual, EncodingUtf8)
		_, ok := doc.Root().FindGroupByName("g")
		convey.So(ok, convey.ShouldBeTrue)
	})
}

func TestDocumentSurfacesVersionDetectedWithoutHeader(t *testing.T) {
	convey.Convey("VersionDetected still fires when no header is present", t, func() {
		var codes []ErrorKind
		warn := func(ctx *ErrorContext, _ any) WarnAction {
			codes = append(codes, ctx.Code)
			return WarnDefault
		}
		doc := NewDocument()
		err := doc.Load(newTestInput([]byte("<g: x;>")), 0, warn, nil)
		convey.So(err, convey.ShouldBeNil)
		convey.So(codes, convey.ShouldContain, ErrVersionDetected)
	})

	convey.Convey("aborting on that VersionDetected stops the load", t, func() {
		warn := func(ctx *ErrorContext, _ any) WarnAction {
			if ctx.Code == ErrVersionDetected {
				return WarnAbort
			}
			return WarnDefault
		}
		doc := NewDocument()
		err := doc.Load(newTestInput([]byte("<g: x;>")), 0, warn, nil)
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestDocumentSaveRejectsUnsupportedVersion(t *testing.T) {
	convey.Convey("Save rejects any version other than 1", t, func() {
		doc := NewDocument()
		err := doc.Save(newTestOutput(), 0, 2, EncodingUtf8)
		convey.So(err, convey.ShouldNotBeNil)
	})
}
