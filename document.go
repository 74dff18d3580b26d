package scef

import (
	"fmt"

	"github.com/zeebo/blake3"
)

// Properties holds the version and encoding a document was loaded with, or
// will be saved with.
type Properties struct {
	Version  uint16
	Encoding EncodingKind
}

// Document is the load/save façade: it owns a root ItemList, its
// properties, and the error context of the most recent operation.
type Document struct {
	root    *ItemList
	props   Properties
	lastErr *ErrorContext
}

// NewDocument returns an empty Document.
func NewDocument() *Document { return &Document{root: NewItemList()} }

func (d *Document) Root() *ItemList        { return d.root }
func (d *Document) Properties() Properties { return d.props }
func (d *Document) LastError() *ErrorContext { return d.lastErr }

// Clear resets root, properties and the error context. Any *ErrorContext
// previously returned by LastError, and any *Item previously reached
// through it, must not be used after this call.
func (d *Document) Clear() {
	d.root = NewItemList()
	d.props = Properties{}
	d.lastErr = nil
}

func (d *Document) wrapErr(ctx *ErrorContext) error {
	if ctx == nil {
		return nil
	}
	return fmt.Errorf("%w", ctx)
}

// detectEncoding inspects up to the first 4 bytes of in for a BOM and
// returns the encoding along with how many of those bytes belong to it.
func detectEncoding(in InputStream) (EncodingKind, int) {
	buf := make([]byte, 4)
	n := in.Read(buf, 4)
	b := buf[:n]
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return EncodingUtf8, 3
	case len(b) >= 4 && b[0] == 0xFF && b[1] == 0xFE && b[2] == 0x00 && b[3] == 0x00:
		return EncodingUcs4Le, 4
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return EncodingUtf16Be, 2
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return EncodingUtf16Le, 2
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x00 && b[2] == 0xFE && b[3] == 0xFF:
		return EncodingUcs4Be, 4
	default:
		return EncodingAnsi, 0
	}
}

func writeBOM(out OutputStream, kind EncodingKind) StreamStatus {
	switch kind {
	case EncodingUtf8:
		return out.Write([]byte{0xEF, 0xBB, 0xBF}, 3)
	case EncodingUtf16Le:
		return out.Write([]byte{0xFF, 0xFE}, 2)
	case EncodingUtf16Be:
		return out.Write([]byte{0xFE, 0xFF}, 2)
	case EncodingUcs4Le:
		return out.Write([]byte{0xFF, 0xFE, 0x00, 0x00}, 4)
	case EncodingUcs4Be:
		return out.Write([]byte{0x00, 0x00, 0xFE, 0xFF}, 4)
	default: // Ansi and Unspecified: no BOM
		return StatusOK
	}
}

// Load clears the document, detects encoding from a BOM prefix, reads the
// optional header, then runs the grammar parser. warn is invoked for every
// recoverable anomaly including the two detection-tier warnings themselves
// (EncodingDetected, VersionDetected); returning WarnAbort from any of them
// stops the load immediately.
func (d *Document) Load(in InputStream, flags Flags, warn WarnCallback, ud any) error {
	d.Clear()

	kind, bomLen := detectEncoding(in)
	in.Seek(uint64(bomLen))

	detectCtx := &ErrorContext{Code: ErrEncodingDetected, Extra: FormatInfo{Detail: kind.String()}}
	d.lastErr = detectCtx
	if invokeWarn(warn, ud, detectCtx) == WarnAbort {
		return d.wrapErr(detectCtx)
	}

	strict := !flags.Has(LaxedEncoding)
	if width := kind.CodeUnitWidth(); width > 1 {
		remaining := in.Size() - in.Position()
		if remaining%uint64(width) != 0 {
			badCtx := &ErrorContext{Code: ErrBadPredictedEncoding}
			d.lastErr = badCtx
			if invokeWarn(warn, ud, badCtx) == WarnAbort {
				return d.wrapErr(badCtx)
			}
		}
	}

	dec := NewDecoder(in, kind, strict)
	version, hasHeader, headerErr := ParseHeader(dec)
	if headerErr != nil {
		d.lastErr = headerErr
		return d.wrapErr(headerErr)
	}

	if !hasHeader {
		if flags.Has(ForceHeader) {
			noHeaderCtx := &ErrorContext{Code: ErrNoHeader}
			d.lastErr = noHeaderCtx
			return d.wrapErr(noHeaderCtx)
		}
		// No header means no declared version; still surface VersionDetected
		// with the zero sentinel before substituting the latest one, so a
		// caller relying on the "always surfaced" warning contract can veto
		// version-less documents short of ForceHeader.
		versionCtx := &ErrorContext{Code: ErrVersionDetected, Extra: FormatInfo{Detail: "0"}}
		d.lastErr = versionCtx
		if invokeWarn(warn, ud, versionCtx) == WarnAbort {
			return d.wrapErr(versionCtx)
		}
		in.Seek(uint64(bomLen))
		dec = NewDecoder(in, kind, strict)
		version = 1
	} else {
		versionCtx := &ErrorContext{Code: ErrVersionDetected, Extra: FormatInfo{Detail: fmt.Sprintf("%d", version)}}
		d.lastErr = versionCtx
		if invokeWarn(warn, ud, versionCtx) == WarnAbort {
			return d.wrapErr(versionCtx)
		}
	}

	d.props = Properties{Version: version, Encoding: kind}
	root, errCtx, aborted := Parse(dec, flags, warn, ud)
	d.root = root
	if errCtx != nil {
		d.lastErr = errCtx
	}
	if aborted {
		return d.wrapErr(d.lastErr)
	}
	return nil
}

// Save writes the document's current root as a header line followed by the
// serialized tree, in the given encoding (Unspecified defaults to Utf8;
// only version 1 is supported).
func (d *Document) Save(out OutputStream, flags Flags, version uint16, encoding EncodingKind) error {
	if version != 1 {
		ctx := &ErrorContext{Code: ErrUnsupportedVersion}
		d.lastErr = ctx
		return d.wrapErr(ctx)
	}
	kind := encoding
	if kind == EncodingUnspecified {
		kind = EncodingUtf8
	}
	if status := writeBOM(out, kind); status != StatusOK {
		ctx := &ErrorContext{Code: ErrCannotWrite}
		d.lastErr = ctx
		return d.wrapErr(ctx)
	}

	strict := !flags.Has(LaxedEncoding)
	enc := NewEncoder(out, kind, strict)
	if status := enc.PutSequence(scalarsOf(fmt.Sprintf("!SCEF:V=%d\n", version))); status != StatusOK {
		ctx := &ErrorContext{Code: ErrCannotWrite}
		d.lastErr = ctx
		return d.wrapErr(ctx)
	}

	if status := Serialize(out, kind, strict, d.root, flags); status != StatusOK {
		ctx := &ErrorContext{Code: ErrCannotWrite}
		d.lastErr = ctx
		return d.wrapErr(ctx)
	}

	d.props = Properties{Version: version, Encoding: kind}
	return nil
}

// memSink is an in-package OutputStream used by Fingerprint/String, which
// need to serialize without a caller-supplied sink.
type memSink struct{ buf []byte }

func (m *memSink) Write(b []byte, n int) StreamStatus {
	m.buf = append(m.buf, b[:n]...)
	return StatusOK
}

// Fingerprint returns a BLAKE3 digest of the document serialized with
// AutoSpace|AutoQuote, giving a content hash independent of the original
// file's cosmetic spacing and quoting choices.
func (d *Document) Fingerprint() [32]byte {
	sink := &memSink{}
	Serialize(sink, EncodingUtf8, true, d.root, AutoSpacing|AutoQuote)
	return blake3.Sum256(sink.buf)
}

// String serializes the document body (no BOM, no header) using its
// currently stored encoding, defaulting to Utf8 if unset.
func (d *Document) String() string {
	kind := d.props.Encoding
	if kind == EncodingUnspecified {
		kind = EncodingUtf8
	}
	sink := &memSink{}
	Serialize(sink, kind, true, d.root, AutoSpacing|AutoQuote)
	return string(sink.buf)
}
