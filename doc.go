// Package scef implements SCEF, the Structured Configuration Exchange
// Format: a hand-written text configuration format that preserves groups,
// singlets, key=value pairs, spacers and comments so that a document can be
// parsed and re-serialized without losing its original formatting.
//
// The package is organized around three collaborating subsystems:
//
//   - An encoding layer (decode.go, encode.go, with byte-order-mark
//     detection in document.go) that auto-detects one of seven text
//     encodings from a byte-order-mark prefix and streams decoded Unicode
//     scalar values in, or encoded bytes out.
//   - A grammar state machine (parse.go) that walks the decoded scalar
//     stream and builds a Document tree, with a user-supplied warning
//     policy governing recovery from malformed input.
//   - A serializer (serialize.go) that walks the tree back into bytes,
//     driven by formatting flags.
//
// Document, in document.go, ties the three together behind Load and Save.
package scef
