// Command scefcat is a demonstration CLI over the scef library: format,
// validate, bridge a JSONC file into a document, or print a content hash.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/scef-format/scef"
	"github.com/scef-format/scef/scefio"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
)

var (
	flagLaxed         bool
	flagAutoSpace     bool
	flagAutoQuote     bool
	flagStripComments bool
	flagStripSpacers  bool
	flagForceHeader   bool
	flagEncoding      string
)

var rootCmd = &cobra.Command{
	Use:   "scefcat",
	Short: "scefcat reads and writes Structured Configuration Exchange Format files.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagLaxed, "laxed", false, "tolerate non-Unicode-compliant encoding")
	rootCmd.PersistentFlags().BoolVar(&flagAutoSpace, "auto-space", false, "re-indent output, ignoring stored spacing")
	rootCmd.PersistentFlags().BoolVar(&flagAutoQuote, "auto-quote", false, "pick quoting automatically instead of honoring stored quote mode")
	rootCmd.PersistentFlags().BoolVar(&flagStripComments, "strip-comments", false, "omit comments on output")
	rootCmd.PersistentFlags().BoolVar(&flagStripSpacers, "strip-spacers", false, "omit standalone whitespace items on output")
	rootCmd.PersistentFlags().BoolVar(&flagForceHeader, "force-header", false, "fail to load a document with no version header")
	rootCmd.PersistentFlags().StringVar(&flagEncoding, "encoding", "utf8", "save encoding: ansi, utf8, utf16le, utf16be, ucs4le, ucs4be")

	rootCmd.AddCommand(fmtCmd, validateCmd, tojsoncCmd, hashCmd)
}

func loadFlags() scef.Flags {
	var f scef.Flags
	if flagLaxed {
		f |= scef.LaxedEncoding
	}
	if flagAutoSpace {
		f |= scef.AutoSpacing
	}
	if flagAutoQuote {
		f |= scef.AutoQuote
	}
	if flagStripComments {
		f |= scef.DisableComments
	}
	if flagStripSpacers {
		f |= scef.DisableSpacers
	}
	if flagForceHeader {
		f |= scef.ForceHeader
	}
	return f
}

func parseEncoding(name string) scef.EncodingKind {
	switch name {
	case "ansi":
		return scef.EncodingAnsi
	case "utf16le":
		return scef.EncodingUtf16Le
	case "utf16be":
		return scef.EncodingUtf16Be
	case "ucs4le":
		return scef.EncodingUcs4Le
	case "ucs4be":
		return scef.EncodingUcs4Be
	default:
		return scef.EncodingUtf8
	}
}

func loadDocument(path string) (*scef.Document, error) {
	in := scefio.OpenFile(path)
	if status := in.Status(); status == scef.StatusFileNotFound {
		return nil, fmt.Errorf("%s: not found", path)
	}
	doc := scef.NewDocument()
	warn := func(ctx *scef.ErrorContext, _ any) scef.WarnAction {
		switch ctx.Code {
		case scef.ErrEncodingDetected, scef.ErrVersionDetected:
			return scef.WarnAccept
		default:
			return scef.WarnDefault
		}
	}
	if err := doc.Load(in, loadFlags(), warn, nil); err != nil {
		return doc, err
	}
	return doc, nil
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Reformat a document and print it to stdout",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := loadDocument(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		out := scefio.NewBufferOutput()
		props := doc.Properties()
		if err := doc.Save(out, loadFlags(), props.Version, parseEncoding(flagEncoding)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Stdout.Write(out.Bytes())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Load a document and report its most recent error, if any",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := loadDocument(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if e := doc.LastError(); e != nil && e.Code != scef.ErrNone && e.Code != scef.ErrEncodingDetected && e.Code != scef.ErrVersionDetected {
			fmt.Fprintln(os.Stderr, e)
			os.Exit(1)
		}
		fmt.Println("ok")
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <file>",
	Short: "Print the BLAKE3 content fingerprint of a document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := loadDocument(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		sum := doc.Fingerprint()
		fmt.Println(hex.EncodeToString(sum[:]))
	},
}

var tojsoncCmd = &cobra.Command{
	Use:   "tojsonc <file>",
	Short: "Seed a document from a JSON-with-comments (JSONC) file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		var obj map[string]any
		if err := json.Unmarshal(jsonc.ToJSON(raw), &obj); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		doc := scef.NewDocument()
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			doc.Root().PushBack(scef.NewKeyedValue(k, jsoncScalar(obj[k])))
		}

		out := scefio.NewBufferOutput()
		if err := doc.Save(out, scef.AutoSpacing|scef.AutoQuote, 1, scef.EncodingUtf8); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Stdout.Write(out.Bytes())
	},
}

// jsoncScalar renders a decoded JSON value as a single SCEF value string.
// Nested objects/arrays are flattened to their JSON text since a
// KeyedValue's value is always a single token.
func jsoncScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func main() {
	Execute()
}
