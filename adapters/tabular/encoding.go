package tabular

import (
	"fmt"
	"io"
	"strings"

	"statdash/domain/core"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encodings offered by the upload form
var Encodings = []string{"utf-8", "latin-1"}

// NormalizeEncoding maps accepted aliases to "utf-8" or "latin-1"
func NormalizeEncoding(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return "utf-8", nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return "latin-1", nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", name)
	}
}

func decoder(name string, r io.Reader) (io.Reader, error) {
	enc, err := NormalizeEncoding(name)
	if err != nil {
		return nil, core.NewParseError(0, err.Error(), nil)
	}
	if enc == "latin-1" {
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}
	// invalid UTF-8 sequences become U+FFFD rather than failing the upload
	return transform.NewReader(r, unicode.UTF8.NewDecoder()), nil
}
