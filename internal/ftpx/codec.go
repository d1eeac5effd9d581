package ftpx

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Codec converts file names between the server's wire charset and UTF-8.
// Arbitrary FTP servers do not guarantee UTF-8 names, so the default is
// latin-1: it decodes every possible byte and round-trips losslessly.
type Codec struct {
	name string
	cm   *charmap.Charmap // nil means UTF-8 pass-through
}

// NewCodec returns a codec for the named charset. Supported: "latin-1"
// (aliases "iso-8859-1", ""), "cp1252" (alias "windows-1252") and "utf-8".
func NewCodec(name string) (*Codec, error) {
	switch normalizeCharset(name) {
	case "", "latin-1", "iso-8859-1":
		return &Codec{name: "latin-1", cm: charmap.ISO8859_1}, nil
	case "cp1252", "windows-1252":
		return &Codec{name: "cp1252", cm: charmap.Windows1252}, nil
	case "utf-8", "utf8":
		return &Codec{name: "utf-8"}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported filename encoding %q", ErrInvalidRequest, name)
	}
}

func normalizeCharset(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Name returns the canonical charset name.
func (c *Codec) Name() string { return c.name }

// Decode converts a wire name to UTF-8.
func (c *Codec) Decode(wire string) (string, error) {
	if c.cm == nil {
		return wire, nil
	}
	out, err := decoderFor(c.cm).String(wire)
	if err != nil {
		return "", fmt.Errorf("decode name %q as %s: %w", wire, c.name, err)
	}
	return out, nil
}

// Encode converts a UTF-8 path back to the wire charset. Names containing
// runes outside the charset cannot be addressed on the server and fail here.
func (c *Codec) Encode(name string) (string, error) {
	if c.cm == nil {
		return name, nil
	}
	out, err := encoderFor(c.cm).String(name)
	if err != nil {
		return "", fmt.Errorf("encode name %q as %s: %w", name, c.name, err)
	}
	return out, nil
}

func decoderFor(cm *charmap.Charmap) *encoding.Decoder {
	return cm.NewDecoder()
}

func encoderFor(cm *charmap.Charmap) *encoding.Encoder {
	// The plain charmap encoder errors on unmappable runes; that error is
	// what lets the walker skip a single bad entry instead of guessing.
	return cm.NewEncoder()
}
