package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when callers do not name one.
const DefaultEncoding = "UTF-8"

// ResolveEncoding looks up an IANA charset name. Names that are registered but
// have no encoder available are reported as unsupported.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, errors.New("document: encoding is required")
	}
	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil {
		return nil, fmt.Errorf("document: unknown encoding %q", trimmed)
	}
	if enc == nil {
		return nil, fmt.Errorf("document: unsupported encoding %q", trimmed)
	}
	return enc, nil
}

// isUnicodeEncoding reports whether every XML character is representable.
func isUnicodeEncoding(name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	return strings.HasPrefix(upper, "UTF")
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ResolveEncoding(label)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// CanonicalEncoding returns the IANA preferred name for an encoding label, so
// aliases such as "latin1" and "ISO-8859-1" compare equal.
func CanonicalEncoding(name string) (string, error) {
	enc, err := ResolveEncoding(name)
	if err != nil {
		return "", err
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(name)), nil
	}
	return canonical, nil
}
