package document

import (
	"unicode/utf8"
)

// IsValidName reports whether s is an XML 1.0 Name.
func IsValidName(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for idx, r := range s {
		if idx == 0 {
			if !IsNameStart(r) {
				return false
			}
			continue
		}
		if !IsNameChar(r) {
			return false
		}
	}
	return true
}

// IsNameStart reports whether r may start an XML name.
func IsNameStart(r rune) bool {
	switch {
	case r == ':' || r == '_':
		return true
	case 'A' <= r && r <= 'Z', 'a' <= r && r <= 'z':
		return true
	case 0xC0 <= r && r <= 0xD6,
		0xD8 <= r && r <= 0xF6,
		0xF8 <= r && r <= 0x2FF,
		0x370 <= r && r <= 0x37D,
		0x37F <= r && r <= 0x1FFF,
		0x200C <= r && r <= 0x200D,
		0x2070 <= r && r <= 0x218F,
		0x2C00 <= r && r <= 0x2FEF,
		0x3001 <= r && r <= 0xD7FF,
		0xF900 <= r && r <= 0xFDCF,
		0xFDF0 <= r && r <= 0xFFFD,
		0x10000 <= r && r <= 0xEFFFF:
		return true
	}
	return false
}

// IsNameChar reports whether r may appear after the first rune of a name.
func IsNameChar(r rune) bool {
	switch {
	case IsNameStart(r):
		return true
	case r == '-' || r == '.' || r == 0xB7:
		return true
	case '0' <= r && r <= '9':
		return true
	case 0x300 <= r && r <= 0x36F, 0x203F <= r && r <= 0x2040:
		return true
	}
	return false
}

// IsValidText reports whether s only holds characters allowed in XML 1.0
// character data. Null bytes, most control characters and invalid UTF-8 are
// rejected.
func IsValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return false
		}
	}
	return true
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case 0x20 <= r && r <= 0xD7FF:
		return true
	case 0xE000 <= r && r <= 0xFFFD:
		return true
	case 0x10000 <= r && r <= 0x10FFFF:
		return true
	}
	return false
}
