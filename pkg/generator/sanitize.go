package generator

import (
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-xmlgen/pkg/document"
)

// SanitizeKey maps a payload key to a valid element name. Characters that may
// not appear in a name become '_', a leading character that may not start a
// name gets a '_' prefix, and the empty key becomes "_". Colons are replaced
// so keys never introduce namespace prefixes.
func SanitizeKey(key string) string {
	if key == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(key) + 1)
	for _, r := range key {
		if r == ':' || !document.IsNameChar(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if first, _ := utf8.DecodeRuneInString(out); !document.IsNameStart(first) {
		out = "_" + out
	}
	return out
}

// scope tracks the tags used among one parent's children.
type scope struct {
	path string
	tags map[string]string
}

func newScope(path string, existing []*document.Node) *scope {
	s := &scope{path: path, tags: make(map[string]string, len(existing))}
	for _, child := range existing {
		if child != nil {
			s.tags[child.Tag] = "<" + child.Tag + " block>"
		}
	}
	return s
}

// claim returns the tag for key, failing when another key already owns it.
func (s *scope) claim(key string) (string, error) {
	tag := SanitizeKey(key)
	if owner, ok := s.tags[tag]; ok && owner != key {
		return "", &KeyCollisionError{Path: s.path, Tag: tag, First: owner, Second: key}
	}
	s.tags[tag] = key
	return tag, nil
}
