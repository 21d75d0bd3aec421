package validation

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	passwordPattern = regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[:=]\s*\S+`)
	apiKeyPattern   = regexp.MustCompile(`^[A-Za-z0-9_\-.]{20,}$`)
	secretTagWords  = []string{"key", "token", "secret"}

	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

func stripMarkupPolicy() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		markupPolicy = bluemonday.StrictPolicy()
	})
	return markupPolicy
}

// checkContent looks for sensitive or malformed text. Every finding is a
// warning.
func checkContent(r *run) {
	for _, v := range r.all() {
		text := strings.TrimSpace(v.Node.Text)
		if text == "" {
			continue
		}
		tag := strings.ToLower(v.Node.Tag)

		if passwordPattern.MatchString(text) || (strings.Contains(tag, "password") && !strings.Contains(text, " ")) {
			r.out.warnf(CodePlaintextPassword, v.Path, "text looks like a plaintext password")
		}
		if isSecretTag(tag) && apiKeyPattern.MatchString(text) {
			r.out.warnf(CodePossibleSecret, v.Path, "value under <%s> looks like an API key or token", v.Node.Tag)
		}
		if containsMarkup(text) {
			r.out.warnf(CodeEmbeddedMarkup, v.Path, "text contains embedded HTML markup")
		}
		if looksLikeJSON(text) && !json.Valid([]byte(text)) {
			r.out.warnf(CodeInvalidJSON, v.Path, "text looks like JSON but does not parse")
		}
	}
}

func isSecretTag(tag string) bool {
	for _, word := range secretTagWords {
		if strings.Contains(tag, word) {
			return true
		}
	}
	return false
}

// containsMarkup reports whether the strict policy would remove anything from
// text. Escaping alone does not count.
func containsMarkup(text string) bool {
	if !strings.Contains(text, "<") {
		return false
	}
	cleaned := stripMarkupPolicy().Sanitize(text)
	return html.UnescapeString(cleaned) != text
}

func looksLikeJSON(text string) bool {
	return (strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")) ||
		(strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]"))
}
