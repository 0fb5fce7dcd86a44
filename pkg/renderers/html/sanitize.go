package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicyOnce sync.Once
	richTextPolicy     *bluemonday.Policy
)

// SanitizeRichText cleans user supplied summary or feedback text for inline
// display. A small set of formatting elements survives; everything else is
// stripped or escaped. Line breaks in plain text become <br>.
func SanitizeRichText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := strings.TrimSpace(richTextSanitizer().Sanitize(trimmed))
	if cleaned == "" {
		return ""
	}
	if !strings.Contains(cleaned, "<") {
		cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
		cleaned = strings.ReplaceAll(cleaned, "\n", "<br>")
	}
	return cleaned
}

func richTextSanitizer() *bluemonday.Policy {
	richTextPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li", "span")
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("span", "p")
		richTextPolicy = policy
	})
	return richTextPolicy
}
