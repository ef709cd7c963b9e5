package utils

import (
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
)

// Excerpt renders markdown down to a plain-text preview of at most max
// runes for the list view.
func Excerpt(source string, max int) string {
	text := strip.StripTags(string(RenderMarkdown(source)))
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
