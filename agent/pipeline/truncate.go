package pipeline

import (
	"unicode/utf8"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
)

// MaxArticleChars bounds the article text handed to the summarizer.
const MaxArticleChars = 200_000

const truncationMarker = "\n\n[... content truncated ...]"

// Truncate cuts content to limit characters and appends a marker. Content at
// or below the limit is returned unchanged.
func Truncate(content string, limit int) string {
	if limit < 0 || utf8.RuneCountInString(content) <= limit {
		return content
	}
	return contractx.FirstRunes(content, limit) + truncationMarker
}
