package sentiment

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	mentionPattern  = regexp.MustCompile(`@\w+`)
	reservedPattern = regexp.MustCompile(`(^|\s)(?:RT|FAV)\b:?`)

	symbolStripper = strings.NewReplacer("#", "", `"`, "", "?", "", "“", "", "”", "")
)

// Clean normalizes a post before scoring: URLs, @mentions and the reserved RT/FAV
// markers are removed, hashtag, quote and question-mark symbols are dropped, and
// runs of whitespace collapse to a single space.
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = reservedPattern.ReplaceAllString(text, "$1")
	text = symbolStripper.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
