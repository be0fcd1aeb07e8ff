package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsTrendMonitor/internal/ports"
)

var (
	urlExpr        = regexp.MustCompile(`https?://[^\s<>"]+`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// TextCleaner strips feed markup and noise from article text before the
// sentiment model sees it.
type TextCleaner struct{}

var _ ports.TextCleaner = (*TextCleaner)(nil)

// New builds a cleaner; it carries no state.
func New() *TextCleaner {
	return &TextCleaner{}
}

// Clean removes HTML markup, URLs, and redundant whitespace. A string that
// reduces to nothing returns empty; callers drop such items.
func (c *TextCleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = stripHTML(text)
	text = urlExpr.ReplaceAllString(text, "")
	text = whitespaceExpr.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// stripHTML extracts the visible text of markup-bearing input. Feed summaries
// routinely embed anchor tags and image wrappers.
func stripHTML(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	return doc.Text()
}
