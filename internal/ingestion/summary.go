package ingestion

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const DefaultSummaryLength = 100

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// PlainText renders Markdown and returns its visible text with code blocks
// and images dropped and whitespace collapsed.
func PlainText(source string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return collapse(source)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return collapse(source)
	}

	doc.Find("pre, img, script, style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Block elements would otherwise run together once tags are stripped.
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, td, th, blockquote").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return collapse(doc.Text())
}

// Summarize returns at most maxLength runes of the document's plain text.
// Longer text is cut at the last space when that space falls past 80% of
// maxLength, otherwise at maxLength, and gets a trailing "...".
func Summarize(source string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}

	text := PlainText(source)
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	if idx := strings.LastIndex(truncated, " "); idx >= 0 {
		if len([]rune(truncated[:idx])) > maxLength*8/10 {
			return strings.TrimSpace(truncated[:idx]) + "..."
		}
	}

	return strings.TrimSpace(truncated) + "..."
}

func collapse(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
