// Package scrape turns career pages and local files into cleaned plain text
// suitable for job extraction.
package scrape

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe  = regexp.MustCompile(`<[^>]*?>`)
	urlRe      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
	multiSpace = regexp.MustCompile(` {2,}`)
)

// CleanText normalizes scraped page text: HTML tags, URLs, and special
// characters are stripped and runs of whitespace collapse to single spaces.
func CleanText(text string) string {
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, " ")
	text = nonAlnumRe.ReplaceAllString(text, " ")
	text = multiSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
