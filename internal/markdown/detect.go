// Package markdown classifies chat and document text as markdown or plain
// prose and renders either form for the terminal.
package markdown

import (
	"regexp"
	"strings"
)

// indicators are independent structural hints. One match is enough; this is
// a heuristic, so a lone pair of asterisks in prose still counts as italics.
var indicators = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}\s+`), // headings
	regexp.MustCompile(`\*\*.*?\*\*`),    // bold
	regexp.MustCompile(`\*.*?\*`),        // italic
	regexp.MustCompile(`(?m)^[-*+]\s+`),  // unordered list
	regexp.MustCompile(`(?m)^\d+\.\s+`),  // ordered list
	regexp.MustCompile("`[^`]+`"),        // inline code
	regexp.MustCompile(`(?m)^>\s+`),      // blockquote
	regexp.MustCompile(`\[.*?\]\(.*?\)`), // link
	regexp.MustCompile(`\|.*?\|`),        // table row
	regexp.MustCompile(`(?m)^---+$`),     // horizontal rule
}

// IsMarkdown reports whether text looks like markdown.
func IsMarkdown(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for _, pattern := range indicators {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
