package markdown

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestSanitizeStripsEscapes(t *testing.T) {
	in := "report\x1b[31m.pdf\x1b]0;pwned\x07\x00\tend\n"
	assert.Equal(t, "report.pdf\tend\n", Sanitize(in))
}

func TestRenderStructures(t *testing.T) {
	src := strings.Join([]string{
		"# Findings",
		"",
		"Revenue grew **12%** with `go` services.",
		"",
		"- first item",
		"- second item",
		"",
		"1. fetch",
		"2. index",
		"",
		"> cited from the handbook",
		"",
		"See [the docs](https://example.com).",
		"",
		"| name | size |",
		"|------|------|",
		"| a.txt | 3 |",
		"",
		"---",
	}, "\n")

	out := plain(Render(src, 80))
	for _, want := range []string{
		"Findings",
		"Revenue grew 12% with go services.",
		"• first item",
		"• second item",
		"1. fetch",
		"2. index",
		"│ cited from the handbook",
		"the docs (https://example.com)",
		"│ name │ size │",
		"│ a.txt │ 3 │",
		strings.Repeat("─", 40),
	} {
		require.Contains(t, out, want)
	}
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "# Findings")
}

func TestFormatPlainKeepsText(t *testing.T) {
	out := Format("just a sentence\nsecond line", 80)
	assert.Equal(t, "just a sentence\nsecond line", out)
}

func TestPlainWraps(t *testing.T) {
	out := Plain("one two three four", 9)
	assert.Equal(t, "one two\nthree\nfour", out)
}
