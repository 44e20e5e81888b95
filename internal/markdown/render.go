package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/muesli/reflow/wordwrap"
)

var (
	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	subheadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	strongStyle     = lipgloss.NewStyle().Bold(true)
	emphStyle       = lipgloss.NewStyle().Italic(true)
	delStyle        = lipgloss.NewStyle().Strikethrough(true)
	codeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166"))
	codeBlockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).PaddingLeft(2)
	linkStyle       = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("110"))
	quoteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	ruleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#56526e"))
)

var (
	csiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	oscSequence = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
)

// Sanitize removes terminal escape sequences and control characters other
// than newline and tab, so untrusted text cannot repaint the screen.
func Sanitize(text string) string {
	text = oscSequence.ReplaceAllString(text, "")
	text = csiSequence.ReplaceAllString(text, "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

// Plain renders text verbatim after sanitizing, wrapped to width.
func Plain(text string, width int) string {
	return wrap(Sanitize(text), width)
}

// Format picks Render for markdown-looking text and Plain otherwise.
func Format(text string, width int) string {
	if IsMarkdown(text) {
		return Render(text, width)
	}
	return Plain(text, width)
}

// Render converts markdown into styled terminal text.
func Render(text string, width int) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := gomarkdown.Parse([]byte(Sanitize(text)), p)
	r := &renderer{width: width}
	return strings.Join(r.blocks(doc, width), "\n\n")
}

type renderer struct {
	width int
}

func (r *renderer) blocks(parent ast.Node, width int) []string {
	var out []string
	for _, child := range parent.GetChildren() {
		if rendered := r.block(child, width); strings.TrimSpace(rendered) != "" {
			out = append(out, rendered)
		}
	}
	return out
}

func (r *renderer) block(node ast.Node, width int) string {
	switch n := node.(type) {
	case *ast.Heading:
		style := headingStyle
		if n.Level > 1 {
			style = subheadingStyle
		}
		return style.Render(wrap(r.inline(n), width))
	case *ast.Paragraph:
		return wrap(r.inline(n), width)
	case *ast.List:
		return r.list(n, width)
	case *ast.BlockQuote:
		inner := strings.Join(r.blocks(n, width-2), "\n")
		return prefixLines(inner, quoteStyle.Render("│ "))
	case *ast.CodeBlock:
		return codeBlockStyle.Render(strings.TrimRight(string(n.Literal), "\n"))
	case *ast.HorizontalRule:
		return ruleStyle.Render(strings.Repeat("─", ruleWidth(width)))
	case *ast.Table:
		return r.table(n)
	case *ast.HTMLBlock:
		return wrap(string(n.Literal), width)
	default:
		if leaf := node.AsLeaf(); leaf != nil {
			return wrap(string(leaf.Literal), width)
		}
		return strings.Join(r.blocks(node, width), "\n\n")
	}
}

func (r *renderer) list(n *ast.List, width int) string {
	ordered := n.ListFlags&ast.ListTypeOrdered != 0
	index := n.Start
	if index == 0 {
		index = 1
	}
	var items []string
	for _, child := range n.GetChildren() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		body := strings.Join(r.blocks(item, width-len(marker)), "\n")
		lines := strings.Split(body, "\n")
		pad := strings.Repeat(" ", len(marker))
		for i := range lines {
			if i == 0 {
				lines[i] = marker + lines[i]
				continue
			}
			lines[i] = pad + lines[i]
		}
		items = append(items, strings.Join(lines, "\n"))
	}
	return strings.Join(items, "\n")
}

func (r *renderer) table(n *ast.Table) string {
	var rows []string
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		for _, child := range node.GetChildren() {
			row, ok := child.(*ast.TableRow)
			if !ok {
				walk(child)
				continue
			}
			var cells []string
			header := false
			for _, c := range row.GetChildren() {
				cell, ok := c.(*ast.TableCell)
				if !ok {
					continue
				}
				header = header || cell.IsHeader
				cells = append(cells, r.inline(cell))
			}
			line := "│ " + strings.Join(cells, " │ ") + " │"
			if header {
				line = strongStyle.Render(line)
			}
			rows = append(rows, line)
		}
	}
	walk(n)
	return strings.Join(rows, "\n")
}

func (r *renderer) inline(parent ast.Node) string {
	var b strings.Builder
	for _, child := range parent.GetChildren() {
		switch n := child.(type) {
		case *ast.Text:
			b.Write(n.Literal)
		case *ast.Strong:
			b.WriteString(strongStyle.Render(r.inline(n)))
		case *ast.Emph:
			b.WriteString(emphStyle.Render(r.inline(n)))
		case *ast.Del:
			b.WriteString(delStyle.Render(r.inline(n)))
		case *ast.Code:
			b.WriteString(codeStyle.Render(string(n.Literal)))
		case *ast.Link:
			label := r.inline(n)
			dest := string(n.Destination)
			b.WriteString(linkStyle.Render(label))
			if dest != "" && dest != label {
				b.WriteString(" (" + dest + ")")
			}
		case *ast.Image:
			b.WriteString("[image: " + r.inline(n) + "]")
		case *ast.Softbreak, *ast.Hardbreak:
			b.WriteRune('\n')
		default:
			if leaf := child.AsLeaf(); leaf != nil {
				b.Write(leaf.Literal)
				continue
			}
			b.WriteString(r.inline(child))
		}
	}
	return b.String()
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

func prefixLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func ruleWidth(width int) int {
	if width <= 0 || width > 40 {
		return 40
	}
	return width
}
