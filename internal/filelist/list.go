// Package filelist holds the sidebar listing of documents the backend has
// already indexed.
package filelist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/csheth/docflow/internal/backend"
	"github.com/csheth/docflow/internal/markdown"
)

const emptyPlaceholder = "No files uploaded yet"

const timeLayout = "Jan 2 2006 15:04"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// List is the sidebar state. It is owned by the UI loop and is not safe for
// concurrent use.
type List struct {
	visible bool
	files   []backend.FileMeta
	count   int
	lastErr error
}

func New() *List {
	return &List{}
}

// Open shows the sidebar. Callers refresh right after opening.
func (l *List) Open() {
	l.visible = true
}

func (l *List) Close() {
	l.visible = false
}

// Toggle flips visibility and reports whether the sidebar is now open.
func (l *List) Toggle() bool {
	l.visible = !l.visible
	return l.visible
}

func (l *List) Visible() bool {
	return l.visible
}

// Apply replaces the listing with a fresh fetch result. A failed fetch
// renders as the empty state.
func (l *List) Apply(meta backend.UploadMeta, err error) {
	l.lastErr = err
	if err != nil {
		l.files = nil
		l.count = 0
		return
	}
	l.files = append([]backend.FileMeta(nil), meta.Files...)
	l.count = meta.Count
}

func (l *List) Files() []backend.FileMeta {
	return append([]backend.FileMeta(nil), l.files...)
}

// Err returns the error from the last fetch, if any.
func (l *List) Err() error {
	return l.lastErr
}

func (l *List) View(width int) string {
	if width < 12 {
		width = 12
	}
	header := "Uploaded files"
	if l.count > 0 {
		header = fmt.Sprintf("Uploaded files (%d)", l.count)
	}
	lines := []string{headerStyle.Render(header)}
	if len(l.files) == 0 {
		lines = append(lines, dimStyle.Render(emptyPlaceholder))
		return strings.Join(lines, "\n")
	}
	for _, f := range l.files {
		name := markdown.Sanitize(f.Name)
		name = strings.ReplaceAll(name, "\n", " ")
		lines = append(lines, nameStyle.Render(truncate.StringWithTail("📄 "+name, uint(width), "…")))
		if !f.UploadedAt.IsZero() {
			lines = append(lines, dimStyle.Render("   "+f.UploadedAt.Local().Format(timeLayout)))
		}
	}
	return strings.Join(lines, "\n")
}
