package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/docflow/internal/inputs"
)

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	typeStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	activeMarkerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	helpBoxStyle       = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	sidebarStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	focusedPaneStyle   = lipgloss.NewStyle().BorderLeft(true).BorderStyle(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#8ecae6")).PaddingLeft(1)
	idlePaneStyle      = lipgloss.NewStyle().BorderLeft(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#56526e")).PaddingLeft(1)
)

func (m *model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(appTitle), "  ", taglineStyle.Render(appTagline))

	main := joinNonEmpty([]string{
		m.paneStyle(focusForm).Render(m.formView()),
		m.paneStyle(focusChat).Render(m.chatView()),
	})
	if m.session.Files.Visible() {
		sidebar := sidebarStyle.Width(m.layout.sidebarWidth - 2).Render(m.session.Files.View(m.layout.sidebarWidth - 4))
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, strings.Repeat(" ", sidebarGap), sidebar)
	}

	parts := []string{header, main, m.statusBarView()}
	if m.alert != "" {
		parts = append(parts, errorStyle.Render(wordwrap.String(m.alert, m.layout.windowWidth)))
	} else if m.info != "" {
		parts = append(parts, helperStyle.Render(wordwrap.String(m.info, m.layout.windowWidth)))
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) paneStyle(area focusArea) lipgloss.Style {
	if m.focus == area {
		return focusedPaneStyle
	}
	return idlePaneStyle
}

func (m *model) formView() string {
	lines := []string{sectionHeaderStyle.Render("Input sources")}
	if len(m.editors) == 0 {
		lines = append(lines, helperStyle.Render(noGroupsHint))
	}
	for idx, e := range m.editors {
		marker := "  "
		if idx == m.active {
			marker = activeMarkerStyle.Render("▸ ")
		}
		label := typeStyle.Render(e.kind.Label())
		row := lipgloss.JoinHorizontal(lipgloss.Top, marker, label, " ", e.view())
		lines = append(lines, row)
		if g, ok := m.session.Inputs.Get(e.id); ok {
			lines = append(lines, helperStyle.Render("    "+groupDetail(g)))
		}
	}
	if status := m.statusLine(); status != "" {
		lines = append(lines, status)
	}
	return strings.Join(lines, "\n")
}

func groupDetail(g inputs.Group) string {
	if g.Type.AcceptsFile() && g.FilePath != "" {
		if g.Pages > 0 {
			return fmt.Sprintf("✓ %s (%d pages)", g.FilePath, g.Pages)
		}
		return "✓ " + g.FilePath
	}
	return inputs.Hint(g.Type)
}

func (m *model) chatView() string {
	return joinLines([]string{
		sectionHeaderStyle.Render("Chat"),
		m.transcript.View(),
		m.session.Chat.InputView(),
	})
}

func (m *model) statusBarView() string {
	stats := []string{
		fmt.Sprintf("%d input source(s) configured", m.session.Inputs.Count()),
		fmt.Sprintf("Upload %s", m.session.Coordinator.State()),
		fmt.Sprintf("Focus %s", m.focus),
	}
	if m.session.Coordinator.Pending() {
		stats = append(stats, "Upload queued")
	}
	stats = append(stats, m.jobStatusBadges()...)
	stats = append(stats, "F1 help")
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	running := m.session.jobs.Running()
	if len(running) == 0 {
		return nil
	}
	counts := map[jobKind]int{}
	order := []jobKind{}
	for _, job := range running {
		if counts[job.Kind] == 0 {
			order = append(order, job.Kind)
		}
		counts[job.Kind]++
	}
	badges := make([]string, 0, len(order))
	for _, kind := range order {
		badges = append(badges, fmt.Sprintf("%s×%d", kind, counts[kind]))
	}
	return badges
}

type keyHint struct {
	Key         string
	Description string
}

var keyHints = []keyHint{
	{"tab", "Switch form / chat"},
	{"ctrl+n", "Add input source"},
	{"ctrl+x", "Remove source"},
	{"ctrl+t", "Cycle source type"},
	{"pgup/pgdn", "Previous / next source"},
	{"enter", "Attach file or send"},
	{"ctrl+s", "Upload now"},
	{"ctrl+v", "Paste clipboard"},
	{"ctrl+b", "Toggle uploaded files"},
	{"ctrl+r", "Refresh file list"},
	{"ctrl+y", "Copy last answer"},
	{"ctrl+c", "Quit"},
}

func (m *model) helpView() string {
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 2
	for i := 0; i < len(keyHints); i += columns {
		end := i + columns
		if end > len(keyHints) {
			end = len(keyHints)
		}
		var cells []string
		for _, hint := range keyHints[i:end] {
			key := keyStyle.Width(12).Render(hint.Key)
			desc := keyDescStyle.Width(26).Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return helpBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func joinLines(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n")
}
