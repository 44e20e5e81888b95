package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/docflow/internal/inputs"
	"github.com/csheth/docflow/internal/logger"
)

// groupEditor is the on-screen field of one input group. Pasted groups edit
// through the textarea, every other type through the single-line input.
type groupEditor struct {
	id        int
	kind      inputs.SourceType
	input     textinput.Model
	area      textarea.Model
	committed string
}

func newGroupEditor(g inputs.Group, width int) groupEditor {
	input := textinput.New()
	input.CharLimit = 1024
	input.Width = width

	area := textarea.New()
	area.ShowLineNumbers = false
	area.SetWidth(width)
	area.SetHeight(3)
	area.CharLimit = 0

	e := groupEditor{id: g.ID, input: input, area: area}
	e.load(g)
	return e
}

// load resets the editor to the group's active field.
func (e *groupEditor) load(g inputs.Group) {
	e.kind = g.Type
	e.input.Placeholder = placeholderFor(g.Type)
	e.area.Placeholder = placeholderFor(g.Type)
	value := g.ActiveValue()
	if e.isArea() {
		e.area.SetValue(value)
	} else {
		e.input.SetValue(value)
	}
	e.committed = value
}

func (e *groupEditor) isArea() bool {
	return e.kind == inputs.SourcePasted
}

func (e *groupEditor) value() string {
	if e.isArea() {
		return e.area.Value()
	}
	return e.input.Value()
}

func (e *groupEditor) setValue(value string) {
	if e.isArea() {
		e.area.SetValue(value)
		return
	}
	e.input.SetValue(value)
	e.input.CursorEnd()
}

func (e *groupEditor) insert(text string) {
	if e.isArea() {
		e.area.InsertString(text)
		return
	}
	e.setValue(e.input.Value() + strings.TrimSpace(text))
}

func (e *groupEditor) focus() tea.Cmd {
	if e.isArea() {
		e.input.Blur()
		return e.area.Focus()
	}
	e.area.Blur()
	return e.input.Focus()
}

func (e *groupEditor) blur() {
	e.input.Blur()
	e.area.Blur()
}

func (e *groupEditor) setWidth(width int) {
	e.input.Width = width
	e.area.SetWidth(width)
}

func (e *groupEditor) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if e.isArea() {
		e.area, cmd = e.area.Update(msg)
	} else {
		e.input, cmd = e.input.Update(msg)
	}
	return cmd
}

func (e *groupEditor) view() string {
	if e.isArea() {
		return e.area.View()
	}
	return e.input.View()
}

func placeholderFor(t inputs.SourceType) string {
	switch t {
	case inputs.SourceLink:
		return "https://example.com/article"
	case inputs.SourcePasted:
		return "Paste or type text here…"
	default:
		return "Path to a file, e.g. ~/docs/" + sampleName(t)
	}
}

func sampleName(t inputs.SourceType) string {
	switch t {
	case inputs.SourcePDF:
		return "report.pdf"
	case inputs.SourceCode:
		return "main.py"
	default:
		return "notes.txt"
	}
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// syncEditors rebuilds the editor list from the manager, keeping the state
// of editors whose group still exists.
func (m *model) syncEditors() {
	groups := m.session.Inputs.Groups()
	existing := make(map[int]groupEditor, len(m.editors))
	for _, e := range m.editors {
		existing[e.id] = e
	}
	editors := make([]groupEditor, 0, len(groups))
	for _, g := range groups {
		if e, ok := existing[g.ID]; ok && e.kind == g.Type {
			editors = append(editors, e)
			continue
		}
		editors = append(editors, newGroupEditor(g, m.fieldWidth()))
	}
	m.editors = editors
	if m.active >= len(m.editors) {
		m.active = len(m.editors) - 1
	}
	if m.active < 0 {
		m.active = 0
	}
}

func (m *model) activeEditor() *groupEditor {
	if m.active < 0 || m.active >= len(m.editors) {
		return nil
	}
	return &m.editors[m.active]
}

func (m *model) fieldWidth() int {
	width := m.layout.mainWidth - 24
	if width < 20 {
		width = 20
	}
	return width
}

// commitActive applies the active field to its group. Link and pasted text
// are already mirrored on each keystroke; file paths are preflighted here.
// A changed value schedules an auto-upload.
func (m *model) commitActive() {
	e := m.activeEditor()
	if e == nil {
		return
	}
	value := e.value()
	if value == e.committed {
		return
	}
	g, ok := m.session.Inputs.Get(e.id)
	if !ok {
		return
	}
	if g.Type.AcceptsFile() {
		if !m.commitFile(e, value) {
			return
		}
	}
	e.committed = value
	m.session.Coordinator.Schedule()
}

func (m *model) commitFile(e *groupEditor, value string) bool {
	path := expandPath(value)
	if path == "" {
		if err := m.session.Inputs.ClearFile(e.id); err != nil {
			m.alert = err.Error()
			return false
		}
		return true
	}
	g, err := m.session.Inputs.AttachFile(e.id, path)
	if err != nil {
		m.alert = err.Error()
		return false
	}
	m.alert = ""
	m.info = fmt.Sprintf("Attached %s", filepath.Base(g.FilePath))
	if g.Pages > 0 {
		m.info = fmt.Sprintf("Attached %s (%d pages)", filepath.Base(g.FilePath), g.Pages)
	}
	return true
}

// mirrorActive copies the field into the group on every edit.
func (m *model) mirrorActive() {
	e := m.activeEditor()
	if e == nil {
		return
	}
	var err error
	switch e.kind {
	case inputs.SourceLink:
		err = m.session.Inputs.SetURL(e.id, e.value())
	case inputs.SourcePasted:
		err = m.session.Inputs.SetPasted(e.id, e.value())
	}
	if err != nil {
		logger.Warnf("mirror field of group %d: %v", e.id, err)
		m.alert = err.Error()
	}
}

func (m *model) focusActive() tea.Cmd {
	for i := range m.editors {
		m.editors[i].blur()
	}
	if m.focus != focusForm {
		return nil
	}
	if e := m.activeEditor(); e != nil {
		return e.focus()
	}
	return nil
}

func (m *model) moveActive(delta int) tea.Cmd {
	if len(m.editors) == 0 {
		return nil
	}
	m.commitActive()
	m.active = (m.active + delta + len(m.editors)) % len(m.editors)
	return m.focusActive()
}

func (m *model) addGroup() tea.Cmd {
	m.commitActive()
	m.session.Inputs.Add()
	m.syncEditors()
	m.active = len(m.editors) - 1
	m.relayout()
	return m.focusActive()
}

func (m *model) removeGroup() tea.Cmd {
	e := m.activeEditor()
	if e == nil {
		return nil
	}
	if m.session.Inputs.Remove(e.id) {
		m.syncEditors()
		m.relayout()
		m.session.Coordinator.Schedule()
	}
	return m.focusActive()
}

func (m *model) cycleType() tea.Cmd {
	e := m.activeEditor()
	if e == nil {
		return nil
	}
	m.commitActive()
	before, ok := m.session.Inputs.Get(e.id)
	if !ok {
		return nil
	}
	next := before.Type.Next()
	if err := m.session.Inputs.SetType(e.id, next); err != nil {
		m.alert = err.Error()
		return nil
	}
	after, _ := m.session.Inputs.Get(e.id)
	e.load(after)
	if before.FilePath != "" && after.FilePath == "" {
		m.info = fmt.Sprintf("%s is not accepted as %s and was cleared", filepath.Base(before.FilePath), next.Label())
	} else if hint := inputs.Hint(next); hint != "" {
		m.info = hint
	}
	m.session.Coordinator.Schedule()
	return m.focusActive()
}

func (m *model) handleFormKey(key tea.KeyMsg) tea.Cmd {
	e := m.activeEditor()
	switch key.String() {
	case "pgup":
		return m.moveActive(-1)
	case "pgdown":
		return m.moveActive(1)
	case "up":
		if e != nil && !e.isArea() {
			return m.moveActive(-1)
		}
	case "down":
		if e != nil && !e.isArea() {
			return m.moveActive(1)
		}
	case "enter":
		if e != nil && !e.isArea() {
			m.commitActive()
			return nil
		}
	}
	if e == nil {
		return nil
	}
	cmd := e.update(key)
	m.mirrorActive()
	return cmd
}
