// Package tui is the terminal front end: the input form, the chat panel and
// the uploaded-files sidebar.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/docflow/internal/chat"
	"github.com/csheth/docflow/internal/inputs"
	"github.com/csheth/docflow/internal/logger"
	"github.com/csheth/docflow/internal/markdown"
	"github.com/csheth/docflow/internal/upload"
)

type model struct {
	session *Session
	layout  pageLayout
	focus   focusArea

	editors []groupEditor
	active  int

	transcript viewport.Model
	spinner    spinner.Model

	status      upload.Status
	showStatus  bool
	alert       string
	info        string
	helpVisible bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(session *Session) tea.Model {
	return newModel(session)
}

func newModel(session *Session) *model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(defaultWinWidth, minTranscript)
	vp.MouseWheelEnabled = true

	m := &model{
		session:    session,
		layout:     newPageLayout(),
		focus:      focusForm,
		transcript: vp,
		spinner:    spin,
		info:       "Configure input sources; uploads start automatically.",
	}
	m.syncEditors()
	m.relayout()
	m.focusActive()
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForUploadEvent(m.session.events),
		m.refreshFiles(),
		pollCmd(m.session.Config.Sidebar.PollInterval),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.windowWidth = msg.Width
		m.layout.windowHeight = msg.Height
		m.relayout()
		return m, nil
	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.showStatus && m.status.Kind == upload.StatusLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		if cmd := m.session.Chat.UpdateSpinner(msg); cmd != nil {
			cmds = append(cmds, cmd)
			m.refreshTranscript()
		}
		return m, tea.Batch(cmds...)
	case chat.TypingTickMsg:
		cmd := m.session.Chat.Tick(msg)
		m.refreshTranscript()
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	case jobSignalMsg:
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case chatResultMsg:
		cmd := m.session.Chat.Finish(msg.resp, msg.err)
		m.refreshTranscript()
		if m.focus == focusChat {
			return m, tea.Batch(cmd, m.session.Chat.Focus())
		}
		return m, cmd
	case fileListMsg:
		if msg.err != nil {
			logger.Warnf("file list refresh failed: %v", msg.err)
		}
		m.session.Files.Apply(msg.meta, msg.err)
		return m, nil
	case manualSubmitMsg:
		switch {
		case errors.Is(msg.err, inputs.ErrNoValidInput):
			m.alert = noValidInput
		case errors.Is(msg.err, upload.ErrBusy):
			m.alert = busyUpload
		}
		return m, nil
	case copyResultMsg:
		if msg.err != nil {
			m.alert = "Clipboard unavailable: " + msg.err.Error()
		} else {
			m.info = "Copied the last answer to the clipboard."
		}
		return m, nil
	case uploadEventMsg:
		cmd := m.applyUploadEvent(msg.event)
		return m, tea.Batch(cmd, waitForUploadEvent(m.session.events))
	case pollTickMsg:
		return m, tea.Batch(m.refreshFiles(), pollCmd(m.session.Config.Sidebar.PollInterval))
	}
	return m, nil
}

func (m *model) applyUploadEvent(e upload.Event) tea.Cmd {
	switch e.Kind {
	case upload.EventStatus:
		m.status = e.Status
		m.showStatus = true
		if e.Status.Kind == upload.StatusLoading {
			return m.spinner.Tick
		}
	case upload.EventStatusExpired:
		if m.showStatus && m.status.Seq == e.Status.Seq {
			m.showStatus = false
		}
	case upload.EventRefresh:
		return m.refreshFiles()
	}
	return nil
}

func (m *model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		switch {
		case m.helpVisible:
			m.helpVisible = false
		case m.session.Files.Visible():
			m.session.Files.Close()
			m.relayout()
		default:
			m.alert = ""
		}
		return nil
	case "f1":
		m.helpVisible = !m.helpVisible
		return nil
	case "ctrl+b":
		if m.session.Files.Toggle() {
			m.relayout()
			return m.refreshFiles()
		}
		m.relayout()
		return nil
	case "ctrl+r":
		return m.refreshFiles()
	case "ctrl+y":
		answer, ok := m.session.Chat.LastAnswer()
		if !ok {
			m.info = "No answer to copy yet."
			return nil
		}
		return m.session.jobs.Start(jobKindCopy, copyJob(answer))
	case "ctrl+s":
		return m.manualSubmit()
	case "ctrl+v":
		return m.paste()
	case "tab", "shift+tab":
		return m.toggleFocus()
	}

	if m.focus == focusChat {
		return m.handleChatKey(key)
	}
	switch key.String() {
	case "ctrl+n":
		return m.addGroup()
	case "ctrl+x":
		return m.removeGroup()
	case "ctrl+t":
		return m.cycleType()
	}
	return m.handleFormKey(key)
}

func (m *model) handleChatKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "enter":
		return m.sendChat()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(key)
		return cmd
	}
	return m.session.Chat.Update(key)
}

func (m *model) sendChat() tea.Cmd {
	message, ok := m.session.Chat.Begin(m.session.Chat.Value())
	if !ok {
		return nil
	}
	m.refreshTranscript()
	return tea.Batch(
		m.session.jobs.Start(jobKindChat, chatJob(m.session.Backend, message)),
		m.session.Chat.SpinnerTick(),
	)
}

func (m *model) toggleFocus() tea.Cmd {
	if m.focus == focusForm {
		m.commitActive()
		m.focus = focusChat
		m.focusActive()
		return m.session.Chat.Focus()
	}
	m.focus = focusForm
	m.session.Chat.Blur()
	return m.focusActive()
}

// manualSubmit validates up front so the alert shows without a job.
func (m *model) manualSubmit() tea.Cmd {
	m.commitActive()
	if m.session.Inputs.ValidCount() == 0 {
		m.alert = noValidInput
		return nil
	}
	m.alert = ""
	return m.session.jobs.Start(jobKindUpload, manualSubmitJob(m.session.Coordinator))
}

func (m *model) paste() tea.Cmd {
	text, err := readClipboard()
	if err != nil {
		m.alert = "Clipboard unavailable: " + err.Error()
		return nil
	}
	if text == "" {
		return nil
	}
	if m.focus == focusChat {
		if !m.session.Chat.Busy() {
			m.session.Chat.SetValue(m.session.Chat.Value() + strings.ReplaceAll(text, "\n", " "))
		}
		return nil
	}
	e := m.activeEditor()
	if e == nil {
		m.alert = noGroupsHint
		return nil
	}
	e.insert(text)
	m.mirrorActive()
	m.commitActive()
	return nil
}

func (m *model) refreshFiles() tea.Cmd {
	return m.session.jobs.Start(jobKindRefresh, fileListJob(m.session.Backend))
}

func (m *model) relayout() {
	width, height := m.layout.windowWidth, m.layout.windowHeight
	if width == 0 || height == 0 {
		width, height = defaultWinWidth, defaultWinHeight
	}
	m.layout.Update(width, height, m.session.Files.Visible(), len(m.editors))
	for i := range m.editors {
		m.editors[i].setWidth(m.fieldWidth())
	}
	m.session.Chat.SetWidth(m.layout.mainWidth - 4)
	m.transcript.Width = m.layout.mainWidth
	m.transcript.Height = m.layout.transcriptHeight
	m.refreshTranscript()
}

func (m *model) refreshTranscript() {
	atBottom := m.transcript.AtBottom()
	m.transcript.SetContent(m.session.Chat.Transcript(m.layout.mainWidth - 2))
	if atBottom || m.session.Chat.Revealing() || m.session.Chat.Typing() {
		m.transcript.GotoBottom()
	}
}

func (m *model) statusLine() string {
	if !m.showStatus {
		return ""
	}
	switch m.status.Kind {
	case upload.StatusLoading:
		return fmt.Sprintf("%s %s", m.spinner.View(), m.status.Message)
	case upload.StatusError:
		return errorStyle.Render(m.status.Message)
	default:
		return successStyle.Render(markdown.Format(m.status.Message, m.layout.mainWidth-4))
	}
}
