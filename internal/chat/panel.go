// Package chat keeps the conversation transcript and the chat input.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/docflow/internal/backend"
	"github.com/csheth/docflow/internal/markdown"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// GenericError is shown when the chat request fails below the application
// layer.
const GenericError = "Sorry, there was an error processing your request."

const runesPerTick = 3

type Message struct {
	Role    Role
	Content string
	Sources []backend.Source
	At      time.Time
}

// TypingTickMsg advances the reveal of the newest assistant message.
type TypingTickMsg struct {
	gen int
}

var (
	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd166"))
	errorLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorTextStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourcesHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	sourceStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	helperStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Panel is owned by the UI loop and is not safe for concurrent use.
type Panel struct {
	input    textinput.Model
	spinner  spinner.Model
	messages []Message
	busy     bool
	typing   bool
	speed    time.Duration
	reveal   int
	revealOf int
	gen      int
}

// NewPanel returns an empty panel. A zero typing speed shows answers at once.
func NewPanel(typingSpeed time.Duration) *Panel {
	input := textinput.New()
	input.Placeholder = "Ask a question about your documents…"
	input.CharLimit = 2000
	input.Width = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Panel{input: input, spinner: spin, speed: typingSpeed, revealOf: -1}
}

func (p *Panel) Focus() tea.Cmd {
	return p.input.Focus()
}

func (p *Panel) Blur() {
	p.input.Blur()
}

func (p *Panel) Focused() bool {
	return p.input.Focused()
}

func (p *Panel) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	p.input.Width = width
}

func (p *Panel) Value() string {
	return p.input.Value()
}

func (p *Panel) SetValue(value string) {
	p.input.SetValue(value)
}

func (p *Panel) Busy() bool {
	return p.busy
}

// Typing reports whether the waiting indicator is shown.
func (p *Panel) Typing() bool {
	return p.typing
}

func (p *Panel) Messages() []Message {
	return append([]Message(nil), p.messages...)
}

// Update forwards keys to the input. Keys are ignored while a request is in
// flight.
func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	if p.busy {
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// Begin records text as a user message and locks the input until Finish.
// Blank text and calls made while busy are no-ops.
func (p *Panel) Begin(text string) (string, bool) {
	message := strings.TrimSpace(text)
	if message == "" || p.busy {
		return "", false
	}
	p.finishReveal()
	p.messages = append(p.messages, Message{Role: RoleUser, Content: message, At: time.Now()})
	p.input.SetValue("")
	p.busy = true
	p.typing = true
	return message, true
}

// Finish records the outcome of a chat request and unlocks the input. The
// returned command drives the typing reveal, if any.
func (p *Panel) Finish(resp backend.ChatResponse, err error) tea.Cmd {
	p.busy = false
	p.typing = false
	switch {
	case err != nil:
		p.messages = append(p.messages, Message{Role: RoleError, Content: GenericError, At: time.Now()})
		return nil
	case resp.Error != "":
		p.messages = append(p.messages, Message{Role: RoleError, Content: resp.Error, At: time.Now()})
		return nil
	}
	p.messages = append(p.messages, Message{
		Role:    RoleAssistant,
		Content: resp.Response,
		Sources: resp.Sources,
		At:      time.Now(),
	})
	if p.speed <= 0 {
		return nil
	}
	p.gen++
	p.revealOf = len(p.messages) - 1
	p.reveal = 0
	return p.tick()
}

// Tick advances the reveal. Ticks from an earlier reveal are ignored.
func (p *Panel) Tick(msg TypingTickMsg) tea.Cmd {
	if msg.gen != p.gen || p.revealOf < 0 {
		return nil
	}
	total := len([]rune(p.messages[p.revealOf].Content))
	p.reveal += runesPerTick
	if p.reveal >= total {
		p.finishReveal()
		return nil
	}
	return p.tick()
}

// Revealing reports whether an answer is still being typed out.
func (p *Panel) Revealing() bool {
	return p.revealOf >= 0
}

func (p *Panel) tick() tea.Cmd {
	gen := p.gen
	return tea.Tick(p.speed, func(time.Time) tea.Msg {
		return TypingTickMsg{gen: gen}
	})
}

func (p *Panel) finishReveal() {
	p.revealOf = -1
	p.reveal = 0
}

// SpinnerTick starts the waiting indicator animation.
func (p *Panel) SpinnerTick() tea.Cmd {
	return p.spinner.Tick
}

func (p *Panel) UpdateSpinner(msg spinner.TickMsg) tea.Cmd {
	if !p.typing {
		return nil
	}
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}

// LastAnswer returns the newest assistant response.
func (p *Panel) LastAnswer() (string, bool) {
	for i := len(p.messages) - 1; i >= 0; i-- {
		if p.messages[i].Role == RoleAssistant {
			return p.messages[i].Content, true
		}
	}
	return "", false
}

// UniqueSources drops repeated IDs, keeping the first occurrence and the
// original order.
func UniqueSources(sources []backend.Source) []backend.Source {
	seen := make(map[string]bool, len(sources))
	out := make([]backend.Source, 0, len(sources))
	for _, src := range sources {
		if seen[src.ID] {
			continue
		}
		seen[src.ID] = true
		out = append(out, src)
	}
	return out
}

// Transcript renders every message without the input line.
func (p *Panel) Transcript(width int) string {
	if width < 20 {
		width = 20
	}
	if len(p.messages) == 0 && !p.typing {
		return helperStyle.Render("Upload documents, then ask a question about them.")
	}
	blocks := make([]string, 0, len(p.messages)+1)
	for idx, msg := range p.messages {
		blocks = append(blocks, p.renderMessage(idx, msg, width))
	}
	if p.typing {
		blocks = append(blocks, fmt.Sprintf("%s %s", p.spinner.View(), helperStyle.Render("Assistant is typing…")))
	}
	return strings.Join(blocks, "\n\n")
}

func (p *Panel) InputView() string {
	return p.input.View()
}

func (p *Panel) View(width int) string {
	return p.Transcript(width) + "\n\n" + p.InputView()
}

func (p *Panel) renderMessage(idx int, msg Message, width int) string {
	bodyWidth := width - 2
	switch msg.Role {
	case RoleUser:
		return userLabelStyle.Render("You") + "\n" + indent(markdown.Format(msg.Content, bodyWidth))
	case RoleError:
		return errorLabelStyle.Render("Error") + "\n" + indent(errorTextStyle.Render(markdown.Format(msg.Content, bodyWidth)))
	}

	if idx == p.revealOf {
		partial := string([]rune(msg.Content)[:p.reveal])
		return assistantLabelStyle.Render("Assistant") + "\n" + indent(markdown.Plain(partial, bodyWidth))
	}
	parts := []string{assistantLabelStyle.Render("Assistant"), indent(markdown.Format(msg.Content, bodyWidth))}
	if sources := UniqueSources(msg.Sources); len(sources) > 0 {
		lines := []string{sourcesHeaderStyle.Render("Sources:")}
		for _, src := range sources {
			lines = append(lines, sourceStyle.Render("📄 "+markdown.Sanitize(src.Name)))
		}
		parts = append(parts, indent(strings.Join(lines, "\n")))
	}
	return strings.Join(parts, "\n")
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
