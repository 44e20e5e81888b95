package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/docflow/internal/backend"
	"github.com/csheth/docflow/internal/chat"
	"github.com/csheth/docflow/internal/config"
	"github.com/csheth/docflow/internal/inputs"
	"github.com/csheth/docflow/internal/upload"
)

type fakeBackend struct {
	mu       sync.Mutex
	uploads  []*inputs.Payload
	chats    []string
	chatResp backend.ChatResponse
	chatErr  error
	meta     backend.UploadMeta
}

func (f *fakeBackend) Chat(_ context.Context, message string) (backend.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, message)
	return f.chatResp, f.chatErr
}

func (f *fakeBackend) Upload(_ context.Context, payload *inputs.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, payload)
	return "Indexed", nil
}

func (f *fakeBackend) UploadMeta(context.Context) (backend.UploadMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meta, nil
}

func (f *fakeBackend) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func testConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{URL: "http://backend.test"},
		Upload: config.UploadConfig{
			Debounce:     10 * time.Millisecond,
			StatusTTL:    10 * time.Millisecond,
			RefreshDelay: 10 * time.Millisecond,
		},
		Sidebar: config.SidebarConfig{PollInterval: time.Minute},
	}
}

func newTestModel(t *testing.T) (*model, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{}
	return newModel(NewSession(testConfig(), fake)), fake
}

func press(m *model, keyType tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: keyType})
	return cmd
}

func typeText(m *model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func switchActiveTo(t *testing.T, m *model, want inputs.SourceType) {
	t.Helper()
	for i := 0; i < 5; i++ {
		if m.activeEditor().kind == want {
			return
		}
		press(m, tea.KeyCtrlT)
	}
	t.Fatalf("could not switch to %s", want)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSessionStartsWithOneGroup(t *testing.T) {
	m, _ := newTestModel(t)
	if got := m.session.Inputs.Count(); got != 1 {
		t.Fatalf("expected one group, got %d", got)
	}
	if !strings.Contains(m.View(), "1 input source(s) configured") {
		t.Fatal("status bar should report the group count")
	}
}

func TestManualSubmitWithoutValidInputAlerts(t *testing.T) {
	m, fake := newTestModel(t)
	if cmd := press(m, tea.KeyCtrlS); cmd != nil {
		t.Fatalf("no job should start without valid input, got %T", cmd)
	}
	if m.alert != noValidInput {
		t.Fatalf("unexpected alert %q", m.alert)
	}
	time.Sleep(30 * time.Millisecond)
	if fake.uploadCount() != 0 {
		t.Fatal("nothing should be uploaded")
	}
}

func TestLinkCommitSchedulesUpload(t *testing.T) {
	m, fake := newTestModel(t)
	switchActiveTo(t, m, inputs.SourceLink)
	typeText(m, "http://x")

	g, _ := m.session.Inputs.Get(m.activeEditor().id)
	if g.URL != "http://x" {
		t.Fatalf("url not mirrored into the group: %q", g.URL)
	}
	press(m, tea.KeyEnter)
	if !m.session.Coordinator.Pending() {
		t.Fatal("enter should schedule an upload")
	}
	waitFor(t, func() bool { return fake.uploadCount() == 1 })

	press(m, tea.KeyEnter)
	if m.session.Coordinator.Pending() {
		t.Fatal("an unchanged field should not schedule again")
	}
}

func TestRemoveGroupSchedulesAndShowsHint(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyCtrlX)
	if m.session.Inputs.Count() != 0 {
		t.Fatal("group not removed")
	}
	if !m.session.Coordinator.Pending() {
		t.Fatal("removal should schedule an upload")
	}
	if !strings.Contains(m.View(), noGroupsHint) {
		t.Fatal("form should show the empty hint")
	}
	press(m, tea.KeyCtrlN)
	if m.session.Inputs.Count() != 1 || len(m.editors) != 1 {
		t.Fatal("ctrl+n should add a group")
	}
}

func TestCycleTypeReloadsEditor(t *testing.T) {
	m, _ := newTestModel(t)
	id := m.activeEditor().id
	if err := m.session.Inputs.SetType(id, inputs.SourcePDF); err != nil {
		t.Fatal(err)
	}
	m.syncEditors()

	press(m, tea.KeyCtrlT)
	g, _ := m.session.Inputs.Get(id)
	if g.Type != inputs.SourceCode {
		t.Fatalf("expected code type, got %s", g.Type)
	}
	if m.activeEditor().kind != inputs.SourceCode {
		t.Fatal("editor not reloaded after type change")
	}
}

func TestChatRoundTrip(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyTab)
	if m.focus != focusChat {
		t.Fatal("tab should move focus to chat")
	}
	if cmd := press(m, tea.KeyEnter); cmd != nil {
		t.Fatal("blank chat input should not send")
	}

	typeText(m, "what changed?")
	if cmd := press(m, tea.KeyEnter); cmd == nil {
		t.Fatal("expected chat job")
	}
	if !m.session.Chat.Busy() {
		t.Fatal("chat should be busy while waiting")
	}

	m.Update(chatResultMsg{resp: backend.ChatResponse{
		Response: "Two things.",
		Sources:  []backend.Source{{ID: "1", Name: "a.pdf"}, {ID: "1", Name: "a.pdf"}},
	}})
	if m.session.Chat.Busy() {
		t.Fatal("chat should unlock after the reply")
	}
	msgs := m.session.Chat.Messages()
	if len(msgs) != 2 || msgs[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}
	if got := strings.Count(m.View(), "a.pdf"); got != 1 {
		t.Fatalf("sources should be deduplicated, saw %d", got)
	}
}

func TestChatTransportErrorShowsGenericMessage(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, tea.KeyTab)
	typeText(m, "hello")
	press(m, tea.KeyEnter)
	m.Update(chatResultMsg{err: errors.New("connection refused")})
	if !strings.Contains(m.View(), chat.GenericError) {
		t.Fatal("generic error not rendered")
	}
	if m.session.Chat.Busy() {
		t.Fatal("chat should unlock after an error")
	}
}

func TestUploadStatusLifecycle(t *testing.T) {
	m, _ := newTestModel(t)
	status := upload.Status{Seq: 4, Message: "Upload failed: Invalid URL format", Kind: upload.StatusError}
	m.Update(uploadEventMsg{event: upload.Event{Kind: upload.EventStatus, Status: status}})
	if !strings.Contains(m.statusLine(), "Upload failed: Invalid URL format") {
		t.Fatal("status not shown")
	}

	m.Update(uploadEventMsg{event: upload.Event{Kind: upload.EventStatusExpired, Status: upload.Status{Seq: 3}}})
	if !m.showStatus {
		t.Fatal("an older expiry must not hide a newer status")
	}
	m.Update(uploadEventMsg{event: upload.Event{Kind: upload.EventStatusExpired, Status: status}})
	if m.showStatus {
		t.Fatal("status should hide after its own expiry")
	}
}

func TestSidebarToggleRefreshes(t *testing.T) {
	m, _ := newTestModel(t)
	if cmd := press(m, tea.KeyCtrlB); cmd == nil {
		t.Fatal("opening the sidebar should refresh")
	}
	if !m.session.Files.Visible() {
		t.Fatal("sidebar should be open")
	}
	m.Update(fileListMsg{meta: backend.UploadMeta{Count: 1, Files: []backend.FileMeta{{Name: "report.pdf"}}}})
	if !strings.Contains(m.View(), "report.pdf") {
		t.Fatal("file list not rendered")
	}
	press(m, tea.KeyEsc)
	if m.session.Files.Visible() {
		t.Fatal("esc should close the sidebar")
	}
}

func TestPasteIntoLinkGroup(t *testing.T) {
	original := readClipboard
	t.Cleanup(func() { readClipboard = original })
	readClipboard = func() (string, error) { return "https://example.com/doc\n", nil }

	m, _ := newTestModel(t)
	switchActiveTo(t, m, inputs.SourceLink)
	press(m, tea.KeyCtrlV)

	g, _ := m.session.Inputs.Get(m.activeEditor().id)
	if g.URL != "https://example.com/doc" {
		t.Fatalf("clipboard not pasted: %q", g.URL)
	}
	if !m.session.Coordinator.Pending() {
		t.Fatal("paste should schedule an upload")
	}
}

func TestPasteClipboardError(t *testing.T) {
	original := readClipboard
	t.Cleanup(func() { readClipboard = original })
	readClipboard = func() (string, error) { return "", errors.New("no clipboard utility") }

	m, _ := newTestModel(t)
	press(m, tea.KeyCtrlV)
	if !strings.Contains(m.alert, "no clipboard utility") {
		t.Fatalf("unexpected alert %q", m.alert)
	}
}

func TestCopyWithoutAnswer(t *testing.T) {
	m, _ := newTestModel(t)
	if cmd := press(m, tea.KeyCtrlY); cmd != nil {
		t.Fatal("nothing to copy yet")
	}
	m.Update(copyResultMsg{})
	if !strings.Contains(m.info, "Copied") {
		t.Fatalf("unexpected info %q", m.info)
	}
}

func TestJobBusRunningOrder(t *testing.T) {
	bus := newJobBus()
	now := time.Now()
	bus.track(jobSnapshot{ID: "b", Kind: jobKindChat, StartedAt: now.Add(time.Second)})
	bus.track(jobSnapshot{ID: "a", Kind: jobKindRefresh, StartedAt: now})
	running := bus.Running()
	if len(running) != 2 || running[0].ID != "a" {
		t.Fatalf("unexpected order: %+v", running)
	}
	bus.untrack("a")
	if len(bus.Running()) != 1 {
		t.Fatal("untrack should drop the job")
	}
}

func TestJobResultEnvelopeUnwraps(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(jobResultEnvelope{Payload: manualSubmitMsg{err: upload.ErrBusy}})
	if m.alert != busyUpload {
		t.Fatalf("unexpected alert %q", m.alert)
	}
}

func TestMirrorToRemovedGroupAlerts(t *testing.T) {
	m, _ := newTestModel(t)
	switchActiveTo(t, m, inputs.SourceLink)
	id := m.activeEditor().id
	m.session.Inputs.Remove(id)

	typeText(m, "http://x")
	if !strings.Contains(m.alert, inputs.ErrUnknownGroup.Error()) {
		t.Fatalf("expected unknown group alert, got %q", m.alert)
	}
}
