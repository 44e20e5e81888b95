package tui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/docflow/internal/upload"
)

var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

const metaTimeout = 30 * time.Second

func chatJob(b Backend, message string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		resp, err := b.Chat(ctx, message)
		if err == nil && resp.Error != "" {
			return chatResultMsg{resp: resp}, errors.New(resp.Error)
		}
		return chatResultMsg{resp: resp, err: err}, err
	}
}

func fileListJob(b Backend) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, metaTimeout)
		defer cancel()
		meta, err := b.UploadMeta(ctx)
		return fileListMsg{meta: meta, err: err}, err
	}
}

func manualSubmitJob(c *upload.Coordinator) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := c.Flush(ctx)
		return manualSubmitMsg{err: err}, err
	}
}

func copyJob(text string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := writeClipboard(text)
		return copyResultMsg{err: err}, err
	}
}

// waitForUploadEvent blocks until the coordinator publishes. The model
// re-arms it after every event.
func waitForUploadEvent(events <-chan upload.Event) tea.Cmd {
	return func() tea.Msg {
		return uploadEventMsg{event: <-events}
	}
}

func pollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}
