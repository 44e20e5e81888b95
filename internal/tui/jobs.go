package tui

import (
	"context"
	"sort"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/csheth/docflow/internal/logger"
)

type jobKind string

type jobStatus string

const (
	jobKindChat    jobKind = "chat"
	jobKindUpload  jobKind = "upload"
	jobKindRefresh jobKind = "refresh"
	jobKindCopy    jobKind = "copy"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus wraps backend calls as tracked commands. The running set is read
// by the status bar.
type jobBus struct {
	mu      sync.Mutex
	running map[string]jobSnapshot
}

func newJobBus() *jobBus {
	return &jobBus{running: map[string]jobSnapshot{}}
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := uuid.NewString()
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	b.track(startSnapshot)
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		payload, err := runner(context.Background())
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		b.untrack(id)
		entry := logger.WithFields(logrus.Fields{
			"job":      id,
			"kind":     kind,
			"status":   snapshot.Status,
			"duration": snapshot.Duration,
		})
		if err != nil {
			entry.WithError(err).Warn("job finished")
		} else {
			entry.Info("job finished")
		}
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}

func (b *jobBus) track(s jobSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running[s.ID] = s
}

func (b *jobBus) untrack(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.running, id)
}

// Running returns in-flight jobs, oldest first.
func (b *jobBus) Running() []jobSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]jobSnapshot, 0, len(b.running))
	for _, s := range b.running {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
