package tui

import (
	"context"

	"github.com/google/uuid"

	"github.com/csheth/docflow/internal/backend"
	"github.com/csheth/docflow/internal/chat"
	"github.com/csheth/docflow/internal/config"
	"github.com/csheth/docflow/internal/filelist"
	"github.com/csheth/docflow/internal/inputs"
	"github.com/csheth/docflow/internal/logger"
	"github.com/csheth/docflow/internal/upload"
)

const eventBuffer = 64

// Backend is the subset of the HTTP client the UI needs.
type Backend interface {
	Chat(ctx context.Context, message string) (backend.ChatResponse, error)
	Upload(ctx context.Context, payload *inputs.Payload) (string, error)
	UploadMeta(ctx context.Context) (backend.UploadMeta, error)
}

// Session is the page-session context: everything one run of the UI owns.
type Session struct {
	ID          string
	Config      *config.Config
	Backend     Backend
	Inputs      *inputs.Manager
	Coordinator *upload.Coordinator
	Chat        *chat.Panel
	Files       *filelist.List

	jobs   *jobBus
	events chan upload.Event
}

// NewSession wires a session against the configured backend. A nil client
// builds the default HTTP client.
func NewSession(cfg *config.Config, client Backend) *Session {
	id := uuid.NewString()
	if client == nil {
		client = backend.New(backend.Config{
			BaseURL:   cfg.Backend.URL,
			SessionID: id,
			Timeout:   cfg.Backend.Timeout,
		})
	}
	s := &Session{
		ID:      id,
		Config:  cfg,
		Backend: client,
		Inputs:  inputs.NewManager(),
		Chat:    chat.NewPanel(cfg.Chat.TypingSpeed),
		Files:   filelist.New(),
		jobs:    newJobBus(),
		events:  make(chan upload.Event, eventBuffer),
	}
	s.Coordinator = upload.New(upload.Config{
		Debounce:     cfg.Upload.Debounce,
		StatusTTL:    cfg.Upload.StatusTTL,
		RefreshDelay: cfg.Upload.RefreshDelay,
		FollowUp:     cfg.Upload.FollowUp,
	}, s.Inputs.Groups, client, s.publish)
	s.Inputs.Add()
	logger.Infof("session %s started against %s", id, cfg.Backend.URL)
	return s
}

// publish runs on coordinator goroutines. It never blocks the caller.
func (s *Session) publish(e upload.Event) {
	select {
	case s.events <- e:
	default:
		logger.Warnf("upload event dropped, queue full (kind=%d)", e.Kind)
	}
}
