package tui

import (
	"github.com/csheth/docflow/internal/backend"
	"github.com/csheth/docflow/internal/upload"
)

type focusArea int

const (
	focusForm focusArea = iota
	focusChat
)

func (f focusArea) String() string {
	if f == focusChat {
		return "chat"
	}
	return "form"
}

const (
	appTitle     = "docflow"
	appTagline   = "Upload documents, then chat with them."
	noValidInput = "Please provide at least one valid input source."
	busyUpload   = "An upload is already in progress."
	noGroupsHint = "No input sources. Press ctrl+n to add one."
)

type chatResultMsg struct {
	resp backend.ChatResponse
	err  error
}

type fileListMsg struct {
	meta backend.UploadMeta
	err  error
}

type manualSubmitMsg struct {
	err error
}

type copyResultMsg struct {
	err error
}

type uploadEventMsg struct {
	event upload.Event
}

type pollTickMsg struct{}
