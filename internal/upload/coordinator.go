// Package upload debounces form edits and submits the valid input groups,
// keeping at most one upload in flight.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/csheth/docflow/internal/backend"
	"github.com/csheth/docflow/internal/inputs"
	"github.com/csheth/docflow/internal/logger"
)

type State int

const (
	Idle State = iota
	Uploading
)

func (s State) String() string {
	if s == Uploading {
		return "uploading"
	}
	return "idle"
}

type StatusKind string

const (
	StatusLoading StatusKind = "loading"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is a transient message for the form's status line. Seq orders
// statuses so a late expiry cannot clear a newer one.
type Status struct {
	Seq     uint64
	Message string
	Kind    StatusKind
}

type EventKind int

const (
	EventStatus EventKind = iota
	EventStatusExpired
	EventRefresh
)

type Event struct {
	Kind   EventKind
	Status Status
}

// ErrBusy is returned when a trigger arrives while an upload is in flight.
var ErrBusy = errors.New("upload already in progress")

const loadingMessage = "Uploading and indexing document(s)..."

// Source yields the current input groups.
type Source func() []inputs.Group

type Uploader interface {
	Upload(ctx context.Context, payload *inputs.Payload) (string, error)
}

type Config struct {
	Debounce     time.Duration
	StatusTTL    time.Duration
	RefreshDelay time.Duration
	// FollowUp re-schedules one more attempt when a trigger was dropped
	// while uploading.
	FollowUp bool
}

type Coordinator struct {
	cfg      Config
	source   Source
	uploader Uploader
	sink     func(Event)

	mu       sync.Mutex
	state    State
	timer    *time.Timer
	gen      uint64
	seq      uint64
	followUp bool
}

func New(cfg Config, source Source, uploader Uploader, sink func(Event)) *Coordinator {
	if sink == nil {
		sink = func(Event) {}
	}
	return &Coordinator{cfg: cfg, source: source, uploader: uploader, sink: sink}
}

// Schedule restarts the debounce timer. Calls that land before it fires
// collapse into a single attempt.
func (c *Coordinator) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.cfg.Debounce, func() { c.fire(gen) })
}

// CancelPending drops a scheduled attempt that has not fired yet.
func (c *Coordinator) CancelPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.gen++
}

// Pending reports whether a debounce timer is armed.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Flush is the manual submit path: it cancels any pending timer and tries
// immediately, returning inputs.ErrNoValidInput when nothing is valid.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.CancelPending()
	return c.attempt(ctx)
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	if err := c.attempt(context.Background()); err != nil {
		logger.Debugf("auto-upload skipped: %v", err)
	}
}

// attempt validates first and claims the in-flight flag only when there is
// something to send, so an empty form never blocks or queues a trigger.
func (c *Coordinator) attempt(ctx context.Context) error {
	if c.busy() {
		return ErrBusy
	}

	payload, err := inputs.BuildPayload(c.source())
	if errors.Is(err, inputs.ErrNoValidInput) {
		return err
	}
	if err != nil {
		c.report(StatusError, fmt.Sprintf("Upload error: %v", err))
		return err
	}

	if !c.claim() {
		return ErrBusy
	}
	defer c.release()

	logger.Infof("auto-uploading %d input(s)", payload.Count)
	c.report(StatusLoading, loadingMessage)

	message, err := c.uploader.Upload(ctx, payload)
	if err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			c.report(StatusError, "Upload failed: "+statusErr.Body)
		} else {
			c.report(StatusError, "Upload error: "+err.Error())
		}
		logger.Errorf("upload failed: %v", err)
		return err
	}

	c.report(StatusSuccess, message)
	logger.Infof("upload succeeded: %s", message)
	time.AfterFunc(c.cfg.RefreshDelay, func() {
		c.sink(Event{Kind: EventRefresh})
	})
	return nil
}

// busy reports an in-flight upload, remembering a follow-up when enabled.
func (c *Coordinator) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Uploading {
		return false
	}
	if c.cfg.FollowUp {
		c.followUp = true
	}
	return true
}

func (c *Coordinator) claim() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Uploading {
		if c.cfg.FollowUp {
			c.followUp = true
		}
		return false
	}
	c.state = Uploading
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.state = Idle
	rerun := c.followUp
	c.followUp = false
	c.mu.Unlock()
	if rerun {
		c.Schedule()
	}
}

func (c *Coordinator) report(kind StatusKind, message string) {
	c.mu.Lock()
	c.seq++
	status := Status{Seq: c.seq, Message: message, Kind: kind}
	c.mu.Unlock()

	c.sink(Event{Kind: EventStatus, Status: status})
	if kind == StatusLoading || c.cfg.StatusTTL <= 0 {
		return
	}
	time.AfterFunc(c.cfg.StatusTTL, func() {
		c.sink(Event{Kind: EventStatusExpired, Status: status})
	})
}
