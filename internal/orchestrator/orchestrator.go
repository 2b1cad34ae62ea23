// Package orchestrator runs import jobs asynchronously and owns the
// confirm handshake for fatal import errors.
//
// One orchestrator runs at most one job at a time. A job executes on its own
// goroutine and communicates exclusively through its event channel; the UI
// layer never shares state with the worker beyond the job's atomic cancel
// flag and the one-shot decision handoff.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mtsignal/sigweave/internal/importer"
	"github.com/mtsignal/sigweave/internal/types"
)

// State is the lifecycle position of a job.
type State string

const (
	StateIdle            State = "idle"
	StateStarted         State = "started"
	StateRunning         State = "running"
	StateAwaitingConfirm State = "awaiting_confirm"
	StateCompleted       State = "completed"
	StateCanceled        State = "canceled"
	StateFailed          State = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCanceled || s == StateFailed
}

// EventKind discriminates job events.
type EventKind string

const (
	EventStarted    EventKind = "started"
	EventProgress   EventKind = "progress"
	EventAskConfirm EventKind = "ask_confirm"
	EventReport     EventKind = "report"
	EventFinished   EventKind = "finished"
	EventCanceled   EventKind = "canceled"
	EventError      EventKind = "error"
)

// Event is one job notification. Only the fields relevant to the kind are
// populated: Progress for progress, Question for ask_confirm, Warnings and
// LogPath for report, Summary for finished, Err for error.
type Event struct {
	Kind     EventKind
	JobID    string
	Progress int
	Question string
	Warnings []types.ImportWarning
	LogPath  string
	Summary  types.Summary
	Err      error
}

// Job is a handle on one running import. The channel from Events carries the
// job's full notification stream and is closed after the terminal event.
type Job struct {
	ID     string
	Format types.ImportFormat

	events   chan Event
	cancel   atomic.Bool
	pending  atomic.Bool
	resolved atomic.Bool // pending confirm consumed by Cancel
	decision chan bool

	mu    sync.Mutex
	state State
}

// Events returns the job's notification stream.
func (j *Job) Events() <-chan Event { return j.events }

// State returns the job's current lifecycle position.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

// Cancel requests a stop. The worker observes the flag at its next iteration
// boundary; work persisted before that boundary stays persisted. Canceling
// while a confirm is pending resolves the confirm as a cancellation.
func (j *Job) Cancel() {
	j.cancel.Store(true)
	if j.pending.CompareAndSwap(true, false) {
		j.resolved.Store(true)
		j.decision <- false
	}
}

// SubmitDecision answers a pending ask_confirm event. true continues the
// import past the failed unit, false aborts the job.
//
// Exactly one decision per ask_confirm: calling without a pending confirm,
// or twice for the same one, is a caller protocol violation and panics.
// The one exception is a confirm that Cancel already resolved: the controller
// cannot guard against that race, so the late decision is dropped.
func (j *Job) SubmitDecision(cont bool) {
	if !j.pending.CompareAndSwap(true, false) {
		if j.resolved.Load() {
			return
		}
		panic("orchestrator: SubmitDecision without a pending confirm")
	}
	j.decision <- cont
}

func (j *Job) emit(ev Event) {
	ev.JobID = j.ID
	j.events <- ev
}

// Orchestrator starts and supervises import jobs.
type Orchestrator struct {
	logger  *log.Logger
	warnDir string

	mu     sync.Mutex
	active *Job
}

// New creates an orchestrator. warnDir is where per-job warning logs are
// written; empty disables the artifact.
func New(logger *log.Logger, warnDir string) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{logger: logger, warnDir: warnDir}
}

// ErrJobActive is returned by Start while a previous job is still running.
var ErrJobActive = errors.New("an import job is already running")

// Start launches imp on a worker goroutine and returns the job handle. The
// first event on the job's channel is always started; the last is one of
// finished, canceled, or error.
func (o *Orchestrator) Start(ctx context.Context, imp importer.Importer) (*Job, error) {
	job := &Job{
		ID:       uuid.NewString(),
		Format:   imp.Format(),
		events:   make(chan Event, 128),
		decision: make(chan bool),
		state:    StateIdle,
	}

	o.mu.Lock()
	if o.active != nil && !o.active.State().Terminal() {
		o.mu.Unlock()
		return nil, ErrJobActive
	}
	job.state = StateStarted
	o.active = job
	o.mu.Unlock()

	go o.run(ctx, job, imp)
	return job, nil
}

// Active returns the currently running job, or nil.
func (o *Orchestrator) Active() *Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil && o.active.State().Terminal() {
		return nil
	}
	return o.active
}

// RequestCancel cancels the active job if there is one. Idempotent; a no-op
// with no job in flight or after the job already finished.
func (o *Orchestrator) RequestCancel() {
	if job := o.Active(); job != nil {
		job.Cancel()
	}
}

func (o *Orchestrator) run(ctx context.Context, job *Job, imp importer.Importer) {
	defer close(job.events)

	logger := o.logger.With("job", job.ID, "format", job.Format)
	logger.Info("import started")

	job.setState(StateRunning)
	job.emit(Event{Kind: EventStarted})

	cb := importer.Callbacks{
		Progress:     func(n int) { job.emit(Event{Kind: EventProgress, Progress: n}) },
		ShouldCancel: job.cancel.Load,
	}

	var total types.Summary
	var extra []types.ImportWarning // adjudicated fatals, recorded per decision

	for {
		sum, err := imp.Import(ctx, cb)
		total.Add(sum)

		if err == nil {
			break
		}
		if errors.Is(err, importer.ErrCanceled) {
			logger.Info("import canceled", "persisted", total.String())
			job.setState(StateCanceled)
			job.emit(Event{Kind: EventCanceled, Summary: total})
			return
		}

		var fatal *importer.FatalError
		if !errors.As(err, &fatal) {
			logger.Error("import failed", "err", err)
			job.setState(StateFailed)
			job.emit(Event{Kind: EventError, Err: err, Summary: total})
			return
		}

		logger.Warn("fatal import error, asking for confirmation", "err", fatal)
		job.setState(StateAwaitingConfirm)
		job.pending.Store(true)
		job.emit(Event{
			Kind:     EventAskConfirm,
			Question: fmt.Sprintf("A fatal error occurred (%s). Continue with the remaining data?", fatal.Error()),
		})

		cont := <-job.decision
		if !cont {
			if job.cancel.Load() {
				logger.Info("import canceled during confirm", "persisted", total.String())
				job.setState(StateCanceled)
				job.emit(Event{Kind: EventCanceled, Summary: total})
				return
			}
			logger.Error("import aborted on fatal error", "err", fatal)
			job.setState(StateFailed)
			job.emit(Event{Kind: EventError, Err: fatal, Summary: total})
			return
		}

		extra = append(extra, types.ImportWarning{Locator: fatal.Locator(), Message: fatal.Error()})
		imp.Resume(fatal)
		job.setState(StateRunning)
	}

	warnings := append(imp.Warnings(), extra...)
	logPath := ""
	if len(warnings) > 0 {
		path, err := o.writeWarningLog(job, warnings)
		if err != nil {
			logger.Warn("could not write warning log", "err", err)
		} else {
			logPath = path
		}
	}

	job.emit(Event{Kind: EventReport, Warnings: warnings, LogPath: logPath})

	logger.Info("import finished", "result", total.String(), "warnings", len(warnings))
	job.setState(StateCompleted)
	job.emit(Event{Kind: EventFinished, Summary: total})
}

// writeWarningLog persists the job's warnings as a reviewable artifact.
// Written to a temp file first and renamed so a crash never leaves a partial
// log behind.
func (o *Orchestrator) writeWarningLog(job *Job, warnings []types.ImportWarning) (string, error) {
	if o.warnDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(o.warnDir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(o.warnDir, "warnings-*.tmp")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	for _, w := range warnings {
		if _, err := fmt.Fprintln(tmp, w.String()); err != nil {
			_ = tmp.Close()
			return "", err
		}
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(o.warnDir, fmt.Sprintf("import-%s-%s.log", job.Format, job.ID))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
