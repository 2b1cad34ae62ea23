package orchestrator

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtsignal/sigweave/internal/importer"
	"github.com/mtsignal/sigweave/internal/types"
)

// fakeImporter replays a scripted sequence of Import outcomes, one per
// invocation, so tests control the exact fatal/resume flow.
type fakeImporter struct {
	script   []func(cb importer.Callbacks) (types.Summary, error)
	calls    int
	resumed  []*importer.FatalError
	warnings []types.ImportWarning
}

func (f *fakeImporter) Format() types.ImportFormat { return types.FormatSignalCSV }

func (f *fakeImporter) Import(ctx context.Context, cb importer.Callbacks) (types.Summary, error) {
	if f.calls >= len(f.script) {
		return types.Summary{}, errors.New("unexpected extra Import invocation")
	}
	step := f.script[f.calls]
	f.calls++
	return step(cb)
}

func (f *fakeImporter) Resume(fatal *importer.FatalError) {
	f.resumed = append(f.resumed, fatal)
}

func (f *fakeImporter) Warnings() []types.ImportWarning { return f.warnings }

func newFake(t *testing.T, script ...func(cb importer.Callbacks) (types.Summary, error)) *fakeImporter {
	t.Helper()
	return &fakeImporter{script: script}
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	return New(log.New(io.Discard), t.TempDir())
}

// next reads one event with a deadline so a stuck worker fails fast.
func next(t *testing.T, job *Job) Event {
	t.Helper()
	select {
	case ev, ok := <-job.Events():
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a job event")
		return Event{}
	}
}

// drain collects the remaining events until the channel closes.
func drain(t *testing.T, job *Job) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-job.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("timed out draining job events")
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestJobHappyPath(t *testing.T) {
	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		cb.Progress(50)
		cb.Progress(100)
		return types.Summary{Format: types.FormatSignalCSV, Signals: 100}, nil
	})

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)

	events := drain(t, job)
	assert.Equal(t, []EventKind{
		EventStarted, EventProgress, EventProgress, EventReport, EventFinished,
	}, kinds(events))

	report := events[3]
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.LogPath, "no warnings, no log artifact")

	finished := events[4]
	assert.Equal(t, 100, finished.Summary.Signals)
	assert.Equal(t, StateCompleted, job.State())
	assert.Nil(t, o.Active())
}

func TestJobCancel(t *testing.T) {
	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		for !cb.ShouldCancel() {
			time.Sleep(time.Millisecond)
		}
		return types.Summary{Format: types.FormatSignalCSV, Signals: 7}, importer.ErrCanceled
	})

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)

	require.Equal(t, EventStarted, next(t, job).Kind)
	job.Cancel()

	events := drain(t, job)
	require.Equal(t, []EventKind{EventCanceled}, kinds(events))
	assert.Equal(t, 7, events[0].Summary.Signals, "work done before the boundary is kept")
	assert.Equal(t, StateCanceled, job.State())
}

func TestJobConfirmContinue(t *testing.T) {
	fatal := &importer.FatalError{Phase: importer.PhaseRows, Unit: 5, Message: "CSV parse error"}
	imp := newFake(t,
		func(cb importer.Callbacks) (types.Summary, error) {
			return types.Summary{Format: types.FormatSignalCSV, Signals: 4}, fatal
		},
		func(cb importer.Callbacks) (types.Summary, error) {
			return types.Summary{Format: types.FormatSignalCSV, Signals: 3}, nil
		},
	)
	imp.warnings = []types.ImportWarning{{Locator: "row 2", Message: "signal_id is empty, row skipped"}}

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)

	require.Equal(t, EventStarted, next(t, job).Kind)

	ask := next(t, job)
	require.Equal(t, EventAskConfirm, ask.Kind)
	assert.Contains(t, ask.Question, "CSV parse error")
	assert.Equal(t, StateAwaitingConfirm, job.State())

	job.SubmitDecision(true)

	events := drain(t, job)
	require.Equal(t, []EventKind{EventReport, EventFinished}, kinds(events))

	require.Len(t, imp.resumed, 1)
	assert.Same(t, fatal, imp.resumed[0])

	report := events[0]
	require.Len(t, report.Warnings, 2, "importer warnings plus the adjudicated fatal")
	assert.Equal(t, "row 5", report.Warnings[1].Locator)
	require.NotEmpty(t, report.LogPath)

	content, err := os.ReadFile(report.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "row 2: signal_id is empty")
	assert.Contains(t, string(content), "row 5: CSV parse error")
	assert.True(t, strings.HasSuffix(report.LogPath, ".log"))

	assert.Equal(t, 7, events[1].Summary.Signals, "partial counts accumulate across resumes")
	assert.Equal(t, StateCompleted, job.State())
}

func TestJobConfirmAbort(t *testing.T) {
	fatal := &importer.FatalError{Phase: importer.PhaseHeader, Message: "CSV header does not match the template"}
	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		return types.Summary{Format: types.FormatSignalCSV}, fatal
	})

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)

	require.Equal(t, EventStarted, next(t, job).Kind)
	require.Equal(t, EventAskConfirm, next(t, job).Kind)

	job.SubmitDecision(false)

	events := drain(t, job)
	require.Equal(t, []EventKind{EventError}, kinds(events))
	assert.ErrorIs(t, events[0].Err, fatal)
	assert.Equal(t, StateFailed, job.State())
	assert.Empty(t, imp.resumed)
}

func TestJobCancelDuringConfirm(t *testing.T) {
	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		return types.Summary{Format: types.FormatSignalCSV, Signals: 2},
			&importer.FatalError{Phase: importer.PhaseRows, Unit: 3, Message: "CSV parse error"}
	})

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)

	require.Equal(t, EventStarted, next(t, job).Kind)
	require.Equal(t, EventAskConfirm, next(t, job).Kind)

	job.Cancel()

	events := drain(t, job)
	require.Equal(t, []EventKind{EventCanceled}, kinds(events))
	assert.Equal(t, StateCanceled, job.State())
}

func TestSubmitDecisionAfterCancelIsDropped(t *testing.T) {
	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		return types.Summary{Format: types.FormatSignalCSV, Signals: 1},
			&importer.FatalError{Phase: importer.PhaseRows, Unit: 2, Message: "CSV parse error"}
	})

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)

	require.Equal(t, EventStarted, next(t, job).Kind)
	require.Equal(t, EventAskConfirm, next(t, job).Kind)

	// Cancel wins the race for the pending confirm; the controller's answer
	// arrives late and must be dropped, not treated as a protocol violation.
	job.Cancel()
	assert.NotPanics(t, func() { job.SubmitDecision(true) })

	events := drain(t, job)
	require.Equal(t, []EventKind{EventCanceled}, kinds(events))
	assert.Equal(t, StateCanceled, job.State())
	assert.Empty(t, imp.resumed)
}

func TestRequestCancelWithoutActiveJob(t *testing.T) {
	o := newTestOrchestrator(t)
	o.RequestCancel() // no job in flight, must be a no-op

	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		return types.Summary{Format: types.FormatSignalCSV}, nil
	})
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)
	drain(t, job)

	o.RequestCancel() // job already terminal, still a no-op
	assert.Equal(t, StateCompleted, job.State())
}

func TestSubmitDecisionWithoutPendingPanics(t *testing.T) {
	imp := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		return types.Summary{Format: types.FormatSignalCSV}, nil
	})

	o := newTestOrchestrator(t)
	job, err := o.Start(context.Background(), imp)
	require.NoError(t, err)
	drain(t, job)

	assert.Panics(t, func() { job.SubmitDecision(true) })
}

func TestSingleJobAtATime(t *testing.T) {
	release := make(chan struct{})
	blocking := newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		<-release
		return types.Summary{Format: types.FormatSignalCSV}, nil
	})

	o := newTestOrchestrator(t)
	first, err := o.Start(context.Background(), blocking)
	require.NoError(t, err)
	require.Equal(t, EventStarted, next(t, first).Kind)

	_, err = o.Start(context.Background(), newFake(t))
	assert.ErrorIs(t, err, ErrJobActive)
	assert.Same(t, first, o.Active())

	close(release)
	drain(t, first)

	second, err := o.Start(context.Background(), newFake(t, func(cb importer.Callbacks) (types.Summary, error) {
		return types.Summary{Format: types.FormatSignalCSV}, nil
	}))
	require.NoError(t, err)
	drain(t, second)
	assert.Equal(t, StateCompleted, second.State())
}
