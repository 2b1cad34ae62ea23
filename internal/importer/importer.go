// Package importer implements the bulk-import pipeline's source readers.
//
// One Importer exists per source format (signal CSV, box-connection CSV, PDF
// extraction). An Importer owns no concurrency machinery: it reports progress
// and observes cancellation through the narrow Callbacks capability, writes
// through the storage port, and accumulates recoverable row/page issues as
// warnings. Structurally unrecoverable problems surface as a *FatalError; the
// orchestrator escalates those to a human decision and, on "continue", calls
// Resume and re-invokes Import.
//
// Importers are single-use: one instance serves exactly one job, possibly
// across several Import invocations when fatal conditions are skipped.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtsignal/sigweave/internal/types"
)

// ErrCanceled is the cancellation outcome: the importer observed the cancel
// callback at an iteration boundary and stopped. Writes completed before that
// point remain persisted.
var ErrCanceled = errors.New("import canceled")

// Callbacks is the capability surface handed to an Importer by its caller.
// Both fields are optional; nil callbacks are no-ops.
type Callbacks struct {
	// Progress is invoked at the importer's chosen granularity with the
	// number of units (rows, pages) processed so far.
	Progress func(n int)
	// ShouldCancel is polled at each natural iteration boundary.
	ShouldCancel func() bool
}

func (c Callbacks) progress(n int) {
	if c.Progress != nil {
		c.Progress(n)
	}
}

func (c Callbacks) canceled() bool {
	return c.ShouldCancel != nil && c.ShouldCancel()
}

// Fatal phases. The phase determines what Resume skips: source-level phases
// ("open", "header", "extract") skip the whole remaining source, unit-level
// phases ("rows", "persist") skip past the failing unit.
const (
	PhaseOpen    = "open"
	PhaseHeader  = "header"
	PhaseRows    = "rows"
	PhaseExtract = "extract"
	PhasePersist = "persist"
)

// FatalError is a structurally unrecoverable condition: unreadable source,
// missing mandatory columns, corrupt container, or a failed storage write.
// The importer does not continue past it on its own; resolution is delegated
// to the orchestrator's confirm handshake.
type FatalError struct {
	Phase   string
	Unit    int // 1-based row/item ordinal for unit-level phases, else 0
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FatalError) Unwrap() error { return e.Err }

// Locator renders the failing unit for warning logs, e.g. "row 5".
func (e *FatalError) Locator() string {
	switch e.Phase {
	case PhaseRows:
		return fmt.Sprintf("row %d", e.Unit)
	case PhasePersist:
		return fmt.Sprintf("item %d", e.Unit)
	default:
		return ""
	}
}

// Importer is the per-format import contract consumed by the orchestrator.
type Importer interface {
	// Format identifies the source format for summaries and log naming.
	Format() types.ImportFormat

	// Import processes the source, writing through the storage port. It
	// returns the counts persisted by THIS invocation; on *FatalError the
	// partial counts are still meaningful and the caller may Resume and
	// re-invoke. Cancellation returns ErrCanceled.
	Import(ctx context.Context, cb Callbacks) (types.Summary, error)

	// Resume configures the importer to continue past the failed unit on the
	// next Import call. All importers in this package resume from the NEXT
	// unit: the failed unit itself becomes the recorded warning.
	Resume(f *FatalError)

	// Warnings returns the recoverable issues accumulated so far.
	Warnings() []types.ImportWarning
}

// warningList is the shared accumulation buffer embedded by the importers.
type warningList struct {
	warnings []types.ImportWarning
}

func (w *warningList) warnf(locator, format string, args ...any) {
	w.warnings = append(w.warnings, types.ImportWarning{
		Locator: locator,
		Message: fmt.Sprintf(format, args...),
	})
}

func (w *warningList) Warnings() []types.ImportWarning {
	out := make([]types.ImportWarning, len(w.warnings))
	copy(out, w.warnings)
	return out
}
