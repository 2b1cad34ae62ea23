package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mtsignal/sigweave/internal/normalize"
	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// SignalCSVColumns is the fixed template header for signal CSV imports.
// via_boxes is a comma-separated sub-list quoted as a single field when it
// contains commas.
var SignalCSVColumns = []string{
	"signal_id", "signal_type", "description", "from_box", "via_boxes",
	"to_box", "program_address", "logic_group", "logic_expr",
}

// defaultProgressEvery is the row granularity for progress callbacks.
const defaultProgressEvery = 50

// SignalCSV imports the signals template CSV into the signals and
// logic_equations tables.
//
// Policy:
//   - logic_expr is mandatory per row; an empty one is a row warning and the
//     row is skipped.
//   - Empty signal_id is likewise a row warning.
//   - An unknown signal_type falls back to INTERNAL.
//   - Every identifier goes through normalize.Identifier and every expression
//     through normalize.Expression before it reaches the storage port.
type SignalCSV struct {
	Path  string
	Store storage.Storage
	// ProgressEvery overrides the progress granularity; 0 means every 50 rows.
	ProgressEvery int

	warningList
	resumeAfter int
	skipAll     bool
}

func (imp *SignalCSV) Format() types.ImportFormat { return types.FormatSignalCSV }

func (imp *SignalCSV) Resume(f *FatalError) {
	switch f.Phase {
	case PhaseRows:
		if f.Unit > imp.resumeAfter {
			imp.resumeAfter = f.Unit
		}
	default:
		imp.skipAll = true
	}
}

func (imp *SignalCSV) Import(ctx context.Context, cb Callbacks) (types.Summary, error) {
	sum := types.Summary{Format: types.FormatSignalCSV}
	if imp.skipAll {
		return sum, nil
	}
	every := imp.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}

	f, err := os.Open(imp.Path)
	if err != nil {
		return sum, &FatalError{Phase: PhaseOpen, Message: "CSV file could not be opened: " + imp.Path, Err: err}
	}
	defer func() { _ = f.Close() }()

	// Tolerate a UTF-8 BOM; spreadsheet exports routinely carry one.
	reader := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))

	col, err := readHeader(reader, SignalCSVColumns)
	if err != nil {
		return sum, err
	}

	for i := 1; ; i++ {
		if cb.canceled() {
			return sum, ErrCanceled
		}

		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if i <= imp.resumeAfter {
				continue // already adjudicated, skip past it
			}
			return sum, &FatalError{Phase: PhaseRows, Unit: i, Message: "CSV parse error", Err: err}
		}
		if i <= imp.resumeAfter {
			continue
		}

		field := fieldFunc(col, rec)

		sid := normalize.Identifier(field("signal_id"))
		if sid == "" {
			imp.warnf(rowLocator(i), "signal_id is empty, row skipped")
			continue
		}

		rawExpr := field("logic_expr")
		expr := normalize.Expression(rawExpr)
		if expr == "" {
			imp.warnf(rowLocator(i), "logic_expr is empty (required), row skipped")
			continue
		}

		desc := normalize.Text(field("description"))
		if desc == "" {
			desc = "(csv import)"
		}
		addr := normalize.Identifier(field("program_address"))
		if addr == "" {
			addr = sid
		}

		sig := &types.Signal{
			ID:             sid,
			Kind:           types.ParseSignalKind(normalize.Text(field("signal_type"))),
			Description:    desc,
			FromBox:        normalize.Identifier(field("from_box")),
			ViaBoxes:       normalize.ViaBoxes(field("via_boxes")),
			ToBox:          normalize.Identifier(field("to_box")),
			ProgramAddress: addr,
			LogicGroup:     normalize.Text(field("logic_group")),
		}

		if err := imp.Store.AddSignal(ctx, sig); err != nil {
			return sum, &FatalError{Phase: PhaseRows, Unit: i, Message: "storage write failed for signal " + sid, Err: err}
		}
		eq := &types.LogicEquation{
			TargetSignalID: sid,
			RawExpr:        rawExpr,
			NormalizedExpr: expr,
			SourceLabel:    imp.Path,
		}
		if err := imp.Store.AddLogicEquation(ctx, eq); err != nil {
			return sum, &FatalError{Phase: PhaseRows, Unit: i, Message: "storage write failed for equation " + sid, Err: err}
		}

		sum.Signals++
		if sum.Signals%every == 0 {
			cb.progress(sum.Signals)
		}
	}

	cb.progress(sum.Signals)
	return sum, nil
}
