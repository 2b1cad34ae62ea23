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

// BoxConnCSVColumns is the fixed template header for box-wiring CSV imports.
var BoxConnCSVColumns = []string{
	"from_box_name", "from_box_no", "kabel_no", "to_box_no", "to_box_name",
}

// BoxConnCSV imports the box-wiring template CSV. Box numbers and cable
// numbers are identifier-normalized; names keep their case.
type BoxConnCSV struct {
	Path          string
	Store         storage.Storage
	ProgressEvery int

	warningList
	resumeAfter int
	skipAll     bool
}

func (imp *BoxConnCSV) Format() types.ImportFormat { return types.FormatBoxConnCSV }

func (imp *BoxConnCSV) Resume(f *FatalError) {
	switch f.Phase {
	case PhaseRows:
		if f.Unit > imp.resumeAfter {
			imp.resumeAfter = f.Unit
		}
	default:
		imp.skipAll = true
	}
}

func (imp *BoxConnCSV) Import(ctx context.Context, cb Callbacks) (types.Summary, error) {
	sum := types.Summary{Format: types.FormatBoxConnCSV}
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

	reader := csv.NewReader(transform.NewReader(f, unicode.UTF8BOM.NewDecoder()))

	col, err := readHeader(reader, BoxConnCSVColumns)
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
				continue
			}
			return sum, &FatalError{Phase: PhaseRows, Unit: i, Message: "CSV parse error", Err: err}
		}
		if i <= imp.resumeAfter {
			continue
		}

		field := fieldFunc(col, rec)

		conn := &types.BoxConnection{
			FromBoxName: normalize.Text(field("from_box_name")),
			FromBoxNo:   normalize.Identifier(field("from_box_no")),
			KabelNo:     normalize.Identifier(field("kabel_no")),
			ToBoxNo:     normalize.Identifier(field("to_box_no")),
			ToBoxName:   normalize.Text(field("to_box_name")),
		}
		if conn.Empty() {
			imp.warnf(rowLocator(i), "all columns are empty, row skipped")
			continue
		}

		if err := imp.Store.AddBoxConnection(ctx, conn); err != nil {
			return sum, &FatalError{Phase: PhaseRows, Unit: i, Message: "storage write failed for connection " + conn.String(), Err: err}
		}

		sum.BoxConnections++
		if sum.BoxConnections%every == 0 {
			cb.progress(sum.BoxConnections)
		}
	}

	cb.progress(sum.BoxConnections)
	return sum, nil
}
