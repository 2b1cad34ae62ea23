// Package types defines core data structures for the sigweave signal database.
package types

import (
	"fmt"
	"strings"
	"time"
)

// SignalKind classifies a signal within a control program.
type SignalKind string

const (
	KindInput    SignalKind = "INPUT"
	KindOutput   SignalKind = "OUTPUT"
	KindInternal SignalKind = "INTERNAL"
)

// ParseSignalKind maps a raw kind string to a SignalKind. Unknown or empty
// values fall back to INTERNAL, matching the import policy: a bad kind is a
// recoverable row issue, not a reason to drop the signal.
func ParseSignalKind(s string) SignalKind {
	switch SignalKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindInput:
		return KindInput
	case KindOutput:
		return KindOutput
	case KindInternal:
		return KindInternal
	default:
		return KindInternal
	}
}

// Signal is a named input/output/internal point in a control program with
// routing and logic metadata. The ID is the identity key and is stored in
// canonical uppercase form (see internal/normalize).
type Signal struct {
	ID             string     `json:"id"`
	Kind           SignalKind `json:"kind"`
	Description    string     `json:"description"`
	FromBox        string     `json:"from_box,omitempty"`
	ViaBoxes       []string   `json:"via_boxes,omitempty"`
	ToBox          string     `json:"to_box,omitempty"`
	ProgramAddress string     `json:"program_address,omitempty"`
	LogicGroup     string     `json:"logic_group,omitempty"`
}

// Validate checks the mandatory fields.
func (s *Signal) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("signal: id is required")
	}
	if s.Description == "" {
		return fmt.Errorf("signal %s: description is required", s.ID)
	}
	return nil
}

// BoxConnection is an ordered wiring run between two boxes. Identity is the
// (FromBoxNo, ToBoxNo, KabelNo) triple; re-importing the same run is an
// idempotent no-op at the storage layer.
type BoxConnection struct {
	FromBoxName string `json:"from_box_name"`
	FromBoxNo   string `json:"from_box_no"`
	KabelNo     string `json:"kabel_no"`
	ToBoxNo     string `json:"to_box_no"`
	ToBoxName   string `json:"to_box_name"`
}

// Empty reports whether every field of the connection is blank.
func (c *BoxConnection) Empty() bool {
	return c.FromBoxName == "" && c.FromBoxNo == "" && c.KabelNo == "" &&
		c.ToBoxNo == "" && c.ToBoxName == ""
}

func (c *BoxConnection) String() string {
	return fmt.Sprintf("%s(%s) -[%s]-> %s(%s)", c.FromBoxName, c.FromBoxNo, c.KabelNo, c.ToBoxName, c.ToBoxNo)
}

// LogicEquation is the boolean formula attached to a signal. RawExpr is the
// text as it appeared in the source; NormalizedExpr is the canonical form and
// the one used for display and comparison.
type LogicEquation struct {
	TargetSignalID string    `json:"target_signal_id"`
	RawExpr        string    `json:"raw_expr"`
	NormalizedExpr string    `json:"normalized_expr"`
	SourceLabel    string    `json:"source_label,omitempty"`
	SourcePage     *int      `json:"source_page,omitempty"`
	LastImportedAt time.Time `json:"last_imported_at"`
}

// ImportWarning is a recoverable per-row/page issue accumulated during one
// import job and reported in aggregate at job end.
type ImportWarning struct {
	Locator string `json:"locator"` // e.g. "row 5", "page 3"
	Message string `json:"message"`
}

func (w ImportWarning) String() string {
	if w.Locator == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Locator, w.Message)
}

// ImportFormat names a supported import source format.
type ImportFormat string

const (
	FormatSignalCSV  ImportFormat = "signal-csv"
	FormatBoxConnCSV ImportFormat = "boxconn-csv"
	FormatPDF        ImportFormat = "pdf"
)

// Summary holds the counts produced by one import job. CSV imports populate
// exactly one of the counters; PDF extraction populates both.
type Summary struct {
	Format         ImportFormat `json:"format"`
	Signals        int          `json:"signals"`
	BoxConnections int          `json:"box_connections"`
}

// Add merges counts from a resumed importer invocation.
func (s *Summary) Add(other Summary) {
	s.Signals += other.Signals
	s.BoxConnections += other.BoxConnections
	if s.Format == "" {
		s.Format = other.Format
	}
}

func (s Summary) String() string {
	switch s.Format {
	case FormatSignalCSV:
		return fmt.Sprintf("%d signals imported", s.Signals)
	case FormatBoxConnCSV:
		return fmt.Sprintf("%d box connections imported", s.BoxConnections)
	case FormatPDF:
		return fmt.Sprintf("%d signals, %d box connections imported", s.Signals, s.BoxConnections)
	default:
		return fmt.Sprintf("%d signals, %d box connections", s.Signals, s.BoxConnections)
	}
}
