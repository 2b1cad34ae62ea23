package importer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mtsignal/sigweave/internal/normalize"
	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// Expression extraction patterns, applied to normalized page lines:
//
//	eqLineRe:   Q3B0 = 04E ^ 351 ^ ...         (inline equation)
//	headLineRe: Q3B0 <description>             (heading, expression lines follow)
//	exprLineRe: candidate expression body line under a heading
var (
	eqLineRe   = regexp.MustCompile(`^([A-Za-z]{1,3})\s*([0-9A-Za-z]+)\s*=\s*(.+)$`)
	headLineRe = regexp.MustCompile(`^(Q[0-9A-Za-z]+)\s+(.+)$`)
	exprLineRe = regexp.MustCompile(`^[0-9A-Za-z()_^v+\-\s]+$`)

	// Box wiring tables: name, box-no, kabel-no, box-no, name. Names may
	// contain spaces; the number columns are told apart by requiring a digit.
	boxLineRe = regexp.MustCompile(`^(\S.+?)\s+([A-Za-z0-9.]*\d[A-Za-z0-9.]*)\s+([A-Za-z0-9.]*\d[A-Za-z0-9.]*)\s+([A-Za-z0-9.]*\d[A-Za-z0-9.]*)\s+(\S.*)$`)
)

// pdfEntry is one extracted signal plus its (optional) logic expression.
type pdfEntry struct {
	sig  *types.Signal
	expr string
	page int
}

// PDF extracts signals, logic expressions, and box wiring runs from a signal
// documentation PDF.
//
// Extraction is text-based: routing fields (from/via/to boxes) are not
// recoverable from the PDF layout, so extracted signals carry empty routing
// and default to OUTPUT kind. Summary reports the (signals, boxConnections)
// pair. Page text that cannot be extracted is a page warning; an unreadable
// container is fatal. Parsed results are cached so that resuming after a
// persistence failure does not re-read the file.
type PDF struct {
	Path  string
	Store storage.Storage

	warningList
	extracted   bool
	skipAll     bool
	resumeAfter int

	entries []*pdfEntry
	conns   []*types.BoxConnection
}

func (imp *PDF) Format() types.ImportFormat { return types.FormatPDF }

func (imp *PDF) Resume(f *FatalError) {
	switch f.Phase {
	case PhasePersist:
		if f.Unit > imp.resumeAfter {
			imp.resumeAfter = f.Unit
		}
	default:
		imp.skipAll = true
	}
}

func (imp *PDF) Import(ctx context.Context, cb Callbacks) (types.Summary, error) {
	sum := types.Summary{Format: types.FormatPDF}
	if imp.skipAll {
		return sum, nil
	}

	if !imp.extracted {
		if err := imp.extract(cb); err != nil {
			return sum, err
		}
		imp.extracted = true
	}

	return imp.persist(ctx, cb, sum)
}

// extract reads every page, caching parsed signals, expressions, and box
// wiring runs on the importer.
func (imp *PDF) extract(cb Callbacks) error {
	f, reader, err := pdf.Open(imp.Path)
	if err != nil {
		return &FatalError{Phase: PhaseExtract, Message: "PDF could not be opened: " + imp.Path, Err: err}
	}
	defer func() { _ = f.Close() }()

	parser := newPDFParser()
	total := reader.NumPage()
	for p := 1; p <= total; p++ {
		if cb.canceled() {
			return ErrCanceled
		}
		page := reader.Page(p)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			imp.warnf(fmt.Sprintf("page %d", p), "text extraction failed: %v", err)
			continue
		}
		parser.feed(p, text)
		cb.progress(p)
	}
	parser.flush()

	imp.entries = parser.entries
	imp.conns = parser.conns
	return nil
}

// persist writes the cached extraction results through the storage port.
// Units are numbered across signals first, then box connections, so a
// confirm-continue resumes exactly past the failed write.
func (imp *PDF) persist(ctx context.Context, cb Callbacks, sum types.Summary) (types.Summary, error) {
	unit := 0
	for _, e := range imp.entries {
		unit++
		if unit <= imp.resumeAfter {
			continue
		}
		if cb.canceled() {
			return sum, ErrCanceled
		}
		if err := imp.Store.AddSignal(ctx, e.sig); err != nil {
			return sum, &FatalError{Phase: PhasePersist, Unit: unit, Message: "storage write failed for signal " + e.sig.ID, Err: err}
		}
		if e.expr != "" {
			page := e.page
			eq := &types.LogicEquation{
				TargetSignalID: e.sig.ID,
				RawExpr:        e.expr,
				NormalizedExpr: normalize.Expression(e.expr),
				SourceLabel:    imp.Path,
				SourcePage:     &page,
			}
			if err := imp.Store.AddLogicEquation(ctx, eq); err != nil {
				return sum, &FatalError{Phase: PhasePersist, Unit: unit, Message: "storage write failed for equation " + e.sig.ID, Err: err}
			}
		}
		sum.Signals++
	}

	for _, c := range imp.conns {
		unit++
		if unit <= imp.resumeAfter {
			continue
		}
		if cb.canceled() {
			return sum, ErrCanceled
		}
		if err := imp.Store.AddBoxConnection(ctx, c); err != nil {
			return sum, &FatalError{Phase: PhasePersist, Unit: unit, Message: "storage write failed for connection " + c.String(), Err: err}
		}
		sum.BoxConnections++
	}

	return sum, nil
}

// pdfParser accumulates parse state across pages. A heading block may not
// span a page break; flush is called between pages and at end of input.
type pdfParser struct {
	entries []*pdfEntry
	conns   []*types.BoxConnection

	seen     map[string]*pdfEntry
	connSeen map[string]bool

	currentQ    string
	currentPage int
	buf         []string
}

func newPDFParser() *pdfParser {
	return &pdfParser{
		seen:     make(map[string]*pdfEntry),
		connSeen: make(map[string]bool),
	}
}

func (p *pdfParser) feed(page int, text string) {
	for _, raw := range strings.Split(text, "\n") {
		line := normalize.Expression(raw)
		if line == "" {
			p.flush()
			continue
		}
		p.feedLine(page, line)
		p.feedBoxLine(line)
	}
	p.flush()
}

func (p *pdfParser) feedLine(page int, line string) {
	if m := eqLineRe.FindStringSubmatch(line); m != nil {
		sid := normalize.Identifier(m[1] + m[2])
		e := p.entry(sid, "(pdf import)", page)
		e.expr = strings.TrimSpace(m[3])
		e.page = page
		p.flush()
		return
	}
	if m := headLineRe.FindStringSubmatch(line); m != nil {
		p.flush()
		sid := normalize.Identifier(m[1])
		desc := strings.TrimSpace(m[2])
		if desc == "" {
			desc = "(pdf import)"
		}
		p.entry(sid, desc, page)
		p.currentQ = sid
		p.currentPage = page
		return
	}
	if p.currentQ != "" && exprLineRe.MatchString(line) {
		p.buf = append(p.buf, line)
	}
}

// feedBoxLine matches box wiring table rows independently of the expression
// scan, mirroring the two-pass structure of the source documents.
func (p *pdfParser) feedBoxLine(line string) {
	m := boxLineRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	n1 := strings.TrimSpace(m[1])
	n2 := strings.TrimSpace(m[5])
	if len(n1) < 2 || len(n2) < 2 {
		return
	}
	for _, name := range []string{strings.ToUpper(n1), strings.ToUpper(n2)} {
		if strings.Contains(name, "KABEL") || strings.Contains(name, "BOX NAME") {
			return // table header
		}
	}
	conn := &types.BoxConnection{
		FromBoxName: n1,
		FromBoxNo:   normalize.Identifier(m[2]),
		KabelNo:     normalize.Identifier(m[3]),
		ToBoxNo:     normalize.Identifier(m[4]),
		ToBoxName:   n2,
	}
	key := conn.FromBoxNo + "\x00" + conn.ToBoxNo + "\x00" + conn.KabelNo
	if p.connSeen[key] {
		return
	}
	p.connSeen[key] = true
	p.conns = append(p.conns, conn)
}

// flush closes the current heading block, attaching the buffered expression
// lines to the heading's signal.
func (p *pdfParser) flush() {
	if p.currentQ != "" && len(p.buf) > 0 {
		expr := strings.TrimSpace(strings.Join(p.buf, " "))
		if expr != "" {
			e := p.seen[p.currentQ]
			if e != nil && e.expr == "" {
				e.expr = expr
				e.page = p.currentPage
			}
		}
	}
	p.currentQ = ""
	p.currentPage = 0
	p.buf = nil
}

func (p *pdfParser) entry(sid, desc string, page int) *pdfEntry {
	if e, ok := p.seen[sid]; ok {
		return e
	}
	e := &pdfEntry{
		sig: &types.Signal{
			ID:             sid,
			Kind:           types.KindOutput,
			Description:    desc,
			ProgramAddress: sid,
		},
		page: page,
	}
	p.seen[sid] = e
	p.entries = append(p.entries, e)
	return e
}
