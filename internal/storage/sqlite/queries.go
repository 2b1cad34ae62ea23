package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// AddSignal upserts a signal keyed on its canonical identifier.
func (s *Store) AddSignal(ctx context.Context, sig *types.Signal) error {
	if err := sig.Validate(); err != nil {
		return &storage.WriteError{Entity: "signal", Key: sig.ID, Err: err}
	}
	via, err := json.Marshal(sig.ViaBoxes)
	if err != nil {
		return &storage.WriteError{Entity: "signal", Key: sig.ID, Err: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO signals
		(signal_id, signal_kind, description, from_box, via_boxes, to_box, program_address, logic_group)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(signal_id) DO UPDATE SET
			signal_kind=excluded.signal_kind,
			description=excluded.description,
			from_box=excluded.from_box,
			via_boxes=excluded.via_boxes,
			to_box=excluded.to_box,
			program_address=excluded.program_address,
			logic_group=excluded.logic_group`,
		sig.ID, string(sig.Kind), sig.Description, sig.FromBox, string(via),
		sig.ToBox, sig.ProgramAddress, sig.LogicGroup)
	if err != nil {
		return &storage.WriteError{Entity: "signal", Key: sig.ID, Err: err}
	}
	return nil
}

// AddLogicEquation upserts the equation attached to a signal.
func (s *Store) AddLogicEquation(ctx context.Context, eq *types.LogicEquation) error {
	if eq.TargetSignalID == "" {
		return &storage.WriteError{Entity: "logic_equation", Key: "", Err: errors.New("target signal id is required")}
	}
	var page any
	if eq.SourcePage != nil {
		page = *eq.SourcePage
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logic_equations
		(target_signal_id, raw_expr, normalized_expr, source_label, source_page, last_imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_signal_id) DO UPDATE SET
			raw_expr=excluded.raw_expr,
			normalized_expr=excluded.normalized_expr,
			source_label=excluded.source_label,
			source_page=excluded.source_page,
			last_imported_at=excluded.last_imported_at`,
		eq.TargetSignalID, eq.RawExpr, eq.NormalizedExpr, eq.SourceLabel, page,
		time.Now().UTC())
	if err != nil {
		return &storage.WriteError{Entity: "logic_equation", Key: eq.TargetSignalID, Err: err}
	}
	return nil
}

// AddBoxConnection inserts a wiring run; duplicates of the same
// (from, to, kabel) triple are no-ops.
func (s *Store) AddBoxConnection(ctx context.Context, conn *types.BoxConnection) error {
	if conn.Empty() {
		return &storage.WriteError{Entity: "box_connection", Key: "", Err: errors.New("all fields empty")}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO box_connections (from_box_name, from_box_no, kabel_no, to_box_no, to_box_name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(from_box_no, to_box_no, kabel_no) DO NOTHING`,
		conn.FromBoxName, conn.FromBoxNo, conn.KabelNo, conn.ToBoxNo, conn.ToBoxName)
	if err != nil {
		return &storage.WriteError{Entity: "box_connection", Key: conn.String(), Err: err}
	}
	return nil
}

const signalColumns = `signal_id, signal_kind, description, from_box, via_boxes, to_box, program_address, logic_group`

func scanSignal(scan func(dest ...any) error) (*types.Signal, error) {
	var sig types.Signal
	var kind, via string
	if err := scan(&sig.ID, &kind, &sig.Description, &sig.FromBox, &via, &sig.ToBox, &sig.ProgramAddress, &sig.LogicGroup); err != nil {
		return nil, err
	}
	sig.Kind = types.SignalKind(kind)
	if err := json.Unmarshal([]byte(via), &sig.ViaBoxes); err != nil {
		return nil, fmt.Errorf("corrupt via_boxes for %s: %w", sig.ID, err)
	}
	return &sig, nil
}

// GetSignal fetches one signal by its canonical identifier.
func (s *Store) GetSignal(ctx context.Context, id string) (*types.Signal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+signalColumns+` FROM signals WHERE signal_id = ?`, id)
	sig, err := scanSignal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return sig, err
}

// SearchSignals returns signals whose id, description, address, or endpoint
// boxes contain the keyword.
func (s *Store) SearchSignals(ctx context.Context, keyword string) ([]*types.Signal, error) {
	like := "%" + keyword + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+signalColumns+` FROM signals
		WHERE signal_id LIKE ? OR description LIKE ? OR program_address LIKE ?
		   OR from_box LIKE ? OR to_box LIKE ?
		ORDER BY signal_id`,
		like, like, like, like, like)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectSignals(rows)
}

// GetSignalsByLogicGroup returns the signals labeled with the given group.
func (s *Store) GetSignalsByLogicGroup(ctx context.Context, group string) ([]*types.Signal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE logic_group = ? ORDER BY signal_id`, group)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return collectSignals(rows)
}

func collectSignals(rows *sql.Rows) ([]*types.Signal, error) {
	var out []*types.Signal
	for rows.Next() {
		sig, err := scanSignal(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}

// GetAllLogicGroups returns the distinct non-empty logic-group labels.
func (s *Store) GetAllLogicGroups(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT logic_group FROM signals WHERE logic_group != '' ORDER BY logic_group`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetLogicEquation fetches the equation attached to a signal.
func (s *Store) GetLogicEquation(ctx context.Context, signalID string) (*types.LogicEquation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT target_signal_id, raw_expr, normalized_expr, source_label, source_page, last_imported_at
		FROM logic_equations WHERE target_signal_id = ?`, signalID)
	var eq types.LogicEquation
	var page sql.NullInt64
	var imported sql.NullTime
	err := row.Scan(&eq.TargetSignalID, &eq.RawExpr, &eq.NormalizedExpr, &eq.SourceLabel, &page, &imported)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if page.Valid {
		p := int(page.Int64)
		eq.SourcePage = &p
	}
	if imported.Valid {
		eq.LastImportedAt = imported.Time
	}
	return &eq, nil
}

// GetBoxConnections returns every wiring run in insertion order.
func (s *Store) GetBoxConnections(ctx context.Context) ([]*types.BoxConnection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_box_name, from_box_no, kabel_no, to_box_no, to_box_name
		FROM box_connections ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*types.BoxConnection
	for rows.Next() {
		var c types.BoxConnection
		if err := rows.Scan(&c.FromBoxName, &c.FromBoxNo, &c.KabelNo, &c.ToBoxNo, &c.ToBoxName); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SetConfig stores a configuration value.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// GetConfig fetches a configuration value; missing keys return "".
func (s *Store) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
