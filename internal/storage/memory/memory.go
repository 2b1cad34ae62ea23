// Package memory provides an in-memory storage backend.
//
// It mirrors the sqlite backend's upsert semantics and exists mainly as the
// test double for importer and orchestrator tests; nothing stops it from
// backing a throwaway session, but it persists nothing.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// Store implements storage.Storage with mutex-guarded maps.
type Store struct {
	mu        sync.RWMutex
	signals   map[string]*types.Signal
	equations map[string]*types.LogicEquation
	conns     []*types.BoxConnection
	connKeys  map[string]bool
	config    map[string]string

	// FailWrites, when set, makes every write return the given error. Tests
	// use it to exercise the storage-failure escalation path.
	FailWrites error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		signals:   make(map[string]*types.Signal),
		equations: make(map[string]*types.LogicEquation),
		connKeys:  make(map[string]bool),
		config:    make(map[string]string),
	}
}

func (m *Store) AddSignal(ctx context.Context, sig *types.Signal) error {
	if m.FailWrites != nil {
		return &storage.WriteError{Entity: "signal", Key: sig.ID, Err: m.FailWrites}
	}
	if err := sig.Validate(); err != nil {
		return &storage.WriteError{Entity: "signal", Key: sig.ID, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sig
	cp.ViaBoxes = append([]string(nil), sig.ViaBoxes...)
	m.signals[sig.ID] = &cp
	return nil
}

func (m *Store) AddLogicEquation(ctx context.Context, eq *types.LogicEquation) error {
	if m.FailWrites != nil {
		return &storage.WriteError{Entity: "logic_equation", Key: eq.TargetSignalID, Err: m.FailWrites}
	}
	if eq.TargetSignalID == "" {
		return &storage.WriteError{Entity: "logic_equation", Key: "", Err: errors.New("target signal id is required")}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *eq
	cp.LastImportedAt = time.Now().UTC()
	m.equations[eq.TargetSignalID] = &cp
	return nil
}

func (m *Store) AddBoxConnection(ctx context.Context, conn *types.BoxConnection) error {
	if m.FailWrites != nil {
		return &storage.WriteError{Entity: "box_connection", Key: conn.String(), Err: m.FailWrites}
	}
	if conn.Empty() {
		return &storage.WriteError{Entity: "box_connection", Key: "", Err: errors.New("all fields empty")}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := conn.FromBoxNo + "\x00" + conn.ToBoxNo + "\x00" + conn.KabelNo
	if m.connKeys[key] {
		return nil
	}
	m.connKeys[key] = true
	cp := *conn
	m.conns = append(m.conns, &cp)
	return nil
}

func (m *Store) GetSignal(ctx context.Context, id string) (*types.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sig, ok := m.signals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sig
	return &cp, nil
}

func (m *Store) SearchSignals(ctx context.Context, keyword string) ([]*types.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.Signal
	for _, sig := range m.signals {
		if strings.Contains(sig.ID, keyword) ||
			strings.Contains(sig.Description, keyword) ||
			strings.Contains(sig.ProgramAddress, keyword) ||
			strings.Contains(sig.FromBox, keyword) ||
			strings.Contains(sig.ToBox, keyword) {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) GetSignalsByLogicGroup(ctx context.Context, group string) ([]*types.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.Signal
	for _, sig := range m.signals {
		if sig.LogicGroup == group {
			cp := *sig
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) GetAllLogicGroups(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, sig := range m.signals {
		if sig.LogicGroup != "" && !seen[sig.LogicGroup] {
			seen[sig.LogicGroup] = true
			out = append(out, sig.LogicGroup)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Store) GetLogicEquation(ctx context.Context, signalID string) (*types.LogicEquation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eq, ok := m.equations[signalID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *eq
	return &cp, nil
}

func (m *Store) GetBoxConnections(ctx context.Context) ([]*types.BoxConnection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.BoxConnection, 0, len(m.conns))
	for _, c := range m.conns {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Store) SetConfig(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[key] = value
	return nil
}

func (m *Store) GetConfig(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config[key], nil
}

func (m *Store) Close() error { return nil }

// SignalCount reports how many signals are stored. Test helper.
func (m *Store) SignalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.signals)
}

// ConnectionCount reports how many wiring runs are stored. Test helper.
func (m *Store) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}
