// Package search provides the read-side services over the signal database:
// keyword search, logic group browsing, and expression lookup/edit.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/mtsignal/sigweave/internal/normalize"
	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// Service wraps the storage port with query normalization.
type Service struct {
	store storage.Storage
}

func New(store storage.Storage) *Service {
	return &Service{store: store}
}

// Search returns signals matching the keyword over id, description, program
// address, and routing boxes. An empty keyword matches nothing.
func (s *Service) Search(ctx context.Context, keyword string) ([]*types.Signal, error) {
	keyword = normalize.Text(keyword)
	if keyword == "" {
		return nil, nil
	}
	return s.store.SearchSignals(ctx, keyword)
}

// Signal looks up one signal by its (identifier-normalized) id.
func (s *Service) Signal(ctx context.Context, id string) (*types.Signal, error) {
	id = normalize.Identifier(id)
	if id == "" {
		return nil, storage.ErrNotFound
	}
	return s.store.GetSignal(ctx, id)
}

// LogicGroups lists the distinct logic group names.
func (s *Service) LogicGroups(ctx context.Context) ([]string, error) {
	return s.store.GetAllLogicGroups(ctx)
}

// GroupSignals lists the signals belonging to one logic group.
func (s *Service) GroupSignals(ctx context.Context, group string) ([]*types.Signal, error) {
	group = normalize.Text(group)
	if group == "" {
		return nil, nil
	}
	return s.store.GetSignalsByLogicGroup(ctx, group)
}

// Expression returns the logic equation attached to a signal, or
// storage.ErrNotFound when none is recorded.
func (s *Service) Expression(ctx context.Context, signalID string) (*types.LogicEquation, error) {
	signalID = normalize.Identifier(signalID)
	if signalID == "" {
		return nil, storage.ErrNotFound
	}
	return s.store.GetLogicEquation(ctx, signalID)
}

// BoxConnections lists every stored wiring run.
func (s *Service) BoxConnections(ctx context.Context) ([]*types.BoxConnection, error) {
	return s.store.GetBoxConnections(ctx)
}

// SetExpression records a manually edited equation for an existing signal.
// The raw text is kept verbatim; the normalized form is what search and
// display use.
func (s *Service) SetExpression(ctx context.Context, signalID, raw string) error {
	signalID = normalize.Identifier(signalID)
	if _, err := s.store.GetSignal(ctx, signalID); err != nil {
		return fmt.Errorf("signal %s: %w", signalID, err)
	}

	expr := normalize.Expression(raw)
	if expr == "" {
		return fmt.Errorf("signal %s: expression must not be empty", signalID)
	}

	return s.store.AddLogicEquation(ctx, &types.LogicEquation{
		TargetSignalID: signalID,
		RawExpr:        strings.TrimSpace(raw),
		NormalizedExpr: expr,
		SourceLabel:    "(manual)",
	})
}
