// Package storage defines the storage port consumed by the importers, the
// orchestrator, and the read-side services.
//
// The concrete backends live in the sqlite and memory sub-packages. Consumers
// depend on the Storage interface rather than on a concrete type so that the
// in-memory double can be substituted in tests. Exactly one backend is active
// at a time.
//
// Contract notes:
//   - Calls are synchronous; a successful write is durably visible to
//     subsequent reads issued from any goroutine.
//   - A failed write returns a typed error and leaves prior successful writes
//     from the same job intact. There is no job-wide transaction; partial
//     persistence after an aborted import is documented behavior.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtsignal/sigweave/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the port written to by importers and read by the search layer.
type Storage interface {
	// Writes. AddSignal and AddLogicEquation are upserts keyed on the signal
	// ID; re-importing an existing identifier overwrites it. AddBoxConnection
	// is idempotent on the (from, to, kabel) triple.
	AddSignal(ctx context.Context, sig *types.Signal) error
	AddLogicEquation(ctx context.Context, eq *types.LogicEquation) error
	AddBoxConnection(ctx context.Context, conn *types.BoxConnection) error

	// Reads.
	GetSignal(ctx context.Context, id string) (*types.Signal, error)
	SearchSignals(ctx context.Context, keyword string) ([]*types.Signal, error)
	GetSignalsByLogicGroup(ctx context.Context, group string) ([]*types.Signal, error)
	GetAllLogicGroups(ctx context.Context) ([]string, error)
	GetLogicEquation(ctx context.Context, signalID string) (*types.LogicEquation, error)
	GetBoxConnections(ctx context.Context) ([]*types.BoxConnection, error)

	// Tool configuration key/value store.
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)

	// Lifecycle.
	Close() error
}

// WriteError wraps a backend failure for a single write so that callers can
// report which entity the failure belongs to without assuming backend-specific
// failure modes.
type WriteError struct {
	Entity string // "signal", "logic_equation", "box_connection"
	Key    string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Entity, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
