package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// The memory store is the test double for importer and orchestrator tests;
// it must refuse exactly what the sqlite backend refuses.
func TestRejectsWhatSqliteRejects(t *testing.T) {
	store := New()
	ctx := context.Background()

	var werr *storage.WriteError

	err := store.AddSignal(ctx, &types.Signal{ID: "", Description: "x"})
	if !errors.As(err, &werr) {
		t.Fatalf("empty signal id: expected WriteError, got %v", err)
	}

	err = store.AddLogicEquation(ctx, &types.LogicEquation{TargetSignalID: "", NormalizedExpr: "351"})
	if !errors.As(err, &werr) {
		t.Fatalf("empty equation target: expected WriteError, got %v", err)
	}

	err = store.AddBoxConnection(ctx, &types.BoxConnection{})
	if !errors.As(err, &werr) {
		t.Fatalf("empty connection: expected WriteError, got %v", err)
	}
}
