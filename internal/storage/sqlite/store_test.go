package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

func TestAddSignalUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sig := &types.Signal{
		ID:             "Q124",
		Kind:           types.KindOutput,
		Description:    "control output",
		FromBox:        "BOX3",
		ViaBoxes:       []string{"BOX5", "BOX6"},
		ToBox:          "BOX7",
		ProgramAddress: "Q124",
		LogicGroup:     "logic2",
	}
	if err := store.AddSignal(ctx, sig); err != nil {
		t.Fatalf("AddSignal failed: %v", err)
	}

	// Re-specifying the same identifier overwrites, never merges.
	sig.Description = "control output (rev B)"
	sig.ViaBoxes = []string{"BOX5"}
	if err := store.AddSignal(ctx, sig); err != nil {
		t.Fatalf("AddSignal upsert failed: %v", err)
	}

	got, err := store.GetSignal(ctx, "Q124")
	if err != nil {
		t.Fatalf("GetSignal failed: %v", err)
	}
	if got.Description != "control output (rev B)" {
		t.Errorf("description not overwritten: %q", got.Description)
	}
	if len(got.ViaBoxes) != 1 || got.ViaBoxes[0] != "BOX5" {
		t.Errorf("via_boxes not overwritten: %v", got.ViaBoxes)
	}
	if got.Kind != types.KindOutput {
		t.Errorf("kind = %s, want OUTPUT", got.Kind)
	}
}

func TestGetSignalNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSignal(context.Background(), "NOPE")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddSignalRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	err := store.AddSignal(context.Background(), &types.Signal{ID: "", Description: "x"})
	var werr *storage.WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
}

func TestSearchSignals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []*types.Signal{
		{ID: "X01", Kind: types.KindInput, Description: "proximity switch 1", FromBox: "BOX1", ToBox: "BOX7", ProgramAddress: "X01", LogicGroup: "logic1"},
		{ID: "X02", Kind: types.KindInput, Description: "proximity switch 2", FromBox: "BOX1", ToBox: "BOX7", ProgramAddress: "X02", LogicGroup: "logic1"},
		{ID: "Q124", Kind: types.KindOutput, Description: "control output", FromBox: "BOX3", ToBox: "BOX7", ProgramAddress: "Q124", LogicGroup: "logic2"},
	}
	for _, sig := range seed {
		if err := store.AddSignal(ctx, sig); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	hits, err := store.SearchSignals(ctx, "proximity")
	if err != nil {
		t.Fatalf("SearchSignals failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}

	hits, err = store.SearchSignals(ctx, "BOX3")
	if err != nil {
		t.Fatalf("SearchSignals failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "Q124" {
		t.Fatalf("from_box search got %v", hits)
	}
}

func TestLogicGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, sig := range []*types.Signal{
		{ID: "X01", Kind: types.KindInput, Description: "a", LogicGroup: "logic1"},
		{ID: "X02", Kind: types.KindInput, Description: "b", LogicGroup: "logic1"},
		{ID: "Q01", Kind: types.KindOutput, Description: "c", LogicGroup: "logic2"},
		{ID: "M01", Kind: types.KindInternal, Description: "d"},
	} {
		if err := store.AddSignal(ctx, sig); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	groups, err := store.GetAllLogicGroups(ctx)
	if err != nil {
		t.Fatalf("GetAllLogicGroups failed: %v", err)
	}
	if len(groups) != 2 || groups[0] != "logic1" || groups[1] != "logic2" {
		t.Fatalf("groups = %v", groups)
	}

	members, err := store.GetSignalsByLogicGroup(ctx, "logic1")
	if err != nil {
		t.Fatalf("GetSignalsByLogicGroup failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
}

func TestLogicEquationUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddSignal(ctx, &types.Signal{ID: "Q3B0", Kind: types.KindOutput, Description: "x"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	page := 3
	eq := &types.LogicEquation{
		TargetSignalID: "Q3B0",
		RawExpr:        "04E＾351∨038",
		NormalizedExpr: "04E^351v038",
		SourceLabel:    "plant.pdf",
		SourcePage:     &page,
	}
	if err := store.AddLogicEquation(ctx, eq); err != nil {
		t.Fatalf("AddLogicEquation failed: %v", err)
	}

	eq.NormalizedExpr = "04E^351"
	eq.SourceLabel = "rev2.csv"
	eq.SourcePage = nil
	if err := store.AddLogicEquation(ctx, eq); err != nil {
		t.Fatalf("AddLogicEquation upsert failed: %v", err)
	}

	got, err := store.GetLogicEquation(ctx, "Q3B0")
	if err != nil {
		t.Fatalf("GetLogicEquation failed: %v", err)
	}
	if got.NormalizedExpr != "04E^351" || got.SourceLabel != "rev2.csv" {
		t.Fatalf("equation not overwritten: %+v", got)
	}
	if got.SourcePage != nil {
		t.Fatalf("source_page should be cleared, got %v", *got.SourcePage)
	}
	if got.LastImportedAt.IsZero() {
		t.Fatal("last_imported_at not recorded")
	}
	if time.Since(got.LastImportedAt) > time.Minute {
		t.Fatalf("last_imported_at did not round-trip: %v", got.LastImportedAt)
	}
}

func TestBoxConnectionIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conn := &types.BoxConnection{
		FromBoxName: "Main Panel", FromBoxNo: "BOX1",
		KabelNo: "K12", ToBoxNo: "BOX7", ToBoxName: "Field Box",
	}
	for i := 0; i < 3; i++ {
		if err := store.AddBoxConnection(ctx, conn); err != nil {
			t.Fatalf("AddBoxConnection #%d failed: %v", i, err)
		}
	}

	conns, err := store.GetBoxConnections(ctx)
	if err != nil {
		t.Fatalf("GetBoxConnections failed: %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("duplicate runs persisted: got %d rows, want 1", len(conns))
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if v, err := store.GetConfig(ctx, "schema_rev"); err != nil || v != "" {
		t.Fatalf("missing key: got (%q, %v)", v, err)
	}
	if err := store.SetConfig(ctx, "schema_rev", "1"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := store.SetConfig(ctx, "schema_rev", "2"); err != nil {
		t.Fatalf("SetConfig overwrite failed: %v", err)
	}
	if v, _ := store.GetConfig(ctx, "schema_rev"); v != "2" {
		t.Fatalf("GetConfig = %q, want 2", v)
	}
}
