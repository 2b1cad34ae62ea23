package main

import (
	"context"

	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/types"
)

// seedSampleData loads the bootstrap dataset used for demos and first-run
// exploration. All writes are upserts, so seeding twice is harmless.
func seedSampleData(ctx context.Context, store storage.Storage) error {
	signals := []*types.Signal{
		{
			ID:             "Q124",
			Kind:           types.KindOutput,
			Description:    "Drive release",
			FromBox:        "X01",
			ViaBoxes:       []string{"X02"},
			ToBox:          "Q124",
			ProgramAddress: "Q124",
			LogicGroup:     "DRIVE",
		},
		{
			ID:             "I04E",
			Kind:           types.KindInput,
			Description:    "Limit switch front",
			FromBox:        "X01",
			ToBox:          "X02",
			ProgramAddress: "I04E",
			LogicGroup:     "DRIVE",
		},
		{
			ID:             "M351",
			Kind:           types.KindInternal,
			Description:    "Interlock latch",
			ProgramAddress: "M351",
			LogicGroup:     "DRIVE",
		},
	}
	for _, sig := range signals {
		if err := store.AddSignal(ctx, sig); err != nil {
			return err
		}
	}

	eq := &types.LogicEquation{
		TargetSignalID: "Q124",
		RawExpr:        "04E ＾ 351 ∨ 038",
		NormalizedExpr: "04E ^ 351 v 038",
		SourceLabel:    "(sample)",
	}
	if err := store.AddLogicEquation(ctx, eq); err != nil {
		return err
	}

	conns := []*types.BoxConnection{
		{FromBoxName: "Main cabinet", FromBoxNo: "X01", KabelNo: "K100", ToBoxNo: "X02", ToBoxName: "Field box A"},
		{FromBoxName: "Field box A", FromBoxNo: "X02", KabelNo: "K101", ToBoxNo: "Q124", ToBoxName: "Drive terminal"},
	}
	for _, conn := range conns {
		if err := store.AddBoxConnection(ctx, conn); err != nil {
			return err
		}
	}
	return nil
}
