//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"pixevade/internal/model"
)

func TestSQLiteStoreAttackAndPopulationRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pixevade.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	record := model.AttackRecord{
		VersionedRecord: versioned(),
		ID:              "run-1",
		CreatedAtUTC:    "2024-06-01T12:00:00Z",
		TargetClass:     3,
		ActualClass:     7,
		PixelCount:      4,
		PopulationSize:  10,
		Converged:       true,
		Winners:         []int{1, 4},
		BestDivergence:  0.9,
	}
	if err := store.SaveAttack(ctx, record); err != nil {
		t.Fatalf("save attack: %v", err)
	}

	loaded, ok, err := store.GetAttack(ctx, record.ID)
	if err != nil {
		t.Fatalf("get attack: %v", err)
	}
	if !ok {
		t.Fatalf("expected attack %s", record.ID)
	}
	if loaded.ID != record.ID || len(loaded.Winners) != 2 || loaded.BestDivergence != 0.9 {
		t.Fatalf("unexpected attack loaded: %+v", loaded)
	}

	population := model.Population{
		VersionedRecord: versioned(),
		ID:              record.ID,
		Generation:      8,
		Coords:          []model.Plane{{{1, 2}, {3, 4}}},
		Colors:          []model.Plane{{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}},
	}
	if err := store.SavePopulation(ctx, population); err != nil {
		t.Fatalf("save population: %v", err)
	}

	loadedPopulation, ok, err := store.GetPopulation(ctx, record.ID)
	if err != nil {
		t.Fatalf("get population: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted population")
	}
	if loadedPopulation.Generation != 8 || loadedPopulation.PixelCount() != 2 {
		t.Fatalf("unexpected population: %+v", loadedPopulation)
	}
}

func TestSQLiteStoreListAndHistory(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pixevade.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	stamps := map[string]string{
		"run-1": "2024-06-01T10:00:00Z",
		"run-2": "2024-06-01T11:00:00Z",
		"run-3": "2024-06-01T12:00:00Z",
	}
	for id, stamp := range stamps {
		record := model.AttackRecord{VersionedRecord: versioned(), ID: id, CreatedAtUTC: stamp}
		if err := store.SaveAttack(ctx, record); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	records, err := store.ListAttacks(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "run-3" || records[1].ID != "run-2" {
		t.Fatalf("unexpected listing: %+v", records)
	}

	history := []float64{-0.2, 0.1}
	if err := store.SaveDivergenceHistory(ctx, "run-3", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	gotHistory, ok, err := store.GetDivergenceHistory(ctx, "run-3")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok || len(gotHistory) != 2 || gotHistory[1] != 0.1 {
		t.Fatalf("unexpected history: %v", gotHistory)
	}

	diagnostics := []model.GenerationDiagnostics{{Generation: 1, BestDivergence: -0.2}}
	if err := store.SaveGenerationDiagnostics(ctx, "run-3", diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	gotDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx, "run-3")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok || len(gotDiagnostics) != 1 || gotDiagnostics[0].Generation != 1 {
		t.Fatalf("unexpected diagnostics: %+v", gotDiagnostics)
	}
}
