package storage

import (
	"context"

	"pixevade/internal/model"
)

// Store persists attack runs: the per-run summary record, the final
// population, the best-divergence history and per-generation diagnostics.
type Store interface {
	Init(ctx context.Context) error
	SaveAttack(ctx context.Context, record model.AttackRecord) error
	GetAttack(ctx context.Context, id string) (model.AttackRecord, bool, error)
	ListAttacks(ctx context.Context, limit int) ([]model.AttackRecord, error)
	SavePopulation(ctx context.Context, population model.Population) error
	GetPopulation(ctx context.Context, id string) (model.Population, bool, error)
	SaveDivergenceHistory(ctx context.Context, runID string, history []float64) error
	GetDivergenceHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
}
