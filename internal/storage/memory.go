package storage

import (
	"context"
	"sync"

	"pixevade/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	attacks     map[string]model.AttackRecord
	attackOrder []string
	populations map[string]model.Population
	history     map[string][]float64
	diagnostics map[string][]model.GenerationDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.attacks = make(map[string]model.AttackRecord)
	s.attackOrder = nil
	s.populations = make(map[string]model.Population)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	return nil
}

func (s *MemoryStore) SaveAttack(_ context.Context, record model.AttackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.attacks[record.ID]; !exists {
		s.attackOrder = append(s.attackOrder, record.ID)
	}
	s.attacks[record.ID] = record
	return nil
}

func (s *MemoryStore) GetAttack(_ context.Context, id string) (model.AttackRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.attacks[id]
	return record, ok, nil
}

// ListAttacks returns records most recent first. A limit <= 0 returns all.
func (s *MemoryStore) ListAttacks(_ context.Context, limit int) ([]model.AttackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.AttackRecord, 0, len(s.attackOrder))
	for i := len(s.attackOrder) - 1; i >= 0; i-- {
		records = append(records, s.attacks[s.attackOrder[i]])
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, population model.Population) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populations[population.ID] = population
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.Population, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population, ok := s.populations[id]
	return population, ok, nil
}

func (s *MemoryStore) SaveDivergenceHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetDivergenceHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	return history, ok, nil
}

func (s *MemoryStore) SaveGenerationDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.diagnostics[runID] = append([]model.GenerationDiagnostics(nil), diagnostics...)
	return nil
}

func (s *MemoryStore) GetGenerationDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	return diagnostics, ok, nil
}
