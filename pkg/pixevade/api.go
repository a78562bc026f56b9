// Package pixevade is the public entry point for running black-box one-pixel
// attacks and browsing archived runs. The caller supplies the frozen
// classifier, the base image and the initial population; the attack core
// does the rest.
package pixevade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pixevade/internal/classifier"
	"pixevade/internal/evo"
	"pixevade/internal/imaging"
	"pixevade/internal/model"
	"pixevade/internal/storage"
)

const defaultDBPath = "pixevade.db"

// Aliases expose the boundary types callers need without reaching into
// internal packages.
type (
	Image                 = imaging.Image
	Plane                 = model.Plane
	Population            = model.Population
	Classifier            = classifier.Classifier
	ClassifierFunc        = classifier.Func
	AttackRecord          = model.AttackRecord
	GenerationDiagnostics = model.GenerationDiagnostics
)

// NewImage allocates a zeroed (channels, height, width) tensor.
func NewImage(channels, height, width int) Image {
	return imaging.NewImage(channels, height, width)
}

type Options struct {
	StoreKind string // "memory" (default) or "sqlite"
	DBPath    string
}

type Client struct {
	store storage.Store
}

func New(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// AttackRequest describes one attack run. Zero CrossoverProb and DiffWeight
// select the evo package defaults. An empty RunID gets a fresh uuid.
type AttackRequest struct {
	RunID         string
	Classifier    Classifier
	Image         Image
	TargetClass   int
	ActualClass   int
	Initial       Population
	CrossoverProb float64
	DiffWeight    float64
	Generations   int
	Seed          int64
}

type AttackSummary struct {
	RunID            string
	GenerationsRun   int
	Converged        bool
	Winners          []int
	BestDivergence   float64
	BestByGeneration []float64
	FinalPopulation  Population
}

// RunAttack drives a full differential evolution run and archives the
// outcome: the attack record, the final population, the best-divergence
// history and the per-generation diagnostics.
func (c *Client) RunAttack(ctx context.Context, req AttackRequest) (AttackSummary, error) {
	monitor, err := evo.NewAttackMonitor(evo.AttackConfig{
		Classifier:    req.Classifier,
		Image:         req.Image,
		TargetClass:   req.TargetClass,
		ActualClass:   req.ActualClass,
		CrossoverProb: req.CrossoverProb,
		DiffWeight:    req.DiffWeight,
		Generations:   req.Generations,
		Seed:          req.Seed,
	})
	if err != nil {
		return AttackSummary{}, err
	}

	result, err := monitor.Run(ctx, req.Initial)
	if err != nil {
		return AttackSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	crossProb := req.CrossoverProb
	if crossProb == 0 {
		crossProb = evo.DefaultCrossoverProb
	}
	diffWeight := req.DiffWeight
	if diffWeight == 0 {
		diffWeight = evo.DefaultDiffWeight
	}

	best := result.BestByGeneration[0]
	for _, v := range result.BestByGeneration[1:] {
		if v > best {
			best = v
		}
	}

	record := model.AttackRecord{
		VersionedRecord: currentVersions(),
		ID:              runID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		ImageSize:       req.Image.Size(),
		Channels:        req.Image.Channels,
		PixelCount:      req.Initial.PixelCount(),
		PopulationSize:  req.Initial.Size(),
		TargetClass:     req.TargetClass,
		ActualClass:     req.ActualClass,
		CrossoverProb:   crossProb,
		DiffWeight:      diffWeight,
		Seed:            req.Seed,
		GenerationsRun:  result.GenerationsRun,
		Converged:       result.Converged,
		Winners:         result.Winners,
		BestDivergence:  best,
	}
	if err := c.store.SaveAttack(ctx, record); err != nil {
		return AttackSummary{}, fmt.Errorf("archive attack %s: %w", runID, err)
	}

	finalPopulation := result.FinalPopulation
	finalPopulation.VersionedRecord = currentVersions()
	finalPopulation.ID = runID
	if err := c.store.SavePopulation(ctx, finalPopulation); err != nil {
		return AttackSummary{}, fmt.Errorf("archive population %s: %w", runID, err)
	}
	if err := c.store.SaveDivergenceHistory(ctx, runID, result.BestByGeneration); err != nil {
		return AttackSummary{}, fmt.Errorf("archive divergence history %s: %w", runID, err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, runID, result.Diagnostics); err != nil {
		return AttackSummary{}, fmt.Errorf("archive diagnostics %s: %w", runID, err)
	}

	return AttackSummary{
		RunID:            runID,
		GenerationsRun:   result.GenerationsRun,
		Converged:        result.Converged,
		Winners:          result.Winners,
		BestDivergence:   best,
		BestByGeneration: result.BestByGeneration,
		FinalPopulation:  finalPopulation,
	}, nil
}

// Attacks lists archived runs, most recent first. A limit <= 0 returns all.
func (c *Client) Attacks(ctx context.Context, limit int) ([]AttackRecord, error) {
	return c.store.ListAttacks(ctx, limit)
}

func (c *Client) Attack(ctx context.Context, runID string) (AttackRecord, error) {
	record, ok, err := c.store.GetAttack(ctx, runID)
	if err != nil {
		return AttackRecord{}, err
	}
	if !ok {
		return AttackRecord{}, fmt.Errorf("attack run not found: %s", runID)
	}
	return record, nil
}

func (c *Client) DivergenceHistory(ctx context.Context, runID string) ([]float64, error) {
	history, ok, err := c.store.GetDivergenceHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("divergence history not found: %s", runID)
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, runID string) ([]GenerationDiagnostics, error) {
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found: %s", runID)
	}
	return diagnostics, nil
}

func (c *Client) FinalPopulation(ctx context.Context, runID string) (Population, error) {
	population, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil {
		return Population{}, err
	}
	if !ok {
		return Population{}, fmt.Errorf("population not found: %s", runID)
	}
	return population, nil
}

func currentVersions() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}
