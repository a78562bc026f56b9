package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"pixevade/internal/classifier"
	"pixevade/internal/imaging"
	"pixevade/internal/model"
)

const (
	// DefaultCrossoverProb follows Su et al (2017).
	DefaultCrossoverProb = 0.9
	// DefaultDiffWeight is the conventional differential weight.
	DefaultDiffWeight = 0.5
)

// AttackConfig parameterizes one attack run against a frozen classifier.
// Zero CrossoverProb and DiffWeight select the defaults above.
type AttackConfig struct {
	Classifier    classifier.Classifier
	Image         imaging.Image
	TargetClass   int
	ActualClass   int
	CrossoverProb float64
	DiffWeight    float64
	Generations   int
	Seed          int64
}

// AttackMonitor owns the live population across a run and drives the
// per-generation cycle: mutate, repair, composite, evaluate, select. It is
// single-threaded; the only blocking operation is the classifier call.
type AttackMonitor struct {
	cfg AttackConfig
	rng *rand.Rand
}

func NewAttackMonitor(cfg AttackConfig) (*AttackMonitor, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if cfg.Image.Channels <= 0 || cfg.Image.Height <= 0 || cfg.Image.Width <= 0 {
		return nil, fmt.Errorf("image dimensions must be positive")
	}
	if len(cfg.Image.Data) != cfg.Image.Channels*cfg.Image.Height*cfg.Image.Width {
		return nil, fmt.Errorf("image data has %d values, want %d", len(cfg.Image.Data), cfg.Image.Channels*cfg.Image.Height*cfg.Image.Width)
	}
	if cfg.TargetClass < 0 || cfg.ActualClass < 0 {
		return nil, fmt.Errorf("class indices must be >= 0")
	}
	if cfg.TargetClass == cfg.ActualClass {
		return nil, fmt.Errorf("target and actual class must differ")
	}
	if cfg.CrossoverProb == 0 {
		cfg.CrossoverProb = DefaultCrossoverProb
	}
	if cfg.CrossoverProb < 0 || cfg.CrossoverProb > 1 {
		return nil, fmt.Errorf("crossover probability must be in [0, 1]")
	}
	if cfg.DiffWeight == 0 {
		cfg.DiffWeight = DefaultDiffWeight
	}
	if cfg.DiffWeight < 0 {
		return nil, fmt.Errorf("differential weight must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}

	return &AttackMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// StepResult is the outcome of one generation.
type StepResult struct {
	UpdateMask      []bool
	TargetScores    []float64
	ActualScores    []float64
	BestTargetAgent int
	BestActualAgent int
	Converged       bool
	Winners         []int
}

// Step runs one full generation and returns the next population. Coordinate
// and color planes are mutated separately with the same crossover
// probability and differential weight (coordinates with integer rounding),
// repaired, composited against the base image for both parents and
// children, evaluated, and selected with one shared per-agent mask.
func (m *AttackMonitor) Step(ctx context.Context, pop model.Population) (model.Population, StepResult, error) {
	if err := pop.Validate(); err != nil {
		return model.Population{}, StepResult{}, err
	}

	childCoords := GenerateChildren(m.rng, pop.Coords, m.cfg.CrossoverProb, m.cfg.DiffWeight, true)
	childColors := GenerateChildren(m.rng, pop.Colors, m.cfg.CrossoverProb, m.cfg.DiffWeight, false)
	childCoords = ReflectCoords(childCoords, m.cfg.Image.Size())
	childColors = ReflectColors(childColors)

	parentImgs, err := imaging.Variants(m.cfg.Image, pop.Coords, pop.Colors)
	if err != nil {
		return model.Population{}, StepResult{}, fmt.Errorf("composite parent variants: %w", err)
	}
	childImgs, err := imaging.Variants(m.cfg.Image, childCoords, childColors)
	if err != nil {
		return model.Population{}, StepResult{}, fmt.Errorf("composite child variants: %w", err)
	}

	eval, err := EvaluateGeneration(ctx, m.cfg.Classifier, parentImgs, childImgs, m.cfg.TargetClass, m.cfg.ActualClass)
	if err != nil {
		return model.Population{}, StepResult{}, err
	}
	stop, winners := StoppingCriterion(eval.TargetScores, eval.ActualScores)

	next := model.Population{
		ID:         pop.ID,
		Generation: pop.Generation + 1,
		Coords:     make([]model.Plane, pop.Size()),
		Colors:     make([]model.Plane, pop.Size()),
	}
	for i := range eval.UpdateMask {
		if eval.UpdateMask[i] {
			next.Coords[i] = childCoords[i]
			next.Colors[i] = childColors[i]
		} else {
			next.Coords[i] = model.ClonePlane(pop.Coords[i])
			next.Colors[i] = model.ClonePlane(pop.Colors[i])
		}
	}

	return next, StepResult{
		UpdateMask:      eval.UpdateMask,
		TargetScores:    eval.TargetScores,
		ActualScores:    eval.ActualScores,
		BestTargetAgent: eval.BestTargetAgent,
		BestActualAgent: eval.BestActualAgent,
		Converged:       stop,
		Winners:         winners,
	}, nil
}

// RunResult is the outcome of a full multi-generation run.
type RunResult struct {
	FinalPopulation  model.Population
	GenerationsRun   int
	Converged        bool
	Winners          []int
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
}

// Run repeats Step until an agent achieves misclassification or the
// generation budget is exhausted. The context is checked once per
// generation; there is no other cancellation point because the core treats
// classifier inference as atomic.
func (m *AttackMonitor) Run(ctx context.Context, initial model.Population) (RunResult, error) {
	if err := initial.Validate(); err != nil {
		return RunResult{}, err
	}

	pop := initial.Clone()
	result := RunResult{
		BestByGeneration: make([]float64, 0, m.cfg.Generations),
		Diagnostics:      make([]model.GenerationDiagnostics, 0, m.cfg.Generations),
	}

	for gen := 0; gen < m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		next, step, err := m.Step(ctx, pop)
		if err != nil {
			return RunResult{}, err
		}
		pop = next

		diag := summarizeGeneration(step, gen+1)
		result.BestByGeneration = append(result.BestByGeneration, diag.BestDivergence)
		result.Diagnostics = append(result.Diagnostics, diag)
		result.GenerationsRun = gen + 1

		if step.Converged {
			result.Converged = true
			result.Winners = step.Winners
			break
		}
	}

	result.FinalPopulation = pop
	return result, nil
}

func summarizeGeneration(step StepResult, generation int) model.GenerationDiagnostics {
	best := math.Inf(-1)
	total := 0.0
	accepted := 0
	for i := range step.TargetScores {
		div := step.TargetScores[i] - step.ActualScores[i]
		total += div
		if div > best {
			best = div
		}
		if step.UpdateMask[i] {
			accepted++
		}
	}
	n := float64(len(step.TargetScores))
	return model.GenerationDiagnostics{
		Generation:      generation,
		BestDivergence:  best,
		MeanDivergence:  total / n,
		BestTargetScore: step.TargetScores[step.BestTargetAgent],
		BestActualScore: step.ActualScores[step.BestActualAgent],
		ChildAcceptRate: float64(accepted) / n,
	}
}
