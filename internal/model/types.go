package model

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports disagreement between position and color shapes or
// between parent and child batches. It is fatal for the run that raised it.
var ErrShapeMismatch = errors.New("shape mismatch")

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Plane is one agent's per-pixel values: P units by D dims. D is 2 for
// coordinate planes and the channel count for color planes.
type Plane [][]float64

func ClonePlane(p Plane) Plane {
	out := make(Plane, len(p))
	for i, unit := range p {
		out[i] = append([]float64(nil), unit...)
	}
	return out
}

func ClonePlanes(planes []Plane) []Plane {
	out := make([]Plane, len(planes))
	for i, p := range planes {
		out[i] = ClonePlane(p)
	}
	return out
}

// Population is a fixed-size set of agents. Each agent owns a coordinate
// plane (P pixel positions, integer-valued) and a color plane (P color
// vectors in [0,1]) of matching pixel count.
type Population struct {
	VersionedRecord
	ID         string  `json:"id,omitempty"`
	Generation int     `json:"generation"`
	Coords     []Plane `json:"coords"`
	Colors     []Plane `json:"colors"`
}

// Size returns the number of agents.
func (p Population) Size() int {
	return len(p.Coords)
}

// PixelCount returns the number of perturbed pixels per agent.
func (p Population) PixelCount() int {
	if len(p.Coords) == 0 {
		return 0
	}
	return len(p.Coords[0])
}

// Validate checks the population shape invariants: at least two agents (a
// lone agent has no donor pool to recombine with), matching agent counts,
// a uniform pixel count shared by coordinate and color planes, coordinate
// units of dim 2 and color units of one uniform positive dim.
func (p Population) Validate() error {
	if len(p.Coords) < 2 {
		return fmt.Errorf("population needs at least 2 agents, got %d", len(p.Coords))
	}
	if len(p.Coords) != len(p.Colors) {
		return fmt.Errorf("%w: %d coordinate agents vs %d color agents", ErrShapeMismatch, len(p.Coords), len(p.Colors))
	}

	pixels := len(p.Coords[0])
	if pixels == 0 {
		return fmt.Errorf("population perturbs no pixels")
	}
	colorDim := 0
	for i := range p.Coords {
		if len(p.Coords[i]) != pixels || len(p.Colors[i]) != pixels {
			return fmt.Errorf("%w: agent %d has %d coordinate units and %d color units, want %d", ErrShapeMismatch, i, len(p.Coords[i]), len(p.Colors[i]), pixels)
		}
		for j, unit := range p.Coords[i] {
			if len(unit) != 2 {
				return fmt.Errorf("%w: agent %d coordinate %d has dim %d, want 2", ErrShapeMismatch, i, j, len(unit))
			}
		}
		for j, unit := range p.Colors[i] {
			if len(unit) == 0 {
				return fmt.Errorf("%w: agent %d color %d is empty", ErrShapeMismatch, i, j)
			}
			if colorDim == 0 {
				colorDim = len(unit)
			}
			if len(unit) != colorDim {
				return fmt.Errorf("%w: agent %d color %d has dim %d, want %d", ErrShapeMismatch, i, j, len(unit), colorDim)
			}
		}
	}
	return nil
}

func (p Population) Clone() Population {
	out := p
	out.Coords = ClonePlanes(p.Coords)
	out.Colors = ClonePlanes(p.Colors)
	return out
}

// AttackRecord is the persisted summary of one attack run.
type AttackRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	ImageSize      int     `json:"image_size"`
	Channels       int     `json:"channels"`
	PixelCount     int     `json:"pixel_count"`
	PopulationSize int     `json:"population_size"`
	TargetClass    int     `json:"target_class"`
	ActualClass    int     `json:"actual_class"`
	CrossoverProb  float64 `json:"crossover_prob"`
	DiffWeight     float64 `json:"diff_weight"`
	Seed           int64   `json:"seed"`
	GenerationsRun int     `json:"generations_run"`
	Converged      bool    `json:"converged"`
	Winners        []int   `json:"winners,omitempty"`
	BestDivergence float64 `json:"best_divergence"`
}

// GenerationDiagnostics summarizes one generation after selection.
type GenerationDiagnostics struct {
	Generation      int     `json:"generation"`
	BestDivergence  float64 `json:"best_divergence"`
	MeanDivergence  float64 `json:"mean_divergence"`
	BestTargetScore float64 `json:"best_target_score"`
	BestActualScore float64 `json:"best_actual_score"`
	ChildAcceptRate float64 `json:"child_accept_rate"`
}
