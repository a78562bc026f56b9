// Package classifier defines the boundary to the frozen model under attack.
package classifier

import (
	"context"

	"pixevade/internal/imaging"
)

// Classifier scores a batch of images, returning one row of per-class scores
// per input image. Implementations run inference only; the attack never
// updates model parameters and treats a call as an atomic blocking
// operation. Errors are surfaced to the caller unchanged and never retried.
type Classifier interface {
	Score(ctx context.Context, batch []imaging.Image) ([][]float64, error)
}

// Func adapts a plain scoring function to the Classifier interface.
type Func func(ctx context.Context, batch []imaging.Image) ([][]float64, error)

func (f Func) Score(ctx context.Context, batch []imaging.Image) ([][]float64, error) {
	return f(ctx, batch)
}
