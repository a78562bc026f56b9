package evo

import (
	"context"
	"fmt"

	"pixevade/internal/classifier"
	"pixevade/internal/imaging"
	"pixevade/internal/model"
)

// EvaluationResult carries the per-agent outcome of one parent-vs-child
// round: the selection mask (true means the child replaces its parent) and
// the post-selection target/actual class scores. BestTargetAgent is the
// agent with the highest target-class score, BestActualAgent the one with
// the lowest actual-class score; they may differ.
type EvaluationResult struct {
	UpdateMask      []bool
	TargetScores    []float64
	ActualScores    []float64
	BestTargetAgent int
	BestActualAgent int
}

// EvaluateGeneration queries the classifier on the parent and child batches
// independently, computes the divergence (target score minus actual score)
// for each, and selects greedily per agent: the child wins when its
// divergence is greater than or equal to the parent's. Ties go to the child
// so that lateral moves keep diversity in the search.
//
// Classifier failures propagate unchanged; batch shape problems surface as
// ErrShapeMismatch before any selection happens.
func EvaluateGeneration(ctx context.Context, clf classifier.Classifier, parentImgs, childImgs []imaging.Image, targetClass, actualClass int) (EvaluationResult, error) {
	if clf == nil {
		return EvaluationResult{}, fmt.Errorf("classifier is required")
	}
	if len(parentImgs) != len(childImgs) {
		return EvaluationResult{}, fmt.Errorf("%w: parent batch %d vs child batch %d", model.ErrShapeMismatch, len(parentImgs), len(childImgs))
	}
	if len(parentImgs) == 0 {
		return EvaluationResult{}, fmt.Errorf("empty evaluation batch")
	}

	parentScores, err := clf.Score(ctx, parentImgs)
	if err != nil {
		return EvaluationResult{}, err
	}
	if err := checkScores("parent", parentScores, len(parentImgs), targetClass, actualClass); err != nil {
		return EvaluationResult{}, err
	}

	childScores, err := clf.Score(ctx, childImgs)
	if err != nil {
		return EvaluationResult{}, err
	}
	if err := checkScores("child", childScores, len(childImgs), targetClass, actualClass); err != nil {
		return EvaluationResult{}, err
	}

	n := len(parentImgs)
	result := EvaluationResult{
		UpdateMask:   make([]bool, n),
		TargetScores: make([]float64, n),
		ActualScores: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		parentDiv := parentScores[i][targetClass] - parentScores[i][actualClass]
		childDiv := childScores[i][targetClass] - childScores[i][actualClass]
		if childDiv >= parentDiv {
			result.UpdateMask[i] = true
			result.TargetScores[i] = childScores[i][targetClass]
			result.ActualScores[i] = childScores[i][actualClass]
		} else {
			result.TargetScores[i] = parentScores[i][targetClass]
			result.ActualScores[i] = parentScores[i][actualClass]
		}
	}

	for i := 1; i < n; i++ {
		if result.TargetScores[i] > result.TargetScores[result.BestTargetAgent] {
			result.BestTargetAgent = i
		}
		if result.ActualScores[i] < result.ActualScores[result.BestActualAgent] {
			result.BestActualAgent = i
		}
	}
	return result, nil
}

func checkScores(side string, scores [][]float64, n, targetClass, actualClass int) error {
	if len(scores) != n {
		return fmt.Errorf("%w: classifier returned %d %s score rows for %d images", model.ErrShapeMismatch, len(scores), side, n)
	}
	for i, row := range scores {
		if targetClass < 0 || targetClass >= len(row) {
			return fmt.Errorf("target class %d outside %d-class %s scores (row %d)", targetClass, len(row), side, i)
		}
		if actualClass < 0 || actualClass >= len(row) {
			return fmt.Errorf("actual class %d outside %d-class %s scores (row %d)", actualClass, len(row), side, i)
		}
	}
	return nil
}
