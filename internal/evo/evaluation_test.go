package evo

import (
	"context"
	"errors"
	"testing"

	"pixevade/internal/imaging"
	"pixevade/internal/model"
)

// scriptedClassifier replays one prepared score matrix per call: the first
// call sees the parent batch, the second the child batch.
type scriptedClassifier struct {
	responses [][][]float64
	err       error
	calls     int
}

func (s *scriptedClassifier) Score(_ context.Context, batch []imaging.Image) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.responses) {
		return nil, errors.New("no scripted response left")
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func dummyBatch(n int) []imaging.Image {
	batch := make([]imaging.Image, n)
	for i := range batch {
		batch[i] = imaging.NewImage(1, 1, 1)
	}
	return batch
}

func TestEvaluateGenerationSelectsGreedilyPerAgent(t *testing.T) {
	// Class 0 is the target, class 1 the actual class. The tie row uses
	// exactly representable scores so both divergences are exactly 0.25.
	clf := &scriptedClassifier{responses: [][][]float64{
		{ // parents: divergences 0.25, -0.1, 0.6
			{0.5, 0.25},
			{0.2, 0.3},
			{0.9, 0.3},
		},
		{ // children: divergences 0.25 (tie), 0.4, 0.1
			{0.75, 0.5},
			{0.7, 0.3},
			{0.4, 0.3},
		},
	}}

	result, err := EvaluateGeneration(context.Background(), clf, dummyBatch(3), dummyBatch(3), 0, 1)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	wantMask := []bool{true, true, false}
	for i, want := range wantMask {
		if result.UpdateMask[i] != want {
			t.Fatalf("mask[%d] = %v, want %v (tie must favor the child)", i, result.UpdateMask[i], want)
		}
	}

	// Agents 0 and 1 carry child scores, agent 2 parent scores.
	wantTarget := []float64{0.75, 0.7, 0.9}
	wantActual := []float64{0.5, 0.3, 0.3}
	for i := range wantTarget {
		if result.TargetScores[i] != wantTarget[i] || result.ActualScores[i] != wantActual[i] {
			t.Fatalf("agent %d scores = (%v, %v), want (%v, %v)", i, result.TargetScores[i], result.ActualScores[i], wantTarget[i], wantActual[i])
		}
	}

	if result.BestTargetAgent != 2 {
		t.Fatalf("best target agent = %d, want 2", result.BestTargetAgent)
	}
	if result.BestActualAgent != 1 {
		t.Fatalf("best actual agent = %d, want 1", result.BestActualAgent)
	}
}

func TestEvaluateGenerationBatchSizeMismatch(t *testing.T) {
	clf := &scriptedClassifier{}
	_, err := EvaluateGeneration(context.Background(), clf, dummyBatch(3), dummyBatch(2), 0, 1)
	if !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
	if clf.calls != 0 {
		t.Fatalf("classifier queried despite shape mismatch: %d calls", clf.calls)
	}
}

func TestEvaluateGenerationRowCountMismatch(t *testing.T) {
	clf := &scriptedClassifier{responses: [][][]float64{
		{{0.1, 0.2}},
	}}
	_, err := EvaluateGeneration(context.Background(), clf, dummyBatch(2), dummyBatch(2), 0, 1)
	if !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestEvaluateGenerationClassIndexOutOfRange(t *testing.T) {
	clf := &scriptedClassifier{responses: [][][]float64{
		{{0.1, 0.2}},
		{{0.1, 0.2}},
	}}
	_, err := EvaluateGeneration(context.Background(), clf, dummyBatch(1), dummyBatch(1), 5, 1)
	if err == nil {
		t.Fatal("expected class index error")
	}
}

func TestEvaluateGenerationPropagatesClassifierError(t *testing.T) {
	sentinel := errors.New("inference backend unavailable")
	clf := &scriptedClassifier{err: sentinel}

	_, err := EvaluateGeneration(context.Background(), clf, dummyBatch(2), dummyBatch(2), 0, 1)
	if !errors.Is(err, sentinel) {
		t.Fatalf("classifier error not propagated unchanged: %v", err)
	}
}
