package evo

import "testing"

func TestStoppingCriterionFindsWinner(t *testing.T) {
	stop, winners := StoppingCriterion([]float64{0.9, 0.2}, []float64{0.5, 0.5})
	if !stop {
		t.Fatal("expected stop")
	}
	if len(winners) != 1 || winners[0] != 0 {
		t.Fatalf("unexpected winners: %v", winners)
	}
}

func TestStoppingCriterionTieIsNotSuccess(t *testing.T) {
	stop, winners := StoppingCriterion([]float64{0.3}, []float64{0.3})
	if stop {
		t.Fatal("tie must not stop the run")
	}
	if winners != nil {
		t.Fatalf("unexpected winners: %v", winners)
	}
}

func TestStoppingCriterionMultipleWinners(t *testing.T) {
	stop, winners := StoppingCriterion([]float64{0.9, 0.1, 0.8}, []float64{0.5, 0.5, 0.5})
	if !stop {
		t.Fatal("expected stop")
	}
	if len(winners) != 2 || winners[0] != 0 || winners[1] != 2 {
		t.Fatalf("unexpected winners: %v", winners)
	}
}
