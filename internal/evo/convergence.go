package evo

// StoppingCriterion reports whether any agent's target-class score strictly
// exceeds its actual-class score, together with the indices of the agents
// that achieved it. A tie is not a misclassification and does not stop the
// run.
func StoppingCriterion(targetScores, actualScores []float64) (bool, []int) {
	var winners []int
	for i := range targetScores {
		if targetScores[i] > actualScores[i] {
			winners = append(winners, i)
		}
	}
	return len(winners) > 0, winners
}
