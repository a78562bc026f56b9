// Package evo implements the differential evolution core of the attack:
// child generation, boundary repair, fitness evaluation against the
// classifier, convergence detection and the generation loop.
package evo

import (
	"math"
	"math/rand"

	"pixevade/internal/model"
)

// GenerateChildren produces one child per agent via differential
// recombination. For agent i, three donors a, b and c are drawn uniformly
// with replacement from the population excluding i itself (duplicate draws
// are allowed, so b == c yields a zero differential for that child). The
// proposal is a + F*(b-c) elementwise, rounded to the nearest integer when
// roundToInt is set (coordinate planes).
//
// The crossover mask is drawn once per pixel unit: all D dims of a unit
// either take the proposal together (probability crossProb) or keep agent
// i's original values together. Output shape equals input shape.
func GenerateChildren(rng *rand.Rand, parents []model.Plane, crossProb, diffWeight float64, roundToInt bool) []model.Plane {
	children := make([]model.Plane, len(parents))
	for i, self := range parents {
		a := parents[sampleExcluding(rng, len(parents), i)]
		b := parents[sampleExcluding(rng, len(parents), i)]
		c := parents[sampleExcluding(rng, len(parents), i)]

		child := make(model.Plane, len(self))
		for p := range self {
			unit := make([]float64, len(self[p]))
			if rng.Float64() < crossProb {
				for d := range unit {
					v := a[p][d] + diffWeight*(b[p][d]-c[p][d])
					if roundToInt {
						v = math.Round(v)
					}
					unit[d] = v
				}
			} else {
				copy(unit, self[p])
			}
			child[p] = unit
		}
		children[i] = child
	}
	return children
}

// sampleExcluding draws uniformly from [0, n) minus {exclude}.
func sampleExcluding(rng *rand.Rand, n, exclude int) int {
	j := rng.Intn(n - 1)
	if j >= exclude {
		j++
	}
	return j
}
