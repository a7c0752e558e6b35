package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax converts per-class margins into probabilities in place.
func Softmax(margins []float64) []float64 {
	if len(margins) == 0 {
		return margins
	}
	lse := floats.LogSumExp(margins)
	for i, m := range margins {
		margins[i] = math.Exp(m - lse)
	}
	return margins
}

func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Logit is the inverse of Sigmoid, clamped away from 0 and 1.
func Logit(p float64) float64 {
	const eps = 1e-16
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}
	return math.Log(p / (1 - p))
}
