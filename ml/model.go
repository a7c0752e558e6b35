package ml

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrEmptyProbability = errors.New("classifier returned no probabilities")
)

// Classifier is a trained multi-class model. PredictProba returns one
// probability per class, indexed the same way as the disease catalog.
type Classifier interface {
	PredictProba(features []float64) ([]float64, error)
	NumClasses() int
	NumFeatures() int
	FeatureNames() []string
	Save(path string) error
}

// ClassProbability pairs a class index with its probability.
type ClassProbability struct {
	Class       int
	Probability float64
}

// Predict returns the most probable class and its probability. Ties go to the
// lowest class index.
func Predict(c Classifier, features []float64) (int, float64, error) {
	probs, err := c.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	idx, err := Argmax(probs)
	if err != nil {
		return 0, 0, err
	}
	return idx, probs[idx], nil
}

// Argmax returns the index of the largest probability.
func Argmax(probs []float64) (int, error) {
	if len(probs) == 0 {
		return 0, ErrEmptyProbability
	}
	return floats.MaxIdx(probs), nil
}

// Rank orders classes by descending probability and keeps the first k.
// k <= 0 keeps all of them.
func Rank(probs []float64, k int) []ClassProbability {
	ranked := make([]ClassProbability, len(probs))
	for i, p := range probs {
		ranked[i] = ClassProbability{Class: i, Probability: p}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
