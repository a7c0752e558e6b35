package main

import (
	"testing"

	"diseasepredict/ml"
	"diseasepredict/ml/mltest"
)

func TestEvaluateModel(t *testing.T) {
	f := mltest.Write(t, t.TempDir())
	samples, err := ml.LoadSamples(f.Dataset, mltest.Schema())
	if err != nil {
		t.Fatalf("load samples: %v", err)
	}

	accuracy, precision, recall := evaluateModel(mltest.Model(t), samples.X, samples.Y, len(mltest.Diseases))
	if accuracy != 1 || precision != 1 || recall != 1 {
		t.Fatalf("expected perfect scores, got %v %v %v", accuracy, precision, recall)
	}

	// Everything predicted as Allergy.
	wrong := []int{0, 0, 0, 0, 0}
	accuracy, _, recall = evaluateModel(mltest.Model(t), samples.X, wrong, len(mltest.Diseases))
	if accuracy != 0.4 || recall != 0.4 {
		t.Fatalf("unexpected scores %v %v", accuracy, recall)
	}
}

func TestEvaluateModelCountsFailedRows(t *testing.T) {
	testX := []ml.FeatureVector{mltest.Vector("itching"), make(ml.FeatureVector, 5)}
	testY := []int{2, 2}

	accuracy, precision, recall := evaluateModel(mltest.Model(t), testX, testY, len(mltest.Diseases))
	if accuracy != 0.5 || precision != 1 || recall != 0.5 {
		t.Fatalf("expected 0.5/1/0.5 with one unpredictable row, got %v %v %v", accuracy, precision, recall)
	}
}

func TestHoldout(t *testing.T) {
	samples := ml.Samples{X: make([]ml.FeatureVector, 10), Y: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}
	_, y := holdout(samples, 0.2)
	if len(y) != 2 || y[0] != 8 {
		t.Fatalf("unexpected holdout %v", y)
	}
	if _, y := holdout(samples, 0); len(y) != 10 {
		t.Fatalf("expected all rows, got %d", len(y))
	}
}
