package main

import (
	"flag"
	"fmt"
	"log"

	"diseasepredict/ml"
)

func main() {
	dataset := flag.String("dataset", "data/clean_dataset.tsv", "training table")
	modelType := flag.String("type", ml.ModelTypeXGBoost, "model type")
	modelPath := flag.String("model_path", "model/xgboost_model.json", "model path")
	testRatio := flag.Float64("test_ratio", 0, "evaluate only the trailing fraction of rows (0 = all rows)")
	flag.Parse()

	schema, err := ml.LoadSchema(*dataset)
	if err != nil {
		log.Fatalf("failed to load schema: %v", err)
	}
	model, err := ml.LoadModel(*modelType, *modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	if err := ml.CheckCompatibility(model, schema); err != nil {
		log.Fatalf("model does not fit dataset: %v", err)
	}

	samples, err := ml.LoadSamples(*dataset, schema)
	if err != nil {
		log.Fatalf("failed to load samples: %v", err)
	}
	testX, testY := holdout(samples, *testRatio)

	accuracy, precision, recall := evaluateModel(model, testX, testY, len(schema.Diseases))
	log.Printf("rows=%d accuracy=%.4f macro_precision=%.4f macro_recall=%.4f", len(testX), accuracy, precision, recall)
	fmt.Printf("%.4f\n", accuracy)
}

func holdout(samples ml.Samples, testRatio float64) ([]ml.FeatureVector, []int) {
	if testRatio <= 0 || testRatio >= 1 {
		return samples.X, samples.Y
	}
	split := int(float64(len(samples.X)) * (1 - testRatio))
	return samples.X[split:], samples.Y[split:]
}

// evaluateModel returns accuracy and the unweighted mean of per-class
// precision and recall over the classes that occur.
func evaluateModel(model ml.Classifier, testX []ml.FeatureVector, testY []int, classes int) (accuracy, precision, recall float64) {
	if len(testX) == 0 {
		return 0, 0, 0
	}

	truePositive := make([]int, classes)
	predicted := make([]int, classes)
	actual := make([]int, classes)
	var correct int

	for i, feature := range testX {
		if testY[i] >= 0 && testY[i] < classes {
			actual[testY[i]]++
		}
		// a row that cannot be predicted counts as a miss
		label, _, err := ml.Predict(model, feature)
		if err != nil || label >= classes {
			continue
		}
		predicted[label]++
		if label == testY[i] {
			correct++
			truePositive[label]++
		}
	}

	var pClasses, rClasses int
	for c := 0; c < classes; c++ {
		if predicted[c] > 0 {
			precision += float64(truePositive[c]) / float64(predicted[c])
			pClasses++
		}
		if actual[c] > 0 {
			recall += float64(truePositive[c]) / float64(actual[c])
			rClasses++
		}
	}
	if pClasses > 0 {
		precision /= float64(pClasses)
	}
	if rClasses > 0 {
		recall /= float64(rClasses)
	}
	return float64(correct) / float64(len(testX)), precision, recall
}
