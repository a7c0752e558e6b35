package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"diseasepredict/ml"
)

// export_model loads a model file, validates it against the training table
// and writes it back out in the canonical JSON layout.
func main() {
	modelType := flag.String("type", ml.ModelTypeXGBoost, "model type")
	in := flag.String("in", "", "input model path")
	out := flag.String("out", "", "output model path")
	dataset := flag.String("dataset", "", "training table to validate against (optional)")
	flag.Parse()

	if *in == "" || *out == "" {
		log.Fatal("-in and -out are required")
	}

	model, err := ml.LoadModel(*modelType, *in)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}

	if *dataset != "" {
		schema, err := ml.LoadSchema(*dataset)
		if err != nil {
			log.Fatalf("failed to load dataset: %v", err)
		}
		if err := ml.CheckCompatibility(model, schema); err != nil {
			log.Fatalf("model does not fit dataset: %v", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := model.Save(*out); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	fmt.Printf("model saved to %s (%d classes, %d features)\n", *out, model.NumClasses(), model.NumFeatures())
}
