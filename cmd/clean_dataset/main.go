package main

import (
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	"diseasepredict/logging"
	"diseasepredict/pipeline"
)

// clean_dataset turns the raw Disease,Symptom_1..Symptom_N table into the
// tab-separated one-hot training table the predictor reads.
func main() {
	in := flag.String("in", "data/dataset.csv", "raw dataset")
	out := flag.String("out", "data/clean_dataset.tsv", "clean training table")
	label := flag.String("label", pipeline.DefaultLabel, "label column name")
	dedupe := flag.Bool("dedupe", false, "drop rows repeating an earlier disease and symptom set")
	flag.Parse()

	logger, err := logging.New(logging.DefaultConfig())
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	records, err := pipeline.LoadRaw(*in)
	if err != nil {
		logger.Fatal("failed to read raw dataset", zap.Error(err))
	}

	cleaner := pipeline.NewDataCleaner(logger)
	if *dedupe {
		cleaner.AddRule(pipeline.NewDuplicateDetectionRule())
	}
	cleaned, issues := cleaner.Clean(records)
	for _, issue := range issues {
		logger.Warn("row rejected", zap.Int("line", issue.Line), zap.String("rule", issue.Type), zap.String("reason", issue.Message))
	}

	columns, err := pipeline.WriteTableFile(*out, cleaned, *label)
	if err != nil {
		logger.Fatal("failed to write clean dataset", zap.Error(err))
	}

	stats := cleaner.GetStats()
	fmt.Printf("wrote %s: %d rows, %d symptoms (%d rejected, %d corrected)\n",
		*out, stats.Passed, len(columns), stats.Rejected, stats.Corrected)
}
