package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"diseasepredict/config"
	"diseasepredict/logging"
	"diseasepredict/paths"
	"diseasepredict/predictor"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	symptoms := flag.String("symptoms", "", "comma-separated symptom names")
	disease := flag.String("disease", "", "look up a disease instead of predicting")
	asJSON := flag.Bool("json", false, "print JSON")
	flag.Parse()

	if *symptoms == "" && *disease == "" {
		log.Fatal("-symptoms or -disease is required")
	}

	if *configPath == "" {
		*configPath = config.FindConfigFile("config.yaml", "../config.yaml")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logCfg := cfg.Log
	logCfg.File = ""
	logCfg.Level = "warn"
	logger, err := logging.New(logCfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	p, _, err := predictor.Load(predictor.LoadConfig{
		DatasetPath: cfg.Data.Dataset,
		ModelType:   cfg.Model.Type,
		ModelPath:   cfg.Model.Path,
	}, predictor.Options{
		Resolver:         paths.New(cfg.Data.SearchRoots...),
		DescriptionsPath: cfg.Data.Descriptions,
		PrecautionsPath:  cfg.Data.Precautions,
		TopK:             cfg.Model.TopK,
		Logger:           logger,
	})
	if err != nil {
		log.Fatalf("failed to load predictor: %v", err)
	}

	report := map[string]interface{}{}
	name := *disease
	if name == "" {
		pred, enc, err := p.NewSession().PredictSymptoms(context.Background(), splitList(*symptoms))
		if err != nil {
			log.Fatalf("prediction failed: %v", err)
		}
		report["prediction"] = pred
		report["unknown"] = enc.Unknown
		name = pred.Disease
	}

	desc, err := p.Describe(name)
	if err != nil {
		log.Fatalf("description lookup failed: %v", err)
	}
	prec, err := p.Precautions(name)
	if err != nil {
		log.Fatalf("precaution lookup failed: %v", err)
	}
	report["description"] = desc
	report["precautions"] = prec

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return
	}

	if pred, ok := report["prediction"].(predictor.Prediction); ok {
		fmt.Printf("disease: %s (%.1f%%)\n", pred.Disease, pred.Probability*100)
		for i, r := range pred.Ranked {
			if i > 0 {
				fmt.Printf("  also: %s (%.1f%%)\n", r.Disease, r.Probability*100)
			}
		}
		if unknown, _ := report["unknown"].([]string); len(unknown) > 0 {
			fmt.Printf("ignored unknown symptoms: %s\n", strings.Join(unknown, ", "))
		}
	}
	fmt.Printf("\n%s\n", desc.Text)
	if prec.Found() {
		fmt.Println("\nprecautions:")
		for i, step := range prec.Precautions {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	} else if prec.Message != "" {
		fmt.Printf("\n%s\n", prec.Message)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
