package ml_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"diseasepredict/ml"
	"diseasepredict/ml/mltest"
)

func TestLoadSchema(t *testing.T) {
	f := mltest.Write(t, t.TempDir())

	schema, err := ml.LoadSchema(f.Dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(schema.Symptoms, mltest.Symptoms) {
		t.Fatalf("unexpected symptoms: %v", schema.Symptoms)
	}
	if schema.Label != "prognosis" {
		t.Fatalf("unexpected label column %q", schema.Label)
	}
	if !reflect.DeepEqual(schema.Diseases, mltest.Diseases) {
		t.Fatalf("expected sorted catalog %v, got %v", mltest.Diseases, schema.Diseases)
	}
	if schema.Width() != 6 {
		t.Fatalf("expected width 6, got %d", schema.Width())
	}
}

func TestReadSchemaCatalogOrdering(t *testing.T) {
	tsv := "a\tb\tlabel\n" +
		"1\t0\tbeta\n" +
		"0\t1\tAlpha\n" +
		"1\t1\tbeta\n" +
		"0\t0\t\n" +
		"1\t0\n" +
		"1\t1\talpha\n"
	schema, err := ml.ReadSchema(strings.NewReader(tsv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Alpha", "alpha", "beta"}
	if !reflect.DeepEqual(schema.Diseases, want) {
		t.Fatalf("expected %v, got %v", want, schema.Diseases)
	}
}

func TestReadSchemaEmpty(t *testing.T) {
	for _, input := range []string{"", "prognosis\n"} {
		if _, err := ml.ReadSchema(strings.NewReader(input)); !errors.Is(err, ml.ErrEmptySchema) {
			t.Fatalf("%q: expected ErrEmptySchema, got %v", input, err)
		}
	}
}

func TestLoadSchemaMissingFile(t *testing.T) {
	if _, err := ml.LoadSchema(filepath.Join(t.TempDir(), "clean_dataset.tsv")); err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckCompatibility(t *testing.T) {
	schema := mltest.Schema()
	if err := ml.CheckCompatibility(mltest.Model(t), schema); err != nil {
		t.Fatalf("expected fixture model to match, got %v", err)
	}

	renamed := mltest.Schema()
	renamed.Symptoms[1], renamed.Symptoms[2] = renamed.Symptoms[2], renamed.Symptoms[1]
	if err := ml.CheckCompatibility(mltest.Model(t), renamed); !errors.Is(err, ml.ErrSchemaMismatch) {
		t.Fatalf("expected column order mismatch, got %v", err)
	}

	fewer := mltest.Schema()
	fewer.Diseases = fewer.Diseases[:2]
	if err := ml.CheckCompatibility(mltest.Model(t), fewer); !errors.Is(err, ml.ErrSchemaMismatch) {
		t.Fatalf("expected class count mismatch, got %v", err)
	}

	narrow := mltest.Schema()
	narrow.Symptoms = narrow.Symptoms[:5]
	anonymous, err := ml.NewXGBoostModel(mltest.ModelDocument(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ml.CheckCompatibility(anonymous, narrow); !errors.Is(err, ml.ErrSchemaMismatch) {
		t.Fatalf("expected width mismatch, got %v", err)
	}
}

func TestLoadSamples(t *testing.T) {
	f := mltest.Write(t, t.TempDir())

	samples, err := ml.LoadSamples(f.Dataset, mltest.Schema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(samples.Y, []int{2, 0, 1, 2, 0}) {
		t.Fatalf("unexpected labels %v", samples.Y)
	}
	if !reflect.DeepEqual(samples.X[2], ml.FeatureVector{1, 1, 0, 0, 0, 1}) {
		t.Fatalf("unexpected row %v", samples.X[2])
	}

	model := mltest.Model(t)
	for i, x := range samples.X {
		class, _, err := ml.Predict(model, x)
		if err != nil {
			t.Fatalf("predict row %d: %v", i, err)
		}
		if class != samples.Y[i] {
			t.Fatalf("row %d: predicted %d, want %d", i, class, samples.Y[i])
		}
	}
}

func TestLoadSamplesBadCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsv")
	mltest.WriteFile(t, path, "itching\tprognosis\nyes\tAllergy\n")

	schema := ml.Schema{Symptoms: []string{"itching"}, Label: "prognosis", Diseases: []string{"Allergy"}}
	if _, err := ml.LoadSamples(path, schema); err == nil || !strings.Contains(err.Error(), "itching") {
		t.Fatalf("expected parse error naming the column, got %v", err)
	}
}
