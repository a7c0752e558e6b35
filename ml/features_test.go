package ml_test

import (
	"fmt"
	"testing"

	"diseasepredict/ml"
	"diseasepredict/ml/mltest"
	"diseasepredict/paths"
)

func TestEncodeValidSymptoms(t *testing.T) {
	enc := ml.NewEncoder(mltest.Schema()).Encode([]string{"itching", "chills", "itching"})
	if len(enc.Vector) != len(mltest.Symptoms) {
		t.Fatalf("expected width %d, got %d", len(mltest.Symptoms), len(enc.Vector))
	}
	if enc.Vector.Ones() != 2 {
		t.Fatalf("expected one entry per distinct symptom, got %d", enc.Vector.Ones())
	}
	if enc.Vector[0] != 1 || enc.Vector[4] != 1 {
		t.Fatalf("unexpected vector %v", enc.Vector)
	}
	if len(enc.Matched) != 2 || len(enc.Unknown) != 0 {
		t.Fatalf("unexpected matched=%v unknown=%v", enc.Matched, enc.Unknown)
	}
}

func TestEncodeEmpty(t *testing.T) {
	enc := ml.NewEncoder(mltest.Schema()).Encode(nil)
	if len(enc.Vector) != len(mltest.Symptoms) || enc.Vector.Ones() != 0 {
		t.Fatalf("expected all-zero vector, got %v", enc.Vector)
	}
}

func TestEncodeSkipsUnknownSymptoms(t *testing.T) {
	enc := ml.NewEncoder(mltest.Schema()).Encode([]string{"skin_rash", "itchng", "joint_pain"})
	if enc.Vector.Ones() != 2 {
		t.Fatalf("expected valid symptoms after the typo to be set, got %v", enc.Vector)
	}
	if enc.Vector[1] != 1 || enc.Vector[5] != 1 {
		t.Fatalf("unexpected vector %v", enc.Vector)
	}
	if len(enc.Unknown) != 1 || enc.Unknown[0] != "itchng" {
		t.Fatalf("expected typo to be reported, got %v", enc.Unknown)
	}
}

func TestEncodeAcceptsDisplayNames(t *testing.T) {
	enc := ml.NewEncoder(mltest.Schema()).Encode([]string{"Skin Rash", " continuous sneezing "})
	if enc.Vector[1] != 1 || enc.Vector[2] != 1 {
		t.Fatalf("expected display names to match columns, got %v", enc.Vector)
	}
	if enc.Matched[0] != "skin_rash" {
		t.Fatalf("expected schema column name in Matched, got %v", enc.Matched)
	}
}

func TestEncodeFullWidthSchema(t *testing.T) {
	symptoms := make([]string, 133)
	for i := range symptoms {
		symptoms[i] = fmt.Sprintf("symptom_%d", i)
	}
	symptoms[0] = "itching"
	symptoms[1] = "skin_rash"
	schema := ml.Schema{Symptoms: symptoms, Label: "prognosis"}

	enc := ml.NewEncoder(schema).Encode([]string{"itching", "skin_rash"})
	if len(enc.Vector) != 133 {
		t.Fatalf("expected width 133, got %d", len(enc.Vector))
	}
	for i, x := range enc.Vector {
		want := 0.0
		if i == 0 || i == 1 {
			want = 1
		}
		if x != want {
			t.Fatalf("position %d: expected %v, got %v", i, want, x)
		}
	}
}

func TestEncodeFromFile(t *testing.T) {
	f := mltest.Write(t, t.TempDir())
	resolver := paths.New(t.TempDir(), f.Root)

	enc := ml.EncodeFromFile(resolver, mltest.DatasetRel, []string{"itching"})
	if enc.SchemaUnavailable {
		t.Fatal("expected schema to be found")
	}
	if enc.Vector.Ones() != 1 || enc.Vector[0] != 1 {
		t.Fatalf("unexpected vector %v", enc.Vector)
	}
}

func TestEncodeFromFileWithoutSchema(t *testing.T) {
	resolver := paths.New(t.TempDir())

	enc := ml.EncodeFromFile(resolver, mltest.DatasetRel, []string{"itching"})
	if !enc.SchemaUnavailable {
		t.Fatal("expected SchemaUnavailable")
	}
	if len(enc.Vector) != ml.DefaultSchemaWidth || enc.Vector.Ones() != 0 {
		t.Fatalf("expected all-zero default-width vector, got len=%d ones=%d", len(enc.Vector), enc.Vector.Ones())
	}
}
