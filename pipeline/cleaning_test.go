package pipeline

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"diseasepredict/ml"
)

const rawDataset = "Disease,Symptom_1,Symptom_2,Symptom_3\n" +
	"Fungal infection,itching, skin_rash, nodal_skin_eruptions\n" +
	"Fungal infection, skin_rash,itching, nodal_skin_eruptions\n" +
	"Allergy , continuous_sneezing, shivering, chills\n" +
	",itching,,\n" +
	"Drug Reaction,,,\n" +
	"Psoriasis, skin_rash, dischromic _patches,skin_rash\n"

func TestNewDataCleaner(t *testing.T) {
	cleaner := NewDataCleaner(nil)
	if cleaner == nil {
		t.Fatal("NewDataCleaner returned nil")
	}

	if len(cleaner.rules) == 0 {
		t.Error("No default rules added")
	}
}

func TestReadRaw(t *testing.T) {
	records, err := ReadRaw(strings.NewReader(rawDataset))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}
	if records[0].Line != 2 || records[0].Disease != "Fungal infection" || len(records[0].Symptoms) != 3 {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if len(records[4].Symptoms) != 0 {
		t.Fatalf("expected empty symptoms, got %v", records[4].Symptoms)
	}

	if _, err := ReadRaw(strings.NewReader("Symptom_1\nitching\n")); !errors.Is(err, ErrNoLabelColumn) {
		t.Fatalf("expected ErrNoLabelColumn, got %v", err)
	}
}

func TestCleaningRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    CleaningRule
		record  *Record
		want    *Record
		wantErr bool
	}{
		{
			name:   "label trimmed",
			rule:   NewLabelValidationRule(),
			record: &Record{Disease: " Allergy "},
			want:   &Record{Disease: "Allergy"},
		},
		{
			name:    "empty label",
			rule:    NewLabelValidationRule(),
			record:  &Record{Disease: "  "},
			wantErr: true,
		},
		{
			name:   "symptoms normalized",
			rule:   NewSymptomNormalizationRule(),
			record: &Record{Disease: "Psoriasis", Symptoms: []string{" Skin Rash", "dischromic _patches", "skin_rash", " "}},
			want:   &Record{Disease: "Psoriasis", Symptoms: []string{"skin_rash", "dischromic_patches"}},
		},
		{
			name:    "no symptoms",
			rule:    NewEmptySymptomsRule(),
			record:  &Record{Disease: "Drug Reaction"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Apply(tt.record)
			if (err != nil) != tt.wantErr {
				t.Fatalf("%s.Apply() error = %v, wantErr %v", tt.rule.Name(), err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDuplicateDetectionRule(t *testing.T) {
	rule := NewDuplicateDetectionRule()

	if _, err := rule.Apply(&Record{Line: 2, Disease: "Allergy", Symptoms: []string{"chills", "shivering"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := rule.Apply(&Record{Line: 3, Disease: "Allergy", Symptoms: []string{"shivering", "chills"}}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := rule.Apply(&Record{Line: 4, Disease: "Drug Reaction", Symptoms: []string{"chills", "shivering"}}); err != nil {
		t.Fatalf("different disease is not a duplicate: %v", err)
	}
}

func TestDataCleaner_Clean(t *testing.T) {
	records, err := ReadRaw(strings.NewReader(rawDataset))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	cleaner := NewDataCleaner(nil)
	cleaner.AddRule(NewDuplicateDetectionRule())
	cleaned, issues := cleaner.Clean(records)

	if len(cleaned) != 3 {
		t.Fatalf("expected 3 clean records, got %d: %+v", len(cleaned), cleaned)
	}
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %+v", issues)
	}
	if issues[0].Type != "duplicate_detection" || issues[0].Line != 3 {
		t.Fatalf("unexpected first issue %+v", issues[0])
	}

	stats := cleaner.GetStats()
	if stats.TotalProcessed != 6 || stats.Passed != 3 || stats.Rejected != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Issues["label_validation"] != 1 || stats.Issues["empty_symptoms"] != 1 {
		t.Fatalf("unexpected issue counts %v", stats.Issues)
	}
	if got := cleaner.GetIssues(1); len(got) != 1 || got[0].Line != 6 {
		t.Fatalf("unexpected latest issue %+v", got)
	}
}

func TestWriteTableLoadsAsSchema(t *testing.T) {
	records, err := ReadRaw(strings.NewReader(rawDataset))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	cleaned, _ := NewDataCleaner(nil).Clean(records)

	path := filepath.Join(t.TempDir(), "data", "clean_dataset.tsv")
	columns, err := WriteTableFile(path, cleaned, "")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	wantColumns := []string{"itching", "skin_rash", "nodal_skin_eruptions", "continuous_sneezing", "shivering", "chills", "dischromic_patches"}
	if !reflect.DeepEqual(columns, wantColumns) {
		t.Fatalf("unexpected columns %v", columns)
	}

	schema, err := ml.LoadSchema(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	if !reflect.DeepEqual(schema.Symptoms, wantColumns) || schema.Label != DefaultLabel {
		t.Fatalf("unexpected schema %+v", schema)
	}
	if !reflect.DeepEqual(schema.Diseases, []string{"Allergy", "Fungal infection", "Psoriasis"}) {
		t.Fatalf("unexpected diseases %v", schema.Diseases)
	}

	samples, err := ml.LoadSamples(path, schema)
	if err != nil {
		t.Fatalf("load samples: %v", err)
	}
	if len(samples.X) != 4 || !reflect.DeepEqual(samples.X[3], ml.FeatureVector{0, 1, 0, 0, 0, 0, 1}) {
		t.Fatalf("unexpected samples %+v", samples)
	}
}

func TestWriteTableRejectsSeparators(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteTable(&buf, []*Record{{Line: 2, Disease: "bad\tname", Symptoms: []string{"itching"}}}, "")
	if err == nil {
		t.Fatal("expected error")
	}
}
