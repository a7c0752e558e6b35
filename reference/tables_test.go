package reference_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"diseasepredict/ml/mltest"
	"diseasepredict/reference"
)

func TestLoadDescriptions(t *testing.T) {
	f := mltest.Write(t, t.TempDir())
	table, err := reference.LoadDescriptions(f.Descriptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		disease string
		want    string
		found   bool
	}{
		{"Fungal infection", "In humans, fungal infections occur when an invading fungus takes over an area of the body.", true},
		{"  Fungal infection", "In humans, fungal infections occur when an invading fungus takes over an area of the body.", true},
		{"Allergy", "An allergy is an immune system response to a foreign substance.", true},
		{"Malaria", "", false},
	}
	for _, tt := range tests {
		got, ok := table.Lookup(tt.disease)
		if ok != tt.found || got != tt.want {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.disease, got, ok, tt.want, tt.found)
		}
	}
	if table.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", table.Len())
	}
}

func TestDescriptionBlankCellIsMissing(t *testing.T) {
	table, err := reference.ReadDescriptions(strings.NewReader("Disease,Description\nAllergy,\t \nAllergy,Second row.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := table.Lookup("Allergy"); ok {
		t.Fatalf("expected blank first row to count as missing, got %q", got)
	}
}

func TestReadDescriptionsMissingColumn(t *testing.T) {
	_, err := reference.ReadDescriptions(strings.NewReader("Disease,Summary\nAllergy,x\n"))
	if !errors.Is(err, reference.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if _, err := reference.ReadDescriptions(strings.NewReader("")); !errors.Is(err, reference.ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestLoadPrecautions(t *testing.T) {
	f := mltest.Write(t, t.TempDir())
	table, err := reference.LoadPrecautions(f.Precautions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := table.Lookup("Fungal infection")
	want := []string{"bath twice", "use detol or neem in bathing water", "keep infected area dry", "use clean cloths"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected precautions %v (found=%v)", got, ok)
	}

	got, ok = table.Lookup("Allergy")
	want = []string{"apply calamine", "cover area with bandage", "use ice to compress itching"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("expected empty cell to be dropped, got %v", got)
	}

	if _, ok := table.Lookup("Malaria"); ok {
		t.Fatal("expected miss")
	}
}

func TestPrecautionsUsesFirstFourMatchingColumns(t *testing.T) {
	csv := "Precaution_0,Disease,Notes,Precaution_1,Precaution_2,Precaution_3,Precaution_4\n" +
		"p0,Allergy,ignored,p1,p2,p3,p4\n"
	table, err := reference.ReadPrecautions(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cols := table.Columns(); !reflect.DeepEqual(cols, []string{"Precaution_0", "Precaution_1", "Precaution_2", "Precaution_3"}) {
		t.Fatalf("unexpected columns %v", cols)
	}
	got, _ := table.Lookup("Allergy")
	if len(got) > reference.MaxPrecautions {
		t.Fatalf("expected at most %d precautions, got %d", reference.MaxPrecautions, len(got))
	}
	if !reflect.DeepEqual(got, []string{"p0", "p1", "p2", "p3"}) {
		t.Fatalf("unexpected precautions %v", got)
	}
}

func TestReadPrecautionsWithoutPrecautionColumns(t *testing.T) {
	_, err := reference.ReadPrecautions(strings.NewReader("Disease,Advice\nAllergy,rest\n"))
	if !errors.Is(err, reference.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := reference.LoadDescriptions(filepath.Join(t.TempDir(), "symptom_Description.csv")); err == nil {
		t.Fatal("expected error")
	}
}
