package textutil

import (
	"io"
	"strings"
	"testing"
)

func TestNewReaderDropsBOM(t *testing.T) {
	r := NewReader(strings.NewReader("\ufeffDisease,Description\n"))
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "Disease,Description\n" {
		t.Fatalf("expected BOM to be removed, got %q", string(data))
	}
}

func TestNormalizeSymptom(t *testing.T) {
	cases := map[string]string{
		"skin_rash":    "skin_rash",
		" Skin Rash ":  "skin_rash",
		"ＩＴＣＨＩＮＧ": "itching",
		"":             "",
	}
	for input, want := range cases {
		if got := NormalizeSymptom(input); got != want {
			t.Errorf("NormalizeSymptom(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeKeyKeepsCase(t *testing.T) {
	if got := NormalizeKey("  Fungal infection \t"); got != "Fungal infection" {
		t.Fatalf("unexpected key %q", got)
	}
}
