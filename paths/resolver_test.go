package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveFirstExistingRootWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	third := t.TempDir()
	writeFile(t, filepath.Join(second, "data", "clean_dataset.tsv"))
	writeFile(t, filepath.Join(third, "data", "clean_dataset.tsv"))

	r := New(first, second, third)
	res := r.Resolve("data/clean_dataset.tsv")
	if !res.Found {
		t.Fatalf("expected file to be found, tried %v", res.Tried)
	}
	want := filepath.Join(second, "data", "clean_dataset.tsv")
	if res.Path != want {
		t.Fatalf("expected %s, got %s", want, res.Path)
	}
	if len(res.Tried) != 2 {
		t.Fatalf("expected probing to stop at second root, tried %v", res.Tried)
	}
}

func TestResolveMissReturnsRelativePath(t *testing.T) {
	r := New(t.TempDir(), t.TempDir())
	res := r.Resolve("data/symptom_Description.csv")
	if res.Found {
		t.Fatal("expected miss")
	}
	if res.Path != "data/symptom_Description.csv" {
		t.Fatalf("expected unresolved relative path, got %s", res.Path)
	}
	if len(res.Tried) != 2 {
		t.Fatalf("expected every root to be tried, got %v", res.Tried)
	}
	if _, err := os.Open(res.Path); err == nil {
		t.Fatal("expected downstream read to fail")
	}
}

func TestResolveDirAcceptsExistingParent(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "model"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := New(t.TempDir(), root)
	if res := r.Resolve("model/xgboost_model.json"); res.Found {
		t.Fatal("file does not exist yet, Resolve should miss")
	}
	res := r.ResolveDir("model/xgboost_model.json")
	if !res.Found {
		t.Fatalf("expected parent dir match, tried %v", res.Tried)
	}
	if res.Path != filepath.Join(root, "model", "xgboost_model.json") {
		t.Fatalf("unexpected path %s", res.Path)
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeFile(t, path)

	res := New("nowhere").Resolve(path)
	if !res.Found || res.Path != path {
		t.Fatalf("expected absolute path to resolve to itself, got %+v", res)
	}
}

func TestNewDefaultsToWorkingDirectory(t *testing.T) {
	r := New("", "")
	roots := r.Roots()
	if len(roots) != 1 || roots[0] != "." {
		t.Fatalf("expected [.], got %v", roots)
	}
}
