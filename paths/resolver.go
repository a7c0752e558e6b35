// Package paths locates data and model artifacts across deployment roots.
package paths

import (
	"os"
	"path/filepath"
)

// Resolver probes an ordered list of root directories for relative paths.
type Resolver struct {
	roots []string
}

// Resolution is the outcome of a lookup. When Found is false, Path holds the
// unresolved input so that a later read fails with an ordinary I/O error.
type Resolution struct {
	Path  string
	Found bool
	Tried []string
}

// New creates a Resolver. Empty roots are dropped; with no roots at all the
// working directory is probed.
func New(roots ...string) *Resolver {
	cleaned := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(root))
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, ".")
	}
	return &Resolver{roots: cleaned}
}

// Roots returns a copy of the configured search roots.
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Resolve returns the first root/rel that exists.
func (r *Resolver) Resolve(rel string) Resolution {
	return r.probe(rel, exists)
}

// ResolveDir returns the first root/rel whose parent directory exists. Used
// for artifacts that may be created or replaced in place, such as model files.
func (r *Resolver) ResolveDir(rel string) Resolution {
	return r.probe(rel, func(path string) bool {
		return isDir(filepath.Dir(path))
	})
}

func (r *Resolver) probe(rel string, ok func(string) bool) Resolution {
	if filepath.IsAbs(rel) {
		return Resolution{Path: rel, Found: ok(rel), Tried: []string{rel}}
	}

	tried := make([]string, 0, len(r.roots))
	for _, root := range r.roots {
		candidate := filepath.Join(root, rel)
		tried = append(tried, candidate)
		if ok(candidate) {
			return Resolution{Path: candidate, Found: true, Tried: tried}
		}
	}
	return Resolution{Path: rel, Found: false, Tried: tried}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
