package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLabel names the last column of the training table.
const DefaultLabel = "prognosis"

// Columns returns every symptom in order of first appearance.
func Columns(records []*Record) []string {
	seen := make(map[string]struct{})
	var columns []string
	for _, record := range records {
		for _, symptom := range record.Symptoms {
			if _, ok := seen[symptom]; ok {
				continue
			}
			seen[symptom] = struct{}{}
			columns = append(columns, symptom)
		}
	}
	return columns
}

// WriteTable writes a tab-separated one-hot table with the disease in the
// last column. It returns the symptom columns.
func WriteTable(w io.Writer, records []*Record, label string) ([]string, error) {
	if label == "" {
		label = DefaultLabel
	}
	columns := Columns(records)
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	bw := bufio.NewWriter(w)
	header := append(append([]string(nil), columns...), label)
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return nil, err
	}

	cells := make([]string, len(columns)+1)
	for _, record := range records {
		if strings.ContainsAny(record.Disease, "\t\n") {
			return nil, fmt.Errorf("line %d: disease %q contains a separator", record.Line, record.Disease)
		}
		for i := range columns {
			cells[i] = "0"
		}
		for _, symptom := range record.Symptoms {
			cells[index[symptom]] = "1"
		}
		cells[len(columns)] = record.Disease
		if _, err := bw.WriteString(strings.Join(cells, "\t") + "\n"); err != nil {
			return nil, err
		}
	}
	return columns, bw.Flush()
}

// WriteTableFile writes to a temporary file and renames it into place.
func WriteTableFile(path string, records []*Record, label string) ([]string, error) {
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	columns, err := WriteTable(tmp, records, label)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, err
	}
	return columns, nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
