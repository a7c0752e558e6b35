// Package reference reads the disease description and precaution tables.
// Tables are read in full on every load; callers decide whether to keep them.
package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"diseasepredict/textutil"
)

const (
	DiseaseColumn     = "Disease"
	DescriptionColumn = "Description"
	PrecautionPattern = "Precaution"

	// MaxPrecautions is how many precaution columns are consumed.
	MaxPrecautions = 4
)

var (
	ErrEmptyTable    = errors.New("table is empty")
	ErrMissingColumn = errors.New("missing column")
)

type table struct {
	header []string
	rows   [][]string
}

func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, err := parseTable(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// parseTable reads a comma-separated table and strips every cell.
func parseTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(textutil.NewReader(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := stripAll(records[0])
	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := stripAll(record)
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return &table{header: header, rows: rows}, nil
}

func stripAll(record []string) []string {
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = textutil.Strip(cell)
	}
	return out
}

func (t *table) column(name string) (int, error) {
	for i, h := range t.header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrMissingColumn, name)
}

// firstRow returns the first row whose disease cell matches disease.
func (t *table) firstRow(diseaseIdx int, disease string) ([]string, bool) {
	key := textutil.NormalizeKey(disease)
	for _, row := range t.rows {
		if textutil.NormalizeKey(row[diseaseIdx]) == key {
			return row, true
		}
	}
	return nil, false
}

// DescriptionTable maps diseases to free-text descriptions.
type DescriptionTable struct {
	t              *table
	diseaseIdx     int
	descriptionIdx int
}

// LoadDescriptions reads a table with at least Disease and Description columns.
func LoadDescriptions(path string) (*DescriptionTable, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return newDescriptionTable(t, path)
}

// ReadDescriptions is LoadDescriptions over an arbitrary reader.
func ReadDescriptions(r io.Reader) (*DescriptionTable, error) {
	t, err := parseTable(r)
	if err != nil {
		return nil, err
	}
	return newDescriptionTable(t, "descriptions")
}

func newDescriptionTable(t *table, name string) (*DescriptionTable, error) {
	diseaseIdx, err := t.column(DiseaseColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	descriptionIdx, err := t.column(DescriptionColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &DescriptionTable{t: t, diseaseIdx: diseaseIdx, descriptionIdx: descriptionIdx}, nil
}

// Lookup returns the description on the first row for disease. A row whose
// description cell is blank counts as missing.
func (d *DescriptionTable) Lookup(disease string) (string, bool) {
	row, ok := d.t.firstRow(d.diseaseIdx, disease)
	if !ok || row[d.descriptionIdx] == "" {
		return "", false
	}
	return row[d.descriptionIdx], true
}

func (d *DescriptionTable) Len() int {
	return len(d.t.rows)
}

// PrecautionTable maps diseases to their precaution columns.
type PrecautionTable struct {
	t          *table
	diseaseIdx int
	columns    []int
}

// LoadPrecautions reads a table with a Disease column and one or more columns
// whose header contains "Precaution". Only the first MaxPrecautions of those
// are used.
func LoadPrecautions(path string) (*PrecautionTable, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return newPrecautionTable(t, path)
}

// ReadPrecautions is LoadPrecautions over an arbitrary reader.
func ReadPrecautions(r io.Reader) (*PrecautionTable, error) {
	t, err := parseTable(r)
	if err != nil {
		return nil, err
	}
	return newPrecautionTable(t, "precautions")
}

func newPrecautionTable(t *table, name string) (*PrecautionTable, error) {
	diseaseIdx, err := t.column(DiseaseColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var columns []int
	for i, h := range t.header {
		if strings.Contains(h, PrecautionPattern) {
			columns = append(columns, i)
		}
		if len(columns) == MaxPrecautions {
			break
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s: %w matching %q", name, ErrMissingColumn, PrecautionPattern)
	}
	return &PrecautionTable{t: t, diseaseIdx: diseaseIdx, columns: columns}, nil
}

// Columns returns the precaution column headers in use.
func (p *PrecautionTable) Columns() []string {
	out := make([]string, len(p.columns))
	for i, idx := range p.columns {
		out[i] = p.t.header[idx]
	}
	return out
}

// Lookup returns the non-empty precautions on the first row for disease, in
// column order.
func (p *PrecautionTable) Lookup(disease string) ([]string, bool) {
	row, ok := p.t.firstRow(p.diseaseIdx, disease)
	if !ok {
		return nil, false
	}
	precautions := make([]string, 0, len(p.columns))
	for _, idx := range p.columns {
		if row[idx] == "" {
			continue
		}
		precautions = append(precautions, row[idx])
	}
	return precautions, true
}
