package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"diseasepredict/textutil"
)

// LabelColumn names the disease column of the raw dataset.
const LabelColumn = "Disease"

var ErrNoLabelColumn = errors.New("raw dataset has no Disease column")

// Record is one raw dataset row.
type Record struct {
	Line     int      `json:"line"`
	Disease  string   `json:"disease"`
	Symptoms []string `json:"symptoms"`
}

func LoadRaw(path string) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ReadRaw(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// ReadRaw reads the wide raw dataset: a Disease column followed by
// Symptom_1..Symptom_17 cells holding one symptom name each. Empty cells are
// skipped.
func ReadRaw(r io.Reader) ([]*Record, error) {
	reader := csv.NewReader(textutil.NewReader(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoLabelColumn
	}
	if err != nil {
		return nil, err
	}

	labelIdx := -1
	for i, name := range header {
		if strings.EqualFold(textutil.Strip(name), LabelColumn) {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, ErrNoLabelColumn
	}

	var records []*Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= labelIdx {
			continue
		}
		record := &Record{Line: line, Disease: row[labelIdx]}
		for i, cell := range row {
			if i != labelIdx && cell != "" {
				record.Symptoms = append(record.Symptoms, cell)
			}
		}
		records = append(records, record)
	}
	return records, nil
}
