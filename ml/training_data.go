package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"diseasepredict/textutil"
)

var (
	ErrEmptySchema    = errors.New("training table has no symptom columns")
	ErrSchemaMismatch = errors.New("model does not match symptom schema")
)

// Schema describes the training table the classifier was fitted on.
// Symptoms fixes the position of every feature; Diseases is index-aligned
// with the classifier's output classes.
type Schema struct {
	Symptoms []string
	Label    string
	Diseases []string
}

func (s Schema) Width() int {
	return len(s.Symptoms)
}

// LoadSchema reads the tab-separated training table. All columns but the last
// are symptoms and the last is the disease label. The catalog is the sorted
// set of distinct labels, which is the class order a categorical encoding of
// the label column produces.
func LoadSchema(path string) (Schema, error) {
	file, err := os.Open(path)
	if err != nil {
		return Schema{}, err
	}
	defer file.Close()

	schema, err := ReadSchema(file)
	if err != nil {
		return Schema{}, fmt.Errorf("read %s: %w", path, err)
	}
	return schema, nil
}

// ReadSchema is LoadSchema over an arbitrary reader.
func ReadSchema(r io.Reader) (Schema, error) {
	reader := csv.NewReader(textutil.NewReader(r))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return Schema{}, ErrEmptySchema
	}
	if err != nil {
		return Schema{}, err
	}
	if len(header) < 2 {
		return Schema{}, ErrEmptySchema
	}

	labelIdx := len(header) - 1
	schema := Schema{
		Symptoms: append([]string(nil), header[:labelIdx]...),
		Label:    header[labelIdx],
	}

	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Schema{}, err
		}
		if len(record) <= labelIdx {
			continue
		}
		label := record[labelIdx]
		if strings.TrimSpace(label) == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		schema.Diseases = append(schema.Diseases, label)
	}
	sort.Strings(schema.Diseases)
	return schema, nil
}

// CheckCompatibility reports whether c was trained against schema. Feature
// names, feature count and class count are compared when the model records
// them; a model that records nothing is accepted.
func CheckCompatibility(c Classifier, schema Schema) error {
	if n := c.NumFeatures(); n > 0 && n != schema.Width() {
		return fmt.Errorf("%w: model expects %d features, schema has %d", ErrSchemaMismatch, n, schema.Width())
	}
	if names := c.FeatureNames(); len(names) > 0 {
		if len(names) != schema.Width() {
			return fmt.Errorf("%w: model has %d feature names, schema has %d", ErrSchemaMismatch, len(names), schema.Width())
		}
		for i, name := range names {
			if name != schema.Symptoms[i] {
				return fmt.Errorf("%w: feature %d is %q in the model and %q in the schema", ErrSchemaMismatch, i, name, schema.Symptoms[i])
			}
		}
	}
	if k := c.NumClasses(); k > 0 && k != len(schema.Diseases) {
		return fmt.Errorf("%w: model has %d classes, catalog has %d diseases", ErrSchemaMismatch, k, len(schema.Diseases))
	}
	return nil
}

// Samples is the training table as feature vectors and class indices.
type Samples struct {
	X []FeatureVector
	Y []int
}

// LoadSamples reads the rows of the training table. Symptom cells are parsed
// as numbers with empty cells read as 0; labels map to their index in
// schema.Diseases. Rows with an unknown or empty label are skipped.
func LoadSamples(path string, schema Schema) (Samples, error) {
	file, err := os.Open(path)
	if err != nil {
		return Samples{}, err
	}
	defer file.Close()

	reader := csv.NewReader(textutil.NewReader(file))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return Samples{}, ErrEmptySchema
		}
		return Samples{}, err
	}

	classes := make(map[string]int, len(schema.Diseases))
	for i, disease := range schema.Diseases {
		classes[disease] = i
	}

	var samples Samples
	width := schema.Width()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Samples{}, err
		}
		if len(record) <= width {
			continue
		}
		class, ok := classes[record[width]]
		if !ok {
			continue
		}
		vector := make(FeatureVector, width)
		for i := 0; i < width; i++ {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Samples{}, fmt.Errorf("line %d column %q: %w", line, schema.Symptoms[i], err)
			}
			vector[i] = v
		}
		samples.X = append(samples.X, vector)
		samples.Y = append(samples.Y, class)
	}
	return samples, nil
}
