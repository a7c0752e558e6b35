// Package predictor maps symptom sets to diseases and looks up their
// descriptions and precautions.
package predictor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"diseasepredict/ml"
	"diseasepredict/paths"
	"diseasepredict/reference"
	"diseasepredict/textutil"
)

const (
	NotContemplatedMessage = "That disease is not contemplated in this model"
	NoPredictionMessage    = "No predicted disease yet"

	DefaultTopK = 5
)

var (
	ErrFeatureWidth    = errors.New("feature vector width does not match symptom schema")
	ErrClassOutOfRange = errors.New("predicted class is not in the disease catalog")
	ErrNoModel         = errors.New("no model loaded")
)

// Status tells a lookup hit apart from the expected kinds of miss.
type Status string

const (
	StatusFound           Status = "found"
	StatusNotContemplated Status = "not_contemplated"
	StatusNoEntry         Status = "no_entry"
	StatusNoPrediction    Status = "no_prediction"
)

// DescriptionResult is the outcome of a description lookup. Text holds the
// description when Status is StatusFound and the user-facing message otherwise.
type DescriptionResult struct {
	Disease string `json:"disease,omitempty"`
	Status  Status `json:"status"`
	Text    string `json:"text"`
}

func (r DescriptionResult) Found() bool {
	return r.Status == StatusFound
}

// PrecautionsResult is the outcome of a precaution lookup.
type PrecautionsResult struct {
	Disease     string   `json:"disease,omitempty"`
	Status      Status   `json:"status"`
	Precautions []string `json:"precautions"`
	Message     string   `json:"message,omitempty"`
}

func (r PrecautionsResult) Found() bool {
	return r.Status == StatusFound
}

// Options configures where the reference tables live and how predictions
// are reported.
type Options struct {
	Resolver         *paths.Resolver
	DescriptionsPath string
	PrecautionsPath  string
	TopK             int
	Logger           *zap.Logger
}

// Predictor holds everything that is shared between sessions. It is not
// modified after New returns, apart from model swaps through its holder.
type Predictor struct {
	model    *ml.ModelHolder
	schema   ml.Schema
	encoder  *ml.Encoder
	catalog  map[string]int
	resolver *paths.Resolver
	descPath string
	precPath string
	topK     int
	logger   *zap.Logger
}

// New checks that the model matches schema and builds a Predictor.
func New(schema ml.Schema, model *ml.ModelHolder, opts Options) (*Predictor, error) {
	if schema.Width() == 0 {
		return nil, ml.ErrEmptySchema
	}
	if model == nil || model.Load() == nil {
		return nil, ErrNoModel
	}
	if err := ml.CheckCompatibility(model.Load(), schema); err != nil {
		return nil, err
	}

	if opts.Resolver == nil {
		opts.Resolver = paths.New(".")
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	catalog := make(map[string]int, len(schema.Diseases))
	for i, disease := range schema.Diseases {
		key := textutil.NormalizeKey(disease)
		if _, ok := catalog[key]; !ok {
			catalog[key] = i
		}
	}

	return &Predictor{
		model:    model,
		schema:   schema,
		encoder:  ml.NewEncoder(schema),
		catalog:  catalog,
		resolver: opts.Resolver,
		descPath: opts.DescriptionsPath,
		precPath: opts.PrecautionsPath,
		topK:     opts.TopK,
		logger:   opts.Logger,
	}, nil
}

func (p *Predictor) Schema() ml.Schema {
	return p.schema
}

// Symptoms returns the schema columns in feature order.
func (p *Predictor) Symptoms() []string {
	return append([]string(nil), p.schema.Symptoms...)
}

// Diseases returns the catalog in class order.
func (p *Predictor) Diseases() []string {
	return append([]string(nil), p.schema.Diseases...)
}

func (p *Predictor) Encoder() *ml.Encoder {
	return p.encoder
}

func (p *Predictor) Model() *ml.ModelHolder {
	return p.model
}

// Contemplated reports whether disease is in the catalog.
func (p *Predictor) Contemplated(disease string) bool {
	_, ok := p.catalog[textutil.NormalizeKey(disease)]
	return ok
}

// Describe returns the description of disease. The table is read from disk
// on every call.
func (p *Predictor) Describe(disease string) (DescriptionResult, error) {
	if !p.Contemplated(disease) {
		return DescriptionResult{Disease: disease, Status: StatusNotContemplated, Text: NotContemplatedMessage}, nil
	}

	table, err := reference.LoadDescriptions(p.resolve(p.descPath))
	if err != nil {
		return DescriptionResult{}, fmt.Errorf("load descriptions: %w", err)
	}
	text, ok := table.Lookup(disease)
	if !ok {
		p.logger.Warn("disease has no description", zap.String("disease", disease))
		return DescriptionResult{Disease: disease, Status: StatusNoEntry}, nil
	}
	return DescriptionResult{Disease: disease, Status: StatusFound, Text: text}, nil
}

// Precautions returns up to four precautions for disease. The table is read
// from disk on every call.
func (p *Predictor) Precautions(disease string) (PrecautionsResult, error) {
	if !p.Contemplated(disease) {
		return PrecautionsResult{Disease: disease, Status: StatusNotContemplated, Message: NotContemplatedMessage}, nil
	}

	table, err := reference.LoadPrecautions(p.resolve(p.precPath))
	if err != nil {
		return PrecautionsResult{}, fmt.Errorf("load precautions: %w", err)
	}
	precautions, ok := table.Lookup(disease)
	if !ok {
		p.logger.Warn("disease has no precautions", zap.String("disease", disease))
		return PrecautionsResult{Disease: disease, Status: StatusNoEntry, Precautions: []string{}}, nil
	}
	return PrecautionsResult{Disease: disease, Status: StatusFound, Precautions: precautions}, nil
}

func (p *Predictor) resolve(rel string) string {
	res := p.resolver.Resolve(rel)
	if !res.Found {
		p.logger.Warn("could not find file", zap.String("path", rel), zap.Strings("tried", res.Tried))
	}
	return res.Path
}
