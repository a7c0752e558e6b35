package predictor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"diseasepredict/ml"
)

// RankedDisease is one entry of a prediction's probability ranking.
type RankedDisease struct {
	Disease     string  `json:"disease"`
	Probability float64 `json:"probability"`
}

// Prediction is the result of one classifier run.
type Prediction struct {
	Disease     string          `json:"disease"`
	Probability float64         `json:"probability"`
	ClassIndex  int             `json:"class_index"`
	Ranked      []RankedDisease `json:"ranked"`
	Symptoms    []string        `json:"symptoms,omitempty"`
	At          time.Time       `json:"at"`
}

// Session carries the last prediction for one user. Sessions are cheap and
// independent; concurrent sessions never see each other's predictions.
type Session struct {
	id      string
	p       *Predictor
	created time.Time

	mu   sync.Mutex
	last *Prediction
}

// NewSession starts a session with a random ID.
func (p *Predictor) NewSession() *Session {
	return p.SessionWithID(uuid.NewString())
}

// SessionWithID starts a session with a caller-chosen ID.
func (p *Predictor) SessionWithID(id string) *Session {
	return &Session{id: id, p: p, created: time.Now()}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Created() time.Time {
	return s.created
}

// Last returns the most recent prediction, if any.
func (s *Session) Last() (Prediction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Prediction{}, false
	}
	return *s.last, true
}

// Predict runs the classifier on features and records the result as the
// session's last prediction.
func (s *Session) Predict(ctx context.Context, features ml.FeatureVector) (Prediction, error) {
	return s.predict(ctx, features, nil)
}

// PredictSymptoms encodes symptoms and predicts. The encoding is returned so
// callers can report unknown symptom names.
func (s *Session) PredictSymptoms(ctx context.Context, symptoms []string) (Prediction, ml.Encoding, error) {
	enc := s.p.encoder.Encode(symptoms)
	pred, err := s.predict(ctx, enc.Vector, enc.Matched)
	return pred, enc, err
}

func (s *Session) predict(ctx context.Context, features ml.FeatureVector, matched []string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	p := s.p
	if len(features) != p.schema.Width() {
		return Prediction{}, fmt.Errorf("%w: got %d, want %d", ErrFeatureWidth, len(features), p.schema.Width())
	}

	model := p.model.Load()
	if model == nil {
		return Prediction{}, ErrNoModel
	}
	probs, err := model.PredictProba(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	idx, err := ml.Argmax(probs)
	if err != nil {
		return Prediction{}, err
	}
	if idx >= len(p.schema.Diseases) {
		return Prediction{}, fmt.Errorf("%w: class %d, catalog size %d", ErrClassOutOfRange, idx, len(p.schema.Diseases))
	}

	pred := Prediction{
		Disease:     p.schema.Diseases[idx],
		Probability: probs[idx],
		ClassIndex:  idx,
		Ranked:      p.rank(probs),
		Symptoms:    matched,
		At:          time.Now(),
	}

	s.mu.Lock()
	last := pred
	s.last = &last
	s.mu.Unlock()

	return pred, nil
}

func (p *Predictor) rank(probs []float64) []RankedDisease {
	ranked := ml.Rank(probs, p.topK)
	out := make([]RankedDisease, 0, len(ranked))
	for _, r := range ranked {
		if r.Class >= len(p.schema.Diseases) {
			continue
		}
		out = append(out, RankedDisease{Disease: p.schema.Diseases[r.Class], Probability: r.Probability})
	}
	return out
}

// DescribeLast describes the session's last predicted disease.
func (s *Session) DescribeLast() (DescriptionResult, error) {
	last, ok := s.Last()
	if !ok {
		return DescriptionResult{Status: StatusNoPrediction, Text: NoPredictionMessage}, nil
	}
	return s.p.Describe(last.Disease)
}

// PrecautionsLast lists precautions for the session's last predicted disease.
func (s *Session) PrecautionsLast() (PrecautionsResult, error) {
	last, ok := s.Last()
	if !ok {
		return PrecautionsResult{Status: StatusNoPrediction, Precautions: []string{}, Message: NoPredictionMessage}, nil
	}
	return s.p.Precautions(last.Disease)
}
