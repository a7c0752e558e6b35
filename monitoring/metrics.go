package monitoring

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics collects prediction service counters.
type Metrics struct {
	mu sync.RWMutex

	predictions     int64
	failures        int64
	unknownSymptoms int64
	modelReloads    int64
	latencySum      time.Duration
	byDisease       map[string]int64

	startTime time.Time
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Predictions     int64            `json:"predictions"`
	Failures        int64            `json:"failures"`
	UnknownSymptoms int64            `json:"unknown_symptoms"`
	ModelReloads    int64            `json:"model_reloads"`
	AverageLatency  float64          `json:"average_latency_ms"`
	ByDisease       map[string]int64 `json:"by_disease"`
	Uptime          string           `json:"uptime"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		byDisease: make(map[string]int64),
		startTime: time.Now(),
	}
}

// RecordPrediction counts one successful prediction.
func (m *Metrics) RecordPrediction(disease string, unknown int, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.predictions++
	m.unknownSymptoms += int64(unknown)
	m.latencySum += latency
	m.byDisease[disease]++
}

func (m *Metrics) RecordFailure() {
	m.mu.Lock()
	m.failures++
	m.mu.Unlock()
}

func (m *Metrics) RecordModelReload() {
	m.mu.Lock()
	m.modelReloads++
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDisease := make(map[string]int64, len(m.byDisease))
	for disease, count := range m.byDisease {
		byDisease[disease] = count
	}
	snapshot := MetricsSnapshot{
		Predictions:     m.predictions,
		Failures:        m.failures,
		UnknownSymptoms: m.unknownSymptoms,
		ModelReloads:    m.modelReloads,
		ByDisease:       byDisease,
		Uptime:          time.Since(m.startTime).Round(time.Second).String(),
	}
	if m.predictions > 0 {
		snapshot.AverageLatency = float64(m.latencySum.Microseconds()) / 1000 / float64(m.predictions)
	}
	return snapshot
}

// ExportPrometheus writes the counters in Prometheus text format.
func (m *Metrics) ExportPrometheus(w io.Writer) error {
	s := m.Snapshot()

	var b strings.Builder
	writeMetric(&b, "diseasepredict_predictions_total", "counter", "Predictions served", float64(s.Predictions))
	writeMetric(&b, "diseasepredict_prediction_failures_total", "counter", "Predictions that returned an error", float64(s.Failures))
	writeMetric(&b, "diseasepredict_unknown_symptoms_total", "counter", "Symptom names not in the schema", float64(s.UnknownSymptoms))
	writeMetric(&b, "diseasepredict_model_reloads_total", "counter", "Successful model reloads", float64(s.ModelReloads))
	writeMetric(&b, "diseasepredict_prediction_latency_ms", "gauge", "Average prediction latency", s.AverageLatency)

	diseases := make([]string, 0, len(s.ByDisease))
	for disease := range s.ByDisease {
		diseases = append(diseases, disease)
	}
	sort.Strings(diseases)
	if len(diseases) > 0 {
		b.WriteString("# HELP diseasepredict_predictions_by_disease Predictions per predicted disease\n")
		b.WriteString("# TYPE diseasepredict_predictions_by_disease counter\n")
		for _, disease := range diseases {
			fmt.Fprintf(&b, "diseasepredict_predictions_by_disease{disease=%q} %d\n", disease, s.ByDisease[disease])
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMetric(b *strings.Builder, name, kind, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(b, "%s %g\n", name, value)
}
