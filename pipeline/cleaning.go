package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"diseasepredict/textutil"
)

// CleaningRule validates or rewrites a record. An error rejects the row.
type CleaningRule interface {
	Apply(*Record) (*Record, error)
	Name() string
}

// QualityIssue describes a rejected row.
type QualityIssue struct {
	Type      string    `json:"type"`
	Severity  string    `json:"severity"` // low, medium, high
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Line      int       `json:"line"`
}

// DataCleaner runs cleaning rules over raw records and keeps stats.
type DataCleaner struct {
	rules      []CleaningRule
	issues     []QualityIssue
	issuesLock sync.RWMutex

	stats     CleaningStats
	statsLock sync.RWMutex

	logger *zap.Logger
}

type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Corrected      int64            `json:"corrected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// NewDataCleaner returns a cleaner with the default rules.
func NewDataCleaner(logger *zap.Logger) *DataCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	cleaner := &DataCleaner{
		rules:  make([]CleaningRule, 0),
		issues: make([]QualityIssue, 0),
		stats: CleaningStats{
			Issues: make(map[string]int64),
		},
		logger: logger,
	}

	cleaner.AddRule(NewLabelValidationRule())
	cleaner.AddRule(NewSymptomNormalizationRule())
	cleaner.AddRule(NewEmptySymptomsRule())

	return cleaner
}

func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
	dc.logger.Debug("added cleaning rule", zap.String("rule", rule.Name()))
}

// Clean applies the rules in order. The first failing rule rejects the row
// and later rules are skipped.
func (dc *DataCleaner) Clean(records []*Record) ([]*Record, []QualityIssue) {
	var cleaned []*Record
	var issues []QualityIssue

	dc.statsLock.Lock()
	defer dc.statsLock.Unlock()

	for _, record := range records {
		dc.stats.TotalProcessed++

		original := *record
		var issue *QualityIssue

		for _, rule := range dc.rules {
			cleanedRecord, err := rule.Apply(record)
			if err != nil {
				issue = &QualityIssue{
					Type:      rule.Name(),
					Severity:  "high",
					Message:   err.Error(),
					Timestamp: time.Now(),
					Line:      record.Line,
				}
				dc.recordIssue(rule.Name())
				break
			}
			if cleanedRecord != nil {
				record = cleanedRecord
			}
		}

		if issue != nil {
			dc.stats.Rejected++
			issues = append(issues, *issue)
			dc.issuesLock.Lock()
			dc.issues = append(dc.issues, *issue)
			dc.issuesLock.Unlock()
			continue
		}
		if !isEqual(&original, record) {
			dc.stats.Corrected++
		}
		dc.stats.Passed++
		cleaned = append(cleaned, record)
	}

	dc.stats.LastClean = time.Now()

	return cleaned, issues
}

func isEqual(a, b *Record) bool {
	if a.Disease != b.Disease || len(a.Symptoms) != len(b.Symptoms) {
		return false
	}
	for i := range a.Symptoms {
		if a.Symptoms[i] != b.Symptoms[i] {
			return false
		}
	}
	return true
}

func (dc *DataCleaner) recordIssue(issueType string) {
	dc.stats.Issues[issueType]++
}

func (dc *DataCleaner) GetStats() CleaningStats {
	dc.statsLock.RLock()
	defer dc.statsLock.RUnlock()

	stats := dc.stats
	stats.Issues = make(map[string]int64, len(dc.stats.Issues))
	for k, v := range dc.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// GetIssues returns up to limit of the most recent issues.
func (dc *DataCleaner) GetIssues(limit int) []QualityIssue {
	dc.issuesLock.RLock()
	defer dc.issuesLock.RUnlock()

	if limit <= 0 || limit > len(dc.issues) {
		limit = len(dc.issues)
	}

	issues := make([]QualityIssue, limit)
	copy(issues, dc.issues[len(dc.issues)-limit:])
	return issues
}

// LabelValidationRule trims the disease name and rejects empty ones.
type LabelValidationRule struct{}

func NewLabelValidationRule() *LabelValidationRule {
	return &LabelValidationRule{}
}

func (r *LabelValidationRule) Name() string {
	return "label_validation"
}

func (r *LabelValidationRule) Apply(record *Record) (*Record, error) {
	disease := textutil.Strip(record.Disease)
	if disease == "" {
		return nil, errors.New("empty disease label")
	}
	if disease == record.Disease {
		return record, nil
	}
	out := *record
	out.Disease = disease
	return &out, nil
}

// SymptomNormalizationRule lowercases symptoms into snake_case and drops
// repeats within the row.
type SymptomNormalizationRule struct{}

func NewSymptomNormalizationRule() *SymptomNormalizationRule {
	return &SymptomNormalizationRule{}
}

func (r *SymptomNormalizationRule) Name() string {
	return "symptom_normalization"
}

func (r *SymptomNormalizationRule) Apply(record *Record) (*Record, error) {
	seen := make(map[string]struct{}, len(record.Symptoms))
	symptoms := make([]string, 0, len(record.Symptoms))
	for _, raw := range record.Symptoms {
		symptom := collapseUnderscores(textutil.NormalizeSymptom(raw))
		if symptom == "" {
			continue
		}
		if _, ok := seen[symptom]; ok {
			continue
		}
		seen[symptom] = struct{}{}
		symptoms = append(symptoms, symptom)
	}
	out := *record
	out.Symptoms = symptoms
	return &out, nil
}

// "dischromic _patches" normalizes to "dischromic__patches" otherwise.
func collapseUnderscores(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '_' }), "_")
}

// EmptySymptomsRule rejects rows with no symptoms.
type EmptySymptomsRule struct{}

func NewEmptySymptomsRule() *EmptySymptomsRule {
	return &EmptySymptomsRule{}
}

func (r *EmptySymptomsRule) Name() string {
	return "empty_symptoms"
}

func (r *EmptySymptomsRule) Apply(record *Record) (*Record, error) {
	if len(record.Symptoms) == 0 {
		return nil, fmt.Errorf("no symptoms for %q", record.Disease)
	}
	return record, nil
}

// DuplicateDetectionRule keeps only the first row for each disease and
// symptom set.
type DuplicateDetectionRule struct {
	seenMap map[string]int
	mu      sync.Mutex
}

func NewDuplicateDetectionRule() *DuplicateDetectionRule {
	return &DuplicateDetectionRule{
		seenMap: make(map[string]int),
	}
}

func (r *DuplicateDetectionRule) Name() string {
	return "duplicate_detection"
}

func (r *DuplicateDetectionRule) Apply(record *Record) (*Record, error) {
	symptoms := append([]string(nil), record.Symptoms...)
	sort.Strings(symptoms)
	key := record.Disease + "\x00" + strings.Join(symptoms, "\x00")

	r.mu.Lock()
	defer r.mu.Unlock()

	if line, exists := r.seenMap[key]; exists {
		return nil, fmt.Errorf("duplicate of line %d", line)
	}

	r.seenMap[key] = record.Line
	return record, nil
}
