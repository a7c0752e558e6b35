package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	ObjectiveMultiSoftprob  = "multi:softprob"
	ObjectiveMultiSoftmax   = "multi:softmax"
	ObjectiveBinaryLogistic = "binary:logistic"
)

// XGBoostModel evaluates a gbtree booster saved with XGBoost's JSON model
// format (Booster.save_model("model.json")).
type XGBoostModel struct {
	doc         XGBDocument
	trees       []*RegressionTree
	treeGroup   []int
	treeLimit   int
	groups      int
	numClass    int
	numFeature  int
	objective   string
	baseMargins []float64
}

// XGBDocument mirrors the subset of the JSON model schema needed for
// inference. Saving writes this subset back.
type XGBDocument struct {
	Learner XGBLearner `json:"learner"`
	Version []int      `json:"version,omitempty"`
}

type XGBLearner struct {
	Attributes        map[string]string `json:"attributes,omitempty"`
	FeatureNames      []string          `json:"feature_names,omitempty"`
	FeatureTypes      []string          `json:"feature_types,omitempty"`
	GradientBooster   XGBBooster        `json:"gradient_booster"`
	LearnerModelParam XGBParams         `json:"learner_model_param"`
	Objective         XGBObjective      `json:"objective"`
}

type XGBBooster struct {
	Name  string      `json:"name"`
	Model XGBTreeList `json:"model"`
}

type XGBTreeList struct {
	Param           XGBParams `json:"gbtree_model_param"`
	Trees           []XGBTree `json:"trees"`
	TreeInfo        []int     `json:"tree_info"`
	IterationIndptr []int     `json:"iteration_indptr,omitempty"`
}

type XGBTree struct {
	ID              int       `json:"id"`
	LeftChildren    []int     `json:"left_children"`
	RightChildren   []int     `json:"right_children"`
	SplitIndices    []int     `json:"split_indices"`
	SplitConditions []float64 `json:"split_conditions"`
	DefaultLeft     FlexBools `json:"default_left"`
	BaseWeights     []float64 `json:"base_weights,omitempty"`
	TreeParam       XGBParams `json:"tree_param"`
}

type XGBObjective struct {
	Name string `json:"name"`
}

// XGBParams holds XGBoost's string-encoded parameters. Some writers emit
// plain numbers instead, so both are accepted.
type XGBParams map[string]string

func (p *XGBParams) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(XGBParams, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			out[key] = s
			continue
		}
		out[key] = string(bytes.TrimSpace(value))
	}
	*p = out
	return nil
}

// FlexBools decodes arrays written either as booleans or as 0/1 integers.
type FlexBools []bool

func (b *FlexBools) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FlexBools, len(raw))
	for i, value := range raw {
		switch strings.TrimSpace(string(value)) {
		case "true", "1":
			out[i] = true
		case "false", "0":
			out[i] = false
		default:
			return fmt.Errorf("invalid boolean %s at index %d", value, i)
		}
	}
	*b = out
	return nil
}

// LoadXGBoost reads and compiles a JSON model file.
func LoadXGBoost(path string) (*XGBoostModel, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	model, err := ParseXGBoost(payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return model, nil
}

// ParseXGBoost compiles a JSON model document.
func ParseXGBoost(payload []byte) (*XGBoostModel, error) {
	var doc XGBDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	return NewXGBoostModel(doc)
}

// NewXGBoostModel validates doc and builds the evaluation trees.
func NewXGBoostModel(doc XGBDocument) (*XGBoostModel, error) {
	learner := doc.Learner
	if name := learner.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("%w: booster %s", ErrUnsupportedModel, name)
	}

	params := learner.LearnerModelParam
	numClass, err := paramInt(params, "num_class")
	if err != nil {
		return nil, err
	}
	numFeature, err := paramInt(params, "num_feature")
	if err != nil {
		return nil, err
	}
	baseScores, err := paramBaseScore(params)
	if err != nil {
		return nil, err
	}

	m := &XGBoostModel{
		doc:        doc,
		numFeature: numFeature,
		objective:  learner.Objective.Name,
	}
	switch m.objective {
	case ObjectiveMultiSoftprob, ObjectiveMultiSoftmax:
		if numClass < 2 {
			return nil, fmt.Errorf("objective %s requires num_class >= 2, got %d", m.objective, numClass)
		}
		m.groups = numClass
		m.numClass = numClass
	case ObjectiveBinaryLogistic:
		m.groups = 1
		m.numClass = 2
		for i := range baseScores {
			baseScores[i] = Logit(baseScores[i])
		}
	default:
		return nil, fmt.Errorf("%w: objective %q", ErrUnsupportedModel, m.objective)
	}

	switch len(baseScores) {
	case 1:
		m.baseMargins = make([]float64, m.groups)
		for i := range m.baseMargins {
			m.baseMargins[i] = baseScores[0]
		}
	case m.groups:
		m.baseMargins = baseScores
	default:
		return nil, fmt.Errorf("base_score has %d entries for %d class groups", len(baseScores), m.groups)
	}

	treeList := learner.GradientBooster.Model
	if len(treeList.Trees) == 0 {
		return nil, errors.New("model has no trees")
	}
	if len(treeList.TreeInfo) != 0 && len(treeList.TreeInfo) != len(treeList.Trees) {
		return nil, fmt.Errorf("tree_info has %d entries for %d trees", len(treeList.TreeInfo), len(treeList.Trees))
	}

	m.trees = make([]*RegressionTree, len(treeList.Trees))
	m.treeGroup = make([]int, len(treeList.Trees))
	for i, tree := range treeList.Trees {
		compiled, err := compileTree(tree)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		group := 0
		if len(treeList.TreeInfo) != 0 {
			group = treeList.TreeInfo[i]
		}
		if group < 0 || group >= m.groups {
			return nil, fmt.Errorf("tree %d: class group %d out of range", i, group)
		}
		m.trees[i] = compiled
		m.treeGroup[i] = group
	}

	m.treeLimit, err = bestTreeLimit(learner, m.groups)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// bestTreeLimit returns how many leading trees take part in prediction. A
// model saved after early stopping records best_iteration, and only the
// rounds up to and including it are used.
func bestTreeLimit(learner XGBLearner, groups int) (int, error) {
	treeList := learner.GradientBooster.Model
	total := len(treeList.Trees)

	raw, ok := learner.Attributes["best_iteration"]
	if !ok || strings.TrimSpace(raw) == "" {
		return total, nil
	}
	best, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || best < 0 {
		return 0, fmt.Errorf("invalid best_iteration %q", raw)
	}

	var limit int
	if indptr := treeList.IterationIndptr; len(indptr) > best+1 {
		limit = indptr[best+1]
	} else {
		parallel, err := paramInt(treeList.Param, "num_parallel_tree")
		if err != nil {
			return 0, err
		}
		if parallel < 1 {
			parallel = 1
		}
		limit = (best + 1) * groups * parallel
	}
	if limit <= 0 || limit > total {
		return total, nil
	}
	return limit, nil
}

func compileTree(tree XGBTree) (*RegressionTree, error) {
	n := len(tree.LeftChildren)
	if n == 0 {
		return nil, errors.New("no nodes")
	}
	if len(tree.RightChildren) != n || len(tree.SplitIndices) != n || len(tree.SplitConditions) != n {
		return nil, errors.New("node arrays have different lengths")
	}
	if len(tree.DefaultLeft) != 0 && len(tree.DefaultLeft) != n {
		return nil, errors.New("default_left length mismatch")
	}

	nodes := make([]TreeNode, n)
	for i := 0; i < n; i++ {
		if tree.LeftChildren[i] == -1 {
			nodes[i] = TreeNode{
				FeatureIdx: -1,
				LeftChild:  -1,
				RightChild: -1,
				Value:      tree.SplitConditions[i],
				IsLeaf:     true,
			}
			continue
		}
		defaultLeft := false
		if len(tree.DefaultLeft) != 0 {
			defaultLeft = tree.DefaultLeft[i]
		}
		nodes[i] = TreeNode{
			FeatureIdx:  tree.SplitIndices[i],
			Threshold:   tree.SplitConditions[i],
			LeftChild:   tree.LeftChildren[i],
			RightChild:  tree.RightChildren[i],
			DefaultLeft: defaultLeft,
		}
	}
	return NewRegressionTree(nodes), nil
}

// PredictProba sums the tree outputs per class group and applies the
// objective's link function.
func (m *XGBoostModel) PredictProba(features []float64) ([]float64, error) {
	if m.numFeature > 0 && len(features) != m.numFeature {
		return nil, fmt.Errorf("expected %d features, got %d", m.numFeature, len(features))
	}

	margins := append([]float64(nil), m.baseMargins...)
	for i, tree := range m.trees[:m.treeLimit] {
		leaf, err := tree.Leaf(features)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		margins[m.treeGroup[i]] += leaf
	}

	if m.objective == ObjectiveBinaryLogistic {
		p := Sigmoid(margins[0])
		return []float64{1 - p, p}, nil
	}
	return Softmax(margins), nil
}

func (m *XGBoostModel) NumClasses() int {
	return m.numClass
}

func (m *XGBoostModel) NumFeatures() int {
	return m.numFeature
}

func (m *XGBoostModel) FeatureNames() []string {
	return append([]string(nil), m.doc.Learner.FeatureNames...)
}

func (m *XGBoostModel) Objective() string {
	return m.objective
}

func (m *XGBoostModel) NumTrees() int {
	return len(m.trees)
}

// ActiveTrees is the number of trees used for prediction, which is smaller
// than NumTrees when the model records a best iteration.
func (m *XGBoostModel) ActiveTrees() int {
	return m.treeLimit
}

// Save writes the model document as JSON.
func (m *XGBoostModel) Save(path string) error {
	payload, err := json.Marshal(m.doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func paramInt(params XGBParams, key string) (int, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return int(f), nil
}

// paramBaseScore reads base_score, which newer XGBoost releases write as a
// bracketed vector ("[5E-1]"), with one entry per class for multi-class
// models.
func paramBaseScore(params XGBParams) ([]float64, error) {
	raw := strings.Trim(strings.TrimSpace(params["base_score"]), "[]")
	if strings.TrimSpace(raw) == "" {
		return []float64{0.5}, nil
	}
	parts := strings.Split(raw, ",")
	scores := make([]float64, len(parts))
	for i, part := range parts {
		score, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid base_score %q: %w", params["base_score"], err)
		}
		scores[i] = score
	}
	return scores, nil
}
