package ml

import (
	"errors"
	"math"
)

// RegressionTree is a single booster tree stored as a flat node array with
// the root at index 0.
type RegressionTree struct {
	nodes []TreeNode
}

type TreeNode struct {
	FeatureIdx  int
	Threshold   float64
	LeftChild   int
	RightChild  int
	DefaultLeft bool
	Value       float64
	IsLeaf      bool
}

func NewRegressionTree(nodes []TreeNode) *RegressionTree {
	return &RegressionTree{nodes: nodes}
}

// Leaf walks the tree and returns the value of the leaf reached. A feature
// goes left when it is strictly below the threshold; NaN follows the node's
// default direction.
func (t *RegressionTree) Leaf(features []float64) (float64, error) {
	if len(t.nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	for steps := 0; steps <= len(t.nodes); steps++ {
		node := t.nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		value := features[node.FeatureIdx]
		switch {
		case math.IsNaN(value):
			if node.DefaultLeft {
				idx = node.LeftChild
			} else {
				idx = node.RightChild
			}
		case value < node.Threshold:
			idx = node.LeftChild
		default:
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *RegressionTree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.depth(0, 0)
}

func (t *RegressionTree) depth(idx, guard int) int {
	if guard > len(t.nodes) || idx < 0 || idx >= len(t.nodes) {
		return 0
	}
	node := t.nodes[idx]
	if node.IsLeaf {
		return 0
	}
	left := t.depth(node.LeftChild, guard+1)
	right := t.depth(node.RightChild, guard+1)
	if left > right {
		return left + 1
	}
	return right + 1
}
