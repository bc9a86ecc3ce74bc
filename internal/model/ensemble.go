package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Tree is one regression tree of the ensemble, encoded as parallel node
// arrays. A node is a leaf when Left is negative; otherwise a value
// <= Threshold routes to Left, else to Right. Cover is the number of
// training samples that reached the node, which the attribution engine
// needs to weigh decision paths.
type Tree struct {
	SplitFeature []int     `json:"split_feature"`
	Threshold    []float64 `json:"threshold"`
	Left         []int     `json:"left"`
	Right        []int     `json:"right"`
	Value        []float64 `json:"value"`
	Cover        []float64 `json:"cover"`
}

// Ensemble is a pretrained gradient-boosted binary classifier. The summed
// raw score maps through a sigmoid to the probability of class 1 (default).
// Immutable after load; safe for concurrent use.
type Ensemble struct {
	Features  []string `json:"features"`
	BaseScore float64  `json:"base_score"`
	Trees     []Tree   `json:"trees"`
}

// Load reads a serialized model artifact.
func Load(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var e Ensemble
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}

	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &e, nil
}

// Validate checks structural consistency of the ensemble.
func (e *Ensemble) Validate() error {
	if len(e.Features) == 0 {
		return fmt.Errorf("no features")
	}
	if len(e.Trees) == 0 {
		return fmt.Errorf("no trees")
	}

	for ti := range e.Trees {
		t := &e.Trees[ti]
		n := len(t.SplitFeature)
		if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n ||
			len(t.Value) != n || len(t.Cover) != n {
			return fmt.Errorf("tree %d: inconsistent node array lengths", ti)
		}
		if n == 0 {
			return fmt.Errorf("tree %d: empty", ti)
		}
		for node := 0; node < n; node++ {
			if t.Left[node] < 0 {
				continue // leaf
			}
			if t.Left[node] >= n || t.Right[node] < 0 || t.Right[node] >= n {
				return fmt.Errorf("tree %d node %d: child out of range", ti, node)
			}
			if t.SplitFeature[node] < 0 || t.SplitFeature[node] >= len(e.Features) {
				return fmt.Errorf("tree %d node %d: split feature out of range", ti, node)
			}
			if t.Cover[node] <= 0 {
				return fmt.Errorf("tree %d node %d: non-positive cover", ti, node)
			}
		}
	}
	return nil
}

// NumFeatures returns the width of the expected feature vector.
func (e *Ensemble) NumFeatures() int {
	return len(e.Features)
}

// IsLeaf reports whether the node is a leaf.
func (t *Tree) IsLeaf(node int) bool {
	return t.Left[node] < 0
}

// Predict walks the tree for one feature vector.
func (t *Tree) Predict(x []float64) float64 {
	node := 0
	for !t.IsLeaf(node) {
		if x[t.SplitFeature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

// ExpectedValue returns the cover-weighted mean output of the tree, the
// model's output over the training population with no features known.
func (t *Tree) ExpectedValue() float64 {
	return t.expectedValue(0)
}

func (t *Tree) expectedValue(node int) float64 {
	if t.IsLeaf(node) {
		return t.Value[node]
	}
	l, r := t.Left[node], t.Right[node]
	return (t.Cover[l]*t.expectedValue(l) + t.Cover[r]*t.expectedValue(r)) / t.Cover[node]
}

// RawScore returns the summed raw (log-odds) score for a feature vector.
func (e *Ensemble) RawScore(x []float64) (float64, error) {
	if len(x) != len(e.Features) {
		return 0, fmt.Errorf("feature vector has %d values, model expects %d", len(x), len(e.Features))
	}
	score := e.BaseScore
	for i := range e.Trees {
		score += e.Trees[i].Predict(x)
	}
	return score, nil
}

// PredictProbability returns the probability assigned to the solvent class
// (class 0).
func (e *Ensemble) PredictProbability(x []float64) (float64, error) {
	raw, err := e.RawScore(x)
	if err != nil {
		return 0, err
	}
	return 1 - sigmoid(raw), nil
}

// PredictLabel returns the binary label: 0 solvent, 1 at risk of default.
// The decision boundary is the model's native 0.5 probability cut, i.e. the
// sign of the raw score.
func (e *Ensemble) PredictLabel(x []float64) (int, error) {
	raw, err := e.RawScore(x)
	if err != nil {
		return 0, err
	}
	if sigmoid(raw) > 0.5 {
		return 1, nil
	}
	return 0, nil
}

// ExpectedRawScore returns the baseline raw score: the base score plus every
// tree's cover-weighted mean output.
func (e *Ensemble) ExpectedRawScore() float64 {
	expected := e.BaseScore
	for i := range e.Trees {
		expected += e.Trees[i].ExpectedValue()
	}
	return expected
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
