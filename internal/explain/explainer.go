package explain

import (
	"fmt"
	"math"
	"sort"

	"github.com/akenfack/creditrisk/internal/model"
)

// Result is an ordered attribution: values[i] is the contribution of
// features[i] toward the prediction. Baseline is the model's expected raw
// score; for a local result, sum(values)+baseline equals the raw score of
// the explained client.
type Result struct {
	Features []string  `json:"features"`
	Values   []float64 `json:"values"`
	Baseline float64   `json:"baseline"`
}

// TreeExplainer computes exact additive attributions for a tree ensemble.
// Read-only after construction.
type TreeExplainer struct {
	ensemble *model.Ensemble
	baseline float64
}

// NewTreeExplainer builds an explainer over a loaded ensemble.
func NewTreeExplainer(e *model.Ensemble) *TreeExplainer {
	return &TreeExplainer{
		ensemble: e,
		baseline: e.ExpectedRawScore(),
	}
}

// Baseline returns the expected raw score of the model.
func (te *TreeExplainer) Baseline() float64 {
	return te.baseline
}

// Explain returns per-feature contributions for one feature vector, in
// model feature order.
func (te *TreeExplainer) Explain(x []float64) ([]float64, error) {
	if len(x) != te.ensemble.NumFeatures() {
		return nil, fmt.Errorf("feature vector has %d values, model expects %d", len(x), te.ensemble.NumFeatures())
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature %q is not finite", te.ensemble.Features[i])
		}
	}
	return shapValues(te.ensemble, x), nil
}

// MeanAbsolute aggregates a matrix of local attributions into the mean
// absolute contribution per feature.
func MeanAbsolute(attributions [][]float64) []float64 {
	if len(attributions) == 0 {
		return nil
	}
	agg := make([]float64, len(attributions[0]))
	for _, row := range attributions {
		for i, v := range row {
			agg[i] += math.Abs(v)
		}
	}
	for i := range agg {
		agg[i] /= float64(len(attributions))
	}
	return agg
}

// Rank orders an attribution by descending absolute magnitude. The sort is
// stable so ties keep their catalog order and repeated calls are identical.
func Rank(features []string, values []float64) Result {
	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(values[idx[a]]) > math.Abs(values[idx[b]])
	})

	out := Result{
		Features: make([]string, len(features)),
		Values:   make([]float64, len(values)),
	}
	for i, j := range idx {
		out.Features[i] = features[j]
		out.Values[i] = values[j]
	}
	return out
}
