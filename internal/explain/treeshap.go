package explain

import (
	"github.com/akenfack/creditrisk/internal/model"
)

// Exact per-feature attribution for tree ensembles (the polynomial-time
// Tree SHAP algorithm). For each tree, decision paths are walked while
// maintaining the proportion of feature subsets flowing hot (feature known)
// and cold (feature unknown) through every split; the resulting weights give
// each feature's exact Shapley contribution. Contributions over all trees
// plus the ensemble's expected raw score sum to the raw score for the input.

// pathElem is one entry of the unique-feature decision path.
type pathElem struct {
	featureIndex int
	zeroFraction float64
	oneFraction  float64
	pweight      float64
}

// shapValues accumulates the attribution of every tree into phi,
// indexed by model feature position.
func shapValues(e *model.Ensemble, x []float64) []float64 {
	phi := make([]float64, e.NumFeatures())
	for i := range e.Trees {
		treeShap(&e.Trees[i], x, phi)
	}
	return phi
}

func treeShap(t *model.Tree, x []float64, phi []float64) {
	recurse(t, x, phi, 0, nil, 1, 1, -1)
}

func recurse(t *model.Tree, x []float64, phi []float64, node int, parent []pathElem, pz, po float64, pfi int) {
	path := extend(parent, pz, po, pfi)

	if t.IsLeaf(node) {
		for i := 1; i < len(path); i++ {
			w := unwoundSum(path, i)
			el := path[i]
			phi[el.featureIndex] += w * (el.oneFraction - el.zeroFraction) * t.Value[node]
		}
		return
	}

	feature := t.SplitFeature[node]
	hot, cold := t.Left[node], t.Right[node]
	if x[feature] > t.Threshold[node] {
		hot, cold = cold, hot
	}

	incomingZero, incomingOne := 1.0, 1.0
	// A feature split on twice along one path keeps a single path entry.
	for i := 1; i < len(path); i++ {
		if path[i].featureIndex == feature {
			incomingZero = path[i].zeroFraction
			incomingOne = path[i].oneFraction
			path = unwind(path, i)
			break
		}
	}

	hotZero := t.Cover[hot] / t.Cover[node] * incomingZero
	coldZero := t.Cover[cold] / t.Cover[node] * incomingZero

	recurse(t, x, phi, hot, path, hotZero, incomingOne, feature)
	recurse(t, x, phi, cold, path, coldZero, 0, feature)
}

// extend grows a copy of the path with a new split and redistributes the
// subset permutation weights.
func extend(parent []pathElem, pz, po float64, pfi int) []pathElem {
	l := len(parent)
	path := make([]pathElem, l+1)
	copy(path, parent)

	w := 0.0
	if l == 0 {
		w = 1.0
	}
	path[l] = pathElem{featureIndex: pfi, zeroFraction: pz, oneFraction: po, pweight: w}

	for i := l - 1; i >= 0; i-- {
		path[i+1].pweight += po * path[i].pweight * float64(i+1) / float64(l+1)
		path[i].pweight = pz * path[i].pweight * float64(l-i) / float64(l+1)
	}
	return path
}

// unwind removes the path entry at i, restoring the weights to the state
// before that split was extended. Mutates and shrinks path in place.
func unwind(path []pathElem, i int) []pathElem {
	l := len(path) - 1
	po := path[i].oneFraction
	pz := path[i].zeroFraction

	n := path[l].pweight
	for j := l - 1; j >= 0; j-- {
		if po != 0 {
			tmp := path[j].pweight
			path[j].pweight = n * float64(l+1) / (float64(j+1) * po)
			n = tmp - path[j].pweight*pz*float64(l-j)/float64(l+1)
		} else {
			path[j].pweight = path[j].pweight * float64(l+1) / (pz * float64(l-j))
		}
	}
	for j := i; j < l; j++ {
		path[j].featureIndex = path[j+1].featureIndex
		path[j].zeroFraction = path[j+1].zeroFraction
		path[j].oneFraction = path[j+1].oneFraction
	}
	return path[:l]
}

// unwoundSum computes the total permutation weight of the path with entry i
// removed, without mutating the path.
func unwoundSum(path []pathElem, i int) float64 {
	l := len(path) - 1
	po := path[i].oneFraction
	pz := path[i].zeroFraction

	total := 0.0
	n := path[l].pweight
	for j := l - 1; j >= 0; j-- {
		if po != 0 {
			t := n * float64(l+1) / (float64(j+1) * po)
			total += t
			n = path[j].pweight - t*pz*float64(l-j)/float64(l+1)
		} else {
			total += path[j].pweight * float64(l+1) / (pz * float64(l-j))
		}
	}
	return total
}
