package similarity

import (
	"math"
	"sort"
	"sync"

	"github.com/akenfack/creditrisk/internal/dataset"
)

// Index finds the clients closest to a query vector under Euclidean
// distance over the full feature catalog.
//
// The default mode measures raw, unnormalized distance for compatibility
// with the original scoring pipeline; large-scale features dominate there.
// The normalized mode z-scores every dimension first and is a documented
// deviation selectable by configuration.
//
// The flat index is built lazily on first query, exactly once, and is
// read-only afterwards.
type Index struct {
	store     *dataset.Store
	normalize bool

	once    sync.Once
	vectors [][]float64
	means   []float64
	stds    []float64
}

// NewIndex creates an index over the feature store.
func NewIndex(store *dataset.Store, normalize bool) *Index {
	return &Index{store: store, normalize: normalize}
}

func (ix *Index) build() {
	n := ix.store.NumClients()
	dim := len(ix.store.Catalog())

	vectors := make([][]float64, n)
	for i := 0; i < n; i++ {
		vectors[i] = ix.store.VectorAt(i)
	}

	if ix.normalize {
		means := make([]float64, dim)
		stds := make([]float64, dim)
		for j := 0; j < dim; j++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += vectors[i][j]
			}
			mean := sum / float64(n)
			var sq float64
			for i := 0; i < n; i++ {
				d := vectors[i][j] - mean
				sq += d * d
			}
			means[j] = mean
			stds[j] = math.Sqrt(sq / float64(n))
		}

		scaled := make([][]float64, n)
		for i := 0; i < n; i++ {
			scaled[i] = scale(vectors[i], means, stds)
		}
		ix.means = means
		ix.stds = stds
		vectors = scaled
	}

	ix.vectors = vectors
}

// NearestRows returns the row positions of the k records closest to the
// query vector, nearest first. The query client's own row is part of the
// scanned population, so it comes back as its own first neighbor with
// distance zero. Ties keep row order.
func (ix *Index) NearestRows(query []float64, k int) []int {
	ix.once.Do(ix.build)

	if ix.normalize {
		query = scale(query, ix.means, ix.stds)
	}

	n := len(ix.vectors)
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	dists := make([]float64, n)
	order := make([]int, n)
	for i, vec := range ix.vectors {
		dists[i] = squaredDistance(query, vec)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})

	return order[:k]
}

func scale(vec, means, stds []float64) []float64 {
	out := make([]float64, len(vec))
	for j, v := range vec {
		if stds[j] > 0 {
			out[j] = (v - means[j]) / stds[j]
		}
	}
	return out
}

// squaredDistance orders identically to Euclidean distance.
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
