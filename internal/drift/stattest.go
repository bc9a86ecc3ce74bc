package drift

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Names of the two-sample tests applied per column.
const (
	TestKolmogorovSmirnov = "kolmogorov_smirnov"
	TestChiSquared        = "chi_squared"
)

// ksTest runs the two-sample Kolmogorov-Smirnov test. It returns the D
// statistic and the asymptotic p-value. ok is false when the test is not
// computable (an empty sample, or no variation across both samples).
func ksTest(ref, cur []float64) (statistic, pValue float64, ok bool) {
	if len(ref) == 0 || len(cur) == 0 {
		return 0, 0, false
	}
	if isConstantPair(ref, cur) {
		return 0, 0, false
	}

	a := sortedCopy(ref)
	b := sortedCopy(cur)

	// Maximum distance between the two empirical CDFs.
	var d float64
	i, j := 0, 0
	n, m := len(a), len(b)
	for i < n && j < m {
		x := math.Min(a[i], b[j])
		for i < n && a[i] <= x {
			i++
		}
		for j < m && b[j] <= x {
			j++
		}
		diff := math.Abs(float64(i)/float64(n) - float64(j)/float64(m))
		if diff > d {
			d = diff
		}
	}

	en := math.Sqrt(float64(n) * float64(m) / float64(n+m))
	lambda := (en + 0.12 + 0.11/en) * d
	return d, kolmogorovSurvival(lambda), true
}

// kolmogorovSurvival evaluates Q_KS(lambda), the asymptotic tail
// probability of the Kolmogorov distribution.
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	var sum float64
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j)*float64(j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// chiSquaredTest runs the two-sample chi-squared homogeneity test over the
// categories observed in either sample. ok is false when fewer than two
// categories exist (no degrees of freedom).
func chiSquaredTest(ref, cur []float64) (statistic, pValue float64, ok bool) {
	if len(ref) == 0 || len(cur) == 0 {
		return 0, 0, false
	}

	refCounts := countValues(ref)
	curCounts := countValues(cur)

	categories := make(map[float64]bool, len(refCounts)+len(curCounts))
	for v := range refCounts {
		categories[v] = true
	}
	for v := range curCounts {
		categories[v] = true
	}
	if len(categories) < 2 {
		return 0, 0, false
	}

	nRef := float64(len(ref))
	nCur := float64(len(cur))
	total := nRef + nCur

	var stat float64
	for v := range categories {
		colTotal := float64(refCounts[v] + curCounts[v])

		expRef := nRef * colTotal / total
		expCur := nCur * colTotal / total
		dRef := float64(refCounts[v]) - expRef
		dCur := float64(curCounts[v]) - expCur
		stat += dRef * dRef / expRef
		stat += dCur * dCur / expCur
	}

	df := float64(len(categories) - 1)
	chi := distuv.ChiSquared{K: df}
	return stat, chi.Survival(stat), true
}

// distinctCount returns the number of distinct values in a column.
func distinctCount(values []float64) int {
	seen := make(map[float64]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}

func countValues(values []float64) map[float64]int {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	return counts
}

func isConstantPair(a, b []float64) bool {
	first := a[0]
	for _, v := range a {
		if v != first {
			return false
		}
	}
	for _, v := range b {
		if v != first {
			return false
		}
	}
	return true
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
