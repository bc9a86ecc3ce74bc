package dataset

import (
	"fmt"
	"math"
	"sort"
)

// Imputer replaces missing values with the per-column median of the
// non-missing values, the same strategy the scoring dataset was prepared
// with. Fit parameters are frozen after FitTransform.
type Imputer struct {
	medians map[string]float64
}

// NewImputer creates an unfitted imputer.
func NewImputer() *Imputer {
	return &Imputer{medians: make(map[string]float64)}
}

// FitTransform computes each column's median over non-missing values and
// replaces every missing value in place. A column with no observed values
// has no defined median; that is a broken snapshot and fails loudly.
func (im *Imputer) FitTransform(f *Frame) error {
	for colIdx, name := range f.columns {
		observed := make([]float64, 0, len(f.rows))
		missing := false
		for _, row := range f.rows {
			if math.IsNaN(row[colIdx]) {
				missing = true
				continue
			}
			observed = append(observed, row[colIdx])
		}

		if !missing {
			continue
		}
		if len(observed) == 0 {
			return fmt.Errorf("column %q has no observed values to impute from", name)
		}

		m := median(observed)
		im.medians[name] = m
		for _, row := range f.rows {
			if math.IsNaN(row[colIdx]) {
				row[colIdx] = m
			}
		}
	}
	return nil
}

// Medians returns the fitted fill values keyed by column name.
// Columns without missing values are absent.
func (im *Imputer) Medians() map[string]float64 {
	return im.medians
}

// median computes the sample median (mean of the two middle values for an
// even count, matching the numpy convention).
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
