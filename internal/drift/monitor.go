package drift

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/akenfack/creditrisk/internal/dataset"
)

// ErrSchemaMismatch is returned when the reference and current snapshots
// disagree on their column sets. No partial report is produced.
var ErrSchemaMismatch = errors.New("reference and current datasets disagree on columns")

// ColumnType is the inferred statistical type of a column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
)

// ColumnResult is the drift verdict for one shared column. Score is the
// p-value of the applied test; it is null when the test was not computable
// for the column, in which case Drifted is always false.
type ColumnResult struct {
	Column  string     `json:"column"`
	Type    ColumnType `json:"type"`
	Score   *float64   `json:"drift_score"`
	Drifted bool       `json:"drift_detected"`
	Test    string     `json:"test"`
}

// Report is the dataset-level drift verdict.
type Report struct {
	RunID          string         `json:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	Columns        []ColumnResult `json:"columns"`
	TestedColumns  int            `json:"tested_columns"`
	DriftedColumns int            `json:"drifted_columns"`
	DriftShare     float64        `json:"drift_share"`
	DatasetDrift   bool           `json:"dataset_drift"`
}

// Config is the drift-detection policy.
type Config struct {
	// PValueThreshold flags a column as drifted when its test p-value
	// falls below it.
	PValueThreshold float64
	// DatasetThreshold flags the dataset when the share of drifted columns
	// exceeds it.
	DatasetThreshold float64
	// CategoricalMaxCardinality: a column whose reference sample has at
	// most this many distinct values is tested as categorical.
	CategoricalMaxCardinality int
	// IgnoredColumns are excluded from testing (identifier/label columns).
	IgnoredColumns []string
}

// DefaultConfig mirrors the thresholds of the monitoring library the
// reference populations were originally checked with: p < 0.05 per column,
// dataset drift past a 50% drifted share.
func DefaultConfig() Config {
	return Config{
		PValueThreshold:           0.05,
		DatasetThreshold:          0.5,
		CategoricalMaxCardinality: 10,
		IgnoredColumns:            dataset.IgnoredColumns,
	}
}

// Monitor compares a frozen reference population against a frozen current
// population column by column. Each Run is independent; the monitor holds
// no mutable state between invocations.
type Monitor struct {
	reference *dataset.Frame
	current   *dataset.Frame
	cfg       Config
}

// New creates a monitor over two frozen snapshots.
func New(reference, current *dataset.Frame, cfg Config) *Monitor {
	return &Monitor{reference: reference, current: current, cfg: cfg}
}

// Run executes the pipeline stages in order: columns aligned, tests run,
// report ready. A schema mismatch fails the whole run; no partial report.
func (m *Monitor) Run() (*Report, error) {
	columns, err := m.alignColumns()
	if err != nil {
		return nil, err
	}
	results := m.runTests(columns)
	return m.assemble(results), nil
}

// alignColumns verifies the two snapshots share a full column set and
// returns the testable columns in reference order.
func (m *Monitor) alignColumns() ([]string, error) {
	refCols := m.reference.Columns()
	curCols := m.current.Columns()

	curSet := make(map[string]bool, len(curCols))
	for _, name := range curCols {
		curSet[name] = true
	}
	for _, name := range refCols {
		if !curSet[name] {
			return nil, fmt.Errorf("%w: column %q missing from current dataset", ErrSchemaMismatch, name)
		}
	}
	refSet := make(map[string]bool, len(refCols))
	for _, name := range refCols {
		refSet[name] = true
	}
	for _, name := range curCols {
		if !refSet[name] {
			return nil, fmt.Errorf("%w: column %q missing from reference dataset", ErrSchemaMismatch, name)
		}
	}

	ignored := make(map[string]bool, len(m.cfg.IgnoredColumns))
	for _, name := range m.cfg.IgnoredColumns {
		ignored[name] = true
	}

	var testable []string
	for _, name := range refCols {
		if !ignored[name] {
			testable = append(testable, name)
		}
	}
	return testable, nil
}

// runTests applies the type-appropriate test to every column. A column
// whose test cannot be computed is reported with a null score instead of
// failing the report.
func (m *Monitor) runTests(columns []string) []ColumnResult {
	results := make([]ColumnResult, 0, len(columns))
	for _, name := range columns {
		refRaw, _ := m.reference.Column(name)
		curRaw, _ := m.current.Column(name)

		// Drift snapshots are raw populations; missing values carry no
		// distributional information and are excluded per column.
		ref := dropMissing(refRaw)
		cur := dropMissing(curRaw)

		colType := ColumnNumeric
		if distinctCount(ref) <= m.cfg.CategoricalMaxCardinality {
			colType = ColumnCategorical
		}

		var p float64
		var ok bool
		var testName string
		if colType == ColumnCategorical {
			testName = TestChiSquared
			_, p, ok = chiSquaredTest(ref, cur)
		} else {
			testName = TestKolmogorovSmirnov
			_, p, ok = ksTest(ref, cur)
		}

		result := ColumnResult{
			Column: name,
			Type:   colType,
			Test:   testName,
		}
		if ok {
			score := p
			result.Score = &score
			result.Drifted = p < m.cfg.PValueThreshold
		}
		results = append(results, result)
	}
	return results
}

func dropMissing(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// assemble computes the dataset-level verdict.
func (m *Monitor) assemble(results []ColumnResult) *Report {
	tested := 0
	drifted := 0
	for _, r := range results {
		if r.Score != nil {
			tested++
		}
		if r.Drifted {
			drifted++
		}
	}

	share := 0.0
	if tested > 0 {
		share = float64(drifted) / float64(tested)
	}

	return &Report{
		RunID:          uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		Columns:        results,
		TestedColumns:  tested,
		DriftedColumns: drifted,
		DriftShare:     share,
		DatasetDrift:   share > m.cfg.DatasetThreshold,
	}
}
