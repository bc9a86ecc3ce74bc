package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/akenfack/creditrisk/internal/dataset"
	"github.com/akenfack/creditrisk/internal/drift"
	"github.com/akenfack/creditrisk/internal/explain"
	"github.com/akenfack/creditrisk/internal/similarity"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// Classifier is the prediction capability of a pretrained binary model.
// A label of 0 means solvent, 1 means at risk of default; the probability
// is the one assigned to the solvent class. The decision boundary is owned
// by the model, never re-derived here.
type Classifier interface {
	RawScore(x []float64) (float64, error)
	PredictProbability(x []float64) (float64, error)
	PredictLabel(x []float64) (int, error)
}

// Attributor is the feature-attribution capability over the same model.
// Explain returns one contribution per model feature; contributions plus
// Baseline sum to the model's raw score for the input.
type Attributor interface {
	Explain(x []float64) ([]float64, error)
	Baseline() float64
}

// Prediction is the solvency decision for one client.
type Prediction struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
	Conclusion  string  `json:"conclusion"`
}

// Options carries the request-independent analytics policy.
type Options struct {
	DefaultK          int
	GlobalExplainSize int
	GlobalExplainSeed int64
}

// Engine is the analytical core: prediction, explanation, similarity search
// and drift monitoring over an immutable feature store. All state is frozen
// at construction, so every method is safe for unsynchronized concurrent
// use and every result is a pure function of the store and the model.
type Engine struct {
	store      *dataset.Store
	classifier Classifier
	attributor Attributor
	index      *similarity.Index
	monitor    *drift.Monitor
	opts       Options
	log        *logger.Logger

	driftMu     sync.RWMutex
	latestDrift *drift.Report
}

// New assembles an engine from initialized components. The drift monitor
// may be nil when no drift snapshots are configured.
func New(store *dataset.Store, classifier Classifier, attributor Attributor,
	index *similarity.Index, monitor *drift.Monitor, opts Options, log *logger.Logger) *Engine {
	if opts.DefaultK <= 0 {
		opts.DefaultK = 10
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		attributor: attributor,
		index:      index,
		monitor:    monitor,
		opts:       opts,
		log:        log,
	}
}

// ListClientIDs returns every client identifier in snapshot order.
func (e *Engine) ListClientIDs() []int {
	return e.store.ClientIDs()
}

// ListFeatures returns the ordered feature catalog.
func (e *Engine) ListFeatures() []string {
	return e.store.Catalog()
}

// GetClient returns the full record of one client.
func (e *Engine) GetClient(clientID int) (dataset.ClientRecord, error) {
	record, ok := e.store.Record(clientID)
	if !ok {
		return dataset.ClientRecord{}, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}
	return record, nil
}

// SampleClients draws a reproducible sample of n client records; the same
// n and seed always produce the same sample.
func (e *Engine) SampleClients(n int, seed int64) ([]dataset.ClientRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidArgument, n)
	}
	return e.store.SampleRecords(n, seed), nil
}

// GetPrediction scores one client. The probability reported is the solvent
// class probability rounded half-away-from-zero to two decimals; the
// conclusion restates the decision in words for the review dashboard.
func (e *Engine) GetPrediction(clientID int) (Prediction, error) {
	vec, ok := e.store.FeatureVector(clientID)
	if !ok {
		return Prediction{}, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}

	label, err := e.classifier.PredictLabel(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: client %d: %v", ErrPredictor, clientID, err)
	}
	proba, err := e.classifier.PredictProbability(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: client %d: %v", ErrPredictor, clientID, err)
	}

	rounded := round2(proba)
	conclusion := fmt.Sprintf("Client at risk of default with probability %.2f", rounded)
	if label == 0 {
		conclusion = fmt.Sprintf("Client solvent with probability %.2f", rounded)
	}

	return Prediction{
		Prediction:  label,
		Probability: rounded,
		Conclusion:  conclusion,
	}, nil
}

// GetLocalExplanation returns per-feature attribution for one client's
// prediction, aligned positionally with the feature catalog.
func (e *Engine) GetLocalExplanation(clientID int) (explain.Result, error) {
	vec, ok := e.store.FeatureVector(clientID)
	if !ok {
		return explain.Result{}, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}

	values, err := e.attributor.Explain(vec)
	if err != nil {
		return explain.Result{}, fmt.Errorf("%w: client %d: %v", ErrExplainer, clientID, err)
	}

	return explain.Result{
		Features: e.store.Catalog(),
		Values:   values,
		Baseline: e.attributor.Baseline(),
	}, nil
}

// GetGlobalExplanation computes mean absolute attribution per feature over
// a seeded subsample, ranked by descending magnitude with catalog-order
// tie-breaks. A sampleSize of 0 uses the configured default.
func (e *Engine) GetGlobalExplanation(sampleSize int, seed int64) (explain.Result, error) {
	if sampleSize < 0 {
		return explain.Result{}, fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidArgument, sampleSize)
	}
	if sampleSize == 0 {
		sampleSize = e.opts.GlobalExplainSize
	}

	rows := e.store.SampleRows(sampleSize, seed)
	attributions := make([][]float64, 0, len(rows))
	for _, row := range rows {
		values, err := e.attributor.Explain(e.store.VectorAt(row))
		if err != nil {
			return explain.Result{}, fmt.Errorf("%w: row %d: %v", ErrExplainer, row, err)
		}
		attributions = append(attributions, values)
	}

	agg := explain.MeanAbsolute(attributions)
	result := explain.Rank(e.store.Catalog(), agg)
	result.Baseline = e.attributor.Baseline()
	return result, nil
}

// GlobalExplainSeed returns the configured default seed for global
// explanations.
func (e *Engine) GlobalExplainSeed() int64 {
	return e.opts.GlobalExplainSeed
}

// NearestNeighbors returns the k records most similar to the client over
// the full feature space, nearest first. The client itself is part of the
// searched population and comes back as its own first neighbor. A k of 0
// uses the configured default; k larger than the population is clamped.
func (e *Engine) NearestNeighbors(clientID, k int) ([]dataset.ClientRecord, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if k == 0 {
		k = e.opts.DefaultK
	}

	vec, ok := e.store.FeatureVector(clientID)
	if !ok {
		return nil, fmt.Errorf("%w: client %d", ErrNotFound, clientID)
	}

	rows := e.index.NearestRows(vec, k)
	records := make([]dataset.ClientRecord, len(rows))
	for i, row := range rows {
		records[i] = e.store.RecordAt(row)
	}
	return records, nil
}

// RunDriftReport recomputes the population drift report and retains it as
// the latest.
func (e *Engine) RunDriftReport() (*drift.Report, error) {
	if e.monitor == nil {
		return nil, fmt.Errorf("%w: drift snapshots are not configured", ErrInvalidArgument)
	}

	report, err := e.monitor.Run()
	if err != nil {
		return nil, err
	}

	e.driftMu.Lock()
	e.latestDrift = report
	e.driftMu.Unlock()

	e.log.WithFields(map[string]interface{}{
		"run_id":          report.RunID,
		"tested_columns":  report.TestedColumns,
		"drifted_columns": report.DriftedColumns,
		"dataset_drift":   report.DatasetDrift,
	}).Info("Drift report computed")

	return report, nil
}

// GetDriftReport returns the latest drift report, computing one first if
// none exists yet.
func (e *Engine) GetDriftReport() (*drift.Report, error) {
	e.driftMu.RLock()
	latest := e.latestDrift
	e.driftMu.RUnlock()

	if latest != nil {
		return latest, nil
	}
	return e.RunDriftReport()
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
