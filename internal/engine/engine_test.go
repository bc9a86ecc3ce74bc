package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akenfack/creditrisk/internal/dataset"
	"github.com/akenfack/creditrisk/internal/drift"
	"github.com/akenfack/creditrisk/internal/explain"
	"github.com/akenfack/creditrisk/internal/model"
	"github.com/akenfack/creditrisk/internal/similarity"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// newTestEngine wires a four-client store to a single-split model: a first
// feature <= 0.5 scores raw -2 (solvent), above scores raw +2 (at risk).
func newTestEngine(t *testing.T, monitor *drift.Monitor) *Engine {
	t.Helper()

	frame, err := dataset.NewFrame(
		[]string{"SK_ID_CURR", "TARGET", "AMT_CREDIT", "AMT_ANNUITY"},
		[][]float64{
			{100, 0, 0.0, 0.0},
			{101, 1, 1.0, 0.0},
			{102, 0, 0.1, 0.5},
			{103, 0, 0.2, 1.0},
		},
	)
	require.NoError(t, err)
	store, err := dataset.NewStore(frame)
	require.NoError(t, err)

	ensemble := &model.Ensemble{
		Features: []string{"AMT_CREDIT", "AMT_ANNUITY"},
		Trees: []model.Tree{
			{
				SplitFeature: []int{0, 0, 0},
				Threshold:    []float64{0.5, 0, 0},
				Left:         []int{1, -1, -1},
				Right:        []int{2, -1, -1},
				Value:        []float64{0, -2, 2},
				Cover:        []float64{10, 5, 5},
			},
		},
	}
	require.NoError(t, ensemble.Validate())

	opts := Options{DefaultK: 2, GlobalExplainSize: 3, GlobalExplainSeed: 42}
	return New(store, ensemble, explain.NewTreeExplainer(ensemble),
		similarity.NewIndex(store, false), monitor, opts, logger.NewNop())
}

func TestEngine_Listings(t *testing.T) {
	eng := newTestEngine(t, nil)

	assert.Equal(t, []int{100, 101, 102, 103}, eng.ListClientIDs())
	assert.Equal(t, []string{"AMT_CREDIT", "AMT_ANNUITY"}, eng.ListFeatures())
}

func TestEngine_GetClient(t *testing.T) {
	eng := newTestEngine(t, nil)

	record, err := eng.GetClient(101)
	require.NoError(t, err)
	assert.Equal(t, 101, record.ID)
	assert.Equal(t, 1.0, record.Values["AMT_CREDIT"])

	_, err = eng.GetClient(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEngine_GetPrediction(t *testing.T) {
	eng := newTestEngine(t, nil)

	solventProba := math.Round((1-1/(1+math.Exp(2)))*100) / 100

	solvent, err := eng.GetPrediction(100)
	require.NoError(t, err)
	assert.Equal(t, 0, solvent.Prediction)
	assert.Equal(t, solventProba, solvent.Probability)
	assert.Equal(t, "Client solvent with probability 0.88", solvent.Conclusion)

	atRisk, err := eng.GetPrediction(101)
	require.NoError(t, err)
	assert.Equal(t, 1, atRisk.Prediction)
	assert.Equal(t, "Client at risk of default with probability 0.12", atRisk.Conclusion)

	// Decisions are pure functions of frozen state.
	again, err := eng.GetPrediction(100)
	require.NoError(t, err)
	assert.Equal(t, solvent, again)
}

func TestEngine_GetPrediction_NotFound(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, err := eng.GetPrediction(99999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEngine_SampleClients(t *testing.T) {
	eng := newTestEngine(t, nil)

	first, err := eng.SampleClients(2, 7)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := eng.SampleClients(2, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same size and seed must return the same sample")

	_, err = eng.SampleClients(0, 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestEngine_GetLocalExplanation(t *testing.T) {
	eng := newTestEngine(t, nil)

	result, err := eng.GetLocalExplanation(101)
	require.NoError(t, err)
	assert.Equal(t, eng.ListFeatures(), result.Features, "local attribution keeps catalog order")
	require.Len(t, result.Values, 2)

	// Contributions plus baseline reconstruct the raw score (+2 here).
	sum := result.Baseline
	for _, v := range result.Values {
		sum += v
	}
	assert.InDelta(t, 2.0, sum, 1e-9)

	_, err = eng.GetLocalExplanation(-5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEngine_GetGlobalExplanation(t *testing.T) {
	eng := newTestEngine(t, nil)

	first, err := eng.GetGlobalExplanation(0, eng.GlobalExplainSeed())
	require.NoError(t, err)
	require.Len(t, first.Values, 2)

	second, err := eng.GetGlobalExplanation(0, eng.GlobalExplainSeed())
	require.NoError(t, err)
	assert.Equal(t, first, second, "default sample and seed must reproduce the ranking")

	// Ranked by descending magnitude.
	for i := 1; i < len(first.Values); i++ {
		assert.GreaterOrEqual(t, math.Abs(first.Values[i-1]), math.Abs(first.Values[i]))
	}

	_, err = eng.GetGlobalExplanation(-1, 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestEngine_NearestNeighbors(t *testing.T) {
	eng := newTestEngine(t, nil)

	neighbors, err := eng.NearestNeighbors(102, 0)
	require.NoError(t, err)
	require.Len(t, neighbors, 2, "k of zero applies the configured default")
	assert.Equal(t, 102, neighbors[0].ID, "a client is its own first neighbor")

	all, err := eng.NearestNeighbors(102, 100)
	require.NoError(t, err)
	assert.Len(t, all, 4, "k beyond the population is clamped")

	_, err = eng.NearestNeighbors(102, -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = eng.NearestNeighbors(99999, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEngine_DriftNotConfigured(t *testing.T) {
	eng := newTestEngine(t, nil)

	_, err := eng.RunDriftReport()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestEngine_GetDriftReport(t *testing.T) {
	columns := []string{"SK_ID_CURR", "AMT_CREDIT"}
	rows := make([][]float64, 30)
	for i := range rows {
		rows[i] = []float64{float64(100 + i), float64(i)}
	}
	reference, err := dataset.NewFrame(columns, rows)
	require.NoError(t, err)
	current, err := dataset.NewFrame(columns, rows)
	require.NoError(t, err)

	monitor := drift.New(reference, current, drift.DefaultConfig())
	eng := newTestEngine(t, monitor)

	report, err := eng.GetDriftReport()
	require.NoError(t, err)
	assert.False(t, report.DatasetDrift, "identical populations must not drift")

	// The latest report is retained until the next recomputation.
	cached, err := eng.GetDriftReport()
	require.NoError(t, err)
	assert.Equal(t, report.RunID, cached.RunID)

	recomputed, err := eng.RunDriftReport()
	require.NoError(t, err)
	assert.NotEqual(t, report.RunID, recomputed.RunID)
}
