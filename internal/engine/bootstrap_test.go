package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akenfack/creditrisk/pkg/config"
	"github.com/akenfack/creditrisk/pkg/logger"
)

const bootstrapSnapshot = `SK_ID_CURR,TARGET,AMT_CREDIT,AMT_ANNUITY
100,0,0.0,0.0
101,1,1.0,
102,0,0.1,0.5
`

const bootstrapModel = `{
	"features": ["AMT_CREDIT", "AMT_ANNUITY"],
	"base_score": 0,
	"trees": [{
		"split_feature": [0, 0, 0],
		"threshold": [0.5, 0, 0],
		"left": [1, -1, -1],
		"right": [2, -1, -1],
		"value": [0, -2, 2],
		"cover": [10, 5, 5]
	}]
}`

func writeArtifacts(t *testing.T, snapshot, model string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	snapshotPath := filepath.Join(dir, "test_df.csv")
	require.NoError(t, os.WriteFile(snapshotPath, []byte(snapshot), 0o644))
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(model), 0o644))

	return &config.Config{
		Data: config.DataConfig{
			SnapshotPath: snapshotPath,
			ModelPath:    modelPath,
		},
		Sampling: config.SamplingConfig{
			GlobalExplainSize: 2,
			GlobalExplainSeed: 42,
		},
		Similarity: config.SimilarityConfig{DefaultK: 2},
	}
}

func TestBootstrap(t *testing.T) {
	cfg := writeArtifacts(t, bootstrapSnapshot, bootstrapModel)

	eng, err := Bootstrap(cfg, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []int{100, 101, 102}, eng.ListClientIDs())
	assert.Equal(t, []string{"AMT_CREDIT", "AMT_ANNUITY"}, eng.ListFeatures())

	// The missing annuity of client 101 was imputed with the column median.
	record, err := eng.GetClient(101)
	require.NoError(t, err)
	assert.Equal(t, 0.25, record.Values["AMT_ANNUITY"])

	prediction, err := eng.GetPrediction(101)
	require.NoError(t, err)
	assert.Equal(t, 1, prediction.Prediction)

	// No drift snapshots configured.
	_, err = eng.GetDriftReport()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestBootstrap_MissingSnapshot(t *testing.T) {
	cfg := writeArtifacts(t, bootstrapSnapshot, bootstrapModel)
	cfg.Data.SnapshotPath = filepath.Join(t.TempDir(), "nope.csv")

	_, err := Bootstrap(cfg, logger.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatalInit))
}

func TestBootstrap_CatalogMismatch(t *testing.T) {
	model := `{
		"features": ["AMT_ANNUITY", "AMT_CREDIT"],
		"base_score": 0,
		"trees": [{
			"split_feature": [0],
			"threshold": [0],
			"left": [-1],
			"right": [-1],
			"value": [0.5],
			"cover": [10]
		}]
	}`
	cfg := writeArtifacts(t, bootstrapSnapshot, model)

	_, err := Bootstrap(cfg, logger.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatalInit))
	assert.Contains(t, err.Error(), "model expects")
}

func TestBootstrap_WithDriftSnapshots(t *testing.T) {
	cfg := writeArtifacts(t, bootstrapSnapshot, bootstrapModel)
	cfg.Data.ReferencePath = cfg.Data.SnapshotPath
	cfg.Data.CurrentPath = cfg.Data.SnapshotPath
	cfg.Drift.SampleFraction = 1.0
	cfg.Drift.PValueThreshold = 0.05
	cfg.Drift.DatasetThreshold = 0.5

	eng, err := Bootstrap(cfg, logger.NewNop())
	require.NoError(t, err)

	report, err := eng.GetDriftReport()
	require.NoError(t, err)
	assert.False(t, report.DatasetDrift, "identical snapshots must not drift")
}
