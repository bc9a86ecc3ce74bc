package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akenfack/creditrisk/internal/dataset"
	"github.com/akenfack/creditrisk/internal/drift"
	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/internal/explain"
	"github.com/akenfack/creditrisk/internal/model"
	"github.com/akenfack/creditrisk/internal/similarity"
	"github.com/akenfack/creditrisk/pkg/logger"
)

type capturingPublisher struct {
	reports []*drift.Report
}

func (p *capturingPublisher) Publish(report *drift.Report) {
	p.reports = append(p.reports, report)
}

func newDriftEngine(t *testing.T, monitor *drift.Monitor) *engine.Engine {
	t.Helper()

	frame, err := dataset.NewFrame(
		[]string{"SK_ID_CURR", "AMT_CREDIT"},
		[][]float64{{100, 0.1}, {101, 0.9}},
	)
	require.NoError(t, err)
	store, err := dataset.NewStore(frame)
	require.NoError(t, err)

	ensemble := &model.Ensemble{
		Features: []string{"AMT_CREDIT"},
		Trees: []model.Tree{
			{
				SplitFeature: []int{0, 0, 0},
				Threshold:    []float64{0.5, 0, 0},
				Left:         []int{1, -1, -1},
				Right:        []int{2, -1, -1},
				Value:        []float64{0, -1, 1},
				Cover:        []float64{10, 5, 5},
			},
		},
	}

	return engine.New(store, ensemble, explain.NewTreeExplainer(ensemble),
		similarity.NewIndex(store, false), monitor, engine.Options{}, logger.NewNop())
}

func newMonitor(t *testing.T) *drift.Monitor {
	t.Helper()
	columns := []string{"SK_ID_CURR", "AMT_CREDIT"}
	rows := make([][]float64, 30)
	for i := range rows {
		rows[i] = []float64{float64(100 + i), float64(i)}
	}
	reference, err := dataset.NewFrame(columns, rows)
	require.NoError(t, err)
	current, err := dataset.NewFrame(columns, rows)
	require.NoError(t, err)
	return drift.New(reference, current, drift.DefaultConfig())
}

func TestDriftRecompute_Run(t *testing.T) {
	eng := newDriftEngine(t, newMonitor(t))
	publisher := &capturingPublisher{}
	job := NewDriftRecompute(eng, publisher, "0 0 * * * *", logger.NewNop())

	assert.Equal(t, "drift-recompute", job.Name())
	assert.Equal(t, "0 0 * * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, publisher.reports, 1)
	assert.False(t, publisher.reports[0].DatasetDrift)

	// Each run publishes a fresh report.
	require.NoError(t, job.Run(context.Background()))
	require.Len(t, publisher.reports, 2)
	assert.NotEqual(t, publisher.reports[0].RunID, publisher.reports[1].RunID)
}

func TestDriftRecompute_NoPublisher(t *testing.T) {
	eng := newDriftEngine(t, newMonitor(t))
	job := NewDriftRecompute(eng, nil, "0 0 * * * *", logger.NewNop())

	assert.NoError(t, job.Run(context.Background()))
}

func TestDriftRecompute_NotConfigured(t *testing.T) {
	eng := newDriftEngine(t, nil)
	job := NewDriftRecompute(eng, &capturingPublisher{}, "0 0 * * * *", logger.NewNop())

	assert.Error(t, job.Run(context.Background()))
}
