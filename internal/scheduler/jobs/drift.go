package jobs

import (
	"context"

	"github.com/akenfack/creditrisk/internal/drift"
	"github.com/akenfack/creditrisk/internal/engine"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// Publisher receives every freshly computed drift report, e.g. the
// dashboard live feed.
type Publisher interface {
	Publish(report *drift.Report)
}

// DriftRecompute periodically re-runs the population drift pipeline and
// publishes the report.
type DriftRecompute struct {
	engine    *engine.Engine
	publisher Publisher
	schedule  string
	logger    *logger.Logger
}

// NewDriftRecompute creates the drift recomputation job. publisher may be
// nil when nothing consumes live reports.
func NewDriftRecompute(eng *engine.Engine, publisher Publisher, schedule string, log *logger.Logger) *DriftRecompute {
	return &DriftRecompute{
		engine:    eng,
		publisher: publisher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *DriftRecompute) Name() string {
	return "drift-recompute"
}

// Schedule returns the cron schedule expression
func (j *DriftRecompute) Schedule() string {
	return j.schedule
}

// Run recomputes the drift report and pushes it to subscribers
func (j *DriftRecompute) Run(ctx context.Context) error {
	report, err := j.engine.RunDriftReport()
	if err != nil {
		return err
	}

	if j.publisher != nil {
		j.publisher.Publish(report)
	}

	return nil
}
