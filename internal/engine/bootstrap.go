package engine

import (
	"fmt"

	"github.com/akenfack/creditrisk/internal/dataset"
	"github.com/akenfack/creditrisk/internal/drift"
	"github.com/akenfack/creditrisk/internal/explain"
	"github.com/akenfack/creditrisk/internal/model"
	"github.com/akenfack/creditrisk/internal/similarity"
	"github.com/akenfack/creditrisk/pkg/config"
	"github.com/akenfack/creditrisk/pkg/logger"
)

// Bootstrap performs the ordered startup sequence: load the scoring
// snapshot, impute it, index the feature store, load the model, build the
// explainer and similarity index, and freeze the drift snapshots. Any
// failure wraps ErrFatalInit; a partially initialized engine is never
// returned.
func Bootstrap(cfg *config.Config, log *logger.Logger) (*Engine, error) {
	frame, err := dataset.LoadFrame(cfg.Data.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("%w: scoring snapshot: %v", ErrFatalInit, err)
	}

	imputer := dataset.NewImputer()
	if err := imputer.FitTransform(frame); err != nil {
		return nil, fmt.Errorf("%w: imputation: %v", ErrFatalInit, err)
	}
	if n := len(imputer.Medians()); n > 0 {
		log.WithField("columns", n).Info("Imputed missing values")
	}

	store, err := dataset.NewStore(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: feature store: %v", ErrFatalInit, err)
	}

	ensemble, err := model.Load(cfg.Data.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: model: %v", ErrFatalInit, err)
	}
	if err := checkCatalog(store.Catalog(), ensemble.Features); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalInit, err)
	}

	attributor := explain.NewTreeExplainer(ensemble)
	index := similarity.NewIndex(store, cfg.Similarity.Normalize)

	monitor, err := buildMonitor(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: drift snapshots: %v", ErrFatalInit, err)
	}

	log.WithFields(map[string]interface{}{
		"clients":  store.NumClients(),
		"features": len(store.Catalog()),
		"trees":    len(ensemble.Trees),
	}).Info("Engine initialized")

	opts := Options{
		DefaultK:          cfg.Similarity.DefaultK,
		GlobalExplainSize: cfg.Sampling.GlobalExplainSize,
		GlobalExplainSeed: cfg.Sampling.GlobalExplainSeed,
	}
	return New(store, ensemble, attributor, index, monitor, opts, log), nil
}

// checkCatalog verifies the model was trained on exactly the feature
// catalog, in catalog order, so attribution vectors align positionally.
func checkCatalog(catalog, features []string) error {
	if len(catalog) != len(features) {
		return fmt.Errorf("model expects %d features, snapshot provides %d", len(features), len(catalog))
	}
	for i := range catalog {
		if catalog[i] != features[i] {
			return fmt.Errorf("feature %d: model expects %q, snapshot provides %q", i, features[i], catalog[i])
		}
	}
	return nil
}

// buildMonitor freezes the reference and current populations with the
// configured fraction and seed. Drift is optional: both paths empty
// disables it.
func buildMonitor(cfg *config.Config) (*drift.Monitor, error) {
	if cfg.Data.ReferencePath == "" && cfg.Data.CurrentPath == "" {
		return nil, nil
	}

	reference, err := dataset.LoadFrame(cfg.Data.ReferencePath)
	if err != nil {
		return nil, fmt.Errorf("reference: %v", err)
	}
	current, err := dataset.LoadFrame(cfg.Data.CurrentPath)
	if err != nil {
		return nil, fmt.Errorf("current: %v", err)
	}

	reference = dataset.SampleFraction(reference, cfg.Drift.SampleFraction, cfg.Drift.SampleSeed)
	current = dataset.SampleFraction(current, cfg.Drift.SampleFraction, cfg.Drift.SampleSeed)

	driftCfg := drift.DefaultConfig()
	driftCfg.PValueThreshold = cfg.Drift.PValueThreshold
	driftCfg.DatasetThreshold = cfg.Drift.DatasetThreshold

	return drift.New(reference, current, driftCfg), nil
}
