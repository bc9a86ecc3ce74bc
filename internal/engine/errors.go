package engine

import (
	"errors"

	"github.com/akenfack/creditrisk/internal/drift"
)

// Failure taxonomy of the decision engine. Every per-request failure wraps
// one of these sentinels so callers can branch without string matching;
// ErrFatalInit aborts startup and the service never comes up partially
// initialized.
var (
	ErrNotFound        = errors.New("client not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPredictor       = errors.New("prediction failed")
	ErrExplainer       = errors.New("explanation failed")
	ErrFatalInit       = errors.New("engine initialization failed")

	// ErrSchemaMismatch surfaces the drift monitor's schema failure.
	ErrSchemaMismatch = drift.ErrSchemaMismatch
)
