package statforecast

import (
	"context"

	"CostCast/internal/domain/repository"
	"CostCast/internal/domain/service"
	"CostCast/internal/forecast"
	"CostCast/pkg/logger"
)

// Adapter exposes a StatBackend as a Forecaster. A disabled or failing
// backend produces an all-missing column with a diagnostic; the pipeline
// never sees the error.
type Adapter struct {
	backend service.StatBackend
	enabled bool
	metrics repository.Metrics
	log     *logger.Logger
}

func NewAdapter(backend service.StatBackend, enabled bool, m repository.Metrics, log *logger.Logger) *Adapter {
	return &Adapter{backend: backend, enabled: enabled, metrics: m, log: log}
}

func (a *Adapter) Name() string { return a.backend.Name() }

func (a *Adapter) Forecast(ctx context.Context, s forecast.Series, h forecast.Horizon) (forecast.Result, error) {
	name := a.backend.Name()

	if !a.enabled {
		return forecast.AllMissing(name, len(h), forecast.Diagnostic{
			Algorithm: name,
			Code:      "disabled",
			Message:   "backend disabled in configuration",
		}), nil
	}

	vals, err := a.backend.Predict(ctx, s, h)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordAdapterDegraded(name, "error")
		}
		if a.log != nil {
			a.log.Warn("stat backend degraded to missing",
				logger.String("algorithm", name),
				logger.Error(err))
		}
		return forecast.AllMissing(name, len(h), forecast.Diagnostic{
			Algorithm: name,
			Code:      "unavailable",
			Message:   err.Error(),
		}), nil
	}

	if len(vals) != len(h) {
		aligned := make([]forecast.Value, len(h))
		copy(aligned, vals)
		vals = aligned
	}
	return forecast.Result{Algorithm: name, Values: vals}, nil
}

var _ forecast.Forecaster = (*Adapter)(nil)
