package service

import (
	"context"

	"CostCast/internal/forecast"
)

// StatBackend invokes one external statistical model (ARIMA, SARIMA,
// Prophet, NeuralProphet, Darts) for a series and horizon. It returns one
// value per horizon position; implementations may block while the remote
// model fits. Failures are returned as errors and converted to missing
// results by the degrading adapter, never propagated to the pipeline.
type StatBackend interface {
	Name() string
	Predict(ctx context.Context, s forecast.Series, h forecast.Horizon) ([]forecast.Value, error)
}
