package statforecast

import (
	"context"

	"CostCast/internal/domain/service"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

// ARIMA calls the remote ARIMA model with a fixed (p,d,q) order.
type ARIMA struct {
	client *Client
	order  [3]int
}

func NewARIMA(client *Client, cfg *config.Config) *ARIMA {
	return &ARIMA{client: client, order: cfg.Stats.ARIMA.Order}
}

func (a *ARIMA) Name() string { return forecast.AlgoARIMA }

func (a *ARIMA) Predict(ctx context.Context, s forecast.Series, h forecast.Horizon) ([]forecast.Value, error) {
	return a.client.predict(ctx, "/forecast/arima", s, h, map[string]interface{}{
		"order": a.order,
	})
}

var _ service.StatBackend = (*ARIMA)(nil)
