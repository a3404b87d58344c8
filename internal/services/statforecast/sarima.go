package statforecast

import (
	"context"

	"CostCast/internal/domain/service"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

// SARIMA calls the remote seasonal ARIMA model.
type SARIMA struct {
	client        *Client
	order         [3]int
	seasonalOrder [4]int
}

func NewSARIMA(client *Client, cfg *config.Config) *SARIMA {
	return &SARIMA{
		client:        client,
		order:         cfg.Stats.SARIMA.Order,
		seasonalOrder: cfg.Stats.SARIMA.SeasonalOrder,
	}
}

func (s *SARIMA) Name() string { return forecast.AlgoSARIMA }

func (s *SARIMA) Predict(ctx context.Context, series forecast.Series, h forecast.Horizon) ([]forecast.Value, error) {
	return s.client.predict(ctx, "/forecast/sarima", series, h, map[string]interface{}{
		"order":          s.order,
		"seasonal_order": s.seasonalOrder,
	})
}

var _ service.StatBackend = (*SARIMA)(nil)
