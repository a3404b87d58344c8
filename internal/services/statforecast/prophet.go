package statforecast

import (
	"context"

	"CostCast/internal/domain/service"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

// Prophet calls the remote Prophet model.
type Prophet struct {
	client *Client
	params map[string]interface{}
}

func NewProphet(client *Client, cfg *config.Config) *Prophet {
	return &Prophet{
		client: client,
		params: map[string]interface{}{
			"yearly_seasonality":      cfg.Stats.Prophet.YearlySeasonality,
			"weekly_seasonality":      cfg.Stats.Prophet.WeeklySeasonality,
			"daily_seasonality":       cfg.Stats.Prophet.DailySeasonality,
			"changepoint_prior_scale": cfg.Stats.Prophet.ChangepointPriorScale,
		},
	}
}

func (p *Prophet) Name() string { return forecast.AlgoProphet }

func (p *Prophet) Predict(ctx context.Context, s forecast.Series, h forecast.Horizon) ([]forecast.Value, error) {
	return p.client.predict(ctx, "/forecast/prophet", s, h, p.params)
}

var _ service.StatBackend = (*Prophet)(nil)
