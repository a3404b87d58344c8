package statforecast

import (
	"context"

	"CostCast/internal/domain/service"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

// Darts calls the remote Darts wrapper, which picks the model named in
// configuration (e.g. "exponential_smoothing", "auto_arima").
type Darts struct {
	client *Client
	model  string
}

func NewDarts(client *Client, cfg *config.Config) *Darts {
	return &Darts{client: client, model: cfg.Stats.Darts.Model}
}

func (d *Darts) Name() string { return forecast.AlgoDarts }

func (d *Darts) Predict(ctx context.Context, s forecast.Series, h forecast.Horizon) ([]forecast.Value, error) {
	params := map[string]interface{}{}
	if d.model != "" {
		params["model"] = d.model
	}
	return d.client.predict(ctx, "/forecast/darts", s, h, params)
}

var _ service.StatBackend = (*Darts)(nil)
