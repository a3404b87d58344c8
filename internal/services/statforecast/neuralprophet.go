package statforecast

import (
	"context"

	"CostCast/internal/domain/service"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

// NeuralProphet calls the remote NeuralProphet model. Fitting is slow,
// so this backend leans on the client timeout rather than retries.
type NeuralProphet struct {
	client *Client
	epochs int
}

func NewNeuralProphet(client *Client, cfg *config.Config) *NeuralProphet {
	return &NeuralProphet{client: client, epochs: cfg.Stats.NeuralProphet.Epochs}
}

func (n *NeuralProphet) Name() string { return forecast.AlgoNeuralProphet }

func (n *NeuralProphet) Predict(ctx context.Context, s forecast.Series, h forecast.Horizon) ([]forecast.Value, error) {
	params := map[string]interface{}{}
	if n.epochs > 0 {
		params["epochs"] = n.epochs
	}
	return n.client.predict(ctx, "/forecast/neural_prophet", s, h, params)
}

var _ service.StatBackend = (*NeuralProphet)(nil)
