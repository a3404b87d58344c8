package statforecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"CostCast/internal/forecast"
	"CostCast/internal/service/ratelimit"
	"CostCast/pkg/config"
	xhttp "CostCast/pkg/http"
	"CostCast/pkg/logger"
)

// Dates on the wire are calendar days; monthly points are firsts of month.
const wireDateLayout = "2006-01-02"

// Client talks to the external Python statistical service. All model
// backends share one client so the rate limit covers them together.
type Client struct {
	baseURL string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	maxRPS  float64
	log     *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	timeout := cfg.Stats.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.Stats.ServiceURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: ratelimit.New(),
		maxRPS:  cfg.Stats.MaxRPS,
		log:     log,
	}
}

type predictRequest struct {
	Timestamps []string               `json:"timestamps"`
	Values     []float64              `json:"values"`
	Horizon    []string               `json:"horizon"`
	Params     map[string]interface{} `json:"params,omitempty"`
}

type predictResponse struct {
	Timestamps []string   `json:"timestamps"`
	Values     []*float64 `json:"values"`
}

// predict posts the series and horizon to path and aligns the response
// to the horizon. Values the service could not produce come back null
// and stay missing.
func (c *Client) predict(ctx context.Context, path string, s forecast.Series, h forecast.Horizon, params map[string]interface{}) ([]forecast.Value, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("stats service url not configured")
	}

	if err := c.waitForToken(ctx); err != nil {
		return nil, err
	}

	req := predictRequest{
		Timestamps: make([]string, s.Len()),
		Values:     s.Values(),
		Horizon:    make([]string, len(h)),
		Params:     params,
	}
	for i, ts := range s.Timestamps() {
		req.Timestamps[i] = ts.Format(wireDateLayout)
	}
	for i, d := range h {
		req.Horizon[i] = d.Format(wireDateLayout)
	}

	var resp predictResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}

	return alignToHorizon(resp.Timestamps, resp.Values, h), nil
}

func (c *Client) waitForToken(ctx context.Context) error {
	if c.limiter == nil || c.maxRPS <= 0 {
		return nil
	}
	for !c.limiter.Allow("stats", c.maxRPS, c.maxRPS) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// alignToHorizon maps response values onto horizon positions by date.
// A response without timestamps but with one value per horizon step is
// taken positionally.
func alignToHorizon(ts []string, vals []*float64, h forecast.Horizon) []forecast.Value {
	out := make([]forecast.Value, len(h))

	if len(ts) == 0 && len(vals) == len(h) {
		for i, v := range vals {
			if usable(v) {
				out[i] = forecast.Some(*v)
			}
		}
		return out
	}

	byDate := make(map[string]float64, len(ts))
	for i, t := range ts {
		if i < len(vals) && usable(vals[i]) {
			byDate[t] = *vals[i]
		}
	}
	for i, d := range h {
		if v, ok := byDate[d.Format(wireDateLayout)]; ok {
			out[i] = forecast.Some(v)
		}
	}
	return out
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
