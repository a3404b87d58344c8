package forecast

import "context"

// DefaultESAlpha is the default smoothing factor.
const DefaultESAlpha = 0.5

// ES is single exponential smoothing. The final smoothed value is
// repeated across the horizon; no trend is propagated.
type ES struct {
	Alpha float64
}

// NewES creates an ES forecaster; alphas outside (0,1] fall back to the
// default.
func NewES(alpha float64) *ES {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultESAlpha
	}
	return &ES{Alpha: alpha}
}

func (f *ES) Name() string { return AlgoES }

func (f *ES) Forecast(_ context.Context, s Series, h Horizon) (Result, error) {
	level := smooth(s.Values(), f.Alpha)

	out := make([]Value, len(h))
	for i := range out {
		out[i] = Some(level)
	}
	return Result{Algorithm: f.Name(), Values: out}, nil
}

// smooth runs the ES recurrence s_i = alpha*v_i + (1-alpha)*s_{i-1} with
// s_0 = v_0 and returns the final smoothed value.
func smooth(vals []float64, alpha float64) float64 {
	level := vals[0]
	for _, v := range vals[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return level
}
