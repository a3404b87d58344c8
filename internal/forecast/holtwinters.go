package forecast

import "context"

// Holt-Winters defaults, tuned for monthly cost data.
const (
	DefaultHWAlpha           = 0.3
	DefaultHWBeta            = 0.1
	DefaultHWGamma           = 0.1
	DefaultHWSeasonalPeriods = 12
)

// HoltWinters is multiplicative triple exponential smoothing: level,
// trend, and a repeating seasonal profile. It assumes positive values,
// as costs are; seasonal indices divide by the level.
type HoltWinters struct {
	Alpha           float64
	Beta            float64
	Gamma           float64
	SeasonalPeriods int
}

// NewHoltWinters creates a Holt-Winters forecaster; out-of-range
// parameters fall back to the defaults.
func NewHoltWinters(alpha, beta, gamma float64, seasonalPeriods int) *HoltWinters {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultHWAlpha
	}
	if beta <= 0 || beta > 1 {
		beta = DefaultHWBeta
	}
	if gamma <= 0 || gamma > 1 {
		gamma = DefaultHWGamma
	}
	if seasonalPeriods <= 0 {
		seasonalPeriods = DefaultHWSeasonalPeriods
	}
	return &HoltWinters{Alpha: alpha, Beta: beta, Gamma: gamma, SeasonalPeriods: seasonalPeriods}
}

func (f *HoltWinters) Name() string { return AlgoHoltWinters }

// Forecast runs triple exponential smoothing. With fewer than
// 2*SeasonalPeriods observations there is not enough history to seed the
// seasonal profile, so it silently degrades to single exponential
// smoothing with the same alpha. That is a defined fallback, not an error.
func (f *HoltWinters) Forecast(_ context.Context, s Series, h Horizon) (Result, error) {
	vals := s.Values()
	n := len(vals)
	period := f.SeasonalPeriods

	// A non-positive first-season mean would make the seasonal indices
	// divide by zero or flip sign; treat it like insufficient history.
	degraded := n < 2*period || mean(vals[:min(n, period)]) <= 0
	if degraded {
		level := smooth(vals, f.Alpha)
		out := make([]Value, len(h))
		for i := range out {
			out[i] = Some(level)
		}
		return Result{Algorithm: f.Name(), Values: out}, nil
	}

	// Component arrays scoped to this invocation; nothing escapes.
	level := make([]float64, n)
	trend := make([]float64, n)
	seasonal := make([]float64, n)

	firstSeasonMean := mean(vals[:period])
	for i := 0; i < period; i++ {
		seasonal[i] = vals[i] / firstSeasonMean
	}
	level[period-1] = firstSeasonMean
	trend[period-1] = (mean(vals[period:2*period]) - firstSeasonMean) / float64(period)

	for i := period; i < n; i++ {
		level[i] = f.Alpha*(vals[i]/seasonal[i-period]) + (1-f.Alpha)*(level[i-1]+trend[i-1])
		trend[i] = f.Beta*(level[i]-level[i-1]) + (1-f.Beta)*trend[i-1]
		seasonal[i] = f.Gamma*(vals[i]/level[i]) + (1-f.Gamma)*seasonal[i-period]
	}

	lastLevel := level[n-1]
	lastTrend := trend[n-1]
	profile := seasonal[n-period:]

	out := make([]Value, len(h))
	for step := 1; step <= len(h); step++ {
		out[step-1] = Some((lastLevel + float64(step)*lastTrend) * profile[(step-1)%period])
	}
	return Result{Algorithm: f.Name(), Values: out}, nil
}
