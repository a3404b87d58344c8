package forecast

import "context"

// DefaultTheta is the classic theta-method parameter.
const DefaultTheta = 2.0

// Theta implements the theta method: fit an OLS linear trend, amplify the
// detrended residuals by theta, and combine trend extrapolation with the
// theta line's last increment.
type Theta struct {
	Theta float64
}

// NewTheta creates a theta forecaster; non-positive theta falls back to
// the default.
func NewTheta(theta float64) *Theta {
	if theta <= 0 {
		theta = DefaultTheta
	}
	return &Theta{Theta: theta}
}

func (f *Theta) Name() string { return AlgoTheta }

func (f *Theta) Forecast(_ context.Context, s Series, h Horizon) (Result, error) {
	vals := s.Values()
	n := len(vals)

	out := make([]Value, len(h))
	if n < 2 {
		for i := range out {
			out[i] = Some(vals[n-1])
		}
		return Result{Algorithm: f.Name(), Values: out}, nil
	}

	slope, intercept := linearFit(vals)

	thetaLine := make([]float64, n)
	for i, v := range vals {
		trend := slope*float64(i) + intercept
		thetaLine[i] = f.Theta*(v-trend) + trend
	}

	// The theta line extrapolates by its last observed increment; that
	// extrapolation is constant across horizon steps.
	thetaNext := thetaLine[n-1]
	if n > 1 {
		thetaNext = thetaLine[n-1] + (thetaLine[n-1] - thetaLine[n-2])
	}
	lastTrend := slope*float64(n-1) + intercept

	for step := 1; step <= len(h); step++ {
		trendNext := slope*float64(n-1+step) + intercept
		out[step-1] = Some(trendNext + (thetaNext - lastTrend))
	}
	return Result{Algorithm: f.Name(), Values: out}, nil
}

// linearFit computes the OLS line over index positions 0..n-1.
func linearFit(vals []float64) (slope, intercept float64) {
	n := float64(len(vals))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range vals {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
