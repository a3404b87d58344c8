package forecast

import "context"

// DefaultSMAWindow is the default trailing window for the moving average.
const DefaultSMAWindow = 7

// SMA is the simple moving average baseline. It repeats the trailing mean
// of the last min(window, N) observations across the whole horizon:
// deliberately flat, a sanity floor against the richer methods.
type SMA struct {
	Window int
}

// NewSMA creates an SMA forecaster; non-positive windows fall back to the
// default.
func NewSMA(window int) *SMA {
	if window <= 0 {
		window = DefaultSMAWindow
	}
	return &SMA{Window: window}
}

func (f *SMA) Name() string { return AlgoSMA }

func (f *SMA) Forecast(_ context.Context, s Series, h Horizon) (Result, error) {
	vals := s.Values()
	w := f.Window
	if w > len(vals) {
		w = len(vals)
	}
	last := mean(vals[len(vals)-w:])

	out := make([]Value, len(h))
	for i := range out {
		out[i] = Some(last)
	}
	return Result{Algorithm: f.Name(), Values: out}, nil
}
