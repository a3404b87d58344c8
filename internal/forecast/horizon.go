package forecast

import "time"

const (
	// DailyHorizonSteps is the number of daily timestamps forecast ahead.
	DailyHorizonSteps = 365
	// MonthlyHorizonSteps is the number of monthly timestamps forecast ahead.
	MonthlyHorizonSteps = 12
)

// Horizon is the ordered list of future timestamps to forecast, all
// strictly after the last observed timestamp.
type Horizon []time.Time

// NewHorizon generates the forecast horizon for the given granularity:
// 365 consecutive days for daily series, or the first day of each of the
// next 12 months for monthly series. Deterministic, no external state.
func NewHorizon(last time.Time, g Granularity) Horizon {
	if g == Monthly {
		h := make(Horizon, 0, MonthlyHorizonSteps)
		for i := 1; i <= MonthlyHorizonSteps; i++ {
			h = append(h, time.Date(last.Year(), last.Month()+time.Month(i), 1, 0, 0, 0, 0, last.Location()))
		}
		return h
	}
	h := make(Horizon, 0, DailyHorizonSteps)
	for i := 1; i <= DailyHorizonSteps; i++ {
		h = append(h, last.AddDate(0, 0, i))
	}
	return h
}

// Last returns the final horizon timestamp.
func (h Horizon) Last() time.Time {
	if len(h) == 0 {
		return time.Time{}
	}
	return h[len(h)-1]
}
