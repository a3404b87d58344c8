package forecast

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// MinDataPoints is the minimum number of valid observations required
// before any forecasting is attempted.
const MinDataPoints = 10

// ErrInsufficientData is returned when a series has fewer than
// MinDataPoints valid observations after cleaning.
var ErrInsufficientData = fmt.Errorf("at least %d valid data points are required", MinDataPoints)

// Value is an optional numeric value. A missing entry means "unavailable
// for this point" (unfit model, disabled backend, numeric failure) and is
// never an error. It replaces the NaN sentinel: absence is explicit.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some wraps a present value.
func Some(v float64) Value { return Value{Float64: v, Valid: true} }

// Missing returns an absent value.
func Missing() Value { return Value{} }

// MarshalJSON renders missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%g", v.Float64)), nil
}

// UnmarshalJSON accepts null or a number.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*v = Missing()
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse value %q: %w", s, err)
	}
	*v = Some(f)
	return nil
}

// Point is one observation of the cost series.
type Point struct {
	TS   time.Time
	Cost float64
}

// Series is an ordered cost time series. Construct it with NewSeries so
// the ordering and cleaning invariants hold; it is read-only afterwards.
type Series struct {
	points []Point
}

// NewSeries cleans raw observations into a forecastable series: non-finite
// values are dropped, points are sorted by timestamp, and duplicate
// timestamps keep the last occurrence. Returns ErrInsufficientData when
// fewer than MinDataPoints observations survive cleaning.
func NewSeries(points []Point) (Series, error) {
	cleaned := make([]Point, 0, len(points))
	for _, p := range points {
		if p.TS.IsZero() {
			continue
		}
		if math.IsNaN(p.Cost) || math.IsInf(p.Cost, 0) {
			continue
		}
		cleaned = append(cleaned, Point{TS: p.TS, Cost: p.Cost})
	}
	sort.SliceStable(cleaned, func(i, j int) bool { return cleaned[i].TS.Before(cleaned[j].TS) })

	deduped := cleaned[:0]
	for _, p := range cleaned {
		if n := len(deduped); n > 0 && deduped[n-1].TS.Equal(p.TS) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}

	if len(deduped) < MinDataPoints {
		return Series{}, ErrInsufficientData
	}
	return Series{points: deduped}, nil
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.points) }

// At returns the i-th observation.
func (s Series) At(i int) Point { return s.points[i] }

// Last returns the most recent observation.
func (s Series) Last() Point { return s.points[len(s.points)-1] }

// Values returns a copy of the observation values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Cost
	}
	return out
}

// Timestamps returns a copy of the observation timestamps in order.
func (s Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.TS
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
