package forecast

import (
	"context"
	"math"
	"testing"
	"time"
)

func mustSeries(t *testing.T, start time.Time, step time.Duration, vals ...float64) Series {
	t.Helper()
	pts := make([]Point, len(vals))
	for i, v := range vals {
		pts[i] = Point{TS: start.Add(time.Duration(i) * step), Cost: v}
	}
	s, err := NewSeries(pts)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSeriesCleans(t *testing.T) {
	start := day(2024, 1, 1)
	pts := []Point{
		{TS: start.AddDate(0, 0, 3), Cost: 4},
		{TS: start, Cost: 1},
		{TS: start, Cost: 1.5}, // duplicate timestamp, last wins
		{TS: start.AddDate(0, 0, 1), Cost: math.NaN()},
		{TS: start.AddDate(0, 0, 2), Cost: math.Inf(1)},
	}
	for i := 4; i < 14; i++ {
		pts = append(pts, Point{TS: start.AddDate(0, 0, i), Cost: float64(i)})
	}

	s, err := NewSeries(pts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 12 {
		t.Fatalf("expected 12 points after cleaning, got %d", s.Len())
	}
	if s.At(0).Cost != 1.5 {
		t.Fatalf("expected duplicate to keep last value, got %v", s.At(0).Cost)
	}
	for i := 1; i < s.Len(); i++ {
		if s.At(i).TS.Before(s.At(i - 1).TS) {
			t.Fatalf("series not sorted at %d", i)
		}
	}
}

func TestNewSeriesInsufficientData(t *testing.T) {
	pts := []Point{{TS: day(2024, 1, 1), Cost: 1}, {TS: day(2024, 1, 2), Cost: 2}}
	if _, err := NewSeries(pts); err != ErrInsufficientData {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestValueUnmarshalStrict(t *testing.T) {
	var v Value
	if err := v.UnmarshalJSON([]byte("null")); err != nil || v.Valid {
		t.Fatalf("null: err=%v v=%+v", err, v)
	}
	if err := v.UnmarshalJSON([]byte("2.75")); err != nil || !v.Valid || v.Float64 != 2.75 {
		t.Fatalf("number: err=%v v=%+v", err, v)
	}
	if err := v.UnmarshalJSON([]byte("1.5x")); err == nil {
		t.Fatal("trailing garbage must not parse")
	}
}

func TestSMAConstantForecast(t *testing.T) {
	s := mustSeries(t, day(2024, 1, 1), 24*time.Hour, 1, 2, 3, 4, 5, 10, 20, 30, 40, 50)
	h := NewHorizon(s.Last().TS, Daily)

	res, err := NewSMA(3).Forecast(context.Background(), s, h)
	if err != nil {
		t.Fatalf("sma: %v", err)
	}
	if len(res.Values) != len(h) {
		t.Fatalf("expected %d values, got %d", len(h), len(res.Values))
	}
	for i, v := range res.Values {
		if !v.Valid || v.Float64 != 40.0 {
			t.Fatalf("position %d: expected 40.0, got %+v", i, v)
		}
	}
}

func TestSMAWindowLargerThanSeries(t *testing.T) {
	s := mustSeries(t, day(2024, 1, 1), 24*time.Hour, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	h := NewHorizon(s.Last().TS, Monthly)

	res, _ := NewSMA(100).Forecast(context.Background(), s, h)
	if got := res.Values[0].Float64; got != 5.5 {
		t.Fatalf("expected mean of full series 5.5, got %v", got)
	}
}

func TestESDeterministic(t *testing.T) {
	s := mustSeries(t, day(2024, 1, 1), 24*time.Hour, 10, 20, 30, 40, 50, 10, 20, 30, 40, 50)
	h := NewHorizon(s.Last().TS, Monthly)

	f := NewES(0.3)
	first, _ := f.Forecast(context.Background(), s, h)
	second, _ := f.Forecast(context.Background(), s, h)
	for i := range first.Values {
		if first.Values[i] != second.Values[i] {
			t.Fatalf("ES not deterministic at %d", i)
		}
	}

	// Recurrence check against a hand-rolled loop.
	want := 10.0
	for _, v := range []float64{20, 30, 40, 50, 10, 20, 30, 40, 50} {
		want = 0.3*v + 0.7*want
	}
	if got := first.Values[0].Float64; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHoltWintersFallsBackToES(t *testing.T) {
	// 10 points < 2*12 seasonal periods: must match ES with the same alpha.
	s := mustSeries(t, day(2024, 1, 1), 24*time.Hour, 5, 7, 9, 4, 6, 8, 5, 7, 9, 4)
	h := NewHorizon(s.Last().TS, Daily)

	hw, _ := NewHoltWinters(0.3, 0.1, 0.1, 12).Forecast(context.Background(), s, h)
	es, _ := NewES(0.3).Forecast(context.Background(), s, h)

	if len(hw.Values) != len(es.Values) {
		t.Fatalf("length mismatch: %d vs %d", len(hw.Values), len(es.Values))
	}
	for i := range hw.Values {
		if hw.Values[i] != es.Values[i] {
			t.Fatalf("position %d: hw %+v != es %+v", i, hw.Values[i], es.Values[i])
		}
	}
}

func TestHoltWintersSeasonal(t *testing.T) {
	// Two full yearly cycles of monthly data with a repeating profile.
	vals := make([]float64, 0, 24)
	profile := []float64{100, 110, 120, 130, 120, 110, 100, 90, 80, 90, 100, 110}
	for cycle := 0; cycle < 2; cycle++ {
		vals = append(vals, profile...)
	}
	pts := make([]Point, len(vals))
	for i, v := range vals {
		pts[i] = Point{TS: day(2022, time.Month(1+i%12), 1).AddDate(i/12, 0, 0), Cost: v}
	}
	s, err := NewSeries(pts)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	h := NewHorizon(s.Last().TS, Monthly)

	res, _ := NewHoltWinters(0.3, 0.1, 0.1, 12).Forecast(context.Background(), s, h)
	if len(res.Values) != 12 {
		t.Fatalf("expected 12 forecasts, got %d", len(res.Values))
	}
	for i, v := range res.Values {
		if !v.Valid {
			t.Fatalf("position %d missing", i)
		}
		if v.Float64 < 50 || v.Float64 > 200 {
			t.Fatalf("position %d: forecast %v outside plausible band", i, v.Float64)
		}
	}
}

func TestThetaLinearSeries(t *testing.T) {
	s := mustSeries(t, day(2024, 1, 1), 24*time.Hour, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100)
	h := NewHorizon(s.Last().TS, Monthly)

	res, _ := NewTheta(2).Forecast(context.Background(), s, h)
	// Perfectly linear input: trend slope 10, theta line equals the trend,
	// so step h forecasts trend(n-1+h) + slope.
	for step := 1; step <= len(h); step++ {
		want := 100 + 10*float64(step) + 10
		got := res.Values[step-1].Float64
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("step %d: expected %v, got %v", step, want, got)
		}
	}
}

func TestEnsembleAveragesNonMissing(t *testing.T) {
	results := map[string]Result{
		AlgoSMA:         {Algorithm: AlgoSMA, Values: []Value{Some(100), Some(110)}},
		AlgoES:          {Algorithm: AlgoES, Values: []Value{Missing(), Some(115)}},
		AlgoHoltWinters: {Algorithm: AlgoHoltWinters, Values: []Value{Some(95), Missing()}},
	}

	ens := Ensemble(results)
	if len(ens.Values) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(ens.Values))
	}
	if got := ens.Values[0].Float64; got != 97.5 {
		t.Fatalf("position 0: expected 97.5, got %v", got)
	}
	if got := ens.Values[1].Float64; got != 112.5 {
		t.Fatalf("position 1: expected 112.5, got %v", got)
	}
}

func TestEnsembleEmptyAndAllMissing(t *testing.T) {
	if ens := Ensemble(nil); len(ens.Values) != 0 {
		t.Fatalf("empty input: expected empty result, got %d values", len(ens.Values))
	}

	ens := Ensemble(map[string]Result{
		AlgoARIMA:  AllMissing(AlgoARIMA, 3),
		AlgoSARIMA: AllMissing(AlgoSARIMA, 3),
	})
	for i, v := range ens.Values {
		if v.Valid {
			t.Fatalf("position %d: expected missing, got %v", i, v.Float64)
		}
	}
}
