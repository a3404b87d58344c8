package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"CostCast/internal/domain/models"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

type stubStorage struct {
	points []forecast.Point
	err    error
}

func (s *stubStorage) Init(context.Context) error                            { return nil }
func (s *stubStorage) Store(context.Context, *models.CostObservation) error  { return nil }
func (s *stubStorage) StoreBatch(context.Context, []*models.CostObservation) error { return nil }
func (s *stubStorage) Health(context.Context) error                          { return nil }
func (s *stubStorage) Close() error                                          { return nil }
func (s *stubStorage) LoadSeries(_ context.Context, _ string, _, _ time.Time) ([]forecast.Point, error) {
	return s.points, s.err
}

type stubPublisher struct {
	events []*models.RunCompletedEvent
}

func (p *stubPublisher) Publish(context.Context, *models.CostObservation) error       { return nil }
func (p *stubPublisher) PublishBatch(context.Context, []*models.CostObservation) error { return nil }
func (p *stubPublisher) Close() error                                                  { return nil }
func (p *stubPublisher) PublishRunCompleted(_ context.Context, ev *models.RunCompletedEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type stubMetrics struct{}

func (stubMetrics) RecordObservation(string, string)      {}
func (stubMetrics) RecordError(string)                    {}
func (stubMetrics) RecordRun(string)                      {}
func (stubMetrics) RecordAlgorithm(string, float64)       {}
func (stubMetrics) RecordAdapterDegraded(string, string)  {}
func (stubMetrics) RecordLatency(string, float64)         {}

type constAdapter struct {
	name  string
	value float64
}

func (a *constAdapter) Name() string { return a.name }
func (a *constAdapter) Forecast(_ context.Context, _ forecast.Series, h forecast.Horizon) (forecast.Result, error) {
	vals := make([]forecast.Value, len(h))
	for i := range vals {
		vals[i] = forecast.Some(a.value)
	}
	return forecast.Result{Algorithm: a.name, Values: vals}, nil
}

func testRunnerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Forecast.MinDataPoints = 10
	cfg.Forecast.SMA.Window = 7
	cfg.Forecast.ES.Alpha = 0.5
	cfg.Forecast.HW.Alpha = 0.3
	cfg.Forecast.HW.Beta = 0.1
	cfg.Forecast.HW.Gamma = 0.1
	cfg.Forecast.HW.SeasonalPeriods = 12
	cfg.Forecast.Theta.Value = 2
	return cfg
}

func inlinePoints(n int) []models.SeriesPointPayload {
	pts := make([]models.SeriesPointPayload, n)
	for i := range pts {
		pts[i] = models.SeriesPointPayload{
			Date: time.Date(2024, time.March, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Cost: 100,
		}
	}
	return pts
}

func TestRunDailyInlineSeries(t *testing.T) {
	pub := &stubPublisher{}
	r := NewForecastRunner(&stubStorage{}, pub, stubMetrics{}, testRunnerConfig(), nil, nil)

	rep, err := r.Run(context.Background(), &models.ForecastRequest{
		Points:     inlinePoints(14),
		Ensemble:   true,
		Milestones: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.Granularity != forecast.Daily {
		t.Errorf("granularity = %s, want daily", rep.Granularity)
	}
	wantRows := 14 + forecast.DailyHorizonSteps
	if len(rep.Rows) != wantRows {
		t.Fatalf("got %d rows, want %d", len(rep.Rows), wantRows)
	}
	if !rep.Rows[0].Actual.Valid || rep.Rows[0].Actual.Float64 != 100 {
		t.Errorf("first row actual = %+v", rep.Rows[0].Actual)
	}
	if rep.Rows[14].Actual.Valid {
		t.Error("first horizon row must not carry an actual")
	}

	wantAlgos := []string{"sma", "es", "hw", "theta", "ensemble"}
	if len(rep.Algorithms) != len(wantAlgos) {
		t.Fatalf("algorithms = %v, want %v", rep.Algorithms, wantAlgos)
	}
	for i, a := range wantAlgos {
		if rep.Algorithms[i] != a {
			t.Errorf("algorithms[%d] = %s, want %s", i, rep.Algorithms[i], a)
		}
	}

	// Flat series: every self-contained algorithm forecasts 100.
	cell := rep.Rows[14].Forecasts["ensemble"]
	if !cell.Valid || cell.Float64 != 100 {
		t.Errorf("ensemble first step = %+v, want 100", cell)
	}

	if len(rep.Milestones) != 5 {
		t.Errorf("got %d milestones, want 5", len(rep.Milestones))
	}
	if !strings.Contains(rep.Summary, "end_of_year") {
		t.Errorf("summary missing end_of_year: %q", rep.Summary)
	}
	if len(pub.events) != 1 {
		t.Errorf("got %d run events, want 1", len(pub.events))
	}
}

func TestRunMonthlyFromStorage(t *testing.T) {
	points := make([]forecast.Point, 12)
	for i := range points {
		points[i] = forecast.Point{
			TS:   time.Date(2023, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC),
			Cost: 50 + float64(i),
		}
	}
	r := NewForecastRunner(&stubStorage{points: points}, nil, stubMetrics{}, testRunnerConfig(), nil, nil)

	rep, err := r.Run(context.Background(), &models.ForecastRequest{Account: "123456789012"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Granularity != forecast.Monthly {
		t.Errorf("granularity = %s, want monthly", rep.Granularity)
	}
	if got := len(rep.Rows); got != 12+forecast.MonthlyHorizonSteps {
		t.Errorf("got %d rows, want %d", got, 12+forecast.MonthlyHorizonSteps)
	}
	if len(rep.Milestones) != 0 {
		t.Error("milestones not requested but present")
	}
}

func TestRunAdapterColumnsInOrder(t *testing.T) {
	adapters := []forecast.Forecaster{
		&constAdapter{name: forecast.AlgoProphet, value: 7},
		&constAdapter{name: forecast.AlgoARIMA, value: 5},
	}
	r := NewForecastRunner(&stubStorage{}, nil, stubMetrics{}, testRunnerConfig(), adapters, nil)

	rep, err := r.Run(context.Background(), &models.ForecastRequest{Points: inlinePoints(14)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"sma", "es", "hw", "arima", "theta", "prophet"}
	if len(rep.Algorithms) != len(want) {
		t.Fatalf("algorithms = %v, want %v", rep.Algorithms, want)
	}
	for i, a := range want {
		if rep.Algorithms[i] != a {
			t.Errorf("algorithms[%d] = %s, want %s", i, rep.Algorithms[i], a)
		}
	}
	cell := rep.Rows[14].Forecasts["arima"]
	if !cell.Valid || cell.Float64 != 5 {
		t.Errorf("arima first step = %+v, want 5", cell)
	}
}

func TestRunInsufficientData(t *testing.T) {
	r := NewForecastRunner(&stubStorage{}, nil, stubMetrics{}, testRunnerConfig(), nil, nil)

	_, err := r.Run(context.Background(), &models.ForecastRequest{Points: inlinePoints(5)})
	if !errors.Is(err, forecast.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestRunStorageError(t *testing.T) {
	r := NewForecastRunner(&stubStorage{err: fmt.Errorf("clickhouse down")}, nil, stubMetrics{}, testRunnerConfig(), nil, nil)

	_, err := r.Run(context.Background(), &models.ForecastRequest{Account: "a"})
	if err == nil {
		t.Fatal("expected storage error")
	}
}

func TestSummarizeTwoDecimals(t *testing.T) {
	ms := []forecast.MilestoneTotal{{
		Milestone: forecast.Milestone{Label: "end_of_this_month", Date: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		Totals:    map[string]float64{"sma": 1234.5678, "es": 2},
	}}
	got := summarize(ms)
	want := "end_of_this_month (2024-03-31): es=2.00 sma=1234.57\n"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}
