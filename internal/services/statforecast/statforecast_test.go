package statforecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CostCast/internal/forecast"
	"CostCast/pkg/config"
)

func testSeries(t *testing.T) forecast.Series {
	t.Helper()
	pts := make([]forecast.Point, 12)
	for i := range pts {
		pts[i] = forecast.Point{
			TS:   time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC),
			Cost: 100 + float64(i),
		}
	}
	s, err := forecast.NewSeries(pts)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	return s
}

func testConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.Stats.ServiceURL = url
	cfg.Stats.Timeout = 5 * time.Second
	cfg.Stats.ARIMA.Order = [3]int{1, 1, 1}
	return cfg
}

func TestARIMAAlignsResponseByDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast/arima" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Timestamps) != 12 || len(req.Values) != 12 {
			t.Errorf("got %d timestamps, %d values", len(req.Timestamps), len(req.Values))
		}
		// Respond with the first two horizon dates only, second one null.
		v := 42.5
		resp := predictResponse{
			Timestamps: []string{req.Horizon[0], req.Horizon[1]},
			Values:     []*float64{&v, nil},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	backend := NewARIMA(NewClient(testConfig(srv.URL), nil), testConfig(srv.URL))
	s := testSeries(t)
	h := forecast.NewHorizon(s.Last().TS, forecast.Daily)

	vals, err := backend.Predict(context.Background(), s, h)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(vals) != len(h) {
		t.Fatalf("got %d values, want %d", len(vals), len(h))
	}
	if !vals[0].Valid || vals[0].Float64 != 42.5 {
		t.Errorf("vals[0] = %+v, want 42.5", vals[0])
	}
	for i := 1; i < len(vals); i++ {
		if vals[i].Valid {
			t.Errorf("vals[%d] should be missing", i)
		}
	}
}

func TestPositionalResponseWithoutTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		json.NewDecoder(r.Body).Decode(&req)
		vals := make([]*float64, len(req.Horizon))
		for i := range vals {
			v := float64(i)
			vals[i] = &v
		}
		json.NewEncoder(w).Encode(predictResponse{Values: vals})
	}))
	defer srv.Close()

	backend := NewDarts(NewClient(testConfig(srv.URL), nil), testConfig(srv.URL))
	s := testSeries(t)
	h := forecast.NewHorizon(s.Last().TS, forecast.Daily)

	vals, err := backend.Predict(context.Background(), s, h)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !vals[10].Valid || vals[10].Float64 != 10 {
		t.Errorf("vals[10] = %+v, want 10", vals[10])
	}
}

func TestProphetSendsConfiguredPriorScale(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		got = req.Params
		json.NewEncoder(w).Encode(predictResponse{Values: make([]*float64, len(req.Horizon))})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Stats.Prophet.ChangepointPriorScale = 0.25
	backend := NewProphet(NewClient(cfg, nil), cfg)
	s := testSeries(t)
	h := forecast.NewHorizon(s.Last().TS, forecast.Monthly)

	if _, err := backend.Predict(context.Background(), s, h); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if v, ok := got["changepoint_prior_scale"].(float64); !ok || v != 0.25 {
		t.Errorf("changepoint_prior_scale = %v, want 0.25", got["changepoint_prior_scale"])
	}
}

type stubBackend struct {
	name string
	vals []forecast.Value
	err  error
}

func (b *stubBackend) Name() string { return b.name }
func (b *stubBackend) Predict(context.Context, forecast.Series, forecast.Horizon) ([]forecast.Value, error) {
	return b.vals, b.err
}

func TestAdapterDisabledYieldsAllMissing(t *testing.T) {
	a := NewAdapter(&stubBackend{name: "arima"}, false, nil, nil)
	s := testSeries(t)
	h := forecast.NewHorizon(s.Last().TS, forecast.Daily)

	res, err := a.Forecast(context.Background(), s, h)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(res.Values) != len(h) {
		t.Fatalf("got %d values, want %d", len(res.Values), len(h))
	}
	for i, v := range res.Values {
		if v.Valid {
			t.Fatalf("value %d should be missing", i)
		}
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != "disabled" {
		t.Errorf("diagnostics = %+v, want one 'disabled'", res.Diagnostics)
	}
}

func TestAdapterDegradesOnBackendError(t *testing.T) {
	a := NewAdapter(&stubBackend{name: "prophet", err: fmt.Errorf("model did not converge")}, true, nil, nil)
	s := testSeries(t)
	h := forecast.NewHorizon(s.Last().TS, forecast.Monthly)

	res, err := a.Forecast(context.Background(), s, h)
	if err != nil {
		t.Fatalf("Forecast must not propagate backend errors, got %v", err)
	}
	for _, v := range res.Values {
		if v.Valid {
			t.Fatal("expected all-missing result")
		}
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != "unavailable" {
		t.Errorf("diagnostics = %+v, want one 'unavailable'", res.Diagnostics)
	}
}

func TestAdapterPadsShortResult(t *testing.T) {
	short := []forecast.Value{forecast.Some(1), forecast.Some(2)}
	a := NewAdapter(&stubBackend{name: "sarima", vals: short}, true, nil, nil)
	s := testSeries(t)
	h := forecast.NewHorizon(s.Last().TS, forecast.Monthly)

	res, err := a.Forecast(context.Background(), s, h)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(res.Values) != len(h) {
		t.Fatalf("got %d values, want %d", len(res.Values), len(h))
	}
	if !res.Values[0].Valid || res.Values[1].Float64 != 2 {
		t.Errorf("leading values not preserved: %+v", res.Values[:2])
	}
	if res.Values[2].Valid {
		t.Error("padded tail should be missing")
	}
}
