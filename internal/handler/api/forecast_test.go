package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CostCast/internal/domain/models"
	"CostCast/internal/forecast"
	"CostCast/internal/usecase"
	"CostCast/pkg/cache"
	"CostCast/pkg/config"
	"CostCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubStorage struct {
	points []forecast.Point
	err    error
}

func (s *stubStorage) Init(context.Context) error                                  { return nil }
func (s *stubStorage) Store(context.Context, *models.CostObservation) error        { return nil }
func (s *stubStorage) StoreBatch(context.Context, []*models.CostObservation) error { return nil }
func (s *stubStorage) Health(context.Context) error                                { return nil }
func (s *stubStorage) Close() error                                                { return nil }
func (s *stubStorage) LoadSeries(context.Context, string, time.Time, time.Time) ([]forecast.Point, error) {
	return s.points, s.err
}

type stubQueue struct {
	types    []string
	payloads []interface{}
	err      error
}

func (q *stubQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	if q.err != nil {
		return q.err
	}
	q.types = append(q.types, msgType)
	q.payloads = append(q.payloads, payload)
	return nil
}

func testHandler(t *testing.T) *ForecastHandler {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := &config.Config{}
	cfg.Forecast.MinDataPoints = 10
	cfg.Forecast.SMA.Window = 7
	cfg.Forecast.ES.Alpha = 0.5
	cfg.Forecast.HW.Alpha = 0.3
	cfg.Forecast.HW.Beta = 0.1
	cfg.Forecast.HW.Gamma = 0.1
	cfg.Forecast.HW.SeasonalPeriods = 12
	cfg.Forecast.Theta.Value = 2
	runner := usecase.NewForecastRunner(&stubStorage{}, nil, nil, cfg, nil, nil)
	return NewForecastHandler(l, runner)
}

func pointsBody(n int) string {
	var b strings.Builder
	b.WriteString(`{"points":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		d := time.Date(2024, time.March, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		fmt.Fprintf(&b, `{"date":%q,"cost":100}`, d)
	}
	b.WriteString(`]}`)
	return b.String()
}

func postJSON(h echo.HandlerFunc, target, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestForecastInlineSeries(t *testing.T) {
	h := testHandler(t)

	rec, err := postJSON(h.Forecast, "/api/forecast", pointsBody(14))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"granularity":"daily"`) {
		t.Errorf("response missing granularity")
	}
	if !strings.Contains(body, `"ensemble"`) {
		t.Error("default ensemble flag not applied")
	}
}

func TestForecastInsufficientData(t *testing.T) {
	h := testHandler(t)

	rec, err := postJSON(h.Forecast, "/api/forecast", pointsBody(3))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "ERR_INSUFFICIENT_DATA") {
		t.Errorf("expected ERR_INSUFFICIENT_DATA, got %s", rec.Body.String())
	}
}

func TestSubmitJobWithoutQueue(t *testing.T) {
	h := testHandler(t)

	rec, err := postJSON(h.SubmitJob, "/api/forecast/jobs", pointsBody(14))
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "ERR_JOBS_DISABLED") {
		t.Errorf("expected ERR_JOBS_DISABLED, got %s", rec.Body.String())
	}
}

func TestSubmitJobQueuesAndExposesStatus(t *testing.T) {
	h := testHandler(t)
	mc := cache.NewMemoryCache()
	q := &stubQueue{}
	h.SetCache(mc, time.Minute)
	h.SetJobQueue(q)

	rec, err := postJSON(h.SubmitJob, "/api/forecast/jobs", pointsBody(14))
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}
	if len(q.types) != 1 || q.types[0] != usecase.ForecastJobType {
		t.Fatalf("queued types = %v", q.types)
	}
	payload, ok := q.payloads[0].(usecase.ForecastJobPayload)
	if !ok {
		t.Fatalf("payload type %T", q.payloads[0])
	}
	if payload.JobID == "" || len(payload.Request.Points) != 14 {
		t.Fatalf("payload = %+v", payload)
	}
	if !strings.Contains(rec.Body.String(), payload.JobID) {
		t.Error("response does not echo the job id")
	}

	// Status endpoint reads the queued record back.
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/forecast/jobs/"+payload.JobID, nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(payload.JobID)
	if err := h.JobStatus(c); err != nil {
		t.Fatalf("JobStatus: %v", err)
	}
	var env struct {
		Data models.ForecastJobStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if env.Data.State != models.JobStateQueued {
		t.Errorf("state = %s, want queued", env.Data.State)
	}
}

func TestInvalidateCacheScopedToAccount(t *testing.T) {
	h := testHandler(t)
	mc := cache.NewMemoryCache()
	defer mc.Close()
	h.SetCache(mc, time.Minute)
	ctx := context.Background()

	key := h.cacheKey(&models.ForecastRequest{Account: "acct-1"})
	if key == "" {
		t.Fatal("expected a cache key for an account request")
	}
	if err := mc.Set(ctx, key, &models.ForecastReport{Account: "acct-1"}, time.Minute); err != nil {
		t.Fatalf("seed report: %v", err)
	}
	if err := mc.Set(ctx, usecase.JobStatusKey("j1"), &models.ForecastJobStatus{ID: "j1"}, time.Minute); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/forecast/cache?account=acct-1", nil)
	rec := httptest.NewRecorder()
	if err := h.InvalidateCache(e.NewContext(req, rec)); err != nil {
		t.Fatalf("InvalidateCache: %v", err)
	}

	var rep models.ForecastReport
	if err := mc.Get(ctx, key, &rep); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("report should be invalidated, got %v", err)
	}
	var st models.ForecastJobStatus
	if err := mc.Get(ctx, usecase.JobStatusKey("j1"), &st); err != nil {
		t.Errorf("job status should survive invalidation, got %v", err)
	}
}

func TestJobStatusUnknownID(t *testing.T) {
	h := testHandler(t)
	h.SetCache(cache.NewMemoryCache(), time.Minute)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/forecast/jobs/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")
	if err := h.JobStatus(c); err != nil {
		t.Fatalf("JobStatus: %v", err)
	}
	var env struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", env.Status)
	}
}
