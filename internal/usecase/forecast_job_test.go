package usecase

import (
	"context"
	"testing"

	"CostCast/internal/domain/models"
	"CostCast/pkg/cache"
)

func TestForecastJobStoresCompletedStatus(t *testing.T) {
	runner := NewForecastRunner(&stubStorage{}, nil, stubMetrics{}, testRunnerConfig(), nil, nil)
	mc := cache.NewMemoryCache()
	job := NewForecastJob(runner, mc, 0, nil)

	payload := ForecastJobPayload{
		JobID:   "job-1",
		Request: models.ForecastRequest{Points: inlinePoints(14)},
	}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var st models.ForecastJobStatus
	if err := mc.Get(context.Background(), JobStatusKey("job-1"), &st); err != nil {
		t.Fatalf("Get status: %v", err)
	}
	if st.State != models.JobStateCompleted {
		t.Errorf("state = %s, want completed", st.State)
	}
	if st.Report == nil || len(st.Report.Rows) == 0 {
		t.Error("completed job must carry a report")
	}
}

func TestForecastJobBadInputIsTerminal(t *testing.T) {
	runner := NewForecastRunner(&stubStorage{}, nil, stubMetrics{}, testRunnerConfig(), nil, nil)
	mc := cache.NewMemoryCache()
	job := NewForecastJob(runner, mc, 0, nil)

	payload := ForecastJobPayload{
		JobID:   "job-2",
		Request: models.ForecastRequest{Points: inlinePoints(3)},
	}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("short series must not be retried, got %v", err)
	}

	var st models.ForecastJobStatus
	if err := mc.Get(context.Background(), JobStatusKey("job-2"), &st); err != nil {
		t.Fatalf("Get status: %v", err)
	}
	if st.State != models.JobStateFailed {
		t.Errorf("state = %s, want failed", st.State)
	}
	if st.Error == "" {
		t.Error("failed job must carry an error message")
	}
}
