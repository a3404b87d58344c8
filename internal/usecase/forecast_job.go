package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CostCast/internal/domain/models"
	"CostCast/internal/forecast"
	"CostCast/pkg/cache"
	"CostCast/pkg/logger"
	"CostCast/pkg/queue"
)

// ForecastJobType is the queue message type for asynchronous runs.
const ForecastJobType = "forecast.run"

// ForecastJobPayload is the queued request for one asynchronous run.
type ForecastJobPayload struct {
	JobID   string                 `json:"job_id"`
	Request models.ForecastRequest `json:"request"`
}

// JobStatusKey is the cache key holding a job's status and result. Jobs
// live under their own prefix so report invalidation cannot touch them.
func JobStatusKey(id string) string { return cache.GenerateKey("job", id) }

// ForecastJob executes queued forecast runs. Slow external backends
// (NeuralProphet in particular) make synchronous HTTP calls impractical
// for some callers; the job stores its result in the cache for pickup.
type ForecastJob struct {
	runner *ForecastRunner
	cache  cache.Service
	ttl    time.Duration
	log    *logger.Logger
}

func NewForecastJob(runner *ForecastRunner, c cache.Service, ttl time.Duration, log *logger.Logger) *ForecastJob {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ForecastJob{runner: runner, cache: c, ttl: ttl, log: log}
}

func (j *ForecastJob) Name() string { return "forecast_runner" }
func (j *ForecastJob) Type() string { return ForecastJobType }

// Handle runs the forecast and stores the outcome. Bad input is
// terminal; only infrastructure errors are returned for retry.
func (j *ForecastJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ForecastJobPayload](payload)
	if err != nil {
		return fmt.Errorf("parse forecast job: %w", err)
	}

	rep, runErr := j.runner.Run(ctx, &p.Request)
	if runErr != nil {
		if j.log != nil {
			j.log.Warn("forecast job failed",
				logger.String("job_id", p.JobID),
				logger.Error(runErr))
		}
		j.store(ctx, &models.ForecastJobStatus{
			ID:        p.JobID,
			State:     models.JobStateFailed,
			Error:     runErr.Error(),
			UpdatedAt: time.Now().UTC(),
		})
		if errors.Is(runErr, forecast.ErrInsufficientData) {
			return nil // retrying cannot help
		}
		return runErr
	}

	j.store(ctx, &models.ForecastJobStatus{
		ID:        p.JobID,
		State:     models.JobStateCompleted,
		Report:    rep,
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

func (j *ForecastJob) store(ctx context.Context, st *models.ForecastJobStatus) {
	if j.cache == nil {
		return
	}
	if err := j.cache.Set(ctx, JobStatusKey(st.ID), st, j.ttl); err != nil && j.log != nil {
		j.log.Error("store job status failed",
			logger.String("job_id", st.ID),
			logger.Error(err))
	}
}

var _ queue.Job = (*ForecastJob)(nil)
