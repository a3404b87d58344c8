package api

import (
	"encoding/json"
	"errors"
	"time"

	"CostCast/internal/domain/models"
	"CostCast/internal/forecast"
	"CostCast/internal/service/ratelimit"
	"CostCast/internal/usecase"
	"CostCast/pkg/cache"
	xhttp "CostCast/pkg/http"
	xlogger "CostCast/pkg/logger"
	"CostCast/pkg/queue"
	"CostCast/pkg/util"

	"github.com/labstack/echo/v4"
)

// ForecastHandler exposes the forecast pipeline over HTTP.
type ForecastHandler struct {
	logger *xlogger.Logger
	runner *usecase.ForecastRunner
	cache  cache.Service
	ttl    time.Duration
	rl     *ratelimit.Limiter
	jobs   queue.QueueService
}

func NewForecastHandler(logger *xlogger.Logger, runner *usecase.ForecastRunner) *ForecastHandler {
	return &ForecastHandler{logger: logger, runner: runner, rl: ratelimit.New()}
}

// SetCache enables report caching for storage-backed requests.
func (h *ForecastHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	h.ttl = ttl
}

// SetJobQueue enables asynchronous runs over the redis queue.
func (h *ForecastHandler) SetJobQueue(q queue.QueueService) { h.jobs = q }

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/forecast", h.Forecast)
	g.GET("/forecast", h.Forecast)
	g.GET("/milestones", h.Milestones)
	g.POST("/forecast/jobs", h.SubmitJob)
	g.GET("/forecast/jobs/:id", h.JobStatus)
	g.DELETE("/forecast/cache", h.InvalidateCache)
}

// InvalidateCache drops cached reports, scoped to one account when the
// account query param is set.
func (h *ForecastHandler) InvalidateCache(c echo.Context) error {
	if h.cache == nil {
		return xhttp.SuccessResponse(c, map[string]string{"status": "cache disabled"})
	}
	prefix := "forecast:"
	if account := c.QueryParam("account"); account != "" {
		prefix = cache.GenerateKey("forecast", account) + ":"
	}
	pattern := cache.BuildPattern(prefix)
	if err := h.cache.DeleteByPattern(c.Request().Context(), pattern); err != nil {
		h.logger.Error("cache invalidation failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache invalidation failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"pattern": pattern})
}

// Forecast runs the full pipeline and returns the merged report.
func (h *ForecastHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":forecast", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	ctx := c.Request().Context()
	key := h.cacheKey(req)
	if key != "" && h.cache != nil {
		var cached models.ForecastReport
		if err := h.cache.Get(ctx, key, &cached); err == nil {
			h.logger.Debug("forecast cache hit", xlogger.String("key", key))
			return xhttp.SuccessResponse(c, &cached)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("forecast cache get failed", xlogger.Error(err))
		}
	}

	rep, err := h.runner.Run(ctx, req)
	if err != nil {
		return h.runError(c, err)
	}

	if key != "" && h.cache != nil {
		if err := h.cache.Set(ctx, key, rep, h.ttl); err != nil {
			h.logger.Warn("forecast cache set failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, rep)
}

// Milestones runs the pipeline and returns only the milestone totals
// and summary.
func (h *ForecastHandler) Milestones(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Milestones = true
	if !h.rl.Allow(c.RealIP()+":milestones", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	rep, err := h.runner.Run(c.Request().Context(), req)
	if err != nil {
		return h.runError(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"account":       rep.Account,
		"granularity":   rep.Granularity,
		"last_observed": rep.LastObserved,
		"milestones":    rep.Milestones,
		"summary":       rep.Summary,
	})
}

// SubmitJob enqueues an asynchronous run and returns its job id.
func (h *ForecastHandler) SubmitJob(c echo.Context) error {
	if h.jobs == nil || h.cache == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_JOBS_DISABLED", "", "asynchronous runs are not configured", 503))
	}
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":jobs", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	ctx := c.Request().Context()
	id := util.RandomID(12)
	st := &models.ForecastJobStatus{ID: id, State: models.JobStateQueued, UpdatedAt: time.Now().UTC()}
	if err := h.cache.Set(ctx, usecase.JobStatusKey(id), st, time.Hour); err != nil {
		h.logger.Error("job status init failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed").WithError(err))
	}
	payload := usecase.ForecastJobPayload{JobID: id, Request: *req}
	if err := h.jobs.PublishMessage(ctx, usecase.ForecastJobType, payload); err != nil {
		h.logger.Error("job enqueue failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed").WithError(err))
	}
	return xhttp.CreatedResponse(c, st)
}

// JobStatus returns the state of an asynchronous run.
func (h *ForecastHandler) JobStatus(c echo.Context) error {
	if h.cache == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_JOBS_DISABLED", "", "asynchronous runs are not configured", 503))
	}
	id := c.Param("id")
	if id == "" {
		return xhttp.BadRequestResponse(c, "job id required")
	}
	var st models.ForecastJobStatus
	if err := h.cache.Get(c.Request().Context(), usecase.JobStatusKey(id), &st); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return xhttp.NotFoundResponse(c, "unknown job id")
		}
		h.logger.Error("job status read failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("job status read failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, &st)
}

func (h *ForecastHandler) runError(c echo.Context, err error) error {
	if errors.Is(err, forecast.ErrInsufficientData) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "", err.Error(), 422).WithError(err))
	}
	h.logger.Error("forecast run failed", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("forecast run failed").WithError(err))
}

// cacheKey is empty for inline-series requests; those are cheap to
// recompute and unbounded as keys. The params blob is hashed so the key
// stays bounded; the account stays in the clear for pattern deletes.
func (h *ForecastHandler) cacheKey(req *models.ForecastRequest) string {
	if len(req.Points) > 0 || req.Account == "" {
		return ""
	}
	p, _ := json.Marshal(req.Params)
	return cache.GenerateKeyWithParams("forecast", req.Account, req.From, req.To,
		boolKey(req.Ensemble)+boolKey(req.Milestones), cache.HashKey(string(p)))
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
