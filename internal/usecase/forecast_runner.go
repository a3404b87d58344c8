package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"CostCast/internal/domain/models"
	drepo "CostCast/internal/domain/repository"
	"CostCast/internal/forecast"
	"CostCast/pkg/config"
	"CostCast/pkg/logger"
	"CostCast/pkg/util"
)

// columnOrder fixes the position of every algorithm in the output table.
var columnOrder = []string{
	forecast.AlgoSMA,
	forecast.AlgoES,
	forecast.AlgoHoltWinters,
	forecast.AlgoARIMA,
	forecast.AlgoSARIMA,
	forecast.AlgoTheta,
	forecast.AlgoProphet,
	forecast.AlgoNeuralProphet,
	forecast.AlgoDarts,
}

// ForecastRunner executes one forecast run end to end: gather the
// series, infer granularity, build the horizon, run every forecaster,
// combine the ensemble, aggregate milestones and assemble the report.
type ForecastRunner struct {
	store    drepo.Storage
	pub      drepo.Publisher
	metrics  drepo.Metrics
	cfg      *config.Config
	adapters map[string]forecast.Forecaster
	log      *logger.Logger
}

func NewForecastRunner(
	store drepo.Storage,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	cfg *config.Config,
	adapters []forecast.Forecaster,
	log *logger.Logger,
) *ForecastRunner {
	byName := make(map[string]forecast.Forecaster, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &ForecastRunner{
		store:    store,
		pub:      pub,
		metrics:  metrics,
		cfg:      cfg,
		adapters: byName,
		log:      log,
	}
}

// Run executes the pipeline for one request. The only error paths are
// series acquisition and cleaning; individual forecaster failures
// degrade to missing columns.
func (r *ForecastRunner) Run(ctx context.Context, req *models.ForecastRequest) (*models.ForecastReport, error) {
	start := time.Now()

	points, err := r.gatherPoints(ctx, req)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("gather_series")
		}
		return nil, err
	}

	series, err := forecast.NewSeries(points)
	if err != nil {
		return nil, err
	}
	if min := r.cfg.Forecast.MinDataPoints; series.Len() < min {
		return nil, fmt.Errorf("%w (have %d, need %d)", forecast.ErrInsufficientData, series.Len(), min)
	}

	g := forecast.InferGranularity(series)
	last := series.Last().TS
	h := forecast.NewHorizon(last, g)
	reg := r.buildRegistry(req.Params)

	results := make(map[string]forecast.Result, len(reg.Names())+1)
	var diags []forecast.Diagnostic
	for _, name := range reg.Names() {
		f, _ := reg.Get(name)
		t0 := time.Now()
		res, ferr := f.Forecast(ctx, series, h)
		if ferr != nil {
			res = forecast.AllMissing(name, len(h), forecast.Diagnostic{
				Algorithm: name,
				Code:      "failed",
				Message:   ferr.Error(),
			})
		}
		if r.metrics != nil {
			r.metrics.RecordAlgorithm(name, time.Since(t0).Seconds())
		}
		results[name] = res
		diags = append(diags, res.Diagnostics...)
	}

	algorithms := reg.Names()
	if req.Ensemble {
		results[forecast.AlgoEnsemble] = forecast.Ensemble(results)
		algorithms = append(algorithms, forecast.AlgoEnsemble)
	}

	var milestones []forecast.MilestoneTotal
	if req.Milestones {
		milestones = forecast.MilestoneTotals(forecast.Milestones(last, g), h, results)
	}

	report := &models.ForecastReport{
		Account:      req.Account,
		Granularity:  g,
		LastObserved: last,
		Algorithms:   algorithms,
		Rows:         buildRows(series, h, algorithms, results),
		Milestones:   milestones,
		Diagnostics:  diags,
		Summary:      summarize(milestones),
		GeneratedAt:  time.Now().UTC(),
	}

	if r.metrics != nil {
		r.metrics.RecordRun(string(g))
		r.metrics.RecordLatency("forecast_run", time.Since(start).Seconds())
	}
	r.publishEvent(ctx, report)

	if r.log != nil {
		r.log.Info("forecast run complete",
			logger.String("account", req.Account),
			logger.String("granularity", string(g)),
			logger.Int("observations", series.Len()),
			logger.Int("horizon", len(h)),
			logger.Duration("duration_ms", time.Since(start)),
		)
	}
	return report, nil
}

func (r *ForecastRunner) gatherPoints(ctx context.Context, req *models.ForecastRequest) ([]forecast.Point, error) {
	if len(req.Points) > 0 {
		out := make([]forecast.Point, 0, len(req.Points))
		for i, p := range req.Points {
			ts, err := parseRequestDate(p.Date)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			out = append(out, forecast.Point{TS: ts, Cost: p.Cost})
		}
		return out, nil
	}

	if req.Account == "" {
		return nil, fmt.Errorf("either points or account is required")
	}
	from := time.Time{}
	to := time.Now().UTC()
	if req.From != "" {
		t, err := parseRequestDate(req.From)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		from = t
	}
	if req.To != "" {
		t, err := parseRequestDate(req.To)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		to = t
	}
	return r.store.LoadSeries(ctx, req.Account, from, to)
}

// buildRegistry assembles the forecasters in column order. Request
// params override configured defaults for the self-contained four;
// adapter-backed entries come preconfigured from DI.
func (r *ForecastRunner) buildRegistry(p models.ForecastParams) *forecast.Registry {
	fc := r.cfg.Forecast

	window := fc.SMA.Window
	if p.SMAWindow > 0 {
		window = p.SMAWindow
	}
	esAlpha := fc.ES.Alpha
	if p.ESAlpha > 0 {
		esAlpha = p.ESAlpha
	}
	hwAlpha, hwBeta, hwGamma, periods := fc.HW.Alpha, fc.HW.Beta, fc.HW.Gamma, fc.HW.SeasonalPeriods
	if p.HWAlpha > 0 {
		hwAlpha = p.HWAlpha
	}
	if p.HWBeta > 0 {
		hwBeta = p.HWBeta
	}
	if p.HWGamma > 0 {
		hwGamma = p.HWGamma
	}
	if p.HWSeasonalPeriods > 0 {
		periods = p.HWSeasonalPeriods
	}
	theta := fc.Theta.Value
	if p.Theta > 0 {
		theta = p.Theta
	}

	local := map[string]forecast.Forecaster{
		forecast.AlgoSMA:         forecast.NewSMA(window),
		forecast.AlgoES:          forecast.NewES(esAlpha),
		forecast.AlgoHoltWinters: forecast.NewHoltWinters(hwAlpha, hwBeta, hwGamma, periods),
		forecast.AlgoTheta:       forecast.NewTheta(theta),
	}

	reg := forecast.NewRegistry()
	for _, name := range columnOrder {
		if f, ok := local[name]; ok {
			reg.Register(f)
			continue
		}
		if a, ok := r.adapters[name]; ok {
			reg.Register(a)
		}
	}
	return reg
}

func (r *ForecastRunner) publishEvent(ctx context.Context, rep *models.ForecastReport) {
	if r.pub == nil {
		return
	}
	ev := &models.RunCompletedEvent{
		Account:      rep.Account,
		Granularity:  rep.Granularity,
		LastObserved: rep.LastObserved,
		Algorithms:   rep.Algorithms,
		Milestones:   rep.Milestones,
		GeneratedAt:  rep.GeneratedAt,
	}
	if err := r.pub.PublishRunCompleted(ctx, ev); err != nil {
		if r.metrics != nil {
			r.metrics.RecordError("publish_event")
		}
		if r.log != nil {
			r.log.Warn("publish run event failed", logger.Error(err))
		}
	}
}

// buildRows merges history and forecasts into one table: historical rows
// carry the actual cost, horizon rows carry one value per algorithm.
func buildRows(s forecast.Series, h forecast.Horizon, algorithms []string, results map[string]forecast.Result) []models.ForecastRow {
	rows := make([]models.ForecastRow, 0, s.Len()+len(h))
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		rows = append(rows, models.ForecastRow{Date: p.TS, Actual: forecast.Some(p.Cost)})
	}
	for i, ts := range h {
		cells := make(map[string]forecast.Value, len(algorithms))
		for _, name := range algorithms {
			r, ok := results[name]
			if !ok || i >= len(r.Values) {
				cells[name] = forecast.Missing()
				continue
			}
			cells[name] = r.Values[i]
		}
		rows = append(rows, models.ForecastRow{Date: ts, Forecasts: cells})
	}
	return rows
}

// summarize renders milestone totals as readable lines, two decimals,
// algorithms sorted by name within each milestone.
func summarize(milestones []forecast.MilestoneTotal) string {
	if len(milestones) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range milestones {
		fmt.Fprintf(&b, "%s (%s):", m.Label, m.Date.Format("2006-01-02"))
		names := make([]string, 0, len(m.Totals))
		for name := range m.Totals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, " %s=%.2f", name, m.Totals[name])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func parseRequestDate(s string) (time.Time, error) {
	if t, ok := util.ParseTime(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}
