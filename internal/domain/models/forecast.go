package models

import (
	"time"

	"CostCast/internal/forecast"
)

// ForecastRow is one row of the merged output table: historical rows have
// Actual set and no forecasts, horizon rows have per-algorithm values.
type ForecastRow struct {
	Date      time.Time                 `json:"date"`
	Actual    forecast.Value            `json:"actual"`
	Forecasts map[string]forecast.Value `json:"forecasts,omitempty"`
}

// ForecastReport is the full result of one pipeline run.
// Note: no transport (json/http) concerns beyond plain tags here.
type ForecastReport struct {
	Account      string                    `json:"account,omitempty"`
	Granularity  forecast.Granularity      `json:"granularity"`
	LastObserved time.Time                 `json:"last_observed"`
	Algorithms   []string                  `json:"algorithms"`
	Rows         []ForecastRow             `json:"rows"`
	Milestones   []forecast.MilestoneTotal `json:"milestones,omitempty"`
	Diagnostics  []forecast.Diagnostic     `json:"diagnostics,omitempty"`
	Summary      string                    `json:"summary,omitempty"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// Job states for asynchronous forecast runs.
const (
	JobStateQueued    = "queued"
	JobStateCompleted = "completed"
	JobStateFailed    = "failed"
)

// ForecastJobStatus tracks one asynchronous forecast run.
type ForecastJobStatus struct {
	ID        string          `json:"id"`
	State     string          `json:"state"`
	Error     string          `json:"error,omitempty"`
	Report    *ForecastReport `json:"report,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunCompletedEvent is published after a successful forecast run.
type RunCompletedEvent struct {
	Account      string                    `json:"account,omitempty"`
	Granularity  forecast.Granularity      `json:"granularity"`
	LastObserved time.Time                 `json:"last_observed"`
	Algorithms   []string                  `json:"algorithms"`
	Milestones   []forecast.MilestoneTotal `json:"milestones,omitempty"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}
