package repository

import (
	"context"
	"time"

	"CostCast/internal/domain/models"
	"CostCast/internal/forecast"
)

// CostFeed supplies cost observations from an upstream provider
// (e.g. AWS Cost Explorer polling).
type CostFeed interface {
	Start(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.CostObservation, <-chan error)
	Close() error
	IsRunning() bool
}

// Publisher pushes observations and run events to the message backend.
type Publisher interface {
	Publish(ctx context.Context, o *models.CostObservation) error
	PublishBatch(ctx context.Context, obs []*models.CostObservation) error
	PublishRunCompleted(ctx context.Context, ev *models.RunCompletedEvent) error
	Close() error
}

// Storage persists cost observations and serves historical series.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, o *models.CostObservation) error
	StoreBatch(ctx context.Context, obs []*models.CostObservation) error
	LoadSeries(ctx context.Context, account string, from, to time.Time) ([]forecast.Point, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational counters for ingestion and forecasting.
type Metrics interface {
	RecordObservation(backend, account string)
	RecordError(kind string)
	RecordRun(granularity string)
	RecordAlgorithm(algo string, seconds float64)
	RecordAdapterDegraded(algo, reason string)
	RecordLatency(op string, seconds float64)
}
