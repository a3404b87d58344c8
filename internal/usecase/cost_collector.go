package usecase

import (
	"context"

	"CostCast/internal/domain/models"
	drepo "CostCast/internal/domain/repository"
	mid "CostCast/internal/middleware"
)

// CostCollector drains the cost feed and pushes observations through
// the ingest pipeline.
type CostCollector struct {
	feed    drepo.CostFeed
	proc    *CostProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

func NewCostCollector(feed drepo.CostFeed, proc *CostProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *CostCollector {
	return &CostCollector{feed: feed, proc: proc, metrics: metrics, pipe: pipe}
}

// IsRunning reports whether the underlying feed is active.
func (c *CostCollector) IsRunning() bool {
	return c.feed.IsRunning()
}

func (c *CostCollector) Start(ctx context.Context) error {
	if err := c.feed.Start(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	obsCh, errCh := c.feed.Read(ctx)
	go c.consume(ctx, obsCh, errCh)
	return nil
}

func (c *CostCollector) consume(ctx context.Context, obsCh <-chan *models.CostObservation, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("feed")
			}
		case o := <-obsCh:
			if o == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, o)
			} else {
				_ = c.proc.Process(ctx, o)
			}
		}
	}
}

// Processor returns the underlying CostProcessor for lifecycle management.
func (c *CostCollector) Processor() *CostProcessor { return c.proc }

// Shutdown stops the pipeline and closes the feed.
func (c *CostCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.feed.Close()
}
