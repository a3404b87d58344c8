package awscost

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"CostCast/internal/domain/models"
	drepo "CostCast/internal/domain/repository"
	appconfig "CostCast/pkg/config"
	"CostCast/pkg/logger"
	"CostCast/pkg/util"
)

const costMetric = "UnblendedCost"

// Poller implements CostFeed by polling the AWS Cost Explorer API.
// Each poll re-reads the lookback window; the ReplacingMergeTree sink
// makes re-emitting the same periods idempotent.
type Poller struct {
	region       string
	account      string
	granularity  string
	lookbackDays int
	pollInterval time.Duration
	log          *logger.Logger

	client *costexplorer.Client

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func New(cfg *appconfig.Config, log *logger.Logger) drepo.CostFeed {
	interval := cfg.AWSCost.PollInterval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Poller{
		region:       cfg.AWSCost.Region,
		account:      cfg.AWSCost.Account,
		granularity:  cfg.AWSCost.Granularity,
		lookbackDays: cfg.AWSCost.LookbackDays,
		pollInterval: interval,
		log:          log,
	}
}

// Start loads AWS credentials from the default chain and builds the
// Cost Explorer client.
func (p *Poller) Start(ctx context.Context) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	p.client = costexplorer.NewFromConfig(awsCfg)

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	if p.log != nil {
		p.log.Info("cost explorer poller started",
			logger.String("region", p.region),
			logger.String("granularity", p.granularity),
			logger.Int("lookback_days", p.lookbackDays),
		)
	}
	return nil
}

// Read polls immediately, then on every tick, and streams observations.
func (p *Poller) Read(ctx context.Context) (<-chan *models.CostObservation, <-chan error) {
	out := make(chan *models.CostObservation, 1024)
	errs := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	go func() {
		defer close(out)
		defer close(errs)

		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()

		for {
			if err := p.poll(ctx, out); err != nil {
				select {
				case errs <- err:
				default:
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out, errs
}

func (p *Poller) poll(ctx context.Context, out chan<- *models.CostObservation) error {
	if p.client == nil {
		return fmt.Errorf("poller not started")
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -p.lookbackDays)

	in := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(now.Format("2006-01-02")),
		},
		Granularity: types.Granularity(p.granularity),
		Metrics:     []string{costMetric},
		GroupBy: []types.GroupDefinition{{
			Type: types.GroupDefinitionTypeDimension,
			Key:  aws.String("SERVICE"),
		}},
	}

	count := 0
	for {
		resp, err := p.client.GetCostAndUsage(ctx, in)
		if err != nil {
			return fmt.Errorf("get cost and usage: %w", err)
		}

		for _, rbt := range resp.ResultsByTime {
			ts, err := periodStart(rbt)
			if err != nil {
				return err
			}
			ts = util.AlignToPeriod(ts, p.granularity)
			if len(rbt.Groups) == 0 {
				if obs := p.totalObservation(rbt, ts); obs != nil {
					if !send(ctx, out, obs) {
						return ctx.Err()
					}
					count++
				}
				continue
			}
			for _, g := range rbt.Groups {
				obs := p.groupObservation(g, ts)
				if obs == nil {
					continue
				}
				if !send(ctx, out, obs) {
					return ctx.Err()
				}
				count++
			}
		}

		if resp.NextPageToken == nil || *resp.NextPageToken == "" {
			break
		}
		in.NextPageToken = resp.NextPageToken
	}

	if p.log != nil {
		p.log.Debug("cost explorer poll complete", logger.Int("observations", count))
	}
	return nil
}

func (p *Poller) totalObservation(rbt types.ResultByTime, ts time.Time) *models.CostObservation {
	mv, ok := rbt.Total[costMetric]
	if !ok || mv.Amount == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(*mv.Amount, 64)
	if err != nil {
		return nil
	}
	return &models.CostObservation{
		Account:   p.account,
		Timestamp: ts.Unix(),
		Cost:      amount,
	}
}

func (p *Poller) groupObservation(g types.Group, ts time.Time) *models.CostObservation {
	mv, ok := g.Metrics[costMetric]
	if !ok || mv.Amount == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(*mv.Amount, 64)
	if err != nil {
		return nil
	}
	service := ""
	if len(g.Keys) > 0 {
		service = g.Keys[0]
	}
	return &models.CostObservation{
		Account:   p.account,
		Service:   service,
		Timestamp: ts.Unix(),
		Cost:      amount,
	}
}

func periodStart(rbt types.ResultByTime) (time.Time, error) {
	if rbt.TimePeriod == nil || rbt.TimePeriod.Start == nil {
		return time.Time{}, fmt.Errorf("result without time period")
	}
	ts, err := time.Parse("2006-01-02", *rbt.TimePeriod.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse period start: %w", err)
	}
	return ts, nil
}

func send(ctx context.Context, out chan<- *models.CostObservation, obs *models.CostObservation) bool {
	select {
	case out <- obs:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
