package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CostCast/internal/domain/models"
	domrepo "CostCast/internal/domain/repository"
	"CostCast/internal/forecast"
	pkgch "CostCast/pkg/clickhouse"
	applogger "CostCast/pkg/logger"
)

const costSchema = `
CREATE TABLE IF NOT EXISTS %s (
    ts      DateTime,
    account String,
    service String,
    cost    Float64
) ENGINE = ReplacingMergeTree
ORDER BY (account, service, ts)
`

// ClickHouseStorage persists cost observations and serves the historical
// series for forecasting. Duplicate (account, service, ts) rows collapse
// to the last write, matching the last-wins cleaning rule upstream.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewClickHouseStorage(ch *pkgch.Client, table string, l *applogger.Logger) domrepo.Storage {
	return &ClickHouseStorage{db: ch.DB(), table: table, l: l}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(costSchema, s.table)); err != nil {
		return fmt.Errorf("init cost schema: %w", err)
	}
	return nil
}

func (s *ClickHouseStorage) Store(ctx context.Context, o *models.CostObservation) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, account, service, cost) VALUES (?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, time.Unix(o.Timestamp, 0).UTC(), o.Account, o.Service, o.Cost)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, obs []*models.CostObservation) error {
	if len(obs) == 0 {
		return nil
	}
	// Multi-row VALUES inserts, chunked to keep statements bounded.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, o := range obs[start:end] {
			if o == nil || o.Account == "" || o.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, time.Unix(o.Timestamp, 0).UTC(), o.Account, o.Service, o.Cost)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, account, service, cost) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// loadSeriesQuery reads through FINAL: the poller re-emits its whole
// lookback window every interval, and ReplacingMergeTree only collapses
// those duplicates at merge time. Without FINAL the sum double-counts
// rows written between merges.
func loadSeriesQuery(table string) string {
	return fmt.Sprintf(`
        SELECT ts, sum(cost) AS total
        FROM %s FINAL
        WHERE account = ? AND ts >= ? AND ts <= ?
        GROUP BY ts
        ORDER BY ts ASC
    `, table)
}

// LoadSeries returns the account's total cost per period, ascending.
// Costs are summed across services so the series matches what the
// billing console reports for the account.
func (s *ClickHouseStorage) LoadSeries(ctx context.Context, account string, from, to time.Time) ([]forecast.Point, error) {
	start := time.Now()
	q := loadSeriesQuery(s.table)
	rows, err := s.db.QueryContext(ctx, q, account, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse load_series query error",
				applogger.String("account", account),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("load series: %w", err)
	}
	defer rows.Close()

	out := make([]forecast.Point, 0, 512)
	for rows.Next() {
		var p forecast.Point
		if err := rows.Scan(&p.TS, &p.Cost); err != nil {
			return nil, fmt.Errorf("scan cost point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse load_series ok",
			applogger.String("account", account),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // connection owned by pkg client
}
