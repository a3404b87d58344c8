package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"CostCast/internal/di"
	"CostCast/internal/domain/models"
	"CostCast/internal/repository"
	"CostCast/internal/usecase"
	"CostCast/pkg/config"
	"CostCast/pkg/logger"
	"CostCast/pkg/util"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	csvPath := flag.String("csv", "", "forecast a local CSV export and exit")
	csvFrom := flag.String("from", "", "drop CSV rows before this date")
	csvTo := flag.String("to", "", "drop CSV rows after this date")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *csvPath != "" {
		if err := runCSV(cfg, *csvPath, *csvFrom, *csvTo); err != nil {
			log.Fatalf("csv forecast failed: %v", err)
		}
		return
	}

	log.Printf("env=%s backend=%s", cfg.Environment, cfg.Backend.Type)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
	log.Printf("kafka: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

// runCSV runs the local algorithms over a CSV file and prints the
// report as JSON. No storage, broker or external service is touched.
func runCSV(cfg *config.Config, path, fromStr, toStr string) error {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}

	pts, err := repository.NewCSVSeriesSource(path).Load()
	if err != nil {
		return err
	}
	from := util.ParseTimeDefault(fromStr, time.Time{})
	to := util.ParseTimeDefault(toStr, time.Now().UTC().Add(24*time.Hour))
	req := &models.ForecastRequest{
		Ensemble:   true,
		Milestones: true,
	}
	for _, p := range pts {
		if p.TS.Before(from) || p.TS.After(to) {
			continue
		}
		req.Points = append(req.Points, models.SeriesPointPayload{Date: p.TS.Format("2006-01-02"), Cost: p.Cost})
	}

	runner := usecase.NewForecastRunner(nil, nil, nil, cfg, nil, l)
	rep, err := runner.Run(context.Background(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
