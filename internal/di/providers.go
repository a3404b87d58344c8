package di

import (
	"context"
	"fmt"
	"time"

	"CostCast/internal/domain/repository"
	"CostCast/internal/forecast"
	"CostCast/internal/handler/api"
	mid "CostCast/internal/middleware"
	internalrepo "CostCast/internal/repository"
	"CostCast/internal/service/awscost"
	"CostCast/internal/services/statforecast"
	"CostCast/internal/usecase"
	"CostCast/pkg/cache"
	pkgch "CostCast/pkg/clickhouse"
	"CostCast/pkg/config"
	pkgkafka "CostCast/pkg/kafka"
	"CostCast/pkg/logger"
	"CostCast/pkg/metrics"
	"CostCast/pkg/queue"
	"CostCast/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStorage creates ClickHouse cost storage and its schema.
func ProvideStorage(chClient *pkgch.Client, cfg *config.Config, l *logger.Logger) (repository.Storage, error) {
	store := internalrepo.NewClickHouseStorage(chClient, cfg.ClickHouse.Database+".cost_observations", l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvidePublisher creates the Kafka publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic, cfg.Kafka.EventsTopic)
}

// ProvideCostFeed creates the Cost Explorer poller.
func ProvideCostFeed(cfg *config.Config, l *logger.Logger) repository.CostFeed {
	return awscost.New(cfg, l)
}

// ProvideKafkaCostsHandler registers the handler for the costs topic.
func ProvideKafkaCostsHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaCostsHandler {
	return usecase.NewKafkaCostsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideCostProcessor creates the observation processor.
func ProvideCostProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CostProcessor {
	return usecase.NewCostProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideCostCollector creates the feed collector with its ingest pipeline.
func ProvideCostCollector(
	feed repository.CostFeed,
	processor *usecase.CostProcessor,
	m repository.Metrics,
) *usecase.CostCollector {
	pipe := mid.NewIngestPipeline(processor, m, mid.WithBufferSize(2000))
	return usecase.NewCostCollector(feed, processor, m, pipe)
}

// ProvideStatAdapters builds the degrading adapters for the external
// statistical service, in no particular order; the runner fixes column
// positions.
func ProvideStatAdapters(cfg *config.Config, m repository.Metrics, l *logger.Logger) []forecast.Forecaster {
	client := statforecast.NewClient(cfg, l)
	return []forecast.Forecaster{
		statforecast.NewAdapter(statforecast.NewARIMA(client, cfg), cfg.Stats.ARIMA.Enabled, m, l),
		statforecast.NewAdapter(statforecast.NewSARIMA(client, cfg), cfg.Stats.SARIMA.Enabled, m, l),
		statforecast.NewAdapter(statforecast.NewProphet(client, cfg), cfg.Stats.Prophet.Enabled, m, l),
		statforecast.NewAdapter(statforecast.NewNeuralProphet(client, cfg), cfg.Stats.NeuralProphet.Enabled, m, l),
		statforecast.NewAdapter(statforecast.NewDarts(client, cfg), cfg.Stats.Darts.Enabled, m, l),
	}
}

// ProvideForecastRunner creates the forecast pipeline runner.
func ProvideForecastRunner(
	store repository.Storage,
	pub repository.Publisher,
	m repository.Metrics,
	cfg *config.Config,
	adapters []forecast.Forecaster,
	l *logger.Logger,
) *usecase.ForecastRunner {
	return usecase.NewForecastRunner(store, pub, m, cfg, adapters, l)
}

// ProvideCacheService builds the report cache: layered memory+redis when
// redis is configured, memory-only otherwise, nil when disabled.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideJobQueue creates the redis-backed job queue for asynchronous
// forecast runs, nil when jobs are disabled.
func ProvideJobQueue(
	cfg *config.Config,
	runner *usecase.ForecastRunner,
	c cache.Service,
	l *logger.Logger,
) *queue.RedisQueue {
	if !cfg.Jobs.Enabled || c == nil {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		RetryLimit: cfg.Jobs.RetryLimit,
		RetryDelay: cfg.Jobs.RetryDelay,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewForecastJob(runner, c, cfg.Jobs.ResultTTL, l))
	return q
}

// ProvideForecastHandler creates the HTTP handler.
func ProvideForecastHandler(l *logger.Logger, runner *usecase.ForecastRunner, c cache.Service, jobs *queue.RedisQueue, cfg *config.Config) *api.ForecastHandler {
	h := api.NewForecastHandler(l, runner)
	if c != nil {
		h.SetCache(c, cfg.Cache.TTL)
	}
	if jobs != nil {
		h.SetJobQueue(jobs)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.CostCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCostsHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	handler *api.ForecastHandler,
	jobs *queue.RedisQueue,
	l *logger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	// Aggregate repeated error logs onto the logs topic instead of
	// flooding the broker line by line.
	if cfg.Backend.Type == "kafka" && producer != nil && cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, l)
	app.SetHTTPHandler(handler)
	if jobs != nil {
		app.SetJobQueue(jobs)
	}
	if collector != nil {
		app.CostProc = collector.Processor()
	}
	return app
}

// kafkaLogPublisher adapts the Kafka producer to the log collector's
// publisher interface.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
