//go:build wireinject
// +build wireinject

package di

import (
	"CostCast/pkg/config"
	"CostCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCacheService,

		// Repositories
		ProvideStorage,
		ProvidePublisher,
		ProvideCostFeed,

		// Use cases
		ProvideCostProcessor,
		ProvideCostCollector,
		ProvideKafkaCostsHandler,
		ProvideStatAdapters,
		ProvideForecastRunner,
		ProvideJobQueue,

		// HTTP
		ProvideForecastHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
