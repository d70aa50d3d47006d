//go:build wireinject
// +build wireinject

package di

import (
	"FinResearch/internal/usecase"
	"FinResearch/pkg/config"
	"FinResearch/pkg/server"

	"github.com/google/wire"
)

var researchSet = wire.NewSet(
	// Infrastructure
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideByteCache,

	// Providers and storage
	ProvideAI,
	ProvideMarketData,
	ProvideReportStore,
	ProvidePendingReports,

	// Delivery
	ProvideHub,
	ProvideEventPublisher,

	// Use cases
	ProvideResearchUseCase,
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		researchSet,
		ProvideHTTPHandler,
		ProvideRateLimiter,
		ProvideKafkaConsumer,
		ProvideKafkaResearchHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeResearch wires the research use case alone, for the CLI.
func InitializeResearch(cfg *config.Config) (*usecase.ResearchUseCase, func(), error) {
	wire.Build(researchSet)
	return nil, nil, nil
}
