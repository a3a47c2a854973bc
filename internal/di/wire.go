//go:build wireinject
// +build wireinject

package di

import (
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/config"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Market data clients
		ProvideQuoteFetcher,
		ProvideMarketStream,
		ProvideInsightModel,

		// Use cases
		ProvideWatchlistStore,
		ProvideTickPipeline,
		ProvideTickCollector,
		ProvideRefreshScheduler,
		ProvideSubscriptionManager,
		ProvideInsightOrchestrator,
		ProvideChatService,
		ProvideForecastOptions,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
