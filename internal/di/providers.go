package di

import (
	"fmt"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/handler/api"
	mid "github.com/Hjcho123/PlusAlpha-sub001/internal/middleware"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/service/ai"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/service/quotes"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/service/stream"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/services/forecast"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/usecase"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/cache"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/config"
	xhttp "github.com/Hjcho123/PlusAlpha-sub001/pkg/http"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/metrics"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the quote cache backend configured in YAML.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		c, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideQuoteFetcher creates the REST quote client.
func ProvideQuoteFetcher(cfg *config.Config, c cache.Service) repository.QuoteFetcher {
	return quotes.New(
		cfg.Quotes.BaseURL,
		cfg.Quotes.APIKey,
		cfg.Quotes.Timeout,
		quotes.WithCache(c, cfg.Quotes.CacheTTL),
	)
}

// ProvideMarketStream creates the WebSocket push channel client.
func ProvideMarketStream(cfg *config.Config, logger *applogger.Logger) repository.MarketStream {
	return stream.New(
		cfg.Stream.URL,
		cfg.Stream.APIKey,
		cfg.Stream.PingInterval,
		cfg.Stream.BufferSize,
		logger,
	)
}

// ProvideInsightModel creates the AI collaborator client.
func ProvideInsightModel(cfg *config.Config) repository.InsightModel {
	return ai.New(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
}

// ProvideWatchlistStore creates the central watchlist table.
func ProvideWatchlistStore(fetcher repository.QuoteFetcher, m repository.Metrics, logger *applogger.Logger) *usecase.WatchlistStore {
	return usecase.NewWatchlistStore(fetcher, m, logger)
}

// ProvideTickPipeline creates the validate-and-throttle stage between the
// stream and the store.
func ProvideTickPipeline(store *usecase.WatchlistStore, m repository.Metrics, cfg *config.Config) *mid.TickPipeline {
	return mid.NewTickPipeline(store, m, mid.WithMaxRPS(cfg.Refresh.MaxTicksPerSecond))
}

// ProvideTickCollector creates the stream consumer.
func ProvideTickCollector(
	s repository.MarketStream,
	pipe *mid.TickPipeline,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.TickCollector {
	return usecase.NewTickCollector(s, pipe, m, logger)
}

// ProvideRefreshScheduler creates the periodic reconciliation loop.
func ProvideRefreshScheduler(
	store *usecase.WatchlistStore,
	fetcher repository.QuoteFetcher,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.RefreshScheduler {
	return usecase.NewRefreshScheduler(
		store,
		fetcher,
		m,
		logger,
		cfg.Refresh.Interval,
		cfg.Refresh.MinStatusVisible,
		cfg.Refresh.PerSymbolTimeout,
	)
}

// ProvideSubscriptionManager aligns stream subscriptions with the store.
func ProvideSubscriptionManager(store *usecase.WatchlistStore, s repository.MarketStream, logger *applogger.Logger) *usecase.SubscriptionManager {
	return usecase.NewSubscriptionManager(store, s, logger)
}

// ProvideInsightOrchestrator creates the single-flight insight generator.
func ProvideInsightOrchestrator(
	store *usecase.WatchlistStore,
	model repository.InsightModel,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.InsightOrchestrator {
	return usecase.NewInsightOrchestrator(store, model, m, logger, cfg.AI.FallbackConfidence)
}

// ProvideChatService creates the per-insight chat thread service.
func ProvideChatService(model repository.InsightModel, logger *applogger.Logger) *usecase.ChatService {
	return usecase.NewChatService(model, logger)
}

// ProvideForecastOptions maps config to simulation parameters.
func ProvideForecastOptions(cfg *config.Config) forecast.Options {
	return forecast.Options{
		HorizonDays:      cfg.Forecast.HorizonDays,
		AnnualVolatility: cfg.Forecast.AnnualVolatility,
		AnnualDrift:      cfg.Forecast.AnnualDrift,
		NumSimulations:   cfg.Forecast.NumSimulations,
		NumSamplePaths:   cfg.Forecast.NumSamplePaths,
	}
}

// ProvideHTTPHandler bundles all API handlers into one route registrar.
func ProvideHTTPHandler(
	logger *applogger.Logger,
	store *usecase.WatchlistStore,
	scheduler *usecase.RefreshScheduler,
	collector *usecase.TickCollector,
	orch *usecase.InsightOrchestrator,
	chat *usecase.ChatService,
	fopts forecast.Options,
) xhttp.Handler {
	return xhttp.HandlerGroup{
		api.NewWatchlistHandler(logger, store, scheduler, collector),
		api.NewForecastHandler(logger, store, fopts),
		api.NewInsightsHandler(logger, orch, chat),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TickCollector,
	scheduler *usecase.RefreshScheduler,
	subs *usecase.SubscriptionManager,
	c cache.Service,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, logger, collector, scheduler, subs, c, handler)
}
