package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/usecase"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/cache"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/config"
	xhttp "github.com/Hjcho123/PlusAlpha-sub001/pkg/http"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// App encapsulates the entire application lifecycle: the stream collector,
// the refresh and subscription loops, and the HTTP surface.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	collector  *usecase.TickCollector
	scheduler  *usecase.RefreshScheduler
	subs       *usecase.SubscriptionManager
	cache      cache.Service
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TickCollector,
	scheduler *usecase.RefreshScheduler,
	subs *usecase.SubscriptionManager,
	c cache.Service,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		scheduler: scheduler,
		subs:      subs,
		cache:     c,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A failed stream connect is not fatal: the refresh loop keeps quotes
	// moving on poll-only updates.
	if err := a.collector.Start(ctx); err != nil {
		a.logger.Warn("app: stream unavailable, running poll-only", applogger.Error(err))
	}

	go a.scheduler.Run(ctx)
	go a.subs.Run(ctx)

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("app: http server start failed", applogger.Error(err))
		return err
	}
	a.logger.Info("app: started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Duration("refresh_interval", a.cfg.Refresh.Interval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("app: shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	if err := a.collector.Stop(); err != nil {
		a.logger.Warn("app: collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("app: http shutdown error", applogger.Error(err))
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Warn("app: cache close error", applogger.Error(err))
	}

	a.logger.Info("app: shutdown complete")
	return nil
}
