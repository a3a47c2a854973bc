package usecase

import (
	"context"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	mid "github.com/Hjcho123/PlusAlpha-sub001/internal/middleware"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// TickCollector consumes the push channel and feeds ticks through the
// pipeline into the store. A channel error ends the tick flow for good: no
// automatic reconnect is attempted and the system degrades to the refresh
// scheduler's poll-only updates.
type TickCollector struct {
	stream  drepo.MarketStream
	pipe    *mid.TickPipeline
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewTickCollector creates a collector.
func NewTickCollector(stream drepo.MarketStream, pipe *mid.TickPipeline, metrics drepo.Metrics, logger *applogger.Logger) *TickCollector {
	return &TickCollector{stream: stream, pipe: pipe, metrics: metrics, logger: logger}
}

// IsConnected reports push-channel status.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects the channel and launches the consume loop. A connect
// failure is logged and returned, but callers treat it as degradation, not
// a fatal error.
func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		c.metrics.RecordError("stream_connect")
		c.logger.Warn("collector: connect failed, poll-only mode", applogger.Error(err))
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}
			if err != nil {
				c.metrics.RecordError("stream_read")
				c.logger.Warn("collector: channel error, poll-only mode", applogger.Error(err))
				return
			}
		case t, ok := <-tickCh:
			if !ok {
				return
			}
			if t == nil {
				continue
			}
			if err := c.pipe.Process(t); err != nil {
				c.logger.Debug("collector: tick rejected", applogger.Error(err))
			}
		}
	}
}

// Stop closes the push channel.
func (c *TickCollector) Stop() error {
	return c.stream.Close()
}
