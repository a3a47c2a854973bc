package repository

import (
	"context"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
)

// MarketStream is the push channel delivering live ticks for subscribed
// symbols. Implementations never reconnect on their own; a dropped
// connection degrades the system to poll-only updates.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Unsubscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Close() error
	IsConnected() bool
}

// QuoteFetcher is the request/response collaborator returning a full quote
// snapshot for one symbol.
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (*models.Quote, error)
}

// InsightModel is the remote language-model collaborator. GenerateInsight
// must return a strictly parsed result or an error; optimistic field access
// on a loosely shaped response is not allowed.
type InsightModel interface {
	GenerateInsight(ctx context.Context, quote *models.Quote) (*models.ParsedInsight, error)
	Answer(ctx context.Context, question string, insight *models.Insight) (string, error)
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordTick(symbol string)
	RecordTickDropped(kind string)
	RecordRefreshCycle(failed int)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordInsight(outcome string)
	RecordLatency(op string, seconds float64)
}
