package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
)

// TickSink is the minimal store interface the pipeline forwards into.
type TickSink interface {
	ApplyTick(tick *models.Tick)
}

// TickPipeline sits between the push channel and the watchlist store. It
// validates inbound ticks and throttles per-symbol update rate so a noisy
// symbol cannot monopolize the store's serialization point.
type TickPipeline struct {
	sink    TickSink
	metrics drepo.Metrics
	maxRPS  int

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// PipelineOption configures TickPipeline.
type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max accepted ticks per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewTickPipeline creates a pipeline forwarding into sink.
func NewTickPipeline(sink TickSink, metrics drepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   20,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates and throttles one tick, then forwards it. Throttled
// ticks are dropped silently; invalid ticks return an error.
func (p *TickPipeline) Process(tick *models.Tick) error {
	if err := validateTick(tick); err != nil {
		p.metrics.RecordTickDropped("invalid")
		return err
	}
	if !p.allow(tick.Symbol, time.Now()) {
		p.metrics.RecordTickDropped("throttled")
		return nil
	}
	p.sink.ApplyTick(tick)
	return nil
}

func validateTick(t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Price <= 0 {
		return fmt.Errorf("non-positive price")
	}
	return nil
}

func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	last := p.lastSeen[symbol]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
