package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"

	"github.com/google/uuid"
)

// maxRecentInsights caps the retained most-recent insight list.
const maxRecentInsights = 6

// InsightOrchestrator generates trading insights, at most one at a time
// process-wide. A second Generate while one is in flight is rejected with
// ErrBusy immediately: no queueing, no side effects. The in-flight state is
// owned by the instance and observable through Busy.
type InsightOrchestrator struct {
	store              *WatchlistStore
	model              drepo.InsightModel
	metrics            drepo.Metrics
	logger             *applogger.Logger
	fallbackConfidence int

	inFlight atomic.Bool

	mu     sync.Mutex
	recent []models.Insight
}

// NewInsightOrchestrator creates an orchestrator.
func NewInsightOrchestrator(
	store *WatchlistStore,
	model drepo.InsightModel,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	fallbackConfidence int,
) *InsightOrchestrator {
	return &InsightOrchestrator{
		store:              store,
		model:              model,
		metrics:            metrics,
		logger:             logger,
		fallbackConfidence: fallbackConfidence,
	}
}

// Busy reports whether a generation is in flight.
func (o *InsightOrchestrator) Busy() bool {
	return o.inFlight.Load()
}

// Generate produces an insight for a watched symbol. The primary model is
// asked first; a transport error, timeout, or malformed response falls back
// to the rule evaluator over the same quote. The in-flight flag clears on
// every exit path.
func (o *InsightOrchestrator) Generate(ctx context.Context, symbol string) (models.Insight, error) {
	entry, ok := o.store.Get(symbol)
	if !ok {
		return models.Insight{}, fmt.Errorf("%w: %s", ErrNotWatched, symbol)
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		o.metrics.RecordInsight("busy")
		return models.Insight{}, ErrBusy
	}
	defer o.inFlight.Store(false)

	quote := entry.Quote
	insight := models.Insight{
		ID:        uuid.NewString(),
		Symbol:    quote.Symbol,
		CreatedAt: time.Now(),
	}

	parsed, err := o.model.GenerateInsight(ctx, &quote)
	if err != nil {
		o.logger.Warn("insights: model failed, using rule fallback",
			applogger.String("symbol", quote.Symbol),
			applogger.Error(err))
		o.metrics.RecordInsight("fallback")
		parsed = o.ruleEvaluate(&quote)
		insight.Fallback = true
	} else {
		o.metrics.RecordInsight("model")
	}

	insight.Action = parsed.Action
	insight.Confidence = parsed.Confidence
	insight.Reasoning = parsed.Reasoning

	o.mu.Lock()
	o.recent = append(o.recent, insight)
	if len(o.recent) > maxRecentInsights {
		o.recent = o.recent[len(o.recent)-maxRecentInsights:]
	}
	o.mu.Unlock()

	return insight, nil
}

// Recent returns the retained insights, newest last.
func (o *InsightOrchestrator) Recent() []models.Insight {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Insight, len(o.recent))
	copy(out, o.recent)
	return out
}

// Find returns a retained insight by id.
func (o *InsightOrchestrator) Find(id string) (models.Insight, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ins := range o.recent {
		if ins.ID == id {
			return ins, true
		}
	}
	return models.Insight{}, false
}

// ruleEvaluate is the deterministic fallback: it scores momentum, valuation,
// yield, and 52-week position from the quote and maps the sum to an action.
// Confidence is the configured conservative default, nudged by signal
// strength.
func (o *InsightOrchestrator) ruleEvaluate(q *models.Quote) *models.ParsedInsight {
	score := 0
	reasoning := make([]string, 0, 4)

	switch {
	case q.ChangePercent >= 2:
		score += 2
		reasoning = append(reasoning, fmt.Sprintf("Strong upward momentum: %.2f%% today", q.ChangePercent))
	case q.ChangePercent >= 0.5:
		score++
		reasoning = append(reasoning, fmt.Sprintf("Positive momentum: %.2f%% today", q.ChangePercent))
	case q.ChangePercent <= -2:
		score -= 2
		reasoning = append(reasoning, fmt.Sprintf("Sharp decline: %.2f%% today", q.ChangePercent))
	case q.ChangePercent <= -0.5:
		score--
		reasoning = append(reasoning, fmt.Sprintf("Negative momentum: %.2f%% today", q.ChangePercent))
	default:
		reasoning = append(reasoning, fmt.Sprintf("Price roughly flat at %.2f", q.Price))
	}

	if q.PE > 0 {
		switch {
		case q.PE < 15:
			score++
			reasoning = append(reasoning, fmt.Sprintf("Valuation looks cheap at P/E %.1f", q.PE))
		case q.PE > 40:
			score--
			reasoning = append(reasoning, fmt.Sprintf("Valuation is stretched at P/E %.1f", q.PE))
		}
	}

	if q.Dividend > 0 && q.Price > 0 && q.Dividend/q.Price >= 0.03 {
		score++
		reasoning = append(reasoning, fmt.Sprintf("Dividend yield %.1f%% supports holding", 100*q.Dividend/q.Price))
	}

	if q.High52Week > q.Low52Week {
		pos := (q.Price - q.Low52Week) / (q.High52Week - q.Low52Week)
		switch {
		case pos <= 0.2:
			score++
			reasoning = append(reasoning, "Trading near its 52-week low")
		case pos >= 0.95:
			score--
			reasoning = append(reasoning, "Trading at the top of its 52-week range")
		}
	}

	var action models.InsightAction
	switch {
	case score >= 2:
		action = models.ActionBuy
	case score <= -2:
		action = models.ActionSell
	case score == 0:
		action = models.ActionWatch
	default:
		action = models.ActionHold
	}

	confidence := o.fallbackConfidence
	if score >= 3 || score <= -3 {
		confidence += 10
	}
	if confidence > 100 {
		confidence = 100
	}

	return &models.ParsedInsight{
		Action:     action,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}
