package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// RefreshStatus is the scheduler state the UI reads.
type RefreshStatus struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Refreshing  bool      `json:"refreshing"`
}

// RefreshScheduler reconciles every watched symbol on a timer. The timer
// runs only while the watchlist is non-empty, and a new cycle never starts
// while a previous cycle's fetches are outstanding: the newer timer tick is
// dropped, bounding the concurrent fetch fan-out to one cycle's worth.
type RefreshScheduler struct {
	store   *WatchlistStore
	fetcher drepo.QuoteFetcher
	metrics drepo.Metrics
	logger  *applogger.Logger

	interval         time.Duration
	minStatusVisible time.Duration
	perSymbolTimeout time.Duration

	inCycle atomic.Bool

	mu          sync.Mutex
	lastUpdated time.Time
	cycleStart  time.Time
}

// NewRefreshScheduler creates a scheduler over the given store.
func NewRefreshScheduler(
	store *WatchlistStore,
	fetcher drepo.QuoteFetcher,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	interval, minStatusVisible, perSymbolTimeout time.Duration,
) *RefreshScheduler {
	return &RefreshScheduler{
		store:            store,
		fetcher:          fetcher,
		metrics:          metrics,
		logger:           logger,
		interval:         interval,
		minStatusVisible: minStatusVisible,
		perSymbolTimeout: perSymbolTimeout,
	}
}

// Run drives the refresh loop until ctx is cancelled. The interval ticker is
// created when the watched-symbol count leaves zero and stopped when it
// returns to zero.
func (r *RefreshScheduler) Run(ctx context.Context) {
	changes := r.store.Changes()

	var ticker *time.Ticker
	var tickCh <-chan time.Time
	ensure := func() {
		n := r.store.Count()
		switch {
		case n > 0 && ticker == nil:
			ticker = time.NewTicker(r.interval)
			tickCh = ticker.C
			r.logger.Info("refresh: started", applogger.Duration("interval", r.interval))
		case n == 0 && ticker != nil:
			ticker.Stop()
			ticker, tickCh = nil, nil
			r.logger.Info("refresh: stopped, watchlist empty")
		}
	}
	ensure()

	for {
		select {
		case <-ctx.Done():
			if ticker != nil {
				ticker.Stop()
			}
			return
		case <-changes:
			ensure()
		case <-tickCh:
			r.runCycle(ctx)
		}
	}
}

// runCycle fetches every watched symbol in parallel and applies the batch.
// Returns false if a previous cycle was still outstanding.
func (r *RefreshScheduler) runCycle(ctx context.Context) bool {
	if !r.inCycle.CompareAndSwap(false, true) {
		r.metrics.RecordTickDropped("overlapping_cycle")
		r.logger.Warn("refresh: cycle still outstanding, dropping tick")
		return false
	}
	defer r.inCycle.Store(false)

	r.mu.Lock()
	r.cycleStart = time.Now()
	r.mu.Unlock()

	snapshot := r.store.Entries()
	if len(snapshot) == 0 {
		return true
	}

	start := time.Now()
	results := make([]models.RefreshResult, 0, len(snapshot))
	var wg sync.WaitGroup
	var resMu sync.Mutex

	for symbol, entry := range snapshot {
		wg.Add(1)
		go func(symbol string, seq uint64) {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, r.perSymbolTimeout)
			defer cancel()

			quote, err := r.fetcher.Fetch(fctx, symbol)
			resMu.Lock()
			results = append(results, models.RefreshResult{
				Symbol: symbol,
				Quote:  quote,
				Err:    err,
				Seq:    seq,
			})
			resMu.Unlock()
		}(symbol, entry.Seq)
	}
	wg.Wait()

	r.store.ApplyRefreshBatch(results)
	r.metrics.RecordLatency("refresh_cycle", time.Since(start).Seconds())

	r.mu.Lock()
	r.lastUpdated = time.Now()
	r.mu.Unlock()
	return true
}

// Status reports the last completed refresh and whether a refresh is
// visibly in progress. The refreshing flag stays up for a minimum duration
// after a cycle starts so fast cycles do not flicker in the UI.
func (r *RefreshScheduler) Status() RefreshStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	refreshing := r.inCycle.Load() ||
		(!r.cycleStart.IsZero() && time.Since(r.cycleStart) < r.minStatusVisible)
	return RefreshStatus{LastUpdated: r.lastUpdated, Refreshing: refreshing}
}
