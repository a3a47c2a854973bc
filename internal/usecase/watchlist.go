package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// flashWindow is how long a price-change flash stays visible.
const flashWindow = 800 * time.Millisecond

// WatchlistStore is the authoritative in-memory table of watched symbols.
// Every mutation (add, remove, tick, refresh batch) passes through its mutex;
// it is the single serialization point of the whole core.
//
// An entry, once created, is only ever removed by RemoveSymbol. A failed
// fetch never deletes data.
type WatchlistStore struct {
	fetcher drepo.QuoteFetcher
	metrics drepo.Metrics
	logger  *applogger.Logger

	mu      sync.Mutex
	entries map[string]*models.WatchlistEntry

	// subs holds coalesced symbol-set change signals, one per subscriber
	// (refresh scheduler, subscription manager). The store never calls
	// back into its consumers.
	subs []chan struct{}

	// afterFunc schedules flash clears; replaced in tests to control time.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewWatchlistStore creates an empty store.
func NewWatchlistStore(fetcher drepo.QuoteFetcher, metrics drepo.Metrics, logger *applogger.Logger) *WatchlistStore {
	return &WatchlistStore{
		fetcher:   fetcher,
		metrics:   metrics,
		logger:    logger,
		entries:   make(map[string]*models.WatchlistEntry),
		afterFunc: time.AfterFunc,
	}
}

// Changes returns a new coalesced symbol-set change signal. One pending
// signal may stand for several changes; subscribers re-read the current
// symbol set when woken.
func (s *WatchlistStore) Changes() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// notify must be called with s.mu held.
func (s *WatchlistStore) notify() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// AddSymbol validates the symbol with one fetch and inserts a new entry. A
// fetch error or non-positive price rejects the add with ErrValidation. If
// the symbol is already watched the existing entry is returned unchanged.
func (s *WatchlistStore) AddSymbol(ctx context.Context, symbol string) (models.WatchlistEntry, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.WatchlistEntry{}, fmt.Errorf("%w: empty symbol", ErrValidation)
	}

	s.mu.Lock()
	if e, ok := s.entries[symbol]; ok {
		out := *e
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	quote, err := s.fetcher.Fetch(ctx, symbol)
	if err != nil {
		s.metrics.RecordError("add_validate")
		return models.WatchlistEntry{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a concurrent add may have won the race
	if e, ok := s.entries[symbol]; ok {
		return *e, nil
	}
	entry := &models.WatchlistEntry{
		Quote:          *quote,
		FlashDirection: models.FlashNone,
		Seq:            1,
	}
	s.entries[symbol] = entry
	s.metrics.RecordLastPrice(symbol, quote.Price)
	s.logger.Info("watchlist: symbol added",
		applogger.String("symbol", symbol),
		applogger.Float64("price", quote.Price))
	s.notify()
	return *entry, nil
}

// RemoveSymbol deletes the entry. This is the only code path that removes an
// entry.
func (s *WatchlistStore) RemoveSymbol(symbol string) error {
	symbol = strings.ToUpper(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[symbol]; !ok {
		return fmt.Errorf("%w: %s", ErrNotWatched, symbol)
	}
	delete(s.entries, symbol)
	s.logger.Info("watchlist: symbol removed", applogger.String("symbol", symbol))
	s.notify()
	return nil
}

// ApplyTick merges a live tick into the symbol's quote. Ticks for unwatched
// symbols are ignored.
func (s *WatchlistStore) ApplyTick(tick *models.Tick) {
	symbol := strings.ToUpper(tick.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[symbol]
	if !ok {
		return
	}

	oldPrice := entry.Quote.Price
	entry.Quote.Price = tick.Price
	entry.Quote.Change = tick.Change
	entry.Quote.ChangePercent = tick.ChangePercent
	entry.Quote.LastUpdated = time.Now()
	entry.Seq++

	s.flashLocked(symbol, entry, oldPrice, tick.Price)
	s.metrics.RecordTick(symbol)
	s.metrics.RecordLastPrice(symbol, tick.Price)
}

// ApplyRefreshBatch applies one refresh cycle's results. For every watched
// symbol the refresh counter advances; beyond that:
//   - a failed fetch leaves the entry completely unchanged;
//   - a successful fetch issued before a newer update landed (result
//     sequence below the entry's) is discarded as stale;
//   - otherwise the quote is replaced wholesale and flash is recomputed
//     exactly as for a tick.
func (s *WatchlistStore) ApplyRefreshBatch(results []models.RefreshResult) {
	bySymbol := make(map[string]models.RefreshResult, len(results))
	for _, r := range results {
		bySymbol[strings.ToUpper(r.Symbol)] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	failed := 0
	for symbol, entry := range s.entries {
		entry.RefreshCounter = (entry.RefreshCounter + 1) % 1000

		r, ok := bySymbol[symbol]
		if !ok {
			continue
		}
		if r.Err != nil || r.Quote == nil {
			failed++
			s.logger.Debug("watchlist: refresh failed, entry retained",
				applogger.String("symbol", symbol),
				applogger.Error(r.Err))
			continue
		}
		if r.Seq < entry.Seq {
			// a tick landed after this fetch was issued; the refresh is stale
			s.metrics.RecordTickDropped("stale_refresh")
			continue
		}

		oldPrice := entry.Quote.Price
		entry.Quote = *r.Quote
		entry.Seq++
		s.flashLocked(symbol, entry, oldPrice, r.Quote.Price)
		s.metrics.RecordLastPrice(symbol, r.Quote.Price)
	}
	s.metrics.RecordRefreshCycle(failed)
}

// flashLocked sets the flash direction for a price transition and schedules
// the clear. Every qualifying change schedules its own fixed-window clear;
// the flash is gone at most flashWindow after it was set, no matter what
// updates arrive in between.
func (s *WatchlistStore) flashLocked(symbol string, entry *models.WatchlistEntry, oldPrice, newPrice float64) {
	dir := models.FlashFor(oldPrice, newPrice)
	if dir == models.FlashNone {
		return
	}
	entry.FlashDirection = dir
	s.afterFunc(flashWindow, func() {
		s.mu.Lock()
		if e, ok := s.entries[symbol]; ok {
			e.FlashDirection = models.FlashNone
		}
		s.mu.Unlock()
	})
}

// Get returns a copy of one entry.
func (s *WatchlistStore) Get(symbol string) (models.WatchlistEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[strings.ToUpper(symbol)]
	if !ok {
		return models.WatchlistEntry{}, false
	}
	return *e, true
}

// Entries returns a snapshot of all entries keyed by symbol.
func (s *WatchlistStore) Entries() map[string]models.WatchlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.WatchlistEntry, len(s.entries))
	for sym, e := range s.entries {
		out[sym] = *e
	}
	return out
}

// Symbols returns the sorted watched-symbol set.
func (s *WatchlistStore) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for sym := range s.entries {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of watched symbols.
func (s *WatchlistStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
