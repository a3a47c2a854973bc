package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
)

func TestAddSymbolValidatesWithFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	store, _ := newTestStore(fetcher, newFakeMetrics())

	entry, err := store.AddSymbol(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	if entry.Quote.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", entry.Quote.Symbol)
	}
	if entry.Seq != 1 {
		t.Errorf("initial Seq = %d, want 1", entry.Seq)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.callCount())
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestAddSymbolRejectsBadSymbol(t *testing.T) {
	fetcher := &fakeFetcher{fetch: func(string) (*models.Quote, error) {
		return nil, errFetchDown
	}}
	store, _ := newTestStore(fetcher, newFakeMetrics())

	if _, err := store.AddSymbol(context.Background(), "NOPE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if store.Count() != 0 {
		t.Errorf("rejected add left %d entries", store.Count())
	}

	if _, err := store.AddSymbol(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty symbol err = %v, want ErrValidation", err)
	}
}

func TestAddSymbolIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{}
	store, _ := newTestStore(fetcher, newFakeMetrics())

	if _, err := store.AddSymbol(context.Background(), "MSFT"); err != nil {
		t.Fatal(err)
	}
	store.ApplyTick(&models.Tick{Symbol: "MSFT", Price: 410})

	entry, err := store.AddSymbol(context.Background(), "msft")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Quote.Price != 410 {
		t.Errorf("re-add replaced live quote: price = %v, want 410", entry.Quote.Price)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("re-add fetched again: calls = %d, want 1", fetcher.callCount())
	}
}

func TestRemoveSymbol(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	if err := store.RemoveSymbol("aapl"); err != nil {
		t.Fatalf("RemoveSymbol: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d after removal, want 0", store.Count())
	}
	if err := store.RemoveSymbol("AAPL"); !errors.Is(err, ErrNotWatched) {
		t.Errorf("second remove err = %v, want ErrNotWatched", err)
	}
}

func TestApplyTickMergesAndFlashes(t *testing.T) {
	store, clock := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 101.5, Change: 1.5, ChangePercent: 1.5})

	entry, _ := store.Get("AAPL")
	if entry.Quote.Price != 101.5 {
		t.Errorf("price = %v, want 101.5", entry.Quote.Price)
	}
	if entry.Quote.ChangePercent != 1.5 {
		t.Errorf("changePercent = %v, want 1.5", entry.Quote.ChangePercent)
	}
	// the rest of the quote is untouched by a tick
	if entry.Quote.Name != "AAPL Inc." {
		t.Errorf("tick clobbered static fields: name = %q", entry.Quote.Name)
	}
	if entry.FlashDirection != models.FlashGain {
		t.Errorf("flash = %q, want gain", entry.FlashDirection)
	}
	if entry.Seq != 2 {
		t.Errorf("Seq = %d, want 2", entry.Seq)
	}

	clock.fireAll()
	entry, _ = store.Get("AAPL")
	if entry.FlashDirection != models.FlashNone {
		t.Errorf("flash = %q after window, want none", entry.FlashDirection)
	}
}

func TestApplyTickIgnoresUnwatched(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	store.ApplyTick(&models.Tick{Symbol: "TSLA", Price: 250})
	if store.Count() != 0 {
		t.Errorf("tick for unwatched symbol created an entry")
	}
}

func TestFlashDirectionAndThreshold(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	// sub-threshold move: no flash
	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 100.005})
	if entry, _ := store.Get("AAPL"); entry.FlashDirection != models.FlashNone {
		t.Errorf("flash = %q for sub-threshold move, want none", entry.FlashDirection)
	}

	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 99})
	if entry, _ := store.Get("AAPL"); entry.FlashDirection != models.FlashLoss {
		t.Errorf("flash = %q after drop, want loss", entry.FlashDirection)
	}
}

// A flash set at T is gone at T+window even when a second qualifying change
// lands in between: the earlier clear still fires on schedule.
func TestFlashClearIsFixedWindow(t *testing.T) {
	store, clock := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 101})
	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 103})
	if clock.scheduled() != 2 {
		t.Fatalf("scheduled clears = %d, want 2", clock.scheduled())
	}

	clock.fireAll()
	entry, _ := store.Get("AAPL")
	if entry.FlashDirection != models.FlashNone {
		t.Errorf("flash = %q after clears fired, want none", entry.FlashDirection)
	}
}

func TestRefreshBatchReplacesQuoteWholesale(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	before, _ := store.Get("AAPL")

	fresh := quoteFor("AAPL", 105)
	fresh.PE = 31
	store.ApplyRefreshBatch([]models.RefreshResult{
		{Symbol: "AAPL", Quote: fresh, Seq: before.Seq},
	})

	entry, _ := store.Get("AAPL")
	if entry.Quote.Price != 105 || entry.Quote.PE != 31 {
		t.Errorf("quote not replaced: price=%v pe=%v", entry.Quote.Price, entry.Quote.PE)
	}
	if entry.RefreshCounter != 1 {
		t.Errorf("refreshCounter = %d, want 1", entry.RefreshCounter)
	}
	if entry.FlashDirection != models.FlashGain {
		t.Errorf("flash = %q, want gain", entry.FlashDirection)
	}
	if entry.Seq != before.Seq+1 {
		t.Errorf("Seq = %d, want %d", entry.Seq, before.Seq+1)
	}
}

func TestRefreshBatchFailureRetainsEntry(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 102})
	before, _ := store.Get("AAPL")

	store.ApplyRefreshBatch([]models.RefreshResult{
		{Symbol: "AAPL", Err: errFetchDown, Seq: before.Seq},
	})

	entry, ok := store.Get("AAPL")
	if !ok {
		t.Fatal("entry deleted by failed refresh")
	}
	if entry.Quote.Price != 102 {
		t.Errorf("price = %v after failed refresh, want 102", entry.Quote.Price)
	}
	if entry.RefreshCounter != 1 {
		t.Errorf("refreshCounter = %d, want 1 (advances on failure too)", entry.RefreshCounter)
	}
	if entry.Seq != before.Seq {
		t.Errorf("Seq changed on failed refresh: %d -> %d", before.Seq, entry.Seq)
	}
}

// A tick that lands after a refresh fetch was issued wins; the stale refresh
// result is discarded.
func TestRefreshBatchDiscardsStaleResult(t *testing.T) {
	metrics := newFakeMetrics()
	store, _ := newTestStore(&fakeFetcher{}, metrics)
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	snapshot, _ := store.Get("AAPL")

	// tick arrives between snapshot and batch application
	store.ApplyTick(&models.Tick{Symbol: "AAPL", Price: 120})

	store.ApplyRefreshBatch([]models.RefreshResult{
		{Symbol: "AAPL", Quote: quoteFor("AAPL", 100), Seq: snapshot.Seq},
	})

	entry, _ := store.Get("AAPL")
	if entry.Quote.Price != 120 {
		t.Errorf("stale refresh overwrote newer tick: price = %v, want 120", entry.Quote.Price)
	}
	if entry.RefreshCounter != 1 {
		t.Errorf("refreshCounter = %d, want 1 (advances even when result is stale)", entry.RefreshCounter)
	}
	if metrics.droppedCount("stale_refresh") != 1 {
		t.Errorf("stale_refresh drops = %d, want 1", metrics.droppedCount("stale_refresh"))
	}
}

func TestRefreshCounterWraps(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		store.ApplyRefreshBatch(nil)
	}
	entry, _ := store.Get("AAPL")
	if entry.RefreshCounter != 0 {
		t.Errorf("refreshCounter = %d after 1000 cycles, want 0", entry.RefreshCounter)
	}
}

func TestChangesSignalsCoalesceAndFanOut(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	a := store.Changes()
	b := store.Changes()

	if _, err := store.AddSymbol(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddSymbol(context.Background(), "MSFT"); err != nil {
		t.Fatal(err)
	}

	for name, ch := range map[string]<-chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		default:
			t.Errorf("subscriber %s got no change signal", name)
		}
		// two adds coalesce into at most one pending signal
		select {
		case <-ch:
			t.Errorf("subscriber %s had a second buffered signal", name)
		default:
		}
	}
}

func TestSymbolsSorted(t *testing.T) {
	store, _ := newTestStore(&fakeFetcher{}, newFakeMetrics())
	for _, sym := range []string{"TSLA", "AAPL", "MSFT"} {
		if _, err := store.AddSymbol(context.Background(), sym); err != nil {
			t.Fatal(err)
		}
	}
	got := store.Symbols()
	want := []string{"AAPL", "MSFT", "TSLA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Symbols() = %v, want %v", got, want)
		}
	}
}
