package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

type fakeFetcher struct {
	mu    sync.Mutex
	fetch func(symbol string) (*models.Quote, error)
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, symbol string) (*models.Quote, error) {
	f.mu.Lock()
	f.calls++
	fn := f.fetch
	f.mu.Unlock()
	if fn == nil {
		return quoteFor(symbol, 100), nil
	}
	return fn(symbol)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quoteFor(symbol string, price float64) *models.Quote {
	return &models.Quote{
		Symbol:      symbol,
		Name:        symbol + " Inc.",
		Price:       price,
		Volume:      1000000,
		PE:          25,
		EPS:         6.1,
		High52Week:  price * 1.3,
		Low52Week:   price * 0.7,
		LastUpdated: time.Now(),
	}
}

type fakeMetrics struct {
	mu      sync.Mutex
	dropped map[string]int
	errors  map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{dropped: make(map[string]int), errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordTick(string) {}
func (m *fakeMetrics) RecordTickDropped(kind string) {
	m.mu.Lock()
	m.dropped[kind]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordRefreshCycle(int)          {}
func (m *fakeMetrics) RecordError(kind string)         { m.mu.Lock(); m.errors[kind]++; m.mu.Unlock() }
func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordInsight(string)            {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}

func (m *fakeMetrics) droppedCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped[kind]
}

type fakeModel struct {
	generate func(quote *models.Quote) (*models.ParsedInsight, error)
	answer   func(question string) (string, error)
}

func (f *fakeModel) GenerateInsight(_ context.Context, quote *models.Quote) (*models.ParsedInsight, error) {
	if f.generate == nil {
		return &models.ParsedInsight{Action: models.ActionHold, Confidence: 70, Reasoning: []string{"steady"}}, nil
	}
	return f.generate(quote)
}

func (f *fakeModel) Answer(_ context.Context, question string, _ *models.Insight) (string, error) {
	if f.answer == nil {
		return "answer to: " + question, nil
	}
	return f.answer(question)
}

type fakeStream struct {
	mu           sync.Mutex
	connected    bool
	subscribed   [][]string
	unsubscribed [][]string
	subErr       error
}

func (s *fakeStream) Connect(context.Context) error {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Subscribe(_ context.Context, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subErr != nil {
		return s.subErr
	}
	s.subscribed = append(s.subscribed, symbols)
	return nil
}

func (s *fakeStream) Unsubscribe(_ context.Context, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subErr != nil {
		return s.subErr
	}
	s.unsubscribed = append(s.unsubscribed, symbols)
	return nil
}

func (s *fakeStream) Read(context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick)
	errs := make(chan error)
	return ticks, errs
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// manualClock collects scheduled flash clears so tests can fire them at will.
type manualClock struct {
	mu  sync.Mutex
	fns []func()
}

func (c *manualClock) afterFunc(_ time.Duration, f func()) *time.Timer {
	c.mu.Lock()
	c.fns = append(c.fns, f)
	c.mu.Unlock()
	// inert timer; firing is driven by the test
	return time.NewTimer(time.Hour)
}

func (c *manualClock) fireAll() {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

func (c *manualClock) scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

func newTestStore(fetcher *fakeFetcher, metrics *fakeMetrics) (*WatchlistStore, *manualClock) {
	store := NewWatchlistStore(fetcher, metrics, applogger.Nop())
	clock := &manualClock{}
	store.afterFunc = clock.afterFunc
	return store, clock
}

// waitUntil polls cond for up to a second.
func waitUntil(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

var errFetchDown = fmt.Errorf("quote api unavailable")
