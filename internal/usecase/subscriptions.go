package usecase

import (
	"context"
	"sync"

	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// SubscriptionManager keeps the push channel's subscription set aligned with
// the store's watched symbols. It watches the store's change signal and
// pushes subscribe/unsubscribe deltas to the channel; the store never calls
// the channel, which keeps the update flow one-directional.
type SubscriptionManager struct {
	store  *WatchlistStore
	stream drepo.MarketStream
	logger *applogger.Logger

	mu     sync.Mutex
	pushed map[string]bool
}

// NewSubscriptionManager creates a manager with an empty pushed set.
func NewSubscriptionManager(store *WatchlistStore, stream drepo.MarketStream, logger *applogger.Logger) *SubscriptionManager {
	return &SubscriptionManager{
		store:  store,
		stream: stream,
		logger: logger,
		pushed: make(map[string]bool),
	}
}

// Run applies deltas until ctx is cancelled.
func (m *SubscriptionManager) Run(ctx context.Context) {
	changes := m.store.Changes()
	m.Sync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			m.Sync(ctx)
		}
	}
}

// Sync diffs the current symbol set against what was last pushed and sends
// the deltas. Channel errors are logged only; the system keeps running on
// poll-only updates.
func (m *SubscriptionManager) Sync(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[string]bool)
	for _, s := range m.store.Symbols() {
		current[s] = true
	}

	var added, removed []string
	for s := range current {
		if !m.pushed[s] {
			added = append(added, s)
		}
	}
	for s := range m.pushed {
		if !current[s] {
			removed = append(removed, s)
		}
	}

	if len(added) > 0 {
		if err := m.stream.Subscribe(ctx, added); err != nil {
			m.logger.Warn("subscriptions: subscribe failed", applogger.Error(err))
			return
		}
	}
	if len(removed) > 0 {
		if err := m.stream.Unsubscribe(ctx, removed); err != nil {
			m.logger.Warn("subscriptions: unsubscribe failed", applogger.Error(err))
			return
		}
	}
	m.pushed = current
}

// Reset clears the pushed set so the next Sync resends the full current
// symbol set. Used after an operator-driven reconnect; the channel keeps no
// subscription memory across connections.
func (m *SubscriptionManager) Reset() {
	m.mu.Lock()
	m.pushed = make(map[string]bool)
	m.mu.Unlock()
}
