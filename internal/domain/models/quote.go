package models

import "time"

// Quote is an immutable snapshot of a symbol's market data. It is replaced
// wholesale on every successful fetch or tick merge, never mutated in place.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	MarketCap     float64   `json:"marketCap"`
	PE            float64   `json:"pe"`
	EPS           float64   `json:"eps"`
	Dividend      float64   `json:"dividend"`
	High52Week    float64   `json:"high52Week"`
	Low52Week     float64   `json:"low52Week"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Tick is one asynchronous price update delivered by the push channel.
type Tick struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// FlashDirection marks the direction of a recent price change for transient
// UI highlighting.
type FlashDirection string

const (
	FlashNone FlashDirection = ""
	FlashGain FlashDirection = "gain"
	FlashLoss FlashDirection = "loss"
)

// FlashThreshold is the minimum absolute price delta that triggers a flash.
const FlashThreshold = 0.01

// FlashFor returns the flash direction for a price transition. A price
// increase flashes gain, a decrease flashes loss.
func FlashFor(oldPrice, newPrice float64) FlashDirection {
	delta := newPrice - oldPrice
	if delta >= FlashThreshold {
		return FlashGain
	}
	if delta <= -FlashThreshold {
		return FlashLoss
	}
	return FlashNone
}

// WatchlistEntry is the store-owned state for one watched symbol.
type WatchlistEntry struct {
	Quote          Quote          `json:"quote"`
	FlashDirection FlashDirection `json:"flashDirection,omitempty"`
	RefreshCounter int            `json:"refreshCounter"`
	// Seq increases with every accepted update; a refresh result issued
	// before a tick that already landed carries a lower sequence and loses.
	Seq uint64 `json:"-"`
}

// RefreshResult is the outcome of one symbol's fetch within a refresh cycle.
type RefreshResult struct {
	Symbol string
	Quote  *Quote
	Err    error
	// Seq is the store sequence observed when the fetch was issued.
	Seq uint64
}
