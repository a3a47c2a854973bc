package models

import "time"

// InsightAction is the recommendation carried by an insight.
type InsightAction string

const (
	ActionBuy   InsightAction = "buy"
	ActionSell  InsightAction = "sell"
	ActionHold  InsightAction = "hold"
	ActionWatch InsightAction = "watch"
)

// ValidAction reports whether s is one of the four recognized actions.
func ValidAction(s string) bool {
	switch InsightAction(s) {
	case ActionBuy, ActionSell, ActionHold, ActionWatch:
		return true
	}
	return false
}

// Insight is one AI-generated (or rule-derived) trading insight.
type Insight struct {
	ID         string        `json:"id"`
	Symbol     string        `json:"symbol"`
	Action     InsightAction `json:"action"`
	Confidence int           `json:"confidence"`
	Reasoning  []string      `json:"reasoning"`
	CreatedAt  time.Time     `json:"createdAt"`
	// Fallback marks insights produced by the rule evaluator rather than
	// the primary model.
	Fallback bool `json:"fallback,omitempty"`
}

// ParsedInsight is the strictly validated shape a primary-model response must
// parse into before it is accepted. Anything that fails to produce one of
// these falls back to the rule evaluator.
type ParsedInsight struct {
	Action     InsightAction `json:"action"`
	Confidence int           `json:"confidence"`
	Reasoning  []string      `json:"reasoning"`
}

// ChatExchange is a single question/answer pair inside a chat thread.
type ChatExchange struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Pending   bool      `json:"pending"`
	Timestamp time.Time `json:"timestamp"`
}
