package models

// AddSymbolRequest is the watchlist add payload.
type AddSymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,max=12"`
}

// GenerateInsightRequest asks for an AI insight over a watched symbol.
type GenerateInsightRequest struct {
	Symbol string `json:"symbol" validate:"required,max=12"`
}

// AskRequest is a follow-up question on an insight.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
}
