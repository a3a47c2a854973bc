package usecase

import "errors"

var (
	// ErrValidation means a symbol could not be validated by the add-fetch.
	ErrValidation = errors.New("symbol validation failed")
	// ErrNotWatched means the symbol is not on the watchlist.
	ErrNotWatched = errors.New("symbol not watched")
	// ErrBusy means an insight generation is already in flight.
	ErrBusy = errors.New("insight generation busy, try again")
	// ErrPending means the chat thread already has a pending exchange.
	ErrPending = errors.New("chat exchange already pending")
)
