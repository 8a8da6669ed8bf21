package orderbook

import "errors"

// Sentinel error kinds. Only ErrEmptySide is a normal expected outcome;
// the rest indicate either an upstream protocol violation or misuse by
// the caller.
var (
	ErrEmptySide             = errors.New("orderbook: side is empty")
	ErrUnknownPair           = errors.New("orderbook: unknown pair")
	ErrInvalidAmount         = errors.New("orderbook: amount must be positive")
	ErrSequenceGap           = errors.New("orderbook: sequence gap detected")
	ErrInsufficientLiquidity = errors.New("orderbook: insufficient liquidity")
)
