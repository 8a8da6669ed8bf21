// Package orderbook maintains a mirrored L2 depth view for a fixed set of
// trading pairs and answers price queries against it.
package orderbook

import "github.com/shopspring/decimal"

func init() {
	// VWAP divisions are exact rationals in general; round at 18
	// fractional digits rather than leave the scale unspecified.
	decimal.DivisionPrecision = 18
}

// Side is the direction of a query against the book, not a ladder label.
type Side string

const (
	// Buy walks the ask ladder (you buy at what sellers ask).
	Buy Side = "buy"
	// Sell walks the bid ladder (you sell at what buyers bid).
	Sell Side = "sell"
)

// Pair is a closed, compile-time-known trading pair identity. The set is
// fixed so the registry can dispatch by array index rather than map lookup.
type Pair int

const (
	BTCUSDT Pair = iota
	ETHUSDT
	numPairs
)

// NumPairs is the fixed registry size.
const NumPairs = int(numPairs)

var pairSymbols = [numPairs]string{
	BTCUSDT: "BTCUSDT",
	ETHUSDT: "ETHUSDT",
}

// String returns the upstream exchange symbol for the pair.
func (p Pair) String() string {
	if p < 0 || int(p) >= NumPairs {
		return "UNKNOWN"
	}
	return pairSymbols[p]
}

// ParsePair maps an upstream/HTTP symbol onto the closed Pair set.
func ParsePair(symbol string) (Pair, bool) {
	for i, s := range pairSymbols {
		if s == symbol {
			return Pair(i), true
		}
	}
	return 0, false
}

// Entry is a single (price, quantity) depth row. A Quantity of zero is
// never stored; it only ever appears transiently as a removal sentinel in a
// Change.
type Entry struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Change is one (price, quantity) instruction out of a Diff. Quantity zero
// means "remove this price if present"; quantity > 0 means "insert or
// replace".
type Change struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Snapshot is the full self-contained depth state used to install or
// reinstall a book. Bids must arrive sorted descending, asks ascending, and
// every quantity must be strictly positive.
type Snapshot struct {
	Pair         Pair
	Bids         []Entry
	Asks         []Entry
	LastUpdateID int64
}

// Diff is one incremental update from the upstream feed. The changes within
// Bids/Asks may arrive in any order; the ladder does not assume sortedness
// of the change list itself.
type Diff struct {
	Pair          Pair
	FirstUpdateID int64
	LastUpdateID  int64
	Bids          []Change
	Asks          []Change
}
