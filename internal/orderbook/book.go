package orderbook

import "github.com/shopspring/decimal"

// state is the book's lifecycle position.
type state int

const (
	uninitialized state = iota
	ready
	gapped
)

// Book owns the two ladders for one pair plus the sequencing gate that
// validates incoming diffs against last_update_id. A Book is owned
// exclusively by the Registry actor; it is never safe to share across
// goroutines without that single-writer discipline.
type Book struct {
	pair         Pair
	bids         *Ladder
	asks         *Ladder
	lastUpdateID int64
	state        state
}

// NewBook returns an uninitialized book for pair. It answers nothing useful
// until InstallSnapshot is called.
func NewBook(pair Pair) *Book {
	return &Book{
		pair:  pair,
		bids:  newLadder(bidSide, nil),
		asks:  newLadder(askSide, nil),
		state: uninitialized,
	}
}

// InstallSnapshot (re)seeds the book from a full snapshot and transitions
// it to Ready, regardless of prior state. This is how a Gapped book
// recovers: the gateway fetches a fresh snapshot and reinstalls it here.
func (b *Book) InstallSnapshot(snap Snapshot) {
	b.bids = newLadder(bidSide, snap.Bids)
	b.asks = newLadder(askSide, snap.Asks)
	b.lastUpdateID = snap.LastUpdateID
	b.state = ready
}

// Gapped reports whether the book is currently in the degraded state
// following a detected sequence gap. Reads still answer from the last
// consistent state; only diff application is affected.
func (b *Book) Gapped() bool {
	return b.state == gapped
}

// LastUpdateID returns the most recently applied upstream sequence number.
func (b *Book) LastUpdateID() int64 {
	return b.lastUpdateID
}

// HandleDiff applies diff under these sequencing rules:
//
//  1. Stale: if U <= last_update_id, drop silently (applied=false, err=nil).
//  2. Valid next: if F <= last_update_id+1 and U >= last_update_id+1, apply
//     and advance last_update_id to U (applied=true).
//  3. Gap: if F > last_update_id+1, the book transitions to Gapped and
//     ErrSequenceGap is returned; the collaborator is responsible for
//     reinstalling a fresh snapshot.
//
// applied distinguishes the stale no-op from a real application so callers
// can log rule 1 at debug without the book itself owning a logger.
func (b *Book) HandleDiff(diff Diff) (applied bool, err error) {
	if diff.LastUpdateID <= b.lastUpdateID {
		return false, nil
	}

	if diff.FirstUpdateID > b.lastUpdateID+1 {
		b.state = gapped
		return false, ErrSequenceGap
	}

	b.bids.ApplyChanges(diff.Bids)
	b.asks.ApplyChanges(diff.Asks)
	b.lastUpdateID = diff.LastUpdateID
	return true, nil
}

// Tips returns ((bestBidPrice, bestBidQty), (bestAskPrice, bestAskQty)).
// Fails with ErrEmptySide if either ladder is empty.
func (b *Book) Tips() (bid, ask Entry, err error) {
	bid, ok := b.bids.Best()
	if !ok {
		return Entry{}, Entry{}, ErrEmptySide
	}
	ask, ok = b.asks.Best()
	if !ok {
		return Entry{}, Entry{}, ErrEmptySide
	}
	return bid, ask, nil
}

// Bids returns a copy of the bid ladder's entries.
func (b *Book) Bids() []Entry { return b.bids.Snapshot() }

// Asks returns a copy of the ask ladder's entries.
func (b *Book) Asks() []Entry { return b.asks.Snapshot() }

// ExecutionPrice walks the opposite-side ladder in best-first order and
// returns the volume-weighted average price to fill amount. Buy walks
// asks ascending; Sell walks bids descending. The
// baseline dilution policy is kept: if the ladder is exhausted before
// amount is filled, the average returned is diluted by the missing depth,
// rather than returning ErrInsufficientLiquidity. That sentinel is reserved
// for the degenerate case where the relevant side is empty outright.
func (b *Book) ExecutionPrice(side Side, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	var ladder *Ladder
	if side == Buy {
		ladder = b.asks
	} else {
		ladder = b.bids
	}

	if ladder.Len() == 0 {
		return decimal.Decimal{}, ErrInsufficientLiquidity
	}

	remaining := amount
	cost := decimal.Zero

	for entry := range ladder.Entries() {
		if entry.Quantity.LessThan(remaining) {
			cost = cost.Add(entry.Price.Mul(entry.Quantity))
			remaining = remaining.Sub(entry.Quantity)
			continue
		}
		cost = cost.Add(entry.Price.Mul(remaining))
		remaining = decimal.Zero
		break
	}

	return cost.Div(amount), nil
}
