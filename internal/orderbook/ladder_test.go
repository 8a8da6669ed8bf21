package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func entriesFrom(prices ...int64) []Entry {
	out := make([]Entry, len(prices))
	for i, p := range prices {
		out[i] = Entry{Price: dec(p), Quantity: dec(1)}
	}
	return out
}

func pricesOf(entries []Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Price.IntPart()
	}
	return out
}

func TestLadderBestEmpty(t *testing.T) {
	l := newLadder(bidSide, nil)
	_, ok := l.Best()
	assert.False(t, ok)
}

func TestLadderBulkConstruction(t *testing.T) {
	// Scenario 1: bids = {(2k+1, 1) for k in 0..999 reversed}, asks = {(2k, 1) for k in 0..999}
	bidPrices := make([]int64, 0, 1000)
	for k := int64(999); k >= 0; k-- {
		bidPrices = append(bidPrices, 2*k+1)
	}
	askPrices := make([]int64, 0, 1000)
	for k := int64(0); k < 1000; k++ {
		askPrices = append(askPrices, 2*k)
	}

	bids := newLadder(bidSide, entriesFrom(bidPrices...))
	asks := newLadder(askSide, entriesFrom(askPrices...))

	require.Equal(t, 1000, bids.Len())
	require.Equal(t, 1000, asks.Len())

	best, ok := bids.Best()
	require.True(t, ok)
	assert.Equal(t, int64(1999), best.Price.IntPart())
	assert.Equal(t, int64(1), bids.entries[len(bids.entries)-1].Price.IntPart())

	gotBid := pricesOf(bids.Snapshot())
	for i := 1; i < len(gotBid); i++ {
		assert.True(t, gotBid[i-1] > gotBid[i], "bids must be strictly descending")
	}
	gotAsk := pricesOf(asks.Snapshot())
	for i := 1; i < len(gotAsk); i++ {
		assert.True(t, gotAsk[i-1] < gotAsk[i], "asks must be strictly ascending")
	}
}

func TestLadderZeroNoopDiff(t *testing.T) {
	// Scenario 2: applying (price, 0) for prices not present changes nothing.
	l := newLadder(bidSide, entriesFrom(10, 8, 6, 4, 2))
	l.ApplyChanges([]Change{
		{Price: dec(9), Quantity: decimal.Zero},
		{Price: dec(7), Quantity: decimal.Zero},
		{Price: dec(1), Quantity: decimal.Zero},
	})
	assert.Equal(t, 5, l.Len())
}

func TestLadderRemoveHalf(t *testing.T) {
	// Scenario 3: remove all prices below 1000 from the bulk-constructed ladder.
	bidPrices := make([]int64, 0, 1000)
	for k := int64(999); k >= 0; k-- {
		bidPrices = append(bidPrices, 2*k+1)
	}
	bids := newLadder(bidSide, entriesFrom(bidPrices...))

	var changes []Change
	for _, e := range bids.Snapshot() {
		if e.Price.IntPart() < 1000 {
			changes = append(changes, Change{Price: e.Price, Quantity: decimal.Zero})
		}
	}
	bids.ApplyChanges(changes)
	assert.Equal(t, 500, bids.Len())
}

func TestLadderInsertAndUpdate(t *testing.T) {
	// Scenario 4 bid side: bids = [(5,5),(4,4)] then apply {(5,0),(4,5)}.
	bids := newLadder(bidSide, []Entry{{Price: dec(5), Quantity: dec(5)}, {Price: dec(4), Quantity: dec(4)}})
	bids.ApplyChanges([]Change{
		{Price: dec(5), Quantity: decimal.Zero},
		{Price: dec(4), Quantity: dec(5)},
	})
	require.Equal(t, 1, bids.Len())
	assert.Equal(t, Entry{Price: dec(4), Quantity: dec(5)}, bids.entries[0])

	// Scenario 5: insert at both extremes and in the middle.
	bids.ApplyChanges([]Change{
		{Price: dec(6), Quantity: dec(6)},
		{Price: dec(5), Quantity: dec(6)},
		{Price: dec(3), Quantity: dec(4)},
	})
	want := []Entry{
		{Price: dec(6), Quantity: dec(6)},
		{Price: dec(5), Quantity: dec(6)},
		{Price: dec(4), Quantity: dec(5)},
		{Price: dec(3), Quantity: dec(4)},
	}
	assert.Equal(t, want, bids.Snapshot())
}

func TestLadderAskInsertAndUpdate(t *testing.T) {
	asks := newLadder(askSide, []Entry{{Price: dec(1), Quantity: dec(1)}, {Price: dec(2), Quantity: dec(2)}})
	asks.ApplyChanges([]Change{
		{Price: dec(1), Quantity: dec(2)},
		{Price: dec(2), Quantity: decimal.Zero},
	})
	require.Equal(t, 1, asks.Len())
	assert.Equal(t, Entry{Price: dec(1), Quantity: dec(2)}, asks.entries[0])

	asks.ApplyChanges([]Change{
		{Price: dec(1), Quantity: dec(3)},
		{Price: dec(2), Quantity: dec(3)},
		{Price: dec(3), Quantity: dec(4)},
	})
	want := []Entry{
		{Price: dec(1), Quantity: dec(3)},
		{Price: dec(2), Quantity: dec(3)},
		{Price: dec(3), Quantity: dec(4)},
	}
	assert.Equal(t, want, asks.Snapshot())
}

func TestLadderEntriesIteratorStopsEarly(t *testing.T) {
	l := newLadder(askSide, entriesFrom(1, 2, 3, 4, 5))
	var seen []int64
	for e := range l.Entries() {
		seen = append(seen, e.Price.IntPart())
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int64{1, 2}, seen)
}
