package orderbook

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ladderSide fixes a Ladder's polarity at construction: for bids, "better"
// means a larger price (descending ladder); for asks, "better" means a
// smaller price (ascending ladder).
type ladderSide bool

const (
	bidSide ladderSide = true
	askSide ladderSide = false
)

// Ladder holds one side's ordered depth and applies diffs in place,
// preserving uniqueness-by-price and monotone order. The zero value is not
// usable; use newLadder. An ordered slice plus a price->index map gives
// O(1) lookups by price, and a binary search finds an insertion point in
// O(log n) instead of a linear scan. Inserting or removing a level still
// shifts and reindexes every entry after it.
type Ladder struct {
	side    ladderSide
	entries []Entry
	index   map[string]int
}

func newLadder(side ladderSide, seed []Entry) *Ladder {
	l := &Ladder{
		side:    side,
		entries: make([]Entry, len(seed)),
		index:   make(map[string]int, len(seed)),
	}
	copy(l.entries, seed)
	for i, e := range l.entries {
		l.index[e.Price.String()] = i
	}
	return l
}

// better reports whether price a ranks ahead of price b on this side.
func (l *Ladder) better(a, b decimal.Decimal) bool {
	if l.side == bidSide {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

// Best returns the front entry and true, or the zero Entry and false if the
// ladder is empty.
func (l *Ladder) Best() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Len reports the number of price levels currently held.
func (l *Ladder) Len() int {
	return len(l.entries)
}

// Entries returns a lazy sequence over the ladder in ladder order, without
// copying the backing slice. Callers that need a
// stable copy should use Snapshot instead.
func (l *Ladder) Entries() func(yield func(Entry) bool) {
	return func(yield func(Entry) bool) {
		for _, e := range l.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Snapshot returns an owned copy of the ladder's entries, safe to hand to a
// caller outside the actor that owns this ladder.
func (l *Ladder) Snapshot() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ApplyChanges mutates the ladder in place per the change-application
// table in spec section 4.1:
//
//	q = 0, p present  -> remove
//	q = 0, p absent   -> no-op
//	q > 0, p present  -> replace quantity, position unchanged
//	q > 0, p absent   -> insert at the position that preserves order
func (l *Ladder) ApplyChanges(changes []Change) {
	for _, c := range changes {
		l.applyOne(c)
	}
}

func (l *Ladder) applyOne(c Change) {
	key := c.Price.String()
	pos, present := l.index[key]

	if c.Quantity.IsZero() {
		if present {
			l.remove(pos)
		}
		return
	}

	if present {
		l.entries[pos].Quantity = c.Quantity
		return
	}

	l.insert(c.Price, c.Quantity)
}

// remove deletes the entry at pos and reindexes every entry shifted by the
// removal.
func (l *Ladder) remove(pos int) {
	delete(l.index, l.entries[pos].Price.String())
	l.entries = append(l.entries[:pos], l.entries[pos+1:]...)
	for i := pos; i < len(l.entries); i++ {
		l.index[l.entries[i].Price.String()] = i
	}
}

// insert places (price, qty) at the unique position that keeps the ladder
// monotone, via binary search against the side's polarity. Ties (equal
// price) cannot occur here since applyOne already handled the present case.
func (l *Ladder) insert(price, qty decimal.Decimal) {
	n := len(l.entries)
	pos := sort.Search(n, func(i int) bool {
		return l.better(l.entries[i].Price, price) == false
	})

	l.entries = append(l.entries, Entry{})
	copy(l.entries[pos+1:], l.entries[pos:n])
	l.entries[pos] = Entry{Price: price, Quantity: qty}

	for i := pos; i < len(l.entries); i++ {
		l.index[l.entries[i].Price.String()] = i
	}
}
