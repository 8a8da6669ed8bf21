// Package registry runs the single-owner actor that holds every tracked
// pair's order book and serializes all mutation and read traffic behind one
// message channel, per spec section 4.3.
package registry

import (
	"log"

	"github.com/shopspring/decimal"

	"github.com/livebookd/livebook/internal/orderbook"
)

// inboxCapacity is the buffer size of the actor's inbound channel. The
// channel is bounded: once inboxCapacity messages are queued, every sender
// blocks until the actor takes one off. Nothing is dropped. The send path
// is a plain channel send, which is what every message type below relies on.
const inboxCapacity = 4096

// TipsResult is the reply payload for a Tips query.
type TipsResult struct {
	Bid, Ask orderbook.Entry
	Err      error
}

// GapNotice is sent on the gaps channel given to New whenever a book transitions to Gapped, so the
// exchange gateway can fetch and install a fresh snapshot for that pair.
type GapNotice struct {
	Pair orderbook.Pair
}

type message interface {
	dispatch(r *registryState)
}

type applyDiffMsg struct {
	pair orderbook.Pair
	diff orderbook.Diff
}

type installSnapshotMsg struct {
	pair orderbook.Pair
	snap orderbook.Snapshot
}

type tipsMsg struct {
	pair  orderbook.Pair
	reply chan<- TipsResult
}

type bidsMsg struct {
	pair  orderbook.Pair
	reply chan<- []orderbook.Entry
}

type asksMsg struct {
	pair  orderbook.Pair
	reply chan<- []orderbook.Entry
}

type executionPriceMsg struct {
	pair   orderbook.Pair
	side   orderbook.Side
	amount decimal.Decimal
	reply  chan<- executionPriceResult
}

type executionPriceResult struct {
	price decimal.Decimal
	err   error
}

// Registry owns one Book per tracked pair behind a single inbound channel.
// Construct with New and start the actor loop with Run in its own
// goroutine; everything else is a method that sends a message and, for
// reads, waits on a caller-supplied one-shot reply channel.
type Registry struct {
	inbox   chan message
	verbose bool
	gaps    chan<- GapNotice
}

// registryState is the actor's private, single-owner data: the fixed-size
// array of books, dispatched by constant-time pair index per spec section 9.
type registryState struct {
	books   [orderbook.NumPairs]*orderbook.Book
	verbose bool
	gaps    chan<- GapNotice
}

// New constructs a Registry with an empty (uninitialized) book for every
// tracked pair. gaps may be nil if the caller does not want gap
// notifications; verbose enables spec section 4.2 rule 1's debug log for
// dropped stale diffs.
func New(gaps chan<- GapNotice, verbose bool) *Registry {
	return &Registry{
		inbox:   make(chan message, inboxCapacity),
		verbose: verbose,
		gaps:    gaps,
	}
}

// Run executes the actor loop until the inbound channel is closed. Diff
// application, tip computation, and VWAP traversal are CPU-bound and run to
// completion without suspending, so no two messages ever interleave.
func (r *Registry) Run() {
	state := &registryState{verbose: r.verbose, gaps: r.gaps}
	for i := range state.books {
		state.books[i] = orderbook.NewBook(orderbook.Pair(i))
	}

	for msg := range r.inbox {
		msg.dispatch(state)
	}
}

// Close signals the actor to terminate once it drains any messages already
// queued. Only the owner of the Registry (typically the process main) should
// call this.
func (r *Registry) Close() {
	close(r.inbox)
}

// ApplyDiff enqueues an incremental update for pair. There is no reply;
// unknown pairs and sequencing errors are handled internally per spec
// section 7's disposition table.
func (r *Registry) ApplyDiff(pair orderbook.Pair, diff orderbook.Diff) {
	r.send(applyDiffMsg{pair: pair, diff: diff})
}

// InstallSnapshot enqueues a full snapshot install for pair, used both at
// startup and by the gap-recovery path.
func (r *Registry) InstallSnapshot(pair orderbook.Pair, snap orderbook.Snapshot) {
	r.send(installSnapshotMsg{pair: pair, snap: snap})
}

// Tips asks the actor for the current best bid/ask on pair. It blocks on a
// one-shot reply channel with no timeout of its own, so it waits for as long
// as the actor is not running. Messages queued before Close are still
// answered; calling Tips after Close panics, since the inbox is closed.
func (r *Registry) Tips(pair orderbook.Pair) TipsResult {
	reply := make(chan TipsResult, 1)
	if !r.send(tipsMsg{pair: pair, reply: reply}) {
		return TipsResult{Err: orderbook.ErrUnknownPair}
	}
	return <-reply
}

// Bids returns a copy of pair's bid ladder.
func (r *Registry) Bids(pair orderbook.Pair) ([]orderbook.Entry, error) {
	reply := make(chan []orderbook.Entry, 1)
	if !r.send(bidsMsg{pair: pair, reply: reply}) {
		return nil, orderbook.ErrUnknownPair
	}
	return <-reply, nil
}

// Asks returns a copy of pair's ask ladder.
func (r *Registry) Asks(pair orderbook.Pair) ([]orderbook.Entry, error) {
	reply := make(chan []orderbook.Entry, 1)
	if !r.send(asksMsg{pair: pair, reply: reply}) {
		return nil, orderbook.ErrUnknownPair
	}
	return <-reply, nil
}

// ExecutionPrice computes the volume-weighted average price to fill amount
// on the given side of pair's book, per spec section 4.4.
func (r *Registry) ExecutionPrice(pair orderbook.Pair, side orderbook.Side, amount decimal.Decimal) (decimal.Decimal, error) {
	reply := make(chan executionPriceResult, 1)
	if !r.send(executionPriceMsg{pair: pair, side: side, amount: amount, reply: reply}) {
		return decimal.Decimal{}, orderbook.ErrUnknownPair
	}
	res := <-reply
	return res.price, res.err
}

// send guards against sending for a pair outside the closed set before the
// message ever reaches the actor, since an out-of-range index would panic
// the registryState array dispatch.
func (r *Registry) send(msg message) bool {
	p, ok := pairOf(msg)
	if !ok || int(p) < 0 || int(p) >= orderbook.NumPairs {
		return false
	}
	r.inbox <- msg
	return true
}

func pairOf(msg message) (orderbook.Pair, bool) {
	switch m := msg.(type) {
	case tipsMsg:
		return m.pair, true
	case bidsMsg:
		return m.pair, true
	case asksMsg:
		return m.pair, true
	case executionPriceMsg:
		return m.pair, true
	case applyDiffMsg:
		return m.pair, true
	case installSnapshotMsg:
		return m.pair, true
	}
	return 0, false
}

func (m applyDiffMsg) dispatch(s *registryState) {
	book := s.books[m.pair]
	applied, err := book.HandleDiff(m.diff)

	switch {
	case err == orderbook.ErrSequenceGap:
		if s.gaps != nil {
			select {
			case s.gaps <- GapNotice{Pair: m.pair}:
			default:
				log.Printf("orderbook: gap notice dropped for %s, channel full", m.pair)
			}
		}
	case !applied && s.verbose:
		log.Printf("orderbook: dropped stale diff for %s (last_update_id=%d)", m.pair, m.diff.LastUpdateID)
	}
}

func (m installSnapshotMsg) dispatch(s *registryState) {
	s.books[m.pair].InstallSnapshot(m.snap)
}

func (m tipsMsg) dispatch(s *registryState) {
	bid, ask, err := s.books[m.pair].Tips()
	m.reply <- TipsResult{Bid: bid, Ask: ask, Err: err}
}

func (m bidsMsg) dispatch(s *registryState) {
	m.reply <- s.books[m.pair].Bids()
}

func (m asksMsg) dispatch(s *registryState) {
	m.reply <- s.books[m.pair].Asks()
}

func (m executionPriceMsg) dispatch(s *registryState) {
	price, err := s.books[m.pair].ExecutionPrice(m.side, m.amount)
	m.reply <- executionPriceResult{price: price, err: err}
}
