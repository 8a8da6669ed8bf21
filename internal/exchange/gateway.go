package exchange

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/livebookd/livebook/internal/orderbook"
	"github.com/livebookd/livebook/internal/registry"
)

// Config points the gateway at the upstream exchange's REST and websocket
// hosts. Populated from internal/config.
type Config struct {
	RESTBaseURL string
	WSBaseURL   string

	// ReconnectBase and ReconnectMax override the default backoff bounds
	// when non-zero.
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
}

// Gateway fetches REST depth snapshots and subscribes to the websocket diff
// stream for every tracked pair, keeping the registry's books current.
// Grounded on original_source/src/binance.rs's start_orderbook_stream
// (the dial-then-snapshot-then-drain handshake) and on the reconnect-loop
// shape of yoghaf-market-indikator/internal/ingest/depth.go.
type Gateway struct {
	cfg        Config
	reg        *registry.Registry
	httpClient *http.Client

	mu      sync.Mutex
	readyBy map[orderbook.Pair]bool
	bufBy   map[orderbook.Pair][]orderbook.Diff
}

// NewGateway constructs a Gateway. httpClient may be nil to use a default
// client with a ten-second timeout.
func NewGateway(cfg Config, reg *registry.Registry, httpClient *http.Client) *Gateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Gateway{
		cfg:        cfg,
		reg:        reg,
		httpClient: httpClient,
		readyBy:    make(map[orderbook.Pair]bool),
		bufBy:      make(map[orderbook.Pair][]orderbook.Diff),
	}
}

// Run subscribes to pairs' combined depth stream and bootstraps each one
// from a REST snapshot, then feeds the registry until ctx is cancelled.
//
// Startup order per pair follows the buffer-then-drain handshake: the
// websocket connects first and every diff received before that pair's
// snapshot is installed is buffered rather than applied, because applying a
// diff against an uninitialized book's last_update_id=0 would either no-op
// incorrectly or manufacture a spurious gap. Once the snapshot installs,
// buffered diffs drain in arrival order and the pair goes live.
func (g *Gateway) Run(ctx context.Context, pairs []orderbook.Pair) {
	if err := validatePairs(pairs); err != nil {
		log.Printf("exchange: %v", err)
		return
	}

	streams := make([]string, len(pairs))
	bySymbol := make(map[string]orderbook.Pair, len(pairs))
	for i, p := range pairs {
		streams[i] = strings.ToLower(p.String()) + "@depth"
		bySymbol[p.String()] = p
	}

	onConnect := func() {
		g.mu.Lock()
		for _, p := range pairs {
			g.readyBy[p] = false
			g.bufBy[p] = nil
		}
		g.mu.Unlock()

		for _, p := range pairs {
			go g.bootstrap(ctx, p)
		}
	}

	onFrame := func(frame []byte) {
		pair, diff, err := parseDiffFrame(bySymbol, frame)
		if err != nil {
			log.Printf("exchange: dropping unparseable frame: %v", err)
			return
		}
		g.handleDiff(pair, diff)
	}

	g.runStream(ctx, streams, onConnect, onFrame)
}

// WatchGaps resyncs a pair from a fresh snapshot whenever the registry
// reports it fell into the Gapped state. Callers run this in its own
// goroutine alongside Run.
func (g *Gateway) WatchGaps(ctx context.Context, gaps <-chan registry.GapNotice) {
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-gaps:
			if !ok {
				return
			}
			g.mu.Lock()
			g.readyBy[notice.Pair] = false
			g.bufBy[notice.Pair] = nil
			g.mu.Unlock()
			go g.bootstrap(ctx, notice.Pair)
		}
	}
}

func (g *Gateway) bootstrap(ctx context.Context, pair orderbook.Pair) {
	snap, err := g.FetchSnapshot(ctx, pair)
	if err != nil {
		log.Printf("exchange: snapshot fetch failed for %s: %v", pair, err)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.reg.InstallSnapshot(pair, snap)
	for _, diff := range g.bufBy[pair] {
		if diff.LastUpdateID > snap.LastUpdateID {
			g.reg.ApplyDiff(pair, diff)
		}
	}
	g.bufBy[pair] = nil
	g.readyBy[pair] = true
}

func (g *Gateway) handleDiff(pair orderbook.Pair, diff orderbook.Diff) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readyBy[pair] {
		g.reg.ApplyDiff(pair, diff)
		return
	}
	g.bufBy[pair] = append(g.bufBy[pair], diff)
}

func validatePairs(pairs []orderbook.Pair) error {
	if len(pairs) == 0 {
		return fmt.Errorf("exchange: no pairs configured")
	}
	return nil
}
