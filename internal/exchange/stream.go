package exchange

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Reconnect backoff bounds, grounded on the ingest loop in
// yoghaf-market-indikator/internal/ingest/depth.go: start at one second and
// double on every failed attempt up to a thirty-second ceiling.
const (
	reconnectBase = 1 * time.Second
	reconnectMax  = 30 * time.Second
)

// runStream holds a combined-stream websocket connection open for the given
// channel names (e.g. "btcusdt@depth"), invoking onFrame for every message
// and onConnect every time a connection is freshly established (including
// reconnects, since a dropped connection may have missed diffs and the
// caller must resynchronize from a fresh REST snapshot). It blocks until ctx
// is done.
func (g *Gateway) runStream(ctx context.Context, streams []string, onConnect func(), onFrame func([]byte)) {
	wsURL := g.cfg.WSBaseURL + "/stream?streams=" + strings.Join(streams, "/")

	base, max := reconnectBase, reconnectMax
	if g.cfg.ReconnectBase > 0 {
		base = g.cfg.ReconnectBase
	}
	if g.cfg.ReconnectMax > 0 {
		max = g.cfg.ReconnectMax
	}
	delay := base

	for ctx.Err() == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("exchange: dial %s failed: %v, retrying in %s", maskedURL(wsURL), err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			delay = nextDelayBounded(delay, max)
			continue
		}

		delay = base
		onConnect()
		g.readUntilError(ctx, conn, onFrame)
		conn.Close()
	}
}

func (g *Gateway) readUntilError(ctx context.Context, conn *websocket.Conn, onFrame func([]byte)) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("exchange: stream read error: %v", err)
			}
			return
		}
		onFrame(frame)
	}
}

func nextDelayBounded(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}

func maskedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}
